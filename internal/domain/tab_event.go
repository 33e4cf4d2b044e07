package domain

type TabEventType string

const (
	TabEventCreated   TabEventType = "created"
	TabEventUpdated   TabEventType = "updated"
	TabEventActivated TabEventType = "activated"
	TabEventRemoved   TabEventType = "removed"
)

// TabEvent is a single recorded tab-lifecycle entry inside a session.
// Timestamps are integer milliseconds since epoch. Duration accumulates
// dwell time and is only ever set on tabs that held active focus.
type TabEvent struct {
	ID        string       `json:"id"`
	TabID     int          `json:"tabId"`
	URL       string       `json:"url"`
	Title     string       `json:"title"`
	Timestamp int64        `json:"timestamp"`
	EventType TabEventType `json:"eventType"`
	Duration  int64        `json:"duration,omitempty"`
	Favicon   string       `json:"favicon,omitempty"`
}
