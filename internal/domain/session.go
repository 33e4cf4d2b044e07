package domain

// BrowsingSession is a contiguous user-active browsing interval delimited by
// idle transitions or the periodic rotator. Sessions own their tab events by
// value; tabs are ordered by timestamp ascending.
type BrowsingSession struct {
	ID              string     `json:"id"`
	StartTime       int64      `json:"startTime"`
	EndTime         *int64     `json:"endTime,omitempty"`
	Tabs            []TabEvent `json:"tabs"`
	TotalActiveTime int64      `json:"totalActiveTime"`
	ActiveTabID     *int       `json:"activeTabId,omitempty"`
}

// Clone returns a deep copy safe to hand across goroutines.
func (s *BrowsingSession) Clone() *BrowsingSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Tabs = make([]TabEvent, len(s.Tabs))
	copy(out.Tabs, s.Tabs)
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	if s.ActiveTabID != nil {
		id := *s.ActiveTabID
		out.ActiveTabID = &id
	}
	return &out
}
