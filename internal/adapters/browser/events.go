package browser

import (
	"sync"

	"github.com/rs/zerolog"

	"second-brain/internal/domain"
	"second-brain/internal/usecase"
)

// TabSignal is the raw shape of a tab-lifecycle callback as delivered by the
// browser: optional fields arrive empty.
type TabSignal struct {
	TabID      int    `json:"tabId"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	FavIconURL string `json:"favIconUrl,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Source normalizes browser signals into a FIFO stream of typed events and
// keeps a registry of known tabs so activations can resolve URL and title.
// Delivery order matches arrival order; there is no reordering.
type Source struct {
	log zerolog.Logger
	out chan domain.BrowserEvent

	mu   sync.RWMutex
	tabs map[int]usecase.TabInfo
}

func NewSource(buffer int, log zerolog.Logger) *Source {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Source{
		log:  log.With().Str("component", "eventsource").Logger(),
		out:  make(chan domain.BrowserEvent, buffer),
		tabs: make(map[int]usecase.TabInfo),
	}
}

// Events is the normalized event stream consumed by the recorder.
func (s *Source) Events() <-chan domain.BrowserEvent { return s.out }

// Close ends the stream. No signal may be published afterwards.
func (s *Source) Close() { close(s.out) }

// ResolveTab implements usecase.TabResolver from the registry.
func (s *Source) ResolveTab(tabID int) (usecase.TabInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.tabs[tabID]
	return info, ok
}

func (s *Source) remember(sig TabSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := s.tabs[sig.TabID]
	if sig.URL != "" {
		info.URL = sig.URL
	}
	if sig.Title != "" {
		info.Title = sig.Title
	}
	if sig.FavIconURL != "" {
		info.Favicon = sig.FavIconURL
	}
	s.tabs[sig.TabID] = info
}

// TabCreated publishes a created event and registers the tab.
func (s *Source) TabCreated(sig TabSignal) {
	s.remember(sig)
	s.emit(domain.TabCreated{TabID: sig.TabID, URL: sig.URL, Title: sig.Title, Favicon: sig.FavIconURL})
}

// TabUpdated publishes an updated event, but only once loading completed
// with a URL; intermediate updates just refresh the registry.
func (s *Source) TabUpdated(sig TabSignal) {
	s.remember(sig)
	if sig.Status != "complete" || sig.URL == "" {
		return
	}
	s.emit(domain.TabUpdated{TabID: sig.TabID, URL: sig.URL, Title: sig.Title, Favicon: sig.FavIconURL})
}

// TabActivated publishes an activated event.
func (s *Source) TabActivated(tabID int) {
	s.emit(domain.TabActivated{TabID: tabID})
}

// TabRemoved publishes a removed event and forgets the tab.
func (s *Source) TabRemoved(tabID int) {
	s.mu.Lock()
	delete(s.tabs, tabID)
	s.mu.Unlock()
	s.emit(domain.TabRemoved{TabID: tabID})
}

// IdleChanged publishes an idle-state transition. Unknown states are dropped.
func (s *Source) IdleChanged(state string) {
	switch domain.IdleState(state) {
	case domain.IdleActive, domain.IdleIdle, domain.IdleLocked:
		s.emit(domain.IdleChanged{State: domain.IdleState(state)})
	default:
		s.log.Warn().Str("state", state).Msg("unknown idle state dropped")
	}
}

// AlarmTick publishes the periodic save alarm.
func (s *Source) AlarmTick() {
	s.emit(domain.AlarmTick{})
}

func (s *Source) emit(ev domain.BrowserEvent) {
	// Blocking send keeps FIFO order; the buffer absorbs bursts.
	s.out <- ev
}
