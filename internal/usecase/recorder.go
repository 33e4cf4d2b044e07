package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"second-brain/internal/domain"
	obs "second-brain/internal/infrastructure/observability"
)

// Recorder consumes normalized browser events and maintains the current
// browsing session: it appends tab events, attributes dwell time to the tab
// losing focus, and rotates sessions on idle transitions and the periodic
// alarm. It is an actor: Run processes one event to completion (including any
// persistence) before the next, and snapshots are served through the same
// loop so no state is shared across goroutines.
type Recorder struct {
	kv       KV
	settings *SettingsService
	tabs     TabResolver
	metrics  *obs.Metrics
	log      zerolog.Logger

	now         func() time.Time
	maxSessions int
	queries     chan chan *domain.BrowsingSession

	current        *domain.BrowsingSession
	activeTabID    *int
	activeTabStart int64
}

func NewRecorder(kv KV, settings *SettingsService, tabs TabResolver, metrics *obs.Metrics, log zerolog.Logger) *Recorder {
	return &Recorder{
		kv:          kv,
		settings:    settings,
		tabs:        tabs,
		metrics:     metrics,
		log:         log.With().Str("component", "recorder").Logger(),
		now:         time.Now,
		maxSessions: MaxSessions,
		queries:     make(chan chan *domain.BrowsingSession),
	}
}

// Run drives the actor loop until ctx is done or the event channel closes.
func (r *Recorder) Run(ctx context.Context, events <-chan domain.BrowserEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.Handle(ctx, ev)
		case q := <-r.queries:
			q <- r.current.Clone()
		}
	}
}

// CurrentSession returns a snapshot of the in-progress session, or nil when
// none is open. Must only be used while Run is active.
func (r *Recorder) CurrentSession(ctx context.Context) *domain.BrowsingSession {
	q := make(chan *domain.BrowsingSession, 1)
	select {
	case r.queries <- q:
	case <-ctx.Done():
		return nil
	}
	select {
	case s := <-q:
		return s
	case <-ctx.Done():
		return nil
	}
}

// Handle applies one event. Exported for the loop and for tests; O(1) work
// per event apart from the bounded persistence on rotation.
func (r *Recorder) Handle(ctx context.Context, ev domain.BrowserEvent) {
	switch e := ev.(type) {
	case domain.TabCreated:
		r.ensureSession()
		if r.isExcluded(ctx, e.URL) {
			return
		}
		title := e.Title
		if title == "" {
			title = "New Tab"
		}
		r.appendTab(domain.TabEvent{
			ID:        domain.NewID("tab"),
			TabID:     e.TabID,
			URL:       e.URL,
			Title:     title,
			Timestamp: domain.NowMillis(r.now()),
			EventType: domain.TabEventCreated,
			Favicon:   e.Favicon,
		})
	case domain.TabUpdated:
		r.ensureSession()
		if r.isExcluded(ctx, e.URL) {
			return
		}
		r.appendTab(domain.TabEvent{
			ID:        domain.NewID("tab"),
			TabID:     e.TabID,
			URL:       e.URL,
			Title:     e.Title,
			Timestamp: domain.NowMillis(r.now()),
			EventType: domain.TabEventUpdated,
			Favicon:   e.Favicon,
		})
	case domain.TabActivated:
		now := domain.NowMillis(r.now())
		r.attributeDwell(now)
		tabID := e.TabID
		r.activeTabID = &tabID
		r.activeTabStart = now
		r.ensureSession()
		r.current.ActiveTabID = &tabID
		// Resolve the new tab's metadata; unknown tabs are recorded with
		// empty fields rather than dropped.
		var info TabInfo
		if r.tabs != nil {
			info, _ = r.tabs.ResolveTab(e.TabID)
		}
		r.appendTab(domain.TabEvent{
			ID:        domain.NewID("tab"),
			TabID:     e.TabID,
			URL:       info.URL,
			Title:     info.Title,
			Timestamp: now,
			EventType: domain.TabEventActivated,
			Favicon:   info.Favicon,
		})
	case domain.TabRemoved:
		r.ensureSession()
		r.appendTab(domain.TabEvent{
			ID:        domain.NewID("tab"),
			TabID:     e.TabID,
			Timestamp: domain.NowMillis(r.now()),
			EventType: domain.TabEventRemoved,
		})
	case domain.IdleChanged:
		if e.State == domain.IdleActive {
			r.startNewSession()
			return
		}
		r.saveCurrentSession(ctx)
		r.current = nil
		if r.metrics != nil {
			r.metrics.ActiveSession.Set(0)
		}
	case domain.AlarmTick:
		if r.current == nil {
			return
		}
		r.saveCurrentSession(ctx)
		r.startNewSession()
	}
}

func (r *Recorder) ensureSession() {
	if r.current == nil {
		r.startNewSession()
	}
}

func (r *Recorder) startNewSession() {
	r.current = &domain.BrowsingSession{
		ID:        domain.NewID("session"),
		StartTime: domain.NowMillis(r.now()),
		Tabs:      []domain.TabEvent{},
	}
	if r.metrics != nil {
		r.metrics.ActiveSession.Set(1)
	}
	r.log.Debug().Str("session", r.current.ID).Msg("session started")
}

// saveCurrentSession closes the session and appends it to the bounded
// sessions collection. Persistence failures are logged; in-memory state
// proceeds without retry.
func (r *Recorder) saveCurrentSession(ctx context.Context) {
	if r.current == nil {
		return
	}
	end := domain.NowMillis(r.now())
	// Settle the in-progress focus stretch before closing, and restart the
	// dwell clock so a rotation does not double-count it.
	r.attributeDwell(end)
	r.activeTabStart = end
	r.current.EndTime = &end
	r.current.TotalActiveTime = end - r.current.StartTime
	evicted, err := appendCapped(ctx, r.kv, domain.KeySessions, *r.current, r.maxSessions)
	if err != nil {
		r.log.Error().Err(err).Str("session", r.current.ID).Msg("session save failed")
		return
	}
	if r.metrics != nil {
		r.metrics.SessionsSavedTotal.Inc()
		if evicted > 0 {
			r.metrics.EvictionsTotal.WithLabelValues(domain.KeySessions).Add(float64(evicted))
		}
	}
	r.log.Debug().Str("session", r.current.ID).Int("tabs", len(r.current.Tabs)).Msg("session saved")
}

// attributeDwell adds the elapsed focus time to the most recent event of the
// tab losing focus. Deltas for tabs with no prior event in the session are
// dropped.
func (r *Recorder) attributeDwell(now int64) {
	if r.current == nil || r.activeTabID == nil {
		return
	}
	dwell := now - r.activeTabStart
	if dwell <= 0 {
		return
	}
	tabs := r.current.Tabs
	for i := len(tabs) - 1; i >= 0; i-- {
		if tabs[i].TabID == *r.activeTabID {
			tabs[i].Duration += dwell
			return
		}
	}
}

func (r *Recorder) appendTab(ev domain.TabEvent) {
	r.current.Tabs = append(r.current.Tabs, ev)
	if r.metrics != nil {
		r.metrics.EventsTotal.WithLabelValues(string(ev.EventType)).Inc()
	}
}

func (r *Recorder) isExcluded(ctx context.Context, url string) bool {
	if url == "" {
		return false
	}
	settings, err := r.settings.Get(ctx)
	if err != nil {
		// A failed settings read means exclusions cannot be consulted;
		// recording proceeds.
		r.log.Warn().Err(err).Msg("settings read failed")
		return false
	}
	return settings.IsExcluded(url)
}
