package capture

import (
	"context"
	"errors"
	"sync"

	"second-brain/internal/usecase"
)

// ErrStreamOpen is returned when a tab already has an open audio stream.
var ErrStreamOpen = errors.New("audio stream already open for tab")

// AudioFeed implements the tab-audio primitive: the browser context pushes
// encoded chunks (one per second of audio) and an open stream delivers them
// until it is stopped. Chunks pushed for tabs without an open stream are
// dropped.
type AudioFeed struct {
	mu      sync.Mutex
	streams map[int]*tabStream
}

func NewAudioFeed() *AudioFeed {
	return &AudioFeed{streams: make(map[int]*tabStream)}
}

// OpenTabAudio opens an audio-only stream for the tab.
func (f *AudioFeed) OpenTabAudio(ctx context.Context, tabID int) (usecase.AudioStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, open := f.streams[tabID]; open {
		return nil, ErrStreamOpen
	}
	s := &tabStream{
		feed:  f,
		tabID: tabID,
		ch:    make(chan []byte, 64),
	}
	f.streams[tabID] = s
	return s, nil
}

// Push delivers one encoded chunk to the tab's open stream. It reports
// whether the chunk was accepted.
func (f *AudioFeed) Push(tabID int, chunk []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, open := f.streams[tabID]
	if !open {
		return false
	}
	select {
	case s.ch <- chunk:
		return true
	default:
		// Slow consumer; losing a chunk beats blocking the page context.
		return false
	}
}

func (f *AudioFeed) release(tabID int) {
	f.mu.Lock()
	delete(f.streams, tabID)
	f.mu.Unlock()
}

type tabStream struct {
	feed  *AudioFeed
	tabID int
	ch    chan []byte
	once  sync.Once
}

func (s *tabStream) Chunks() <-chan []byte { return s.ch }

// Stop tears the stream down: it is deregistered from the feed and the chunk
// channel closes after in-flight chunks drain.
func (s *tabStream) Stop() error {
	s.once.Do(func() {
		s.feed.release(s.tabID)
		close(s.ch)
	})
	return nil
}
