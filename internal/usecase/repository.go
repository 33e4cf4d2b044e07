package usecase

import (
	"context"
	"errors"
)

// FIFO caps per bounded collection. Oldest entries are evicted first.
const (
	MaxSessions        = 100
	MaxFormSubmissions = 50
	MaxScreenshots     = 20
	MaxAudioCaptures   = 10
)

var (
	// ErrCaptureInProgress rejects a second audio capture while one is live.
	ErrCaptureInProgress = errors.New("audio capture already in progress")
	// ErrNoActiveCapture is returned by StopCapture with nothing recording.
	ErrNoActiveCapture = errors.New("no active audio capture")
	// ErrCaptureDisabled is returned when settings gate a capture off.
	ErrCaptureDisabled = errors.New("capture disabled by settings")
	// ErrExcludedDomain is returned for captures of opted-out URLs.
	ErrExcludedDomain = errors.New("url matches an excluded domain")
)

// KV is the persistence facade: typed key/value reads and writes over a
// byte-budgeted local store. All operations may fail; callers in the capture
// path log and proceed rather than propagate.
type KV interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	BytesInUse(ctx context.Context) (int64, error)
}

// TabInfo is the resolvable metadata for a known tab.
type TabInfo struct {
	URL     string
	Title   string
	Favicon string
}

// TabResolver looks up current metadata for a tab id. The second return is
// false for unknown tabs; callers tolerate that and record empty fields.
type TabResolver interface {
	ResolveTab(tabID int) (TabInfo, bool)
}

// ScreenCapturer is the screen-capture primitive: it returns the currently
// visible viewport as an encoded PNG data URL.
type ScreenCapturer interface {
	CaptureVisibleTab(ctx context.Context) (string, error)
}

// Thumbnailer downscales an encoded image into a thumbnail data URL.
type Thumbnailer interface {
	Thumbnail(dataURL string) (string, error)
}

// TextExtractor pulls the visible text of a page, truncated by the adapter.
type TextExtractor interface {
	ExtractVisibleText(ctx context.Context, tabID int) (string, error)
}

// AudioStream is a live chunked recording. Chunks delivers encoded audio
// buffers until Stop tears the underlying stream down and closes the channel.
type AudioStream interface {
	Chunks() <-chan []byte
	Stop() error
}

// TabAudioSource opens an audio-only stream for a tab.
type TabAudioSource interface {
	OpenTabAudio(ctx context.Context, tabID int) (AudioStream, error)
}

// CapturerFunc adapts a function to the ScreenCapturer interface.
type CapturerFunc func(ctx context.Context) (string, error)

func (f CapturerFunc) CaptureVisibleTab(ctx context.Context) (string, error) { return f(ctx) }

// ExtractorFunc adapts a function to the TextExtractor interface.
type ExtractorFunc func(ctx context.Context, tabID int) (string, error)

func (f ExtractorFunc) ExtractVisibleText(ctx context.Context, tabID int) (string, error) {
	return f(ctx, tabID)
}
