package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// ErrNoFrame is returned when no fresh viewport frame has been submitted.
var ErrNoFrame = errors.New("no viewport frame available")

const (
	thumbMaxWidth  = 200
	thumbMaxHeight = 150
	thumbQuality   = 70
)

// ImageProcessor derives thumbnails from encoded screenshots.
type ImageProcessor struct{}

// Thumbnail decodes a data-URL image and re-encodes an aspect-preserving
// JPEG that fits 200x150 at quality 0.7, returned as a data URL.
func (ImageProcessor) Thumbnail(dataURL string) (string, error) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fit(img, thumbMaxWidth, thumbMaxHeight, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbQuality)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodeDataURL(dataURL string) ([]byte, error) {
	_, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, errors.New("not a data url")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return raw, nil
}

// FrameBuffer implements the screen-capture primitive for a daemon that does
// not render pages itself: the browser context submits freshly encoded
// viewport frames, and a capture returns the most recent one if it is not
// stale.
type FrameBuffer struct {
	mu     sync.RWMutex
	frame  string
	at     time.Time
	maxAge time.Duration
	now    func() time.Time
}

// NewFrameBuffer creates a buffer whose frames expire after maxAge.
// maxAge <= 0 keeps frames forever.
func NewFrameBuffer(maxAge time.Duration) *FrameBuffer {
	return &FrameBuffer{maxAge: maxAge, now: time.Now}
}

// Submit stores the latest encoded viewport frame (a PNG data URL).
func (b *FrameBuffer) Submit(dataURL string) {
	b.mu.Lock()
	b.frame = dataURL
	b.at = b.now()
	b.mu.Unlock()
}

// CaptureVisibleTab returns the most recent frame, or ErrNoFrame when none
// was submitted or the last one went stale.
func (b *FrameBuffer) CaptureVisibleTab(ctx context.Context) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.frame == "" {
		return "", ErrNoFrame
	}
	if b.maxAge > 0 && b.now().Sub(b.at) > b.maxAge {
		return "", ErrNoFrame
	}
	return b.frame, nil
}
