package capture

import (
	"context"
	"errors"
	"sync"
)

// ErrNoText is returned when no visible text was submitted for the tab.
var ErrNoText = errors.New("no extracted text for tab")

// TextFeed implements the visible-text primitive for a daemon that cannot
// inject scripts itself: the page context submits the text it sees, keyed by
// tab, and extraction returns the latest submission.
type TextFeed struct {
	mu    sync.RWMutex
	texts map[int]string
}

func NewTextFeed() *TextFeed {
	return &TextFeed{texts: make(map[int]string)}
}

// Submit stores the latest visible text for a tab. Empty text clears it.
func (f *TextFeed) Submit(tabID int, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if text == "" {
		delete(f.texts, tabID)
		return
	}
	f.texts[tabID] = text
}

// Forget drops the stored text for a closed tab.
func (f *TextFeed) Forget(tabID int) {
	f.mu.Lock()
	delete(f.texts, tabID)
	f.mu.Unlock()
}

// ExtractVisibleText returns the latest submitted text for the tab.
func (f *TextFeed) ExtractVisibleText(ctx context.Context, tabID int) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	text, ok := f.texts[tabID]
	if !ok {
		return "", ErrNoText
	}
	return text, nil
}
