package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"second-brain/internal/domain"
	obs "second-brain/internal/infrastructure/observability"
)

// MaxExtractedTextLen caps visible-text extraction results.
const MaxExtractedTextLen = 5000

// ScreenshotService captures the visible viewport through the screen-capture
// primitive and persists bounded screenshot records.
type ScreenshotService struct {
	kv       KV
	screen   ScreenCapturer
	thumbs   Thumbnailer
	text     TextExtractor
	tabs     TabResolver
	settings *SettingsService
	metrics  *obs.Metrics
	log      zerolog.Logger

	now     func() time.Time
	maxKept int
}

func NewScreenshotService(kv KV, screen ScreenCapturer, thumbs Thumbnailer, text TextExtractor, tabs TabResolver, settings *SettingsService, metrics *obs.Metrics, log zerolog.Logger) *ScreenshotService {
	return &ScreenshotService{
		kv:       kv,
		screen:   screen,
		thumbs:   thumbs,
		text:     text,
		tabs:     tabs,
		settings: settings,
		metrics:  metrics,
		log:      log.With().Str("component", "screenshot").Logger(),
		now:      time.Now,
		maxKept:  MaxScreenshots,
	}
}

// EstimateDataURLSize estimates the decoded byte payload of a base64 data
// URL: ceil(len * 3/4).
func EstimateDataURLSize(dataURL string) int {
	return (len(dataURL)*3 + 3) / 4
}

// CaptureActiveTab acquires an encoded PNG of the visible viewport, derives
// a thumbnail, and persists the record with FIFO eviction. A capture of an
// excluded URL produces no record.
func (s *ScreenshotService) CaptureActiveTab(ctx context.Context, url, title string) (*domain.Screenshot, error) {
	settings, err := s.settings.Get(ctx)
	if err == nil {
		if !settings.ScreenshotEnabled {
			return nil, ErrCaptureDisabled
		}
		if settings.IsExcluded(url) {
			return nil, ErrExcludedDomain
		}
	}
	dataURL, err := s.screen.CaptureVisibleTab(ctx)
	if err != nil {
		s.failure("capture", err)
		return nil, err
	}
	shot := domain.Screenshot{
		ID:        domain.NewID("screenshot"),
		Timestamp: domain.NowMillis(s.now()),
		URL:       url,
		ImageURL:  dataURL,
		Size:      EstimateDataURLSize(dataURL),
	}
	if s.thumbs != nil {
		thumb, err := s.thumbs.Thumbnail(dataURL)
		if err != nil {
			// A capture without a thumbnail is still worth keeping.
			s.log.Warn().Err(err).Str("id", shot.ID).Msg("thumbnail failed")
		} else {
			shot.ThumbnailURL = thumb
		}
	}
	evicted, err := appendCapped(ctx, s.kv, domain.KeyScreenshots, shot, s.maxKept)
	if err != nil {
		s.failure("persist", err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CapturesTotal.WithLabelValues("screenshot").Inc()
		if evicted > 0 {
			s.metrics.EvictionsTotal.WithLabelValues(domain.KeyScreenshots).Add(float64(evicted))
		}
	}
	s.log.Debug().Str("id", shot.ID).Str("url", url).Int("size", shot.Size).Msg("screenshot captured")
	return &shot, nil
}

// CaptureWithTrigger resolves the tab, captures it, attaches the page's
// visible text, and stores the trigger tag under the screenshot's sibling key.
func (s *ScreenshotService) CaptureWithTrigger(ctx context.Context, tabID int, trigger domain.ScreenshotTrigger) (*domain.Screenshot, error) {
	var info TabInfo
	if s.tabs != nil {
		var ok bool
		if info, ok = s.tabs.ResolveTab(tabID); !ok || info.URL == "" {
			return nil, nil
		}
	}
	shot, err := s.CaptureActiveTab(ctx, info.URL, info.Title)
	if err != nil || shot == nil {
		return nil, err
	}
	if text := s.ExtractVisibleText(ctx, tabID); text != "" {
		shot.ExtractedText = text
		err := replaceByID(ctx, s.kv, domain.KeyScreenshots,
			func(sh domain.Screenshot) string { return sh.ID },
			shot.ID, *shot, s.maxKept)
		if err != nil {
			s.log.Warn().Err(err).Str("id", shot.ID).Msg("extracted text save failed")
		}
	}
	if err := s.kv.Set(ctx, domain.ScreenshotTriggerKey(shot.ID), string(trigger)); err != nil {
		s.log.Warn().Err(err).Str("id", shot.ID).Msg("trigger tag save failed")
	}
	return shot, nil
}

// ExtractVisibleText returns the page's visible text truncated to
// MaxExtractedTextLen characters, or empty on failure.
func (s *ScreenshotService) ExtractVisibleText(ctx context.Context, tabID int) string {
	if s.text == nil {
		return ""
	}
	text, err := s.text.ExtractVisibleText(ctx, tabID)
	if err != nil {
		s.log.Warn().Err(err).Int("tab", tabID).Msg("text extraction failed")
		return ""
	}
	runes := []rune(text)
	if len(runes) > MaxExtractedTextLen {
		text = string(runes[:MaxExtractedTextLen])
	}
	return text
}

// List returns all stored screenshots, oldest first.
func (s *ScreenshotService) List(ctx context.Context) ([]domain.Screenshot, error) {
	return readAll[domain.Screenshot](ctx, s.kv, domain.KeyScreenshots)
}

// ByURL returns stored screenshots captured at exactly url.
func (s *ScreenshotService) ByURL(ctx context.Context, url string) ([]domain.Screenshot, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Screenshot, 0, len(all))
	for _, shot := range all {
		if shot.URL == url {
			out = append(out, shot)
		}
	}
	return out, nil
}

// Delete removes one screenshot and its trigger tag.
func (s *ScreenshotService) Delete(ctx context.Context, id string) error {
	all, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.Screenshot, 0, len(all))
	for _, shot := range all {
		if shot.ID != id {
			kept = append(kept, shot)
		}
	}
	if err := s.kv.Set(ctx, domain.KeyScreenshots, kept); err != nil {
		return err
	}
	return s.kv.Remove(ctx, domain.ScreenshotTriggerKey(id))
}

// ClearAll drops every stored screenshot.
func (s *ScreenshotService) ClearAll(ctx context.Context) error {
	return s.kv.Set(ctx, domain.KeyScreenshots, []domain.Screenshot{})
}

// TotalSize sums the estimated byte payload of stored screenshots.
func (s *ScreenshotService) TotalSize(ctx context.Context) (int64, error) {
	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, shot := range all {
		total += int64(shot.Size)
	}
	return total, nil
}

func (s *ScreenshotService) failure(stage string, err error) {
	if s.metrics != nil {
		s.metrics.CaptureErrorsTotal.WithLabelValues("screenshot", stage).Inc()
	}
	s.log.Error().Err(err).Str("stage", stage).Msg("screenshot capture failed")
}
