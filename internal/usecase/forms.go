package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"second-brain/internal/domain"
	obs "second-brain/internal/infrastructure/observability"
	"second-brain/pkg/shared/privacy"
)

// FormService persists form submissions dispatched from the page context.
// Fields arrive already filtered; the service re-runs truncation as a guard
// so the stored-value invariant holds regardless of the sender.
type FormService struct {
	kv       KV
	settings *SettingsService
	metrics  *obs.Metrics
	log      zerolog.Logger

	now     func() time.Time
	maxKept int
}

func NewFormService(kv KV, settings *SettingsService, metrics *obs.Metrics, log zerolog.Logger) *FormService {
	return &FormService{
		kv:       kv,
		settings: settings,
		metrics:  metrics,
		log:      log.With().Str("component", "forms").Logger(),
		now:      time.Now,
		maxKept:  MaxFormSubmissions,
	}
}

// HandleSubmission appends a submission to the bounded collection. Tracking
// disabled or an excluded URL drops it silently.
func (f *FormService) HandleSubmission(ctx context.Context, sub domain.FormSubmission) error {
	settings, err := f.settings.Get(ctx)
	if err == nil {
		if !settings.FormTrackingEnabled {
			f.log.Debug().Str("url", sub.URL).Msg("form tracking disabled, submission dropped")
			return nil
		}
		if settings.IsExcluded(sub.URL) {
			return nil
		}
	}
	if sub.ID == "" {
		sub.ID = domain.NewID("form")
	}
	if sub.Timestamp == 0 {
		sub.Timestamp = domain.NowMillis(f.now())
	}
	for i, field := range sub.Fields {
		if field.Value != privacy.Filtered && field.Value != privacy.PIIFiltered {
			sub.Fields[i].Value = privacy.Truncate(field.Value)
		}
	}
	evicted, err := appendCapped(ctx, f.kv, domain.KeyFormSubmissions, sub, f.maxKept)
	if err != nil {
		if f.metrics != nil {
			f.metrics.CaptureErrorsTotal.WithLabelValues("form", "persist").Inc()
		}
		f.log.Error().Err(err).Str("id", sub.ID).Msg("form submission save failed")
		return err
	}
	if f.metrics != nil {
		f.metrics.CapturesTotal.WithLabelValues("form").Inc()
		if evicted > 0 {
			f.metrics.EvictionsTotal.WithLabelValues(domain.KeyFormSubmissions).Add(float64(evicted))
		}
	}
	f.log.Debug().Str("id", sub.ID).Str("url", sub.URL).Int("fields", len(sub.Fields)).Msg("form submission stored")
	return nil
}

// List returns all stored submissions, oldest first.
func (f *FormService) List(ctx context.Context) ([]domain.FormSubmission, error) {
	return readAll[domain.FormSubmission](ctx, f.kv, domain.KeyFormSubmissions)
}

// ClearAll drops every stored submission.
func (f *FormService) ClearAll(ctx context.Context) error {
	return f.kv.Set(ctx, domain.KeyFormSubmissions, []domain.FormSubmission{})
}
