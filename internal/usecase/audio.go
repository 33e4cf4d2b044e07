package usecase

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"second-brain/internal/domain"
	obs "second-brain/internal/infrastructure/observability"
)

// AudioService records tab audio through the stream primitive. A single
// recording may be active at a time; a second StartCapture is rejected.
// Chunks are buffered in memory and materialized into a data URL on stop.
type AudioService struct {
	kv       KV
	source   TabAudioSource
	settings *SettingsService
	metrics  *obs.Metrics
	log      zerolog.Logger

	now     func() time.Time
	maxKept int

	mu      sync.Mutex
	stream  AudioStream
	current *domain.AudioCapture
	chunks  [][]byte
	drained chan struct{}
}

func NewAudioService(kv KV, source TabAudioSource, settings *SettingsService, metrics *obs.Metrics, log zerolog.Logger) *AudioService {
	return &AudioService{
		kv:       kv,
		source:   source,
		settings: settings,
		metrics:  metrics,
		log:      log.With().Str("component", "audio").Logger(),
		now:      time.Now,
		maxKept:  MaxAudioCaptures,
	}
}

// StartCapture opens an audio-only stream for the tab and persists the
// initial record with status capturing. Errors during start finalize the
// record as failed.
func (a *AudioService) StartCapture(ctx context.Context, tabID int) (*domain.AudioCapture, error) {
	settings, err := a.settings.Get(ctx)
	if err == nil && !settings.AudioEnabled {
		return nil, ErrCaptureDisabled
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stream != nil {
		return nil, ErrCaptureInProgress
	}

	capture := domain.AudioCapture{
		ID:        domain.NewID("audio"),
		Timestamp: domain.NowMillis(a.now()),
		Status:    domain.AudioCapturing,
	}

	stream, err := a.source.OpenTabAudio(ctx, tabID)
	if err != nil {
		capture.Status = domain.AudioFailed
		a.persist(ctx, capture)
		a.failure("start", err)
		return nil, err
	}

	a.stream = stream
	a.current = &capture
	a.chunks = nil
	a.drained = make(chan struct{})
	go a.drain(stream, a.drained)

	a.persist(ctx, capture)
	if a.metrics != nil {
		a.metrics.CapturesTotal.WithLabelValues("audio").Inc()
	}
	a.log.Debug().Str("id", capture.ID).Int("tab", tabID).Msg("audio capture started")
	return &capture, nil
}

// drain collects chunks until the stream closes its channel on Stop.
func (a *AudioService) drain(stream AudioStream, done chan struct{}) {
	for chunk := range stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		a.mu.Lock()
		a.chunks = append(a.chunks, chunk)
		a.mu.Unlock()
	}
	close(done)
}

// StopCapture stops the recording and the underlying stream tracks,
// concatenates the buffered chunks into a single data URL, and finalizes the
// record. A stop error finalizes the record as failed with no audio payload.
func (a *AudioService) StopCapture(ctx context.Context) (*domain.AudioCapture, error) {
	a.mu.Lock()
	stream := a.stream
	capture := a.current
	drained := a.drained
	a.stream = nil
	a.current = nil
	a.mu.Unlock()

	if stream == nil || capture == nil {
		return nil, ErrNoActiveCapture
	}

	stopErr := stream.Stop()
	<-drained

	a.mu.Lock()
	chunks := a.chunks
	a.chunks = nil
	a.mu.Unlock()

	if stopErr != nil {
		capture.Status = domain.AudioFailed
		capture.AudioURL = ""
		a.persist(ctx, *capture)
		a.failure("stop", stopErr)
		return capture, stopErr
	}

	var payload []byte
	for _, chunk := range chunks {
		payload = append(payload, chunk...)
	}
	capture.AudioURL = "data:audio/webm;base64," + base64.StdEncoding.EncodeToString(payload)
	capture.Duration = domain.NowMillis(a.now()) - capture.Timestamp
	capture.Status = domain.AudioCompleted
	a.persist(ctx, *capture)
	a.log.Debug().Str("id", capture.ID).Int64("duration", capture.Duration).Int("chunks", len(chunks)).Msg("audio capture completed")
	return capture, nil
}

// Recording reports whether a capture is currently live.
func (a *AudioService) Recording() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream != nil
}

// List returns all stored audio captures, oldest first.
func (a *AudioService) List(ctx context.Context) ([]domain.AudioCapture, error) {
	return readAll[domain.AudioCapture](ctx, a.kv, domain.KeyAudioCaptures)
}

// Delete removes one capture by id.
func (a *AudioService) Delete(ctx context.Context, id string) error {
	all, err := a.List(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.AudioCapture, 0, len(all))
	for _, c := range all {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return a.kv.Set(ctx, domain.KeyAudioCaptures, kept)
}

// ClearAll drops every stored capture.
func (a *AudioService) ClearAll(ctx context.Context) error {
	return a.kv.Set(ctx, domain.KeyAudioCaptures, []domain.AudioCapture{})
}

// persist writes the record into the bounded collection, replacing the entry
// with the same id when present. Failures are logged and dropped.
func (a *AudioService) persist(ctx context.Context, capture domain.AudioCapture) {
	err := replaceByID(ctx, a.kv, domain.KeyAudioCaptures,
		func(c domain.AudioCapture) string { return c.ID },
		capture.ID, capture, a.maxKept)
	if err != nil {
		a.log.Error().Err(err).Str("id", capture.ID).Msg("audio record save failed")
	}
}

func (a *AudioService) failure(stage string, err error) {
	if a.metrics != nil {
		a.metrics.CaptureErrorsTotal.WithLabelValues("audio", stage).Inc()
	}
	a.log.Error().Err(err).Str("stage", stage).Msg("audio capture failed")
}
