package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"second-brain/internal/adapters/storage/memory"
	"second-brain/internal/domain"
)

type fakeStream struct {
	ch      chan []byte
	stopErr error
	stopped bool
}

func (s *fakeStream) Chunks() <-chan []byte { return s.ch }

func (s *fakeStream) Stop() error {
	if !s.stopped {
		s.stopped = true
		close(s.ch)
	}
	return s.stopErr
}

type fakeAudioSource struct {
	stream  *fakeStream
	openErr error
}

func (f *fakeAudioSource) OpenTabAudio(ctx context.Context, tabID int) (AudioStream, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func newAudioFixture(t *testing.T, source TabAudioSource) (*AudioService, *memory.Store) {
	t.Helper()
	store := memory.NewStore(0)
	log := zerolog.Nop()
	settings := NewSettingsService(store, log)
	ctx := context.Background()
	require.NoError(t, settings.Install(ctx))
	current, err := settings.Get(ctx)
	require.NoError(t, err)
	current.AudioEnabled = true
	require.NoError(t, settings.Save(ctx, current))
	return NewAudioService(store, source, settings, nil, log), store
}

func TestAudioCaptureLifecycle(t *testing.T) {
	stream := &fakeStream{ch: make(chan []byte, 8)}
	svc, _ := newAudioFixture(t, &fakeAudioSource{stream: stream})
	ctx := context.Background()

	capture, err := svc.StartCapture(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.AudioCapturing, capture.Status)
	require.True(t, svc.Recording())

	// the stored record reflects the capturing status
	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, domain.AudioCapturing, stored[0].Status)

	stream.ch <- []byte("one")
	stream.ch <- []byte("two")
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.chunks) == 2
	}, time.Second, time.Millisecond)

	done, err := svc.StopCapture(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.AudioCompleted, done.Status)
	require.False(t, svc.Recording())

	wantPayload := base64.StdEncoding.EncodeToString([]byte("onetwo"))
	require.Equal(t, "data:audio/webm;base64,"+wantPayload, done.AudioURL)

	stored, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, domain.AudioCompleted, stored[0].Status)
	require.Equal(t, done.ID, stored[0].ID)
}

func TestSecondStartRejected(t *testing.T) {
	stream := &fakeStream{ch: make(chan []byte)}
	svc, _ := newAudioFixture(t, &fakeAudioSource{stream: stream})
	ctx := context.Background()

	_, err := svc.StartCapture(ctx, 1)
	require.NoError(t, err)
	_, err = svc.StartCapture(ctx, 2)
	require.ErrorIs(t, err, ErrCaptureInProgress)
}

func TestStartDisabledBySettings(t *testing.T) {
	store := memory.NewStore(0)
	log := zerolog.Nop()
	settings := NewSettingsService(store, log)
	require.NoError(t, settings.Install(context.Background()))
	svc := NewAudioService(store, &fakeAudioSource{}, settings, nil, log)

	_, err := svc.StartCapture(context.Background(), 1)
	require.ErrorIs(t, err, ErrCaptureDisabled)
}

func TestStartFailurePersistsFailedRecord(t *testing.T) {
	svc, _ := newAudioFixture(t, &fakeAudioSource{openErr: errors.New("no audible tab")})
	ctx := context.Background()

	_, err := svc.StartCapture(ctx, 1)
	require.Error(t, err)
	require.False(t, svc.Recording())

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, domain.AudioFailed, stored[0].Status)
}

func TestStopFailureFinalizesAsFailed(t *testing.T) {
	stream := &fakeStream{ch: make(chan []byte, 1), stopErr: errors.New("track lost")}
	svc, _ := newAudioFixture(t, &fakeAudioSource{stream: stream})
	ctx := context.Background()

	_, err := svc.StartCapture(ctx, 1)
	require.NoError(t, err)

	capture, err := svc.StopCapture(ctx)
	require.Error(t, err)
	require.NotNil(t, capture)
	require.Equal(t, domain.AudioFailed, capture.Status)
	require.Empty(t, capture.AudioURL)
	require.False(t, strings.Contains(capture.AudioURL, "base64"))
}

func TestStopWithoutActiveCapture(t *testing.T) {
	svc, _ := newAudioFixture(t, &fakeAudioSource{})
	_, err := svc.StopCapture(context.Background())
	require.ErrorIs(t, err, ErrNoActiveCapture)
}

func TestAudioCapReplacesOldest(t *testing.T) {
	svc, store := newAudioFixture(t, &fakeAudioSource{})
	svc.maxKept = 2
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		stream := &fakeStream{ch: make(chan []byte)}
		svc.source = &fakeAudioSource{stream: stream}
		_, err := svc.StartCapture(ctx, i)
		require.NoError(t, err)
		_, err = svc.StopCapture(ctx)
		require.NoError(t, err)
	}

	var stored []domain.AudioCapture
	found, err := store.Get(ctx, domain.KeyAudioCaptures, &stored)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stored, 2)
}

func TestDeleteAudioCapture(t *testing.T) {
	stream := &fakeStream{ch: make(chan []byte)}
	svc, _ := newAudioFixture(t, &fakeAudioSource{stream: stream})
	ctx := context.Background()

	_, err := svc.StartCapture(ctx, 1)
	require.NoError(t, err)
	capture, err := svc.StopCapture(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, capture.ID))
	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, stored)
}
