package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"second-brain/internal/adapters/storage/memory"
	"second-brain/internal/domain"
	"second-brain/pkg/shared/privacy"
)

func newFormFixture(t *testing.T, trackingEnabled bool) (*FormService, *memory.Store) {
	t.Helper()
	store := memory.NewStore(0)
	log := zerolog.Nop()
	settings := NewSettingsService(store, log)
	ctx := context.Background()
	require.NoError(t, settings.Install(ctx))
	current, err := settings.Get(ctx)
	require.NoError(t, err)
	current.FormTrackingEnabled = trackingEnabled
	require.NoError(t, settings.Save(ctx, current))
	return NewFormService(store, settings, nil, log), store
}

func TestSubmissionStored(t *testing.T) {
	svc, _ := newFormFixture(t, true)
	ctx := context.Background()

	err := svc.HandleSubmission(ctx, domain.FormSubmission{
		URL:    "https://shop.test/checkout",
		FormID: "checkout",
		Fields: []domain.FormField{{Name: "q", Type: "text", Value: "books"}},
	})
	require.NoError(t, err)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotEmpty(t, stored[0].ID)
	require.NotZero(t, stored[0].Timestamp)
}

func TestSubmissionDroppedWhenTrackingDisabled(t *testing.T) {
	svc, _ := newFormFixture(t, false)
	ctx := context.Background()

	err := svc.HandleSubmission(ctx, domain.FormSubmission{URL: "https://shop.test"})
	require.NoError(t, err)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestSubmissionDroppedForExcludedURL(t *testing.T) {
	svc, _ := newFormFixture(t, true)
	ctx := context.Background()

	err := svc.HandleSubmission(ctx, domain.FormSubmission{URL: "chrome://settings"})
	require.NoError(t, err)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestSentinelValuesNotReTruncated(t *testing.T) {
	svc, _ := newFormFixture(t, true)
	ctx := context.Background()

	long := strings.Repeat("v", privacy.MaxValueLen+50)
	err := svc.HandleSubmission(ctx, domain.FormSubmission{
		URL: "https://example.com",
		Fields: []domain.FormField{
			{Name: "password", Value: privacy.Filtered},
			{Name: "email", Value: privacy.PIIFiltered},
			{Name: "comment", Value: long},
		},
	})
	require.NoError(t, err)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	fields := stored[0].Fields
	require.Equal(t, privacy.Filtered, fields[0].Value)
	require.Equal(t, privacy.PIIFiltered, fields[1].Value)
	require.True(t, strings.HasSuffix(fields[2].Value, "..."))
	require.Len(t, []rune(fields[2].Value), privacy.MaxValueLen+3)
}

func TestFormSubmissionCap(t *testing.T) {
	svc, _ := newFormFixture(t, true)
	svc.maxKept = 3
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := svc.HandleSubmission(ctx, domain.FormSubmission{
			URL:    "https://example.com",
			FormID: string(rune('a' + i)),
		})
		require.NoError(t, err)
	}

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	require.Equal(t, "c", stored[0].FormID)
	require.Equal(t, "e", stored[2].FormID)
}

func TestClearAllSubmissions(t *testing.T) {
	svc, _ := newFormFixture(t, true)
	ctx := context.Background()
	require.NoError(t, svc.HandleSubmission(ctx, domain.FormSubmission{URL: "https://example.com"}))
	require.NoError(t, svc.ClearAll(ctx))
	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, stored)
}
