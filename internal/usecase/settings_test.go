package usecase

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"second-brain/internal/adapters/storage/memory"
	"second-brain/internal/domain"
)

func TestInstallWritesDefaultsOnce(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewSettingsService(store, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Install(ctx); err != nil {
		t.Fatalf("install: %v", err)
	}
	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !settings.CaptureEnabled || settings.AudioEnabled || settings.ScreenshotEnabled {
		t.Fatalf("unexpected defaults: %+v", settings)
	}

	// a reinstall must not clobber user choices
	settings.AudioEnabled = true
	if err := svc.Save(ctx, settings); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Install(ctx); err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	settings, _ = svc.Get(ctx)
	if !settings.AudioEnabled {
		t.Fatalf("reinstall clobbered saved settings")
	}
}

func TestInstallInitializesCollections(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewSettingsService(store, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Install(ctx); err != nil {
		t.Fatalf("install: %v", err)
	}
	var sessions []domain.BrowsingSession
	found, err := store.Get(ctx, domain.KeySessions, &sessions)
	if err != nil || !found {
		t.Fatalf("sessions key must exist after install: found=%v err=%v", found, err)
	}
	if len(sessions) != 0 {
		t.Fatalf("sessions must start empty, got %d", len(sessions))
	}
}

func TestGetWithoutInstallReturnsDefaults(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewSettingsService(store, zerolog.Nop())

	settings, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !settings.CaptureEnabled || settings.Theme != domain.ThemeAuto {
		t.Fatalf("expected defaults, got %+v", settings)
	}
}

func TestPermissionRequestedFlag(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewSettingsService(store, zerolog.Nop())
	ctx := context.Background()

	if svc.PermissionRequested(ctx, "tabCapture") {
		t.Fatalf("flag must start false")
	}
	if err := svc.MarkPermissionRequested(ctx, "tabCapture"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !svc.PermissionRequested(ctx, "tabCapture") {
		t.Fatalf("flag must persist")
	}
	if svc.PermissionRequested(ctx, "microphone") {
		t.Fatalf("flags are per permission")
	}
}
