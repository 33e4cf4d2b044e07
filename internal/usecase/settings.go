package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"second-brain/internal/domain"
)

// SettingsService reads and writes the user settings snapshot. Reads always
// hit the store so every capture sees the latest values.
type SettingsService struct {
	kv  KV
	log zerolog.Logger
}

func NewSettingsService(kv KV, log zerolog.Logger) *SettingsService {
	return &SettingsService{kv: kv, log: log.With().Str("component", "settings").Logger()}
}

// Install writes the known defaults and initializes the empty collections.
// Existing settings are left alone so reinstalls keep user choices.
func (s *SettingsService) Install(ctx context.Context) error {
	var existing domain.UserSettings
	found, err := s.kv.Get(ctx, domain.KeySettings, &existing)
	if err != nil {
		return err
	}
	if !found {
		if err := s.kv.Set(ctx, domain.KeySettings, domain.DefaultSettings()); err != nil {
			return err
		}
		s.log.Info().Msg("default settings installed")
	}
	for _, key := range []string{domain.KeySessions, domain.KeyCapturedContexts} {
		var anything any
		if ok, _ := s.kv.Get(ctx, key, &anything); !ok {
			if err := s.kv.Set(ctx, key, []any{}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the current settings snapshot.
func (s *SettingsService) Get(ctx context.Context) (domain.UserSettings, error) {
	var settings domain.UserSettings
	found, err := s.kv.Get(ctx, domain.KeySettings, &settings)
	if err != nil {
		return domain.UserSettings{}, err
	}
	if !found {
		return domain.DefaultSettings(), nil
	}
	return settings, nil
}

// Save persists a full settings snapshot, latest wins.
func (s *SettingsService) Save(ctx context.Context, settings domain.UserSettings) error {
	return s.kv.Set(ctx, domain.KeySettings, settings)
}

// MarkPermissionRequested remembers that an optional permission was asked for.
func (s *SettingsService) MarkPermissionRequested(ctx context.Context, name string) error {
	return s.kv.Set(ctx, domain.PermissionRequestedKey(name), true)
}

// PermissionRequested reports whether an optional permission was ever asked for.
func (s *SettingsService) PermissionRequested(ctx context.Context, name string) bool {
	var requested bool
	_, _ = s.kv.Get(ctx, domain.PermissionRequestedKey(name), &requested)
	return requested
}
