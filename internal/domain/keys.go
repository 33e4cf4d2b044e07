package domain

import (
	"time"

	"github.com/google/uuid"
)

// Well-known keys in the local store.
const (
	KeySettings         = "settings"
	KeySessions         = "sessions"
	KeyScreenshots      = "screenshots"
	KeyAudioCaptures    = "audioCaptures"
	KeyFormSubmissions  = "formSubmissions"
	KeyCapturedContexts = "capturedContexts"
)

// ScreenshotTriggerKey returns the sibling key a screenshot's trigger tag is
// stored under.
func ScreenshotTriggerKey(id string) string { return "screenshot_trigger_" + id }

// PermissionRequestedKey tracks that an optional permission was asked for.
func PermissionRequestedKey(name string) string { return "permission_" + name + "_requested" }

// NewID mints a prefixed record id, e.g. "tab_4f9c…".
func NewID(prefix string) string { return prefix + "_" + uuid.NewString() }

// NowMillis converts a wall-clock instant to the integer-millisecond epoch
// representation every record timestamp uses.
func NowMillis(t time.Time) int64 { return t.UnixMilli() }
