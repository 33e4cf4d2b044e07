package domain

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// UserSettings is read-write, latest-wins. Every capture consults the current
// snapshot before producing a record.
type UserSettings struct {
	CaptureEnabled       bool     `json:"captureEnabled"`
	AudioEnabled         bool     `json:"audioEnabled"`
	ScreenshotEnabled    bool     `json:"screenshotEnabled"`
	FormTrackingEnabled  bool     `json:"formTrackingEnabled"`
	ExcludedDomains      []string `json:"excludedDomains"`
	Theme                Theme    `json:"theme"`
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	DataRetentionDays    int      `json:"dataRetentionDays"`
}

// DefaultSettings returns the values installed on first run.
func DefaultSettings() UserSettings {
	return UserSettings{
		CaptureEnabled:       true,
		AudioEnabled:         false,
		ScreenshotEnabled:    false,
		FormTrackingEnabled:  false,
		ExcludedDomains:      []string{"chrome://", "chrome-extension://"},
		Theme:                ThemeAuto,
		NotificationsEnabled: true,
		DataRetentionDays:    30,
	}
}

// IsExcluded reports whether a URL falls under one of the excluded prefixes.
func (s UserSettings) IsExcluded(url string) bool {
	for _, prefix := range s.ExcludedDomains {
		if prefix != "" && len(url) >= len(prefix) && url[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
