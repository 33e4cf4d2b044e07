package privacy

import (
	"regexp"
	"strings"
)

// Sentinels stored in place of redacted field values.
const (
	Filtered    = "[FILTERED]"
	PIIFiltered = "[PII_FILTERED]"
)

// MaxValueLen caps persisted plain-text field values.
const MaxValueLen = 500

var sensitiveFields = []string{
	"password", "pwd", "pass", "passwd",
	"credit", "card", "cvv",
	"ssn", "tax", "account", "routing", "pin",
}

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe      = regexp.MustCompile(`^[\d\s\-+()]+$`)
	ssnRe        = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)
	creditCardRe = regexp.MustCompile(`^\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}$`)
	nonDigitRe   = regexp.MustCompile(`\D`)
	whitespaceRe = regexp.MustCompile(`\s`)
)

// FieldMeta carries the HTML metadata that decides field sensitivity.
type FieldMeta struct {
	Name         string
	ID           string
	Type         string
	Autocomplete string
}

// IsSensitive reports whether a field must never have its value persisted.
// Password inputs are always sensitive; otherwise name, id and autocomplete
// are checked for sensitive substrings.
func IsSensitive(m FieldMeta) bool {
	if strings.ToLower(m.Type) == "password" {
		return true
	}
	name := strings.ToLower(m.Name)
	id := strings.ToLower(m.ID)
	autocomplete := strings.ToLower(m.Autocomplete)
	for _, s := range sensitiveFields {
		if strings.Contains(name, s) || strings.Contains(id, s) || strings.Contains(autocomplete, s) {
			return true
		}
	}
	return false
}

// ContainsPII reports whether a raw value matches one of the PII patterns
// (email, phone, SSN, credit card).
func ContainsPII(value string) bool {
	if value == "" {
		return false
	}
	if emailRe.MatchString(value) {
		return true
	}
	if len(nonDigitRe.ReplaceAllString(value, "")) >= 10 && phoneRe.MatchString(value) {
		return true
	}
	if ssnRe.MatchString(value) {
		return true
	}
	if creditCardRe.MatchString(whitespaceRe.ReplaceAllString(value, "")) {
		return true
	}
	return false
}

// Truncate limits a value to MaxValueLen characters, appending "..." when cut.
func Truncate(value string) string {
	runes := []rune(value)
	if len(runes) <= MaxValueLen {
		return value
	}
	return string(runes[:MaxValueLen]) + "..."
}

// FilterValue runs the full pipeline over one field: sensitivity check, then
// PII patterns, then truncation.
func FilterValue(m FieldMeta, value string) string {
	if IsSensitive(m) {
		return Filtered
	}
	if ContainsPII(value) {
		return PIIFiltered
	}
	return Truncate(value)
}
