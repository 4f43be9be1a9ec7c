// Package dates provides date/datetime parsing, validation, and
// relative-keyword resolution. The template resolver's `{{today}}`,
// `{{yesterday}}`, and `{{tomorrow}}` placeholders resolve through
// ResolveRelativeDateKeyword; DateLayout is the canonical `time.Format`
// layout used anywhere a resolved date needs to render back to text.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the layout the template resolver renders relative-date
// placeholders with. DatetimeLayout and DatetimeSecondsLayout name the two
// non-RFC3339 forms ParseDatetime accepts; nothing renders with them.
const (
	DateLayout            = "2006-01-02"
	DatetimeLayout        = "2006-01-02T15:04"
	DatetimeSecondsLayout = "2006-01-02T15:04:05"
)

var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !IsValidDate(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.Parse("2006-01-02", s)
}

// IsValidDatetime checks if a string is a valid datetime.
//
// Accepted formats (preserving current behavior):
// - RFC3339 (e.g. 2025-01-01T10:30:00Z, 2025-06-15T14:00:00+05:00)
// - YYYY-MM-DDTHH:MM
// - YYYY-MM-DDTHH:MM:SS
func IsValidDatetime(s string) bool {
	_, err := ParseDatetime(s)
	return err == nil
}

// ParseDatetime parses a datetime in one of the accepted formats.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid datetime: empty")
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", s)
}

