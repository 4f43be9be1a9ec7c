package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Highlights, paths, interactive elements
// - Muted (gray): Secondary info, line numbers
// - No colored success/error/warning - use unicode symbols only

const defaultAccentColor = "#A78BFA"

var (
	// Accent style for file paths, object references, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccentColor))

	// Muted style for secondary info, hints, line numbers
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccentColor)).Bold(true)

	// accentColor is the user-configured override, or "" to use the default.
	accentColor string
)

// ConfigureTheme applies a user-supplied accent color override (an ANSI
// 256-color code or a #rrggbb/#rgb hex string) to Accent and AccentBold.
// "none", "off", "default", or an empty string restores the built-in
// accent color. An unrecognized value also restores the built-in accent.
func ConfigureTheme(raw string) {
	normalized, ok := normalizeAccentColor(raw)
	if !ok {
		accentColor = ""
		Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccentColor))
		AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccentColor)).Bold(true)
		return
	}
	accentColor = normalized
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(normalized))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(normalized)).Bold(true)
}

// AccentColor returns the currently configured accent color override, if
// any, for callers (such as a markdown or syntax renderer) that need the
// raw color string rather than a lipgloss.Style.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}

// normalizeAccentColor validates and canonicalizes a user-supplied accent
// color: an ANSI code in [0,255], or a #rgb/#rrggbb hex string. Disabling
// keywords and anything else unrecognized return ok=false.
func normalizeAccentColor(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "none", "off", "default":
		return "", false
	}

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		switch len(hex) {
		case 3:
			expanded := make([]byte, 0, 6)
			for i := 0; i < 3; i++ {
				expanded = append(expanded, hex[i], hex[i])
			}
			hex = string(expanded)
			fallthrough
		case 6:
			if !isHex(hex) {
				return "", false
			}
			return "#" + strings.ToLower(hex), true
		default:
			return "", false
		}
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n <= 255 {
			return strconv.Itoa(n), true
		}
		return "", false
	}

	return "", false
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
