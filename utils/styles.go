package utils

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	GoodColor   = lipgloss.Color("#228B22") // Forest green
	InfoColor   = lipgloss.Color("#4682B4") // Steel blue
	MutedColor  = lipgloss.Color("#888888") // Medium gray
	BorderColor = lipgloss.Color("#666666") // Dark gray
)

var (
	InfoStyle  = lipgloss.NewStyle().Foreground(InfoColor)
	MutedStyle = lipgloss.NewStyle().Foreground(MutedColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

// TruncateString truncates a string to fit within maxWidth, preferring an
// ellipsis over a hard cut so a truncated thread name still reads as
// truncated rather than as a different, shorter name.
func TruncateString(s string, maxWidth int) string {
	if len(s) <= maxWidth {
		return s
	}
	if maxWidth < 4 {
		return strings.Repeat(".", maxWidth)
	}
	return s[:maxWidth-3] + "..."
}
