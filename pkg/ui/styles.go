package ui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors for light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorFocusBg = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
)

// Styles used by the explorer.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	statusStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	noticeStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Underline(true)

	focusStyle = lipgloss.NewStyle().
			Background(ColorFocusBg).
			Foreground(ColorText)

	onStyle  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	offStyle = lipgloss.NewStyle().Foreground(ColorMuted).Strikethrough(true)
)

// swatch draws a block in the entity's chart color.
func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
}
