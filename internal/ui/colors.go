package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication. Plain ANSI codes so they follow
// the terminal's own palette.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// GradientColors cycles through the spinner animation.
var GradientColors = []lipgloss.Color{ColorInfo, ColorSecondary, ColorSuccess, ColorSecondary}

// DisableColors switches lipgloss to plain ASCII output (--no-color, NO_COLOR).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorsDisabled reports whether styled output renders as plain text.
func ColorsDisabled() bool {
	return lipgloss.ColorProfile() == termenv.Ascii
}
