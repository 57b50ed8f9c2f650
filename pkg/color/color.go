package color

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var renderer = lipgloss.NewRenderer(os.Stdout)

var (
	red       = renderer.NewStyle().Foreground(lipgloss.Color("1"))
	green     = renderer.NewStyle().Foreground(lipgloss.Color("2"))
	yellow    = renderer.NewStyle().Foreground(lipgloss.Color("3"))
	blue      = renderer.NewStyle().Foreground(lipgloss.Color("4"))
	cyan      = renderer.NewStyle().Foreground(lipgloss.Color("6"))
	gray      = renderer.NewStyle().Foreground(lipgloss.Color("8"))
	brightRed = renderer.NewStyle().Foreground(lipgloss.Color("9"))
	bold      = renderer.NewStyle().Bold(true)
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		EnableColor(false)
	}
}

// EnableColor switches styled output on or off
func EnableColor(enable bool) {
	if enable {
		renderer.SetColorProfile(termenv.ANSI256)
		return
	}

	renderer.SetColorProfile(termenv.Ascii)
}

func RedText(text string) string       { return red.Render(text) }
func BrightRedText(text string) string { return brightRed.Render(text) }
func GreenText(text string) string     { return green.Render(text) }
func YellowText(text string) string    { return yellow.Render(text) }
func BlueText(text string) string      { return blue.Render(text) }
func CyanText(text string) string      { return cyan.Render(text) }
func GrayText(text string) string      { return gray.Render(text) }
func BoldText(text string) string      { return bold.Render(text) }

// ErrorAt renders an error message with its source position
func ErrorAt(line, col int, message string) string {
	return RedText(message) + " at " + YellowText(fmt.Sprintf("Line: %d, Column %d", line, col))
}
