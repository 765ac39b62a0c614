package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#1E90FF") // meter lights blue
	alertColor   = lipgloss.Color("#FF0000") // clip red
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(alertColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("envymix"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintDevice prints the card the panel opened
func PrintDevice(device string, simulated bool) {
	kind := "ALSA"
	if simulated {
		kind = "simulated"
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n", KeyStyle.Render("Card:"), ValueStyle.Render(device), KeyStyle.Render("("+kind+")"))
}

// PrintMIDI prints the port mixer changes are echoed to
func PrintMIDI(port string, channel int) {
	fmt.Fprintf(os.Stderr, "%s %s %s\n", KeyStyle.Render("MIDI:"), ValueStyle.Render(port), KeyStyle.Render(fmt.Sprintf("(channel %d)", channel)))
}

// PrintWarning prints a non-fatal problem
func PrintWarning(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", KeyStyle.Render("Warning:"), message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
