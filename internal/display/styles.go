// Package display renders the startup banner and the optional echo of
// spoken phrases on the terminal.
package display

import "github.com/charmbracelet/lipgloss"

var (
	// BannerStyle is muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// HintStyle dims secondary lines under the banner.
	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	// Soft sky blue for spoken text.
	spokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))
)
