package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner art centred for the current terminal.
func RenderBanner() string {
	return renderBanner(termWidth())
}

// renderBanner centres the art as one block so its lines stay aligned.
// Art wider than width is left as is.
func renderBanner(width int) string {
	art := strings.TrimRight(bannerRaw, "\n")
	if art == "" {
		return ""
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, BannerStyle.Render(art)) + "\n"
}

func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
