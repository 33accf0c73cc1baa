//go:build !windows

package uiohook

import (
	"os"

	"github.com/hammamikhairi/narrator/internal/domain"
)

// titleInspector names the terminal session instead of the element under
// the pointer; libuiohook has no accessibility API.
type titleInspector struct{}

func (titleInspector) LabelAt(domain.Point) (string, error) {
	for _, key := range []string{"WINDOW_TITLE", "TERM_PROGRAM"} {
		if v := os.Getenv(key); v != "" {
			return v, nil
		}
	}
	return "", nil
}
