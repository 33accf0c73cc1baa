package speech

import "github.com/hammamikhairi/narrator/internal/domain"

// Priority aliases the shared priority type so callers inside the package
// can write speech.PriorityLow and friends.
type Priority = domain.Priority

const (
	PriorityLow    = domain.PriorityLow
	PriorityNormal = domain.PriorityNormal
	PriorityHigh   = domain.PriorityHigh
)

func LineReady() string {
	return "screen reader ready"
}

// LineWindow is spoken for the window-read key.
func LineWindow(label string) string {
	return "current window: " + label
}

// LineNoInformation substitutes for an element without a label.
func LineNoInformation() string {
	return "no information"
}

func LineLocaleChanged() string {
	return "input language changed"
}

func LineContentUpdated() string {
	return "screen content updated"
}
