package domain

// Priority orders queued announcements. Higher value speaks first.
type Priority int

const (
	PriorityLow    Priority = iota // periodic content-updated notices
	PriorityNormal                 // key echo, window reads
	PriorityHigh                   // input language changes
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}
