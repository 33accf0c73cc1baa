package domain

import "strings"

// Locale identifies the active keyboard input language and layout. Values
// are opaque and compared by equality only; the part before the first ':'
// is a BCP 47 tag when the host knows one.
type Locale string

// Tag returns the language tag portion of l.
func (l Locale) Tag() string {
	s := string(l)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}
