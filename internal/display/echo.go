package display

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Echo returns a function that prints each spoken phrase to w, one styled
// line per phrase. It is safe for concurrent use.
func Echo(w io.Writer) func(text string) {
	var mu sync.Mutex
	return func(text string) {
		line := FormatEcho(time.Now(), text)
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, line)
	}
}

// FormatEcho renders one echo line.
func FormatEcho(at time.Time, text string) string {
	return timeStyle.Render(at.Format("15:04:05")) + "  " + spokenStyle.Render(fmt.Sprintf("%q", text))
}
