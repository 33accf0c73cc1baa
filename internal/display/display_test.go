package display

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRenderBannerCentres(t *testing.T) {
	art := strings.SplitN(bannerRaw, "\n", 2)[0]
	narrow := strings.SplitN(renderBanner(10), "\n", 2)[0]
	wide := strings.SplitN(renderBanner(200), "\n", 2)[0]

	if !strings.HasPrefix(narrow, art) {
		t.Errorf("narrow banner padded: %q", narrow)
	}
	pad := len(wide) - len(strings.TrimLeft(wide, " "))
	if pad < 50 {
		t.Errorf("wide banner left pad = %d, want it centred: %q", pad, wide)
	}
	if got := strings.Count(renderBanner(200), "\n"); got != strings.Count(strings.TrimRight(bannerRaw, "\n"), "\n")+1 {
		t.Errorf("banner has %d lines", got)
	}
}

func TestFormatEchoQuotesText(t *testing.T) {
	at := time.Date(2024, 1, 2, 9, 5, 7, 0, time.UTC)
	got := FormatEcho(at, "current window: Notepad")
	if !strings.Contains(got, "09:05:07") {
		t.Errorf("FormatEcho() = %q, want timestamp", got)
	}
	if !strings.Contains(got, `"current window: Notepad"`) {
		t.Errorf("FormatEcho() = %q, want quoted text", got)
	}
}

func TestEchoWritesOneLinePerPhrase(t *testing.T) {
	var buf bytes.Buffer
	echo := Echo(&buf)

	var wg sync.WaitGroup
	for _, s := range []string{"a", "enter", "space"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			echo(s)
		}()
	}
	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Errorf("wrote %d lines, want 3: %q", n, buf.String())
	}
}
