package locale

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/hammamikhairi/narrator/internal/domain"
)

// DisplayName renders l for logs, e.g. "Korean (ko-KR:4120412)". Values
// that carry no parsable tag are returned as is.
func DisplayName(l domain.Locale) string {
	if l == "" {
		return "unknown"
	}
	tag, err := language.Parse(l.Tag())
	if err != nil {
		return string(l)
	}
	base, _ := tag.Base()
	name := display.English.Languages().Name(base)
	if name == "" {
		return string(l)
	}
	return fmt.Sprintf("%s (%s)", name, l)
}

// FromPOSIX converts a POSIX locale name such as "ko_KR.UTF-8" into a
// Locale carrying its BCP 47 tag. "C", "POSIX" and unparsable names yield "".
func FromPOSIX(name string) domain.Locale {
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "C" || name == "POSIX" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return ""
	}
	return domain.Locale(tag.String())
}

// EnvSource reads the input locale from the process environment, checking
// LC_ALL, LC_CTYPE and LANG in that order. Hosts without a per-window
// keyboard layout query use it.
type EnvSource struct{}

// Current returns the locale named by the environment.
func (EnvSource) Current() (domain.Locale, error) {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return FromPOSIX(v), nil
		}
	}
	return "", nil
}
