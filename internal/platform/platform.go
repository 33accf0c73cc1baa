// Package platform selects the host facilities for the current system.
package platform

import (
	"fmt"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/platform/console"
)

// Host names accepted by Open.
const (
	HostNative  = "native"
	HostConsole = "console"
)

// Open returns the facilities for the named host. "native" is the
// system-wide hook for this operating system.
func Open(name string, log *logger.Logger) (domain.Platform, error) {
	switch name {
	case "", HostNative:
		return native(log), nil
	case HostConsole:
		return console.Platform(log), nil
	default:
		return domain.Platform{}, fmt.Errorf("unknown host %q (want %s or %s)", name, HostNative, HostConsole)
	}
}
