//go:build windows

package platform

import (
	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/platform/win32"
)

func native(log *logger.Logger) domain.Platform {
	return win32.Platform(log)
}
