//go:build !windows

package platform

import (
	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/platform/uiohook"
)

func native(log *logger.Logger) domain.Platform {
	return uiohook.Platform(log)
}
