//go:build !windows

package speech

import (
	"fmt"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

// NewSAPIEngine is only available on Windows.
func NewSAPIEngine(_ string, _ *logger.Logger) (Engine, error) {
	return nil, fmt.Errorf("sapi: %w", domain.ErrUnsupported)
}
