package speech

import (
	"context"

	"github.com/hammamikhairi/narrator/internal/logger"
)

// Compile-time interface check.
var _ Engine = (*NoOp)(nil)

// NoOp is an engine that only logs what it would say. Used with
// --engine none and in environments without audio.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op engine.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

func (n *NoOp) Name() string { return string(EngineNone) }

// Submit does nothing.
func (n *NoOp) Submit(_ context.Context, req Request) error {
	n.log.Debug("speech no-op: would say %q (rate=%d, volume=%d)", req.Text, req.Rate, req.Volume)
	return nil
}

func (n *NoOp) Close() error { return nil }
