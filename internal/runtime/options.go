package runtime

import (
	"log/slog"

	"github.com/aretw0/turing/pkg/domain"
)

// Option configures a Machine.
type Option func(*Machine)

// WithHooks registers the state/tape change callbacks.
func WithHooks(hooks domain.MachineHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithLogger sets the structured logger used for step tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStepLimit bounds the number of steps Run may execute. Zero means unbounded.
func WithStepLimit(limit int) Option {
	return func(m *Machine) {
		m.stepLimit = limit
	}
}
