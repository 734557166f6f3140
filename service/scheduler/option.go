package scheduler

import (
	"log/slog"

	"github.com/viant/vkernel/runtime/process"
)

// ExitHook is invoked after the scheduler drops a zombie process
type ExitHook func(p *process.Process)

// Option customises a scheduler
type Option func(c *config)

type config struct {
	quantum int
	onExit  ExitHook
	logger  *slog.Logger
}

// WithExitHook registers a callback invoked, outside the scheduler lock, for
// every process discarded because it became a zombie.
func WithExitHook(hook ExitHook) Option {
	return func(c *config) {
		c.onExit = hook
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(quantum int, opts []Option) config {
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	ret := config{quantum: quantum, logger: slog.Default()}
	for _, opt := range opts {
		opt(&ret)
	}
	return ret
}
