package memory

import (
	"log/slog"

	"github.com/viant/vkernel/service/memory/swap"
)

// Option customises a Manager
type Option func(m *Manager)

// WithSwapStore sets the swap backing store; without it dirty pages cannot be evicted
func WithSwapStore(store swap.Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}
