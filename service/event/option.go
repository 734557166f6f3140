package event

import (
	"log/slog"

	"github.com/viant/vkernel/service/messaging"
)

// Option customises the event service
type Option func(s *Service)

// WithFeed mirrors every emitted event into queue for asynchronous consumers
func WithFeed(queue messaging.Queue[Event[any]]) Option {
	return func(s *Service) {
		s.feed = NewPublisher[any](queue)
	}
}

// WithLogger sets the logger used to report handler failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
