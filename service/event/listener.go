package event

import (
	"context"
	"log/slog"
	"sync"
)

// Listener drains a publisher in a background goroutine
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	logger    *slog.Logger
	cancel    context.CancelFunc
	done      sync.WaitGroup
}

// NewListener creates a listener; call Start to begin consuming
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T]), logger *slog.Logger) *Listener[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener[T]{publisher: publisher, handler: handler, logger: logger}
}

// Start consumes events until ctx is done or Stop is called
func (l *Listener[T]) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.done.Add(1)
	go func() {
		defer l.done.Done()
		for {
			event, err := l.publisher.Consume(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				l.logger.Warn("failed to consume event", "error", err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}

// Stop cancels the listener and waits for the consuming goroutine to exit
func (l *Listener[T]) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.done.Wait()
}
