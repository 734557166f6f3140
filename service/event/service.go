package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/vkernel/service/messaging"
)

// ErrNoFeed is returned by Listen when the service has no feed queue
var ErrNoFeed = errors.New("event: feed not configured")

// Handler reacts to an emitted event. A failing or panicking handler is
// logged and never affects other handlers or the emitter.
type Handler func(ctx context.Context, event *Event[any]) error

type subscription struct {
	id      uint64
	handler Handler
}

// Service dispatches events synchronously to subscribers in subscription
// order, and optionally to a feed queue.
type Service struct {
	mux      sync.RWMutex
	handlers map[string][]subscription
	nextID   uint64
	feed     *Publisher[any]
	logger   *slog.Logger
}

// New creates an event service
func New(opts ...Option) *Service {
	ret := &Service{handlers: make(map[string][]subscription)}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}

// Subscribe registers handler for eventType and returns a function removing it
func (s *Service) Subscribe(eventType string, handler Handler) func() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.nextID++
	id := s.nextID
	s.handlers[eventType] = append(s.handlers[eventType], subscription{id: id, handler: handler})
	return func() {
		s.mux.Lock()
		defer s.mux.Unlock()
		subs := s.handlers[eventType]
		for i, sub := range subs {
			if sub.id == id {
				s.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers a new event to every subscriber of eventType and to the feed
func (s *Service) Emit(ctx context.Context, eventType string, data any) *Event[any] {
	event := NewEvent[any](eventType, data)
	s.mux.RLock()
	subs := s.handlers[eventType]
	s.mux.RUnlock()
	for _, sub := range subs {
		if err := s.invoke(ctx, sub.handler, event); err != nil {
			s.logger.Error("event handler failed", "event", eventType, "error", err)
		}
	}
	if s.feed != nil {
		if err := s.feed.Publish(ctx, event); err != nil {
			if errors.Is(err, messaging.ErrQueueFull) {
				s.logger.Debug("event feed full, dropping event", "event", eventType)
			} else {
				s.logger.Warn("failed to publish event", "event", eventType, "error", err)
			}
		}
	}
	return event
}

func (s *Service) invoke(ctx context.Context, handler Handler, event *Event[any]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, event)
}

// Listen starts a listener draining the feed into handler
func (s *Service) Listen(ctx context.Context, handler func(*Event[any])) (*Listener[any], error) {
	if s.feed == nil {
		return nil, ErrNoFeed
	}
	listener := NewListener[any](s.feed, handler, s.logger)
	listener.Start(ctx)
	return listener, nil
}
