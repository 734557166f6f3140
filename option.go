package vkernel

import (
	"io"
	"log/slog"

	"github.com/viant/vkernel/service/event"
	"github.com/viant/vkernel/service/memory/swap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the kernel service
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithConfigURL loads the configuration from URL; Shutdown saves it back
func WithConfigURL(URL string) Option {
	return func(s *Service) {
		s.configURL = URL
	}
}

// WithLogger sets the logger, overriding the log configuration
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLogOutput redirects the configured logger away from stdout
func WithLogOutput(w io.Writer) Option {
	return func(s *Service) {
		s.logOutput = w
	}
}

// WithSwapStore sets the swap store, overriding the memory swap settings
func WithSwapStore(store swap.Store) Option {
	return func(s *Service) {
		s.swapStore = store
	}
}

// WithEventService sets the event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.events = service
	}
}

// WithPeripherals registers peripherals at construction
func WithPeripherals(peripherals ...Peripheral) Option {
	return func(s *Service) {
		s.peripherals = append(s.peripherals, peripherals...)
	}
}

// WithTracingExporter configures OpenTelemetry with a custom exporter. The
// first successful initialisation wins.
func WithTracingExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.exporter = exporter
	}
}
