package vkernel

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/vkernel/logging"
	"github.com/viant/vkernel/service/event"
	"github.com/viant/vkernel/service/memory"
	"github.com/viant/vkernel/service/memory/swap"
	fsqueue "github.com/viant/vkernel/service/messaging/fs"
	mmemory "github.com/viant/vkernel/service/messaging/memory"
	"github.com/viant/vkernel/service/scheduler"
	"github.com/viant/vkernel/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Service wires the kernel with its scheduler, memory manager and event bus
type Service struct {
	config      *Config
	configURL   string
	logger      *slog.Logger
	logOutput   io.Writer
	swapStore   swap.Store
	events      *event.Service
	exporter    sdktrace.SpanExporter
	peripherals []Peripheral
	kernel      *Kernel
}

// New creates a kernel service
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(context.Background()); err != nil {
		return nil, err
	}
	return ret, nil
}

// Kernel returns the kernel
func (s *Service) Kernel() *Kernel {
	return s.kernel
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

func (s *Service) init(ctx context.Context) error {
	if err := s.ensureConfig(ctx); err != nil {
		return err
	}
	var closers []io.Closer
	if s.logger == nil {
		logger, err := logging.New(s.config.Log, s.logOutput)
		if err != nil {
			return err
		}
		s.logger = logger.Logger
		closers = append(closers, logger)
	}
	if err := s.initTracing(); err != nil {
		return err
	}
	if s.events == nil {
		opts := []event.Option{event.WithLogger(s.logger)}
		switch {
		case s.config.Events.JournalURL != "":
			journal, err := fsqueue.NewQueue[event.Event[any]](ctx, afs.New(), fsqueue.DefaultConfig(s.config.Events.JournalURL))
			if err != nil {
				return fmt.Errorf("failed to create event journal: %w", err)
			}
			opts = append(opts, event.WithFeed(journal))
		case s.config.Events.FeedSize > 0:
			feed := mmemory.NewQueue[event.Event[any]](mmemory.Config{QueueBuffer: s.config.Events.FeedSize, DropWhenFull: true})
			opts = append(opts, event.WithFeed(feed))
		}
		s.events = event.New(opts...)
	}
	kernel := &Kernel{
		config:      s.config,
		configURL:   s.configURL,
		logger:      s.logger,
		events:      s.events,
		peripherals: make(map[string]Peripheral),
		closers:     closers,
	}
	mem, err := s.newMemory(ctx)
	if err != nil {
		return err
	}
	kernel.memory = mem
	kernel.scheduler, err = scheduler.New(scheduler.Kind(s.config.Scheduler.Type), s.config.Scheduler.QuantumMs,
		scheduler.WithExitHook(kernel.onExit),
		scheduler.WithLogger(s.logger))
	if err != nil {
		return err
	}
	for _, peripheral := range s.peripherals {
		if err = kernel.Register(ctx, peripheral); err != nil {
			return err
		}
	}
	s.kernel = kernel
	return nil
}

func (s *Service) ensureConfig(ctx context.Context) error {
	if s.config == nil {
		if s.configURL == "" {
			s.config = DefaultConfig()
		} else {
			config, err := LoadConfig(ctx, s.configURL)
			if err != nil {
				return err
			}
			s.config = config
		}
	}
	if s.configURL == "" {
		s.configURL = s.config.Kernel.ConfigURL
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid kernel config: %w", err)
	}
	return nil
}

func (s *Service) initTracing() error {
	name := s.config.Tracing.ServiceName
	if name == "" {
		name = "vkernel"
	}
	switch {
	case s.exporter != nil:
		return tracing.InitWithExporter(name, "", s.exporter)
	case s.config.Tracing.Enabled:
		return tracing.Init(name, "", s.config.Tracing.OutputFile)
	}
	return nil
}

func (s *Service) newMemory(ctx context.Context) (*memory.Manager, error) {
	cfg := s.config.Memory.ManagerConfig()
	store := s.swapStore
	if store == nil && s.config.Memory.SwapEnabled && cfg.SwapSize > 0 {
		var err error
		if path := s.config.Memory.SwapPath; path != "" {
			store, err = swap.NewFileStore(ctx, path, cfg.SwapSize, cfg.PageSize)
		} else {
			store, err = swap.NewMemoryStore(cfg.SwapSize, cfg.PageSize)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create swap store: %w", err)
		}
	}
	opts := []memory.Option{memory.WithLogger(s.logger)}
	if store != nil {
		opts = append(opts, memory.WithSwapStore(store))
	}
	return memory.New(cfg, opts...)
}
