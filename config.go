package vkernel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/vkernel/internal/env"
	"github.com/viant/vkernel/logging"
	"github.com/viant/vkernel/service/memory"
	"github.com/viant/vkernel/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the kernel configuration.
// Missing fields keep their DefaultConfig values when loaded.
type Config struct {
	Kernel    KernelConfig    `json:"kernel" yaml:"kernel"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Memory    MemoryConfig    `json:"memory" yaml:"memory"`
	Log       logging.Config  `json:"log" yaml:"log"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
	Events    EventsConfig    `json:"events" yaml:"events"`
}

type KernelConfig struct {
	TickIntervalMs int `json:"tickIntervalMs" yaml:"tickIntervalMs"`
	// ConfigURL, when set, is where Shutdown persists the configuration
	ConfigURL string `json:"configURL,omitempty" yaml:"configURL,omitempty"`
}

type SchedulerConfig struct {
	Type      string `json:"type" yaml:"type"`
	QuantumMs int    `json:"quantumMs" yaml:"quantumMs"`
}

type MemoryConfig struct {
	MemorySizeMB int  `json:"memorySizeMB" yaml:"memorySizeMB"`
	PageSizeKB   int  `json:"pageSizeKB" yaml:"pageSizeKB"`
	SwapSizeMB   int  `json:"swapSizeMB" yaml:"swapSizeMB"`
	SwapEnabled  bool `json:"swapEnabled" yaml:"swapEnabled"`
	// SwapPath selects a swap file; empty keeps swap in process memory
	SwapPath string `json:"swapPath,omitempty" yaml:"swapPath,omitempty"`
}

type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	OutputFile  string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

type EventsConfig struct {
	// FeedSize enables the asynchronous event feed with the given capacity
	FeedSize int `json:"feedSize" yaml:"feedSize"`
	// JournalURL persists the feed under an afs URL instead of memory
	JournalURL string `json:"journalURL,omitempty" yaml:"journalURL,omitempty"`
}

// DefaultConfig returns the default kernel configuration
func DefaultConfig() *Config {
	return &Config{
		Kernel:    KernelConfig{TickIntervalMs: 100},
		Scheduler: SchedulerConfig{Type: string(scheduler.KindRoundRobin), QuantumMs: scheduler.DefaultQuantum},
		Memory: MemoryConfig{
			MemorySizeMB: 64,
			PageSizeKB:   4,
			SwapSizeMB:   128,
			SwapEnabled:  true,
		},
		Log:     logging.Config{Level: "INFO"},
		Tracing: TracingConfig{ServiceName: "vkernel"},
	}
}

// ManagerConfig converts the memory settings into bytes
func (c MemoryConfig) ManagerConfig() memory.Config {
	ret := memory.DefaultConfig()
	ret.PhysicalSize = int64(c.MemorySizeMB) * memory.MiB
	ret.PageSize = c.PageSizeKB * memory.KiB
	ret.SwapSize = int64(c.SwapSizeMB) * memory.MiB
	return ret
}

// Validate returns aggregated error describing invalid settings or nil
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Kernel.TickIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("kernel.tickIntervalMs must be > 0"))
	}
	switch scheduler.Kind(c.Scheduler.Type) {
	case scheduler.KindRoundRobin, scheduler.KindPriority, "":
	default:
		errs = append(errs, fmt.Errorf("scheduler.type %q is not supported", c.Scheduler.Type))
	}
	if c.Scheduler.QuantumMs <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.quantumMs must be > 0"))
	}
	if c.Memory.MemorySizeMB <= 0 {
		errs = append(errs, fmt.Errorf("memory.memorySizeMB must be > 0"))
	}
	if c.Memory.PageSizeKB <= 0 {
		errs = append(errs, fmt.Errorf("memory.pageSizeKB must be > 0"))
	}
	if c.Memory.SwapSizeMB < 0 {
		errs = append(errs, fmt.Errorf("memory.swapSizeMB must be >= 0"))
	}
	if c.Events.FeedSize < 0 {
		errs = append(errs, fmt.Errorf("events.feedSize must be >= 0"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfig reads the configuration from URL. A missing resource yields
// DefaultConfig. ${env.KEY} references are expanded before decoding; .json
// resources are decoded as JSON, anything else as YAML.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	ret := DefaultConfig()
	fs := afs.New()
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check config %v: %w", URL, err)
	}
	if !exists {
		return ret, nil
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	data = []byte(env.ExpandOS(string(data)))
	if isJSON(URL) {
		err = json.Unmarshal(data, ret)
	} else {
		err = yaml.Unmarshal(data, ret)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	return ret, ret.Validate()
}

// SaveConfig writes the configuration to URL in the format implied by its extension
func (c *Config) SaveConfig(ctx context.Context, URL string) error {
	var data []byte
	var err error
	if isJSON(URL) {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fs := afs.New()
	parent, _ := url.Split(URL, file.Scheme)
	if exists, _ := fs.Exists(ctx, parent); !exists {
		if err = fs.Create(ctx, parent, file.DefaultDirOsMode, true); err != nil {
			return fmt.Errorf("failed to create config directory %v: %w", parent, err)
		}
	}
	if err = fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save config %v: %w", URL, err)
	}
	return nil
}

func isJSON(URL string) bool {
	return strings.HasSuffix(strings.ToLower(URL), ".json")
}
