package vkernel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/viant/vkernel/internal/clock"
	"github.com/viant/vkernel/internal/idgen"
	"github.com/viant/vkernel/runtime/process"
	"github.com/viant/vkernel/service/event"
	"github.com/viant/vkernel/service/memory"
	"github.com/viant/vkernel/service/scheduler"
	"github.com/viant/vkernel/tracing"
)

// Kernel drives the scheduler with a tick loop and releases memory of
// terminated processes.
type Kernel struct {
	config      *Config
	configURL   string
	logger      *slog.Logger
	scheduler   scheduler.Scheduler
	memory      *memory.Manager
	events      *event.Service
	mux         sync.RWMutex
	running     bool
	bootID      string
	bootTime    time.Time
	ticks       uint64
	nextPID     int
	peripherals map[string]Peripheral
	closers     []io.Closer
}

// Info is a kernel status snapshot
type Info struct {
	BootID         string             `json:"bootId,omitempty"`
	UptimeMs       int64              `json:"uptimeMs"`
	Ticks          uint64             `json:"tickCount"`
	Running        bool               `json:"running"`
	TotalProcesses int                `json:"totalProcesses"`
	Processes      []process.Info     `json:"processes"`
	Scheduler      scheduler.Stats    `json:"scheduler"`
	Fairness       scheduler.Fairness `json:"fairness"`
	Memory         memory.Info        `json:"memory"`
	Peripherals    []string           `json:"peripherals"`
}

// Scheduler returns the scheduler
func (k *Kernel) Scheduler() scheduler.Scheduler {
	return k.scheduler
}

// Memory returns the memory manager
func (k *Kernel) Memory() *memory.Manager {
	return k.memory
}

// Events returns the event service
func (k *Kernel) Events() *event.Service {
	return k.events
}

// Boot starts the kernel
func (k *Kernel) Boot(ctx context.Context) error {
	k.mux.Lock()
	if k.running {
		k.mux.Unlock()
		return ErrAlreadyRunning
	}
	k.running = true
	k.bootTime = clock.Now()
	k.bootID = idgen.New()
	bootID := k.bootID
	k.mux.Unlock()

	k.logger.Info("kernel booted", "bootId", bootID, "scheduler", k.scheduler.Kind(), "quantumMs", k.scheduler.Quantum())
	k.events.Emit(ctx, EventBoot, BootData{BootID: bootID})
	return nil
}

// Running reports whether the kernel is booted
func (k *Kernel) Running() bool {
	k.mux.RLock()
	defer k.mux.RUnlock()
	return k.running
}

// Tick advances the simulation by one scheduler quantum
func (k *Kernel) Tick(ctx context.Context) (err error) {
	k.mux.Lock()
	if !k.running {
		k.mux.Unlock()
		return ErrNotRunning
	}
	k.ticks++
	tick := k.ticks
	k.mux.Unlock()

	ctx, span := tracing.StartSpan(ctx, "kernel.tick", "INTERNAL")
	span.WithAttributes(map[string]string{"tick": strconv.FormatUint(tick, 10)})
	defer func() { tracing.EndSpan(span, err) }()

	k.scheduler.Tick(ctx)
	for _, peripheral := range k.tickers() {
		if tickErr := peripheral.OnTick(ctx, tick); tickErr != nil {
			k.logger.Warn("peripheral tick failed", "tick", tick, "error", tickErr)
		}
	}
	k.events.Emit(ctx, EventTick, TickData{Tick: tick})
	return nil
}

func (k *Kernel) tickers() []Ticker {
	k.mux.RLock()
	defer k.mux.RUnlock()
	var ret []Ticker
	for _, name := range k.peripheralNames() {
		if ticker, ok := k.peripherals[name].(Ticker); ok {
			ret = append(ret, ticker)
		}
	}
	return ret
}

// Run ticks every interval (the configured tick interval when zero) until
// ctx is done or the kernel is shut down.
func (k *Kernel) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Duration(k.config.Kernel.TickIntervalMs) * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := k.Tick(ctx); err != nil {
				if errors.Is(err, ErrNotRunning) {
					return nil
				}
				return err
			}
		}
	}
}

// Shutdown stops the kernel, persists the configuration when a config URL is
// set and closes the swap store.
func (k *Kernel) Shutdown(ctx context.Context) error {
	k.mux.Lock()
	if !k.running {
		k.mux.Unlock()
		return ErrNotRunning
	}
	k.running = false
	ticks := k.ticks
	k.mux.Unlock()

	k.events.Emit(ctx, EventShutdown, TickData{Tick: ticks})
	var errs []error
	if k.configURL != "" {
		if err := k.config.SaveConfig(ctx, k.configURL); err != nil {
			errs = append(errs, err)
		}
	}
	if err := k.memory.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close swap: %w", err))
	}
	k.logger.Info("kernel shut down", "ticks", ticks)
	for _, closer := range k.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Uptime returns the time since boot, zero when not running
func (k *Kernel) Uptime() time.Duration {
	k.mux.RLock()
	defer k.mux.RUnlock()
	if !k.running {
		return 0
	}
	return clock.Since(k.bootTime)
}

// Spawn creates a process with the next free pid and schedules it
func (k *Kernel) Spawn(name, owner string, opts ...process.Option) (*process.Process, error) {
	pid := k.allocatePID()
	p := process.New(pid, 0, name, owner, opts...)
	if err := k.scheduler.Add(p); err != nil {
		return nil, err
	}
	k.logger.Debug("process spawned", "pid", pid, "name", name, "owner", owner)
	return p, nil
}

// Fork schedules a child of parentPID
func (k *Kernel) Fork(parentPID int) (*process.Process, error) {
	parent, ok := k.scheduler.Get(parentPID)
	if !ok {
		return nil, fmt.Errorf("%w: pid %v", ErrNotFound, parentPID)
	}
	child := parent.Fork(k.allocatePID())
	if err := k.scheduler.Add(child); err != nil {
		return nil, err
	}
	return child, nil
}

func (k *Kernel) allocatePID() int {
	k.mux.Lock()
	defer k.mux.Unlock()
	k.nextPID++
	for {
		if _, taken := k.scheduler.Get(k.nextPID); !taken {
			return k.nextPID
		}
		k.nextPID++
	}
}

// Kill terminates pid; the scheduler drops it at its next tick
func (k *Kernel) Kill(pid int, signal string) error {
	p, ok := k.scheduler.Get(pid)
	if !ok {
		return fmt.Errorf("%w: pid %v", ErrNotFound, pid)
	}
	p.Kill(signal)
	return nil
}

// SetPriority changes the priority of pid, re-sorting the ready queue when supported
func (k *Kernel) SetPriority(pid, priority int) error {
	if prioritizer, ok := k.scheduler.(scheduler.Prioritizer); ok {
		if err := prioritizer.SetPriority(pid, priority); err != nil {
			return fmt.Errorf("%w: pid %v", ErrNotFound, pid)
		}
		return nil
	}
	p, ok := k.scheduler.Get(pid)
	if !ok {
		return fmt.Errorf("%w: pid %v", ErrNotFound, pid)
	}
	p.SetPriority(priority)
	return nil
}

// Remove drops pid from the scheduler immediately and releases its memory
func (k *Kernel) Remove(ctx context.Context, pid int) bool {
	p, ok := k.scheduler.Get(pid)
	if !ok || !k.scheduler.Remove(pid) {
		return false
	}
	k.memory.CleanupProcess(pid)
	k.emitExit(ctx, p)
	return true
}

// onExit is the scheduler exit hook
func (k *Kernel) onExit(p *process.Process) {
	k.memory.CleanupProcess(p.PID)
	k.emitExit(context.Background(), p)
}

func (k *Kernel) emitExit(ctx context.Context, p *process.Process) {
	info := p.Info()
	k.logger.Info("process exited", "pid", info.PID, "name", info.Name, "reason", info.ExitReason, "cpuTime", info.CPUTime)
	k.events.Emit(ctx, EventProcessExit, ExitData{PID: info.PID, Name: info.Name, ExitReason: info.ExitReason, CPUTime: info.CPUTime})
}

// Register adds a named peripheral
func (k *Kernel) Register(ctx context.Context, peripheral Peripheral) error {
	name := peripheral.Name()
	k.mux.Lock()
	if _, ok := k.peripherals[name]; ok {
		k.mux.Unlock()
		return fmt.Errorf("%w: %v", ErrDuplicateService, name)
	}
	k.peripherals[name] = peripheral
	k.mux.Unlock()
	k.logger.Debug("service registered", "name", name)
	k.events.Emit(ctx, EventServiceRegistered, ServiceData{Name: name})
	return nil
}

// Peripheral returns a registered peripheral by name
func (k *Kernel) Peripheral(name string) (Peripheral, bool) {
	k.mux.RLock()
	defer k.mux.RUnlock()
	ret, ok := k.peripherals[name]
	return ret, ok
}

func (k *Kernel) peripheralNames() []string {
	ret := make([]string, 0, len(k.peripherals))
	for name := range k.peripherals {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Subscribe registers an event handler and returns a function removing it
func (k *Kernel) Subscribe(eventType string, handler event.Handler) func() {
	return k.events.Subscribe(eventType, handler)
}

// SystemInfo returns a kernel status snapshot
func (k *Kernel) SystemInfo() *Info {
	procs := k.scheduler.List()
	infos := make([]process.Info, 0, len(procs))
	for _, p := range procs {
		if memMap, err := k.memory.MemoryMap(p.PID); err == nil {
			p.SetMemoryUsed(memMap.TotalAllocated)
		}
		infos = append(infos, p.Info())
	}
	ret := &Info{
		UptimeMs:       k.Uptime().Milliseconds(),
		TotalProcesses: len(procs),
		Processes:      infos,
		Scheduler:      k.scheduler.Stats(),
		Fairness:       scheduler.FairnessOf(procs),
		Memory:         k.memory.SystemInfo(),
	}
	k.mux.RLock()
	ret.BootID = k.bootID
	ret.Ticks = k.ticks
	ret.Running = k.running
	ret.Peripherals = k.peripheralNames()
	k.mux.RUnlock()
	return ret
}
