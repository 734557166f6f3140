package process

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/vkernel/internal/clock"
)

// DefaultPriority is assigned when no priority option is supplied
const DefaultPriority = 5

// Work simulates the workload of a process. It runs once per dispatch with
// the granted quantum (ms). A returned error terminates the process.
type Work func(ctx context.Context, p *Process, quantum int) error

// Process represents a schedulable unit of work
type Process struct {
	PID        int       `json:"pid"`
	PPID       int       `json:"ppid"`
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	StartedAt  time.Time `json:"startTime"`
	state      State
	priority   int
	cpuTime    int
	memoryUsed int64
	reason     string
	exitReason string
	sleepFor   time.Duration
	work       Work
	mu         sync.RWMutex
}

// Info is a point-in-time copy of the process attributes
type Info struct {
	PID        int       `json:"pid"`
	PPID       int       `json:"ppid"`
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	State      State     `json:"state"`
	Priority   int       `json:"priority"`
	CPUTime    int       `json:"cpuTime"`
	MemoryUsed int64     `json:"memoryUsed"`
	StartTime  time.Time `json:"startTime"`
	Reason     string    `json:"reason,omitempty"`
	ExitReason string    `json:"exitReason,omitempty"`
}

// Outcome describes the result of a single dispatch
type Outcome struct {
	State State
	// Err is the swallowed failure of the work callback, if any.
	Err error
}

// New creates a READY process. The caller owns pid assignment.
func New(pid, ppid int, name, owner string, opts ...Option) *Process {
	ret := &Process{
		PID:       pid,
		PPID:      ppid,
		Name:      name,
		Owner:     owner,
		StartedAt: clock.Now(),
		state:     StateReady,
		priority:  DefaultPriority,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run executes the process for one quantum. A failing (or panicking) work
// callback forces the zombie state; the failure is reported in the Outcome
// and never propagated.
func (p *Process) Run(ctx context.Context, quantum int) Outcome {
	p.mu.Lock()
	if p.state == StateZombie {
		p.mu.Unlock()
		return Outcome{State: StateZombie}
	}
	p.state = StateRunning
	p.cpuTime += quantum
	work := p.work
	p.mu.Unlock()

	if work != nil {
		if err := runWork(ctx, work, p, quantum); err != nil {
			p.mu.Lock()
			p.state = StateZombie
			p.exitReason = err.Error()
			p.mu.Unlock()
			return Outcome{State: StateZombie, Err: err}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRunning {
		p.state = StateReady
	}
	return Outcome{State: p.state}
}

func runWork(ctx context.Context, work Work, p *Process, quantum int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("work panicked: %v", r)
		}
	}()
	return work(ctx, p, quantum)
}

// Fork returns a child description inheriting owner and priority.
func (p *Process) Fork(childPID int) *Process {
	p.mu.RLock()
	priority := p.priority
	p.mu.RUnlock()
	return New(childPID, p.PID, p.Name+"_child", p.Owner, WithPriority(priority))
}

// Kill terminates the process unconditionally
func (p *Process) Kill(signal string) {
	if signal == "" {
		signal = "SIGTERM"
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateZombie {
		return
	}
	p.state = StateZombie
	p.exitReason = signal
}

// Sleep puts the process to sleep. Nothing wakes it automatically; see Wake.
func (p *Process) Sleep(duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateZombie {
		return
	}
	p.state = StateSleeping
	p.sleepFor = duration
}

// Wake moves a sleeping process back to READY
func (p *Process) Wake() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateSleeping {
		p.state = StateReady
		p.sleepFor = 0
	}
}

// Block marks the process as waiting, e.g. for I/O
func (p *Process) Block(reason string) {
	if reason == "" {
		reason = "I/O"
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateZombie {
		return
	}
	p.state = StateBlocked
	p.reason = reason
}

// Unblock moves a blocked process to READY; other states are left untouched
func (p *Process) Unblock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateBlocked {
		p.state = StateReady
		p.reason = ""
	}
}

// GetState returns the process state
func (p *Process) GetState() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Priority returns the process priority (lower is more urgent)
func (p *Process) Priority() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.priority
}

// SetPriority updates the process priority
func (p *Process) SetPriority(priority int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.priority = priority
}

// CPUTime returns accumulated CPU time in milliseconds
func (p *Process) CPUTime() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cpuTime
}

// SetMemoryUsed records the number of bytes currently allocated to the process
func (p *Process) SetMemoryUsed(size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.memoryUsed = size
}

// SleepDuration returns the duration requested by the last Sleep call
func (p *Process) SleepDuration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sleepFor
}

// ExitReason returns the kill signal or work failure that terminated the process
func (p *Process) ExitReason() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitReason
}

// Info returns a snapshot of the process
func (p *Process) Info() Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Info{
		PID:        p.PID,
		PPID:       p.PPID,
		Name:       p.Name,
		Owner:      p.Owner,
		State:      p.state,
		Priority:   p.priority,
		CPUTime:    p.cpuTime,
		MemoryUsed: p.memoryUsed,
		StartTime:  p.StartedAt,
		Reason:     p.reason,
		ExitReason: p.exitReason,
	}
}

func (p *Process) String() string {
	info := p.Info()
	return fmt.Sprintf("%d(%s) %s prio=%d cpu=%dms", info.PID, info.Name, info.State, info.Priority, info.CPUTime)
}
