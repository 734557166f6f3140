package scheduler

import (
	"context"
	"fmt"

	"github.com/viant/vkernel/runtime/process"
)

// DefaultQuantum is the quantum (ms) used when none is configured
const DefaultQuantum = 100

// Kind names a scheduling strategy
type Kind string

const (
	KindRoundRobin Kind = "round_robin"
	KindPriority   Kind = "priority"
)

// Stats describes scheduler queues
type Stats struct {
	Kind      Kind   `json:"kind"`
	Ready     int    `json:"runQueueSize"`
	Blocked   int    `json:"blockedQueueSize"`
	Total     int    `json:"totalProcesses"`
	QuantumMs int    `json:"quantumMs"`
	Ticks     uint64 `json:"ticks"`
	// Current is the pid being dispatched, 0 when idle.
	Current int `json:"current,omitempty"`
}

// Scheduler dispatches tracked processes one quantum at a time
type Scheduler interface {
	Kind() Kind

	Quantum() int

	// Add starts tracking a process.
	Add(p *process.Process) error

	// Remove stops tracking a process; it returns false for unknown pids.
	Remove(pid int) bool

	// Tick dispatches exactly one ready process for one quantum, or does
	// nothing when the ready queue is empty.
	Tick(ctx context.Context)

	// List returns tracked processes ordered by pid.
	List() []*process.Process

	Get(pid int) (*process.Process, bool)

	Stats() Stats
}

// Prioritizer is implemented by schedulers supporting priority changes
type Prioritizer interface {
	SetPriority(pid int, priority int) error
}

// New creates a scheduler of the supplied kind
func New(kind Kind, quantum int, opts ...Option) (Scheduler, error) {
	switch kind {
	case KindRoundRobin, "":
		return NewRoundRobin(quantum, opts...), nil
	case KindPriority:
		return NewPriority(quantum, opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
