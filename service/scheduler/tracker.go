package scheduler

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/vkernel/runtime/process"
)

// readyQueue abstracts the strategy specific ready queue ordering
type readyQueue interface {
	push(p *process.Process)
	pop() *process.Process
	remove(pid int) bool
	// extract removes and returns every queued process matching fn.
	extract(fn func(p *process.Process) bool) []*process.Process
	// fix restores ordering after priorities changed.
	fix()
	len() int
}

// tracker holds the bookkeeping shared by all strategies. Every tracked
// process is in exactly one of ready, blocked or current.
type tracker struct {
	kind    Kind
	config  config
	mux     sync.Mutex
	tickMux sync.Mutex
	table   map[int]*process.Process
	ready   readyQueue
	blocked []*process.Process
	current *process.Process
	ticks   uint64
}

func newTracker(kind Kind, ready readyQueue, cfg config) *tracker {
	return &tracker{
		kind:   kind,
		config: cfg,
		table:  make(map[int]*process.Process),
		ready:  ready,
	}
}

func (t *tracker) Kind() Kind {
	return t.kind
}

func (t *tracker) Quantum() int {
	return t.config.quantum
}

func (t *tracker) Add(p *process.Process) error {
	if p == nil {
		return ErrInvalidState
	}
	t.mux.Lock()
	defer t.mux.Unlock()
	if _, ok := t.table[p.PID]; ok {
		return ErrAlreadyExists
	}
	switch p.GetState() {
	case process.StateZombie:
		return ErrInvalidState
	case process.StateBlocked:
		t.blocked = append(t.blocked, p)
	default:
		t.ready.push(p)
	}
	t.table[p.PID] = p
	return nil
}

func (t *tracker) Remove(pid int) bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	if _, ok := t.table[pid]; !ok {
		return false
	}
	delete(t.table, pid)
	if !t.ready.remove(pid) {
		t.blocked = removeByPID(t.blocked, pid)
	}
	return true
}

func (t *tracker) Tick(ctx context.Context) {
	t.tickMux.Lock()
	defer t.tickMux.Unlock()

	t.mux.Lock()
	t.ticks++
	exited := t.reconcile()
	p := t.ready.pop()
	if p == nil {
		t.mux.Unlock()
		t.notifyExit(exited)
		return
	}
	t.current = p
	t.mux.Unlock()

	outcome := p.Run(ctx, t.config.quantum)
	if outcome.Err != nil {
		t.config.logger.Warn("process terminated by work failure", "pid", p.PID, "error", outcome.Err)
	}

	t.mux.Lock()
	t.current = nil
	// a concurrent Remove (possibly from inside the work callback) wins
	if tracked, ok := t.table[p.PID]; ok && tracked == p {
		switch p.GetState() {
		case process.StateZombie:
			delete(t.table, p.PID)
			exited = append(exited, p)
		case process.StateBlocked:
			t.blocked = append(t.blocked, p)
		default:
			t.ready.push(p)
		}
	}
	t.mux.Unlock()
	t.config.logger.Debug("dispatched", "pid", p.PID, "state", p.GetState().String(), "cpuTime", p.CPUTime())
	t.notifyExit(exited)
}

// reconcile returns unblocked processes to the ready tail, moves processes
// blocked while queued into the blocked set and drops zombies.
func (t *tracker) reconcile() []*process.Process {
	var exited []*process.Process
	kept := t.blocked[:0]
	for _, p := range t.blocked {
		switch p.GetState() {
		case process.StateBlocked:
			kept = append(kept, p)
		case process.StateZombie:
			delete(t.table, p.PID)
			exited = append(exited, p)
		default:
			t.ready.push(p)
		}
	}
	for i := len(kept); i < len(t.blocked); i++ {
		t.blocked[i] = nil
	}
	t.blocked = kept

	for _, p := range t.ready.extract(func(p *process.Process) bool {
		state := p.GetState()
		return state == process.StateZombie || state == process.StateBlocked
	}) {
		if p.GetState() == process.StateBlocked {
			t.blocked = append(t.blocked, p)
			continue
		}
		delete(t.table, p.PID)
		exited = append(exited, p)
	}
	t.ready.fix()
	return exited
}

func (t *tracker) notifyExit(exited []*process.Process) {
	for _, p := range exited {
		t.config.logger.Debug("process exited", "pid", p.PID, "reason", p.ExitReason())
		if t.config.onExit != nil {
			t.config.onExit(p)
		}
	}
}

func (t *tracker) List() []*process.Process {
	t.mux.Lock()
	defer t.mux.Unlock()
	ret := make([]*process.Process, 0, len(t.table))
	for _, p := range t.table {
		ret = append(ret, p)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].PID < ret[j].PID })
	return ret
}

func (t *tracker) Get(pid int) (*process.Process, bool) {
	t.mux.Lock()
	defer t.mux.Unlock()
	p, ok := t.table[pid]
	return p, ok
}

func (t *tracker) Stats() Stats {
	t.mux.Lock()
	defer t.mux.Unlock()
	ret := Stats{
		Kind:      t.kind,
		Ready:     t.ready.len(),
		Blocked:   len(t.blocked),
		Total:     len(t.table),
		QuantumMs: t.config.quantum,
		Ticks:     t.ticks,
	}
	if t.current != nil {
		ret.Current = t.current.PID
	}
	return ret
}

func removeByPID(procs []*process.Process, pid int) []*process.Process {
	for i, p := range procs {
		if p.PID == pid {
			copy(procs[i:], procs[i+1:])
			procs[len(procs)-1] = nil
			return procs[:len(procs)-1]
		}
	}
	return procs
}
