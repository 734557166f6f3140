package scheduler

import (
	"sort"

	"github.com/viant/vkernel/runtime/process"
)

// Priority dispatches the ready process with the lowest priority value;
// equal priorities are served in enqueue order.
type Priority struct {
	*tracker
	queue *priorityQueue
}

// NewPriority creates a priority scheduler
func NewPriority(quantum int, opts ...Option) *Priority {
	queue := &priorityQueue{}
	return &Priority{
		tracker: newTracker(KindPriority, queue, newConfig(quantum, opts)),
		queue:   queue,
	}
}

var (
	_ Scheduler   = (*Priority)(nil)
	_ Prioritizer = (*Priority)(nil)
)

// SetPriority changes the priority of a tracked process and re-sorts the ready queue
func (s *Priority) SetPriority(pid int, priority int) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	p, ok := s.table[pid]
	if !ok {
		return ErrNotFound
	}
	p.SetPriority(priority)
	s.queue.fix()
	return nil
}

type queued struct {
	process *process.Process
	seq     uint64
}

type priorityQueue struct {
	items []queued
	seq   uint64
}

func (q *priorityQueue) push(p *process.Process) {
	q.seq++
	q.items = append(q.items, queued{process: p, seq: q.seq})
	q.fix()
}

func (q *priorityQueue) pop() *process.Process {
	if len(q.items) == 0 {
		return nil
	}
	ret := q.items[0].process
	q.items[0] = queued{}
	q.items = q.items[1:]
	return ret
}

func (q *priorityQueue) remove(pid int) bool {
	for i, item := range q.items {
		if item.process.PID == pid {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

func (q *priorityQueue) extract(fn func(p *process.Process) bool) []*process.Process {
	var matched []*process.Process
	kept := q.items[:0]
	for _, item := range q.items {
		if fn(item.process) {
			matched = append(matched, item.process)
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
	return matched
}

func (q *priorityQueue) fix() {
	sort.SliceStable(q.items, func(i, j int) bool {
		pi, pj := q.items[i].process.Priority(), q.items[j].process.Priority()
		if pi != pj {
			return pi < pj
		}
		return q.items[i].seq < q.items[j].seq
	})
}

func (q *priorityQueue) len() int {
	return len(q.items)
}
