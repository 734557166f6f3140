package scheduler

import "github.com/viant/vkernel/runtime/process"

// RoundRobin dispatches processes in FIFO order with a fixed quantum
type RoundRobin struct {
	*tracker
}

// NewRoundRobin creates a round-robin scheduler
func NewRoundRobin(quantum int, opts ...Option) *RoundRobin {
	return &RoundRobin{tracker: newTracker(KindRoundRobin, &fifo{}, newConfig(quantum, opts))}
}

var _ Scheduler = (*RoundRobin)(nil)

type fifo struct {
	items []*process.Process
}

func (q *fifo) push(p *process.Process) {
	q.items = append(q.items, p)
}

func (q *fifo) pop() *process.Process {
	if len(q.items) == 0 {
		return nil
	}
	ret := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return ret
}

func (q *fifo) remove(pid int) bool {
	before := len(q.items)
	q.items = removeByPID(q.items, pid)
	return len(q.items) != before
}

func (q *fifo) extract(fn func(p *process.Process) bool) []*process.Process {
	var matched []*process.Process
	kept := q.items[:0]
	for _, p := range q.items {
		if fn(p) {
			matched = append(matched, p)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = nil
	}
	q.items = kept
	return matched
}

func (q *fifo) fix() {}

func (q *fifo) len() int {
	return len(q.items)
}
