package memory

import "github.com/markphelps/optional"

// entry is a page table entry
type entry struct {
	frame    optional.Int
	present  bool
	dirty    bool
	accessed bool
	touched  uint64
}

func (e *entry) bind(frame int) {
	e.frame = optional.NewInt(frame)
	e.present = true
	e.dirty = false
}

func (e *entry) unbind() {
	e.frame = optional.Int{}
	e.present = false
}

// space is the address space and page table of one process
type space struct {
	ranges []*Range
	next   int64
	pages  map[int]*entry
}

func newSpace(pageSize int) *space {
	return &space{next: alignUp(baseAddress, pageSize), pages: make(map[int]*entry)}
}

func (s *space) lookup(start int64) (int, *Range) {
	for i, r := range s.ranges {
		if r.Start == start {
			return i, r
		}
	}
	return -1, nil
}
