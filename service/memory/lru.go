package memory

import "container/list"

// lru orders resident frames from least to most recently used
type lru struct {
	order    *list.List
	elements map[int]*list.Element
}

func newLRU() *lru {
	return &lru{order: list.New(), elements: make(map[int]*list.Element)}
}

// touch marks frame as most recently used
func (l *lru) touch(frame int) {
	if elem, ok := l.elements[frame]; ok {
		l.order.MoveToBack(elem)
		return
	}
	l.elements[frame] = l.order.PushBack(frame)
}

func (l *lru) remove(frame int) {
	if elem, ok := l.elements[frame]; ok {
		l.order.Remove(elem)
		delete(l.elements, frame)
	}
}

// each visits frames from least recently used until fn returns false
func (l *lru) each(fn func(frame int) bool) {
	for elem := l.order.Front(); elem != nil; elem = elem.Next() {
		if !fn(elem.Value.(int)) {
			return
		}
	}
}

func (l *lru) len() int {
	return l.order.Len()
}
