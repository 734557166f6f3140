package swap

import "sort"

// Key identifies the virtual page a slot belongs to
type Key struct {
	PID int
	VPN int
}

// Table tracks slot ownership. Free slots are handed out lowest first.
type Table struct {
	size  int
	free  []int
	owner map[Key]int
}

// NewTable creates a table with slots free slots
func NewTable(slots int) *Table {
	if slots < 0 {
		slots = 0
	}
	ret := &Table{size: slots, free: make([]int, slots), owner: make(map[Key]int)}
	for i := range ret.free {
		ret.free[i] = i
	}
	return ret
}

// Lookup returns the slot bound to key
func (t *Table) Lookup(key Key) (int, bool) {
	slot, ok := t.owner[key]
	return slot, ok
}

// Reserve returns the slot bound to key, binding a free one if needed
func (t *Table) Reserve(key Key) (int, error) {
	if slot, ok := t.owner[key]; ok {
		return slot, nil
	}
	if len(t.free) == 0 {
		return 0, ErrFull
	}
	slot := t.free[0]
	t.free = t.free[1:]
	t.owner[key] = slot
	return slot, nil
}

// Release frees the slot bound to key
func (t *Table) Release(key Key) bool {
	slot, ok := t.owner[key]
	if !ok {
		return false
	}
	delete(t.owner, key)
	t.put(slot)
	return true
}

// ReleaseProcess frees every slot owned by pid and returns their count
func (t *Table) ReleaseProcess(pid int) int {
	count := 0
	for key, slot := range t.owner {
		if key.PID != pid {
			continue
		}
		delete(t.owner, key)
		t.put(slot)
		count++
	}
	return count
}

func (t *Table) put(slot int) {
	i := sort.SearchInts(t.free, slot)
	t.free = append(t.free, 0)
	copy(t.free[i+1:], t.free[i:])
	t.free[i] = slot
}

// Size returns the total slot count
func (t *Table) Size() int { return t.size }

// Used returns the number of bound slots
func (t *Table) Used() int { return len(t.owner) }

// Free returns the number of unbound slots
func (t *Table) Free() int { return len(t.free) }
