package memory

import "github.com/viant/vkernel/service/memory/swap"

// frameTable owns physical frame storage and ownership. Frame bytes are
// allocated on first use.
type frameTable struct {
	pageSize int
	storage  [][]byte
	owners   []*swap.Key
	free     []int
}

func newFrameTable(count, pageSize int) *frameTable {
	ret := &frameTable{
		pageSize: pageSize,
		storage:  make([][]byte, count),
		owners:   make([]*swap.Key, count),
		free:     make([]int, count),
	}
	for i := range ret.free {
		ret.free[i] = i
	}
	return ret
}

// take returns the oldest free frame
func (f *frameTable) take() (int, bool) {
	if len(f.free) == 0 {
		return 0, false
	}
	frame := f.free[0]
	f.free = f.free[1:]
	return frame, true
}

func (f *frameTable) assign(frame int, key swap.Key) {
	f.owners[frame] = &key
}

func (f *frameTable) release(frame int) {
	f.owners[frame] = nil
	f.free = append(f.free, frame)
}

func (f *frameTable) owner(frame int) (swap.Key, bool) {
	if owner := f.owners[frame]; owner != nil {
		return *owner, true
	}
	return swap.Key{}, false
}

// data returns the backing bytes of frame
func (f *frameTable) data(frame int) []byte {
	if f.storage[frame] == nil {
		f.storage[frame] = make([]byte, f.pageSize)
	}
	return f.storage[frame]
}

func (f *frameTable) size() int {
	return len(f.owners)
}

func (f *frameTable) available() int {
	return len(f.free)
}
