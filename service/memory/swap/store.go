package swap

import (
	"fmt"
	"io"
	"sync"
)

// Store is a fixed size backing area split into page sized slots
type Store interface {
	ReadSlot(slot int, buf []byte) error
	WriteSlot(slot int, data []byte) error
	Slots() int
	SlotSize() int
	Close() error
}

type backing interface {
	io.ReaderAt
	io.WriterAt
}

// slotted maps slot indexes onto byte offsets of a backing area
type slotted struct {
	slots    int
	slotSize int
}

func newSlotted(size int64, slotSize int) (slotted, error) {
	if slotSize <= 0 {
		return slotted{}, fmt.Errorf("invalid slot size: %v", slotSize)
	}
	if size < 0 {
		return slotted{}, fmt.Errorf("invalid swap size: %v", size)
	}
	return slotted{slots: int(size / int64(slotSize)), slotSize: slotSize}, nil
}

func (s slotted) offset(slot int, length int) (int64, error) {
	if slot < 0 || slot >= s.slots {
		return 0, fmt.Errorf("%w: slot %d of %d", ErrOutOfRange, slot, s.slots)
	}
	if length > s.slotSize {
		return 0, fmt.Errorf("%w: %d bytes exceed slot size %d", ErrOutOfRange, length, s.slotSize)
	}
	return int64(slot) * int64(s.slotSize), nil
}

func (s slotted) read(b backing, slot int, buf []byte) error {
	off, err := s.offset(slot, len(buf))
	if err != nil {
		return err
	}
	if _, err = b.ReadAt(buf, off); err != nil {
		return fmt.Errorf("failed to read slot %d: %w", slot, err)
	}
	return nil
}

func (s slotted) write(b backing, slot int, data []byte) error {
	off, err := s.offset(slot, len(data))
	if err != nil {
		return err
	}
	if _, err = b.WriteAt(data, off); err != nil {
		return fmt.Errorf("failed to write slot %d: %w", slot, err)
	}
	return nil
}

func (s slotted) Slots() int {
	return s.slots
}

func (s slotted) SlotSize() int {
	return s.slotSize
}

// MemoryStore is a volatile Store, used when no swap file is configured.
// Slot storage is allocated on first write.
type MemoryStore struct {
	slotted
	mu     sync.RWMutex
	data   [][]byte
	closed bool
}

// NewMemoryStore creates a zero filled store of the given size
func NewMemoryStore(size int64, slotSize int) (*MemoryStore, error) {
	layout, err := newSlotted(size, slotSize)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{slotted: layout, data: make([][]byte, layout.slots)}, nil
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) ReadSlot(slot int, buf []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	if _, err := m.offset(slot, len(buf)); err != nil {
		return err
	}
	if data := m.data[slot]; data != nil {
		copy(buf, data)
		return nil
	}
	clear(buf)
	return nil
}

func (m *MemoryStore) WriteSlot(slot int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, err := m.offset(slot, len(data)); err != nil {
		return err
	}
	if m.data[slot] == nil {
		m.data[slot] = make([]byte, m.slotSize)
	}
	copy(m.data[slot], data)
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
