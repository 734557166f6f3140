package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"github.com/viant/vkernel/service/memory/swap"
	"github.com/viant/vkernel/tracing"
)

// Manager owns the frame pool, page tables and swap slots of the machine.
// All operations are serialised by a single mutex.
type Manager struct {
	config     Config
	mu         sync.Mutex
	frames     *frameTable
	recent     *lru
	store      swap.Store
	slots      *swap.Table
	spaces     map[int]*space
	clock      uint64
	pageFaults uint64
	swapIns    uint64
	swapOuts   uint64
	logger     *slog.Logger
}

// New creates a memory manager
func New(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	ret := &Manager{
		config: cfg,
		frames: newFrameTable(cfg.Frames(), cfg.PageSize),
		recent: newLRU(),
		spaces: make(map[int]*space),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	slots := 0
	if ret.store != nil {
		if ret.store.SlotSize() != cfg.PageSize {
			return nil, fmt.Errorf("%w: swap slot size %v does not match page size %v", ErrInvalidArgument, ret.store.SlotSize(), cfg.PageSize)
		}
		slots = ret.store.Slots()
	}
	ret.slots = swap.NewTable(slots)
	return ret, nil
}

// Config returns the manager configuration
func (m *Manager) Config() Config {
	return m.config
}

// Allocate appends a page aligned range of size bytes to the address space
// of pid. No frame is assigned until the range is accessed.
func (m *Manager) Allocate(pid int, size int64) (*Range, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: allocation size %v", ErrInvalidArgument, size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.spaces[pid]
	if !ok {
		sp = newSpace(m.config.PageSize)
	}
	start := sp.next
	if size > m.config.VirtualSize-start {
		return nil, fmt.Errorf("%w: pid %v cannot map %v more bytes", ErrResourceExhausted, pid, size)
	}
	m.spaces[pid] = sp
	r := &Range{Start: start, End: start + size, Size: size}
	from, to := r.pages(m.config.PageSize)
	for vpn := from; vpn < to; vpn++ {
		if _, ok := sp.pages[vpn]; !ok {
			sp.pages[vpn] = &entry{}
		}
	}
	sp.ranges = append(sp.ranges, r)
	sp.next = alignUp(r.End, m.config.PageSize)
	ret := *r
	return &ret, nil
}

// Free releases the range of pid beginning at start together with its
// frames and swap slots.
func (m *Manager) Free(pid int, start int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.spaces[pid]
	if !ok {
		return fmt.Errorf("%w: pid %v", ErrNotFound, pid)
	}
	i, r := sp.lookup(start)
	if r == nil {
		return fmt.Errorf("%w: pid %v has no range at %#x", ErrNotFound, pid, start)
	}
	m.release(pid, sp, r)
	sp.ranges = append(sp.ranges[:i], sp.ranges[i+1:]...)
	return nil
}

func (m *Manager) release(pid int, sp *space, r *Range) {
	from, to := r.pages(m.config.PageSize)
	for vpn := from; vpn < to; vpn++ {
		e, ok := sp.pages[vpn]
		if !ok {
			continue
		}
		if frame, err := e.frame.Get(); err == nil && e.present {
			m.recent.remove(frame)
			m.frames.release(frame)
		}
		m.slots.Release(swap.Key{PID: pid, VPN: vpn})
		delete(sp.pages, vpn)
	}
}

// CleanupProcess frees every range of pid and drops its bookkeeping
func (m *Manager) CleanupProcess(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.spaces[pid]
	if !ok {
		return
	}
	for _, r := range sp.ranges {
		m.release(pid, sp, r)
	}
	m.slots.ReleaseProcess(pid)
	delete(m.spaces, pid)
	m.logger.Debug("memory released", "pid", pid)
}

// Read returns length bytes starting at vaddr, faulting pages in as needed
func (m *Manager) Read(ctx context.Context, pid int, vaddr int64, length int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, first, last, err := m.span(pid, vaddr, length)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, length)
	if length == 0 {
		return ret, nil
	}
	err = m.transfer(ctx, pid, sp, vaddr, first, last, false, func(page []byte, done int) int {
		return copy(ret[done:], page)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Write stores data starting at vaddr, faulting pages in as needed
func (m *Manager) Write(ctx context.Context, pid int, vaddr int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, first, last, err := m.span(pid, vaddr, len(data))
	if err != nil || len(data) == 0 {
		return err
	}
	return m.transfer(ctx, pid, sp, vaddr, first, last, true, func(page []byte, done int) int {
		return copy(page, data[done:])
	})
}

// span validates that every page of [vaddr, vaddr+length) is mapped for pid
// and returns the first and last vpn. A zero length still requires the page
// at vaddr.
func (m *Manager) span(pid int, vaddr int64, length int) (*space, int, int, error) {
	if length < 0 {
		return nil, 0, 0, fmt.Errorf("%w: length %v", ErrInvalidArgument, length)
	}
	if vaddr < 0 || int64(length) > math.MaxInt64-vaddr {
		return nil, 0, 0, fmt.Errorf("%w: address %v length %v", ErrInvalidArgument, vaddr, length)
	}
	sp, ok := m.spaces[pid]
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: pid %v", ErrNotFound, pid)
	}
	pageSize := int64(m.config.PageSize)
	first, last := vaddr/pageSize, vaddr/pageSize
	if length > 0 {
		last = (vaddr + int64(length) - 1) / pageSize
	}
	if first > last || last > math.MaxInt32 {
		return nil, 0, 0, fmt.Errorf("%w: address %v length %v", ErrNotFound, vaddr, length)
	}
	for vpn := first; vpn <= last; vpn++ {
		if _, ok := sp.pages[int(vpn)]; !ok {
			return nil, 0, 0, fmt.Errorf("%w: pid %v has no page %v", ErrNotFound, pid, vpn)
		}
	}
	return sp, int(first), int(last), nil
}

// transfer moves bytes page by page through fn, which returns the bytes it
// moved. The range must have been validated by span.
func (m *Manager) transfer(ctx context.Context, pid int, sp *space, vaddr int64, first, last int, write bool, fn func(page []byte, done int) int) error {
	pageSize := int64(m.config.PageSize)
	done := 0
	for vpn := first; vpn <= last; vpn++ {
		e := sp.pages[vpn]
		if !e.present {
			m.pageFaults++
			if err := m.swapIn(ctx, pid, vpn, e); err != nil {
				return err
			}
		}
		frame, err := e.frame.Get()
		if err != nil {
			return fmt.Errorf("%w: pid %v page %v present without frame", ErrInvalidState, pid, vpn)
		}
		e.accessed = true
		if write {
			e.dirty = true
		}
		m.clock++
		e.touched = m.clock
		m.recent.touch(frame)
		page := m.frames.data(frame)
		if vpn == first {
			page = page[vaddr%pageSize:]
		}
		done += fn(page, done)
	}
	return nil
}

// swapIn binds a frame to the page, loading its slot or zero filling it
func (m *Manager) swapIn(ctx context.Context, pid, vpn int, e *entry) (err error) {
	ctx, span := tracing.StartSpan(ctx, "memory.pageFault", "INTERNAL")
	span.WithAttributes(map[string]string{"pid": strconv.Itoa(pid), "vpn": strconv.Itoa(vpn)})
	defer func() { tracing.EndSpan(span, err) }()

	frame, err := m.allocateFrame(ctx)
	if err != nil {
		return err
	}
	key := swap.Key{PID: pid, VPN: vpn}
	data := m.frames.data(frame)
	if slot, ok := m.slots.Lookup(key); ok {
		if err = m.store.ReadSlot(slot, data); err != nil {
			m.frames.release(frame)
			return fmt.Errorf("%w: pid %v page %v: %w", ErrIOFailure, pid, vpn, err)
		}
	} else {
		clear(data)
	}
	e.bind(frame)
	m.frames.assign(frame, key)
	m.recent.touch(frame)
	m.swapIns++
	return nil
}

func (m *Manager) allocateFrame(ctx context.Context) (int, error) {
	if frame, ok := m.frames.take(); ok {
		return frame, nil
	}
	victim, err := m.victim()
	if err != nil {
		return 0, err
	}
	if err = m.swapOut(ctx, victim); err != nil {
		return 0, err
	}
	frame, ok := m.frames.take()
	if !ok {
		return 0, fmt.Errorf("%w: evicted frame %v not returned to pool", ErrInvalidState, victim)
	}
	return frame, nil
}

// victim returns the least recently used frame that can be evicted with the
// swap slots left.
func (m *Manager) victim() (int, error) {
	victim := -1
	m.recent.each(func(frame int) bool {
		if !m.needsSlot(frame) || m.slots.Free() > 0 {
			victim = frame
			return false
		}
		return true
	})
	if victim == -1 {
		if m.recent.len() == 0 {
			return 0, fmt.Errorf("%w: no resident frame to evict", ErrResourceExhausted)
		}
		return 0, fmt.Errorf("%w: swap is full", ErrResourceExhausted)
	}
	return victim, nil
}

func (m *Manager) needsSlot(frame int) bool {
	key, _ := m.frames.owner(frame)
	e := m.spaces[key.PID].pages[key.VPN]
	if !e.dirty {
		return false
	}
	_, ok := m.slots.Lookup(key)
	return !ok
}

// swapOut writes a dirty page to its slot and returns the frame to the pool.
// On failure the page stays resident.
func (m *Manager) swapOut(ctx context.Context, frame int) (err error) {
	key, ok := m.frames.owner(frame)
	if !ok {
		return fmt.Errorf("%w: frame %v has no owner", ErrInvalidState, frame)
	}
	e := m.spaces[key.PID].pages[key.VPN]
	if e.dirty {
		_, span := tracing.StartSpan(ctx, "memory.swapOut", "INTERNAL")
		span.WithAttributes(map[string]string{"pid": strconv.Itoa(key.PID), "vpn": strconv.Itoa(key.VPN)})
		defer func() { tracing.EndSpan(span, err) }()
		if err = m.writeBack(key, frame); err != nil {
			return err
		}
		e.dirty = false
		m.swapOuts++
	}
	m.recent.remove(frame)
	m.frames.release(frame)
	e.unbind()
	m.logger.Debug("page evicted", "pid", key.PID, "vpn", key.VPN, "frame", frame)
	return nil
}

func (m *Manager) writeBack(key swap.Key, frame int) error {
	if m.store == nil {
		return fmt.Errorf("%w: swap disabled", ErrResourceExhausted)
	}
	_, bound := m.slots.Lookup(key)
	slot, err := m.slots.Reserve(key)
	if err != nil {
		if errors.Is(err, swap.ErrFull) {
			return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
		}
		return err
	}
	if err = m.store.WriteSlot(slot, m.frames.data(frame)); err != nil {
		if !bound {
			m.slots.Release(key)
		}
		return fmt.Errorf("%w: pid %v page %v: %w", ErrIOFailure, key.PID, key.VPN, err)
	}
	return nil
}

// MemoryMap describes the address space of pid
func (m *Manager) MemoryMap(pid int) (*Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.spaces[pid]
	if !ok {
		return nil, fmt.Errorf("%w: pid %v", ErrNotFound, pid)
	}
	pageSize := int64(m.config.PageSize)
	ret := &Map{PID: pid, PageCount: len(sp.pages), Ranges: make([]Range, 0, len(sp.ranges))}
	for _, r := range sp.ranges {
		ret.TotalAllocated += r.Size
		ret.Ranges = append(ret.Ranges, *r)
	}
	for vpn, e := range sp.pages {
		switch {
		case e.present:
			ret.InPhysicalMemory += pageSize
		default:
			if _, ok := m.slots.Lookup(swap.Key{PID: pid, VPN: vpn}); ok {
				ret.InSwap += pageSize
			} else {
				ret.Untouched += pageSize
			}
		}
	}
	return ret, nil
}

// SystemInfo returns system wide memory statistics
func (m *Manager) SystemInfo() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := m.frames.size()
	free := m.frames.available()
	return Info{
		PhysicalSize:   m.config.PhysicalSize,
		PageSize:       m.config.PageSize,
		TotalFrames:    total,
		FreeFrames:     free,
		UsedFrames:     total - free,
		PageFaults:     m.pageFaults,
		SwapIns:        m.swapIns,
		SwapOuts:       m.swapOuts,
		SwapSlots:      m.slots.Size(),
		SwapSlotsUsed:  m.slots.Used(),
		TotalSwapUsage: m.swapResident() * int64(m.config.PageSize),
	}
}

// swapResident counts non-present pages whose content lives in a slot. Slots
// retained by resident pages are excluded.
func (m *Manager) swapResident() int64 {
	var ret int64
	for pid, sp := range m.spaces {
		for vpn, e := range sp.pages {
			if e.present {
				continue
			}
			if _, ok := m.slots.Lookup(swap.Key{PID: pid, VPN: vpn}); ok {
				ret++
			}
		}
	}
	return ret
}

// Close releases the swap store
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}
