package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Memory manager: arena allocation with intrusive liveness tracking
// ---------------------------------------------------------------------------

// Handle is a stable reference to a block allocated by a Manager. It pairs a
// slot index with a generation counter so a stale handle (one whose block has
// been swept and whose slot reused) is detected instead of aliasing the new
// occupant.
type Handle struct {
	index uint32
	gen   uint16
}

// String renders the handle for diagnostics.
func (h Handle) String() string {
	return fmt.Sprintf("block@%d.%d", h.index, h.gen)
}

// headerOverhead is the fixed per-block bookkeeping cost charged to the
// statistics in addition to the payload size, matching the size, mark bit
// and list link a header-based arena would carry.
const headerOverhead = 24

// maxAllocSize caps a single payload allocation.
const maxAllocSize = 1 << 32

// defaultThreshold is the initial collection trigger (1 MiB).
const defaultThreshold = 1 << 20

// defaultGrowthFactor scales the collection threshold to the live-set size
// after each sweep.
const defaultGrowthFactor = 2.0

// ErrAllocationFailed indicates the arena could not satisfy an allocation.
var ErrAllocationFailed = errors.New("allocation failed")

// MemoryStats holds aggregate allocation statistics. All counters except
// CurrentUsage are monotonically non-decreasing.
type MemoryStats struct {
	TotalAllocated    int // Bytes ever allocated, including header overhead
	TotalFreed        int // Bytes ever freed
	CurrentUsage      int // Live bytes right now
	PeakUsage         int // High-water mark of CurrentUsage
	AllocationCount   int // Number of Allocate calls that succeeded
	DeallocationCount int // Number of blocks freed
}

func (s *MemoryStats) recordAllocation(size int) {
	s.TotalAllocated += size
	s.CurrentUsage += size
	s.AllocationCount++
	if s.CurrentUsage > s.PeakUsage {
		s.PeakUsage = s.CurrentUsage
	}
}

func (s *MemoryStats) recordDeallocation(size int) {
	s.TotalFreed += size
	s.CurrentUsage -= size
	if s.CurrentUsage < 0 {
		s.CurrentUsage = 0
	}
	s.DeallocationCount++
}

// block is one slot in the arena. A slot is recycled through the free list
// after its block is swept; the generation counter is bumped on free so
// outstanding handles to the old occupant stop resolving.
type block struct {
	data   []byte
	size   int
	gen    uint16
	marked bool
	live   bool
}

// Manager is an arena allocator with per-block liveness marks. It tracks
// which blocks exist and how much memory they use; it has no collection
// policy of its own beyond reporting when the usage threshold is crossed.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	blocks       []block
	free         []uint32 // Recycled slot indices
	stats        MemoryStats
	threshold    int
	growthFactor float64
}

// NewManager creates a memory manager with the default collection threshold.
func NewManager() *Manager {
	return NewManagerWithThreshold(defaultThreshold)
}

// NewManagerWithThreshold creates a memory manager with a custom collection
// trigger threshold in bytes.
func NewManagerWithThreshold(threshold int) *Manager {
	return NewManagerWithOptions(threshold, defaultGrowthFactor)
}

// NewManagerWithOptions creates a memory manager with a custom collection
// trigger threshold in bytes and threshold growth factor. Growth factors
// below 1.0 are clamped to the default.
func NewManagerWithOptions(threshold int, growthFactor float64) *Manager {
	if growthFactor < 1.0 {
		growthFactor = defaultGrowthFactor
	}
	return &Manager{
		threshold:    threshold,
		growthFactor: growthFactor,
	}
}

// Allocate reserves a zeroed payload of exactly size bytes and returns a
// handle to it. The block joins the live set immediately. Allocation never
// retries and never collects; that policy belongs to the Collector.
func (m *Manager) Allocate(size int) (Handle, error) {
	if size < 0 || size > maxAllocSize {
		return Handle{}, fmt.Errorf("%w: invalid block size %d", ErrAllocationFailed, size)
	}

	var index uint32
	if n := len(m.free); n > 0 {
		index = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		if len(m.blocks) >= int(^uint32(0)) {
			return Handle{}, fmt.Errorf("%w: arena slot space exhausted", ErrAllocationFailed)
		}
		m.blocks = append(m.blocks, block{})
		index = uint32(len(m.blocks) - 1)
	}

	b := &m.blocks[index]
	b.data = make([]byte, size)
	b.size = size
	b.marked = false
	b.live = true

	m.stats.recordAllocation(size + headerOverhead)
	return Handle{index: index, gen: b.gen}, nil
}

// lookup resolves a handle to its block, or nil if the handle is stale or
// was never allocated.
func (m *Manager) lookup(h Handle) *block {
	if int(h.index) >= len(m.blocks) {
		return nil
	}
	b := &m.blocks[h.index]
	if !b.live || b.gen != h.gen {
		return nil
	}
	return b
}

// Bytes returns the payload of a live block. Reports false for stale
// handles instead of aliasing a recycled slot.
func (m *Manager) Bytes(h Handle) ([]byte, bool) {
	b := m.lookup(h)
	if b == nil {
		return nil, false
	}
	return b.data, true
}

// Mark sets the liveness bit of the block owning h. Reports false if the
// handle is stale, which callers should treat as a bookkeeping bug.
func (m *Manager) Mark(h Handle) bool {
	b := m.lookup(h)
	if b == nil {
		return false
	}
	b.marked = true
	return true
}

// UnmarkAll clears every liveness bit. Called once at the start of each
// mark phase. O(block count) and idempotent.
func (m *Manager) UnmarkAll() {
	for i := range m.blocks {
		if m.blocks[i].live {
			m.blocks[i].marked = false
		}
	}
}

// Sweep frees every unmarked live block in a single pass and resets the
// mark bit of every survivor, leaving the arena ready for the next cycle.
// Returns the number of blocks freed.
//
// After sweeping, the collection threshold is recomputed as
// CurrentUsage × growthFactor so that collection frequency decreases as the
// steady-state live set grows. A zero usage leaves the threshold unchanged;
// a threshold of zero would force a collection on every allocation.
func (m *Manager) Sweep() int {
	freed := 0
	for i := range m.blocks {
		b := &m.blocks[i]
		if !b.live {
			continue
		}
		if b.marked {
			b.marked = false
			continue
		}
		m.freeBlock(uint32(i))
		freed++
	}

	if m.stats.CurrentUsage > 0 {
		m.threshold = int(float64(m.stats.CurrentUsage) * m.growthFactor)
	}

	return freed
}

// freeBlock releases one slot and invalidates outstanding handles to it.
func (m *Manager) freeBlock(index uint32) {
	b := &m.blocks[index]
	m.stats.recordDeallocation(b.size + headerOverhead)
	b.data = nil
	b.size = 0
	b.live = false
	b.marked = false
	b.gen++
	m.free = append(m.free, index)
}

// ShouldCollect reports whether current usage has reached the collection
// threshold.
func (m *Manager) ShouldCollect() bool {
	return m.stats.CurrentUsage >= m.threshold
}

// Stats returns a snapshot of the allocation statistics.
func (m *Manager) Stats() MemoryStats {
	return m.stats
}

// CurrentUsage returns the live byte count, headers included.
func (m *Manager) CurrentUsage() int {
	return m.stats.CurrentUsage
}

// AllocationCount returns the number of successful allocations.
func (m *Manager) AllocationCount() int {
	return m.stats.AllocationCount
}

// LiveBlocks returns the number of blocks currently live.
func (m *Manager) LiveBlocks() int {
	n := 0
	for i := range m.blocks {
		if m.blocks[i].live {
			n++
		}
	}
	return n
}

// Close frees every remaining block unconditionally. The manager stays
// usable afterwards but owns no memory until the next Allocate.
func (m *Manager) Close() {
	for i := range m.blocks {
		if m.blocks[i].live {
			m.freeBlock(uint32(i))
		}
	}
}
