package vm

// ---------------------------------------------------------------------------
// Garbage collector: mark-and-sweep over the manager's block set
// ---------------------------------------------------------------------------

// gcPhase is the collector's explicit re-entrancy state. Allocation can
// trigger a collection, so an allocation made while a pass is in progress
// must not re-trigger one; an explicit phase value makes that transition
// check a plain comparison.
type gcPhase int

const (
	phaseIdle gcPhase = iota
	phaseCollecting
)

func (p gcPhase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseCollecting:
		return "collecting"
	default:
		return "unknown"
	}
}

// GcStats holds collection statistics, updated only at the end of a
// completed collection cycle.
type GcStats struct {
	Collections      int // Completed collection cycles
	TotalObjectsFreed int // Blocks freed across all cycles
	TotalBytesFreed  int // Bytes freed across all cycles
}

// Collector decides when to collect and which blocks survive, delegating
// the mechanics to its Manager. The root set is entirely caller-managed:
// the VM replaces it wholesale before any collection-worthy allocation.
//
// Marking is intentionally shallow. Arrays hold raw numbers only, so no
// heap block ever references another and tracing from the roots is a
// single mark pass. This is not a general-purpose tracing collector.
type Collector struct {
	mem   *Manager
	roots []Handle
	stats GcStats
	phase gcPhase
}

// NewCollector creates a collector over a fresh Manager with the default
// threshold.
func NewCollector() *Collector {
	return &Collector{mem: NewManager()}
}

// NewCollectorWithThreshold creates a collector with a custom collection
// trigger threshold in bytes.
func NewCollectorWithThreshold(threshold int) *Collector {
	return &Collector{mem: NewManagerWithThreshold(threshold)}
}

// NewCollectorWithOptions creates a collector with custom threshold and
// threshold growth factor.
func NewCollectorWithOptions(threshold int, growthFactor float64) *Collector {
	return &Collector{mem: NewManagerWithOptions(threshold, growthFactor)}
}

// Allocate reserves size bytes, running a full collection first if the
// threshold has been reached and no pass is already in progress. Collecting
// before allocating guarantees freed space is available before the new
// request is attempted.
func (c *Collector) Allocate(size int) (Handle, error) {
	if c.ShouldCollect() {
		c.Collect()
	}
	return c.mem.Allocate(size)
}

// AddRoot adds a handle to the root set. Idempotent: duplicate handles are
// not recorded twice.
func (c *Collector) AddRoot(h Handle) {
	for _, r := range c.roots {
		if r == h {
			return
		}
	}
	c.roots = append(c.roots, h)
}

// RemoveRoot removes a handle from the root set.
func (c *Collector) RemoveRoot(h Handle) {
	for i, r := range c.roots {
		if r == h {
			c.roots = append(c.roots[:i], c.roots[i+1:]...)
			return
		}
	}
}

// ClearRoots empties the root set.
func (c *Collector) ClearRoots() {
	c.roots = c.roots[:0]
}

// SetRoots atomically replaces the whole root set.
func (c *Collector) SetRoots(roots []Handle) {
	c.roots = append(c.roots[:0], roots...)
}

// Roots returns a copy of the current root set.
func (c *Collector) Roots() []Handle {
	out := make([]Handle, len(c.roots))
	copy(out, c.roots)
	return out
}

// ShouldCollect reports whether a collection should run now.
func (c *Collector) ShouldCollect() bool {
	return c.phase == phaseIdle && c.mem.ShouldCollect()
}

// Collect runs a full mark-and-sweep cycle and returns the number of
// blocks freed. A collection already in progress makes this a no-op
// returning 0.
func (c *Collector) Collect() int {
	if c.phase == phaseCollecting {
		return 0
	}

	c.phase = phaseCollecting
	bytesBefore := c.mem.CurrentUsage()

	c.markPhase()
	objectsFreed := c.mem.Sweep()

	bytesFreed := bytesBefore - c.mem.CurrentUsage()
	if bytesFreed < 0 {
		bytesFreed = 0
	}

	c.stats.Collections++
	c.stats.TotalObjectsFreed += objectsFreed
	c.stats.TotalBytesFreed += bytesFreed

	c.phase = phaseIdle
	return objectsFreed
}

// markPhase clears all marks, then marks every root.
func (c *Collector) markPhase() {
	c.mem.UnmarkAll()
	for _, root := range c.roots {
		c.mem.Mark(root)
	}
}

// ForceCollect runs a collection even if the phase guard is set, restoring
// the previous phase afterwards. Used for deterministic testing and
// explicit caller-triggered collections.
func (c *Collector) ForceCollect() int {
	was := c.phase
	c.phase = phaseIdle
	freed := c.Collect()
	c.phase = was
	return freed
}

// Stats returns a snapshot of the collection statistics.
func (c *Collector) Stats() GcStats {
	return c.stats
}

// MemoryStats returns a snapshot of the underlying manager's statistics.
func (c *Collector) MemoryStats() MemoryStats {
	return c.mem.Stats()
}

// CurrentUsage returns the manager's live byte count.
func (c *Collector) CurrentUsage() int {
	return c.mem.CurrentUsage()
}

// Memory returns the underlying manager.
func (c *Collector) Memory() *Manager {
	return c.mem
}

// Close releases every remaining block, collected or not.
func (c *Collector) Close() {
	c.mem.Close()
}
