package cache

// MemoryBacking is the last level of the hierarchy: main memory with a
// fixed access latency.
type MemoryBacking struct {
	latency uint64

	Reads  uint64
	Writes uint64
}

// NewMemoryBacking creates a memory level with the given latency.
func NewMemoryBacking(latency uint64) *MemoryBacking {
	return &MemoryBacking{latency: latency}
}

// Access counts the access and returns the memory latency.
func (m *MemoryBacking) Access(_ uint64, write bool) uint64 {
	if write {
		m.Writes++
	} else {
		m.Reads++
	}
	return m.latency
}

// Hierarchy wires split L1 instruction and data caches over a shared L2
// and memory.
type Hierarchy struct {
	L1I    *Cache
	L1D    *Cache
	L2     *Cache
	Memory *MemoryBacking
}

// NewHierarchy builds L1I/L1D -> L2 -> memory.
func NewHierarchy(l1i, l1d, l2 Config, memoryLatency uint64) *Hierarchy {
	mem := NewMemoryBacking(memoryLatency)
	shared := New(l2, mem)
	return &Hierarchy{
		L1I:    New(l1i, shared),
		L1D:    New(l1d, shared),
		L2:     shared,
		Memory: mem,
	}
}

// Reset invalidates every level and clears the memory counters.
func (h *Hierarchy) Reset() {
	h.L1I.Reset()
	h.L1D.Reset()
	h.L2.Reset()
	h.Memory.Reads = 0
	h.Memory.Writes = 0
}
