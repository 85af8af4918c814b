// Package cache models the latency of a cache hierarchy using Akita cache
// directories. Caches track tags only; data always lives in emu.Memory.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
	// HitLatency in cycles
	HitLatency uint64 `json:"hit_latency"`
}

// Validate checks that the geometry describes at least one whole set.
func (c Config) Validate() error {
	if c.Associativity <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("associativity and block size must be positive")
	}
	if c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("block size %d is not a power of two", c.BlockSize)
	}
	if c.Size < c.Associativity*c.BlockSize || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size %d is not a multiple of %d-way x %dB sets",
			c.Size, c.Associativity, c.BlockSize)
	}
	return nil
}

// NumSets returns the number of sets.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// DefaultL1IConfig returns the L1 instruction cache of a small in-order
// core: 32KB, 8-way, 64B lines.
func DefaultL1IConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    1,
	}
}

// DefaultL1DConfig returns the L1 data cache: 32KB, 8-way, 64B lines.
func DefaultL1DConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    1,
	}
}

// DefaultL2Config returns the unified L2: 512KB, 8-way, 64B lines.
func DefaultL2Config() Config {
	return Config{
		Size:          512 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    10,
	}
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes, including the
	// levels below on a miss.
	Latency uint64
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
}

// StoreForwardLatency is the extra latency when a load reads the address
// of the immediately preceding store and must be forwarded from the store
// buffer.
const StoreForwardLatency uint64 = 1

// Level is one level of the memory hierarchy. Access returns the latency
// of touching addr.
type Level interface {
	Access(addr uint64, write bool) uint64
}

// Cache is a write-back, write-allocate cache with LRU replacement.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	stats Statistics

	// next serves misses and dirty writebacks.
	next Level

	recentStoreAddr  uint64
	recentStoreValid bool
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// HitRate returns hits over accesses, or 0 before any access.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New creates a new cache in front of next. It panics on an invalid
// config; call Config.Validate first for user-supplied geometry.
func New(config Config, next Level) *Cache {
	if err := config.Validate(); err != nil {
		panic(err)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		next: next,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return addr &^ uint64(c.config.BlockSize-1)
}

// Access lets a Cache serve as the next level of another cache.
func (c *Cache) Access(addr uint64, write bool) uint64 {
	if write {
		return c.Write(addr).Latency
	}
	return c.Read(addr).Latency
}

// Read performs a cache read of the line holding addr.
func (c *Cache) Read(addr uint64) AccessResult {
	c.stats.Reads++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		latency := c.config.HitLatency
		if c.recentStoreValid && c.recentStoreAddr == addr {
			latency += StoreForwardLatency
			c.recentStoreValid = false
		}

		return AccessResult{Hit: true, Latency: latency}
	}

	c.stats.Misses++
	return c.fill(addr, false)
}

// Write performs a cache write. On a miss the line is allocated first.
func (c *Cache) Write(addr uint64) AccessResult {
	c.stats.Writes++

	c.recentStoreAddr = addr
	c.recentStoreValid = true

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		block.IsDirty = true

		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++
	return c.fill(addr, true)
}

// fill brings the line holding addr in from the next level, evicting the
// LRU block of its set.
func (c *Cache) fill(addr uint64, isWrite bool) AccessResult {
	blockAddr := c.blockAddr(addr)
	result := AccessResult{Latency: c.config.HitLatency}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag

		// Writebacks drain through a buffer and add no latency.
		if victim.IsDirty {
			c.stats.Writebacks++
			if c.next != nil {
				c.next.Access(victim.Tag, true)
			}
		}
	}

	if c.next != nil {
		result.Latency += c.next.Access(blockAddr, false)
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = isWrite
	c.directory.Visit(victim)

	return result
}

// Contains reports whether the line holding addr is cached.
func (c *Cache) Contains(addr uint64) bool {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	return block != nil && block.IsValid
}

// Invalidate marks a cache line as invalid without writing it back.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty blocks and invalidates them.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				c.stats.Writebacks++
				if c.next != nil {
					c.next.Access(block.Tag, true)
				}
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines without writeback.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
	c.recentStoreValid = false
	c.recentStoreAddr = 0
}
