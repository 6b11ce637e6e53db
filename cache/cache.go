// Package cache provides a write-back data cache that can sit in front of
// emu.Memory. Tag and replacement state are kept in an Akita cache
// directory.
package cache

import (
	"errors"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/z32sim/emu"
)

// ErrBadConfig is returned when a cache configuration cannot be built.
var ErrBadConfig = errors.New("invalid cache configuration")

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `yaml:"size"`
	// Associativity (number of ways)
	Associativity int `yaml:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `yaml:"block_size"`
}

// DefaultConfig returns a small 4-way cache with 16-byte lines, sized so
// that the harness's programs see evictions.
func DefaultConfig() Config {
	return Config{
		Size:          1024,
		Associativity: 4,
		BlockSize:     16,
	}
}

// Validate checks that the geometry is usable over Z32 memory.
func (c Config) Validate() error {
	if !isPow2(c.BlockSize) || c.BlockSize < 4 || c.BlockSize > emu.MemorySize {
		return fmt.Errorf("%w: block size %d", ErrBadConfig, c.BlockSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("%w: associativity %d", ErrBadConfig, c.Associativity)
	}
	setBytes := c.Associativity * c.BlockSize
	if c.Size <= 0 || c.Size%setBytes != 0 {
		return fmt.Errorf("%w: size %d is not a multiple of %d", ErrBadConfig, c.Size, setBytes)
	}
	return nil
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether every line touched was already cached.
	Hit bool
	// Data is the data read (for load operations).
	Data uint32
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the address of the last evicted block.
	EvictedAddr uint32
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64 `yaml:"reads"`
	Writes     uint64 `yaml:"writes"`
	Hits       uint64 `yaml:"hits"`
	Misses     uint64 `yaml:"misses"`
	Evictions  uint64 `yaml:"evictions"`
	Writebacks uint64 `yaml:"writebacks"`
}

// HitRate returns hits over all line lookups, or 0 before any access.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// BackingStore interface for the next level in the memory hierarchy.
type BackingStore interface {
	// Read fetches data from the backing store.
	Read(addr uint32, size int) []byte
	// Write stores data to the backing store.
	Write(addr uint32, data []byte)
}

// Cache is a write-back, write-allocate cache with LRU replacement.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	stats   Statistics
	backing BackingStore
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint32) uint32 {
	return addr &^ uint32(c.config.BlockSize-1)
}

// Read performs a little-endian read of size bytes. An access that
// straddles two lines touches both.
func (c *Cache) Read(addr uint32, size int) AccessResult {
	c.stats.Reads++

	result := AccessResult{Hit: true}
	for i := 0; i < size; {
		a := addr + uint32(i)
		_, data, offset := c.line(a, &result)
		n := min(size-i, len(data)-offset)
		for j := 0; j < n; j++ {
			result.Data |= uint32(data[offset+j]) << ((i + j) * 8)
		}
		i += n
	}

	return result
}

// Write performs a little-endian write of the low size bytes of value.
func (c *Cache) Write(addr uint32, size int, value uint32) AccessResult {
	c.stats.Writes++

	result := AccessResult{Hit: true}
	for i := 0; i < size; {
		a := addr + uint32(i)
		block, data, offset := c.line(a, &result)
		n := min(size-i, len(data)-offset)
		for j := 0; j < n; j++ {
			data[offset+j] = byte(value >> ((i + j) * 8))
		}
		block.IsDirty = true
		i += n
	}

	return result
}

// line returns the block and data of the line holding addr, filling it on a
// miss, and the offset of addr within it.
func (c *Cache) line(addr uint32, result *AccessResult) (*akitacache.Block, []byte, int) {
	blockAddr := c.blockAddr(addr)
	offset := int(addr - blockAddr)

	block := c.directory.Lookup(0, uint64(blockAddr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return block, c.dataStore[c.blockIndex(block)], offset
	}

	c.stats.Misses++
	result.Hit = false

	victim := c.directory.FindVictim(uint64(blockAddr))
	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = uint32(victim.Tag)

		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			c.backing.Write(uint32(victim.Tag), victimData)
		}
	}

	if c.backing != nil {
		copy(victimData, c.backing.Read(blockAddr, c.config.BlockSize))
	} else {
		clear(victimData)
	}

	victim.Tag = uint64(blockAddr)
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return victim, victimData, offset
}

// Invalidate drops the line holding addr without writing it back.
func (c *Cache) Invalidate(addr uint32) {
	block := c.directory.Lookup(0, uint64(c.blockAddr(addr)))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty blocks and invalidates them.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.backing.Write(uint32(block.Tag), c.dataStore[c.blockIndex(block)])
				c.stats.Writebacks++
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
}
