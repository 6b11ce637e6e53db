package cache

import (
	"github.com/sarchlab/z32sim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore. Blocks are always
// aligned and inside memory, so bounds errors cannot occur.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches a block from the backing memory.
func (m *MemoryBacking) Read(addr uint32, size int) []byte {
	data, err := m.memory.ReadBlock(addr, size)
	if err != nil {
		panic(err)
	}
	return data
}

// Write stores a block to the backing memory.
func (m *MemoryBacking) Write(addr uint32, data []byte) {
	if err := m.memory.WriteBlock(addr, data); err != nil {
		panic(err)
	}
}
