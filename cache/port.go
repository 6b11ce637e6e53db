package cache

import (
	"github.com/sarchlab/z32sim/emu"
)

// DataPort adapts a Cache backed by emu.Memory to emu.DataPort.
type DataPort struct {
	*Cache
}

// Load implements emu.DataPort.
func (p DataPort) Load(addr uint32, size int) uint32 {
	return p.Read(addr, size).Data
}

// Store implements emu.DataPort.
func (p DataPort) Store(addr uint32, size int, value uint32) {
	p.Write(addr, size, value)
}

// NewDataPort returns a factory for emu.WithDataPort that places a fresh
// cache with the given geometry in front of the emulator's memory. The
// config must already be valid.
func NewDataPort(config Config) func(*emu.Memory) emu.DataPort {
	return func(memory *emu.Memory) emu.DataPort {
		c, err := New(config, NewMemoryBacking(memory))
		if err != nil {
			panic(err)
		}
		return DataPort{Cache: c}
	}
}

// StatsOf returns the statistics of a port created by NewDataPort, or false
// for any other port.
func StatsOf(port emu.DataPort) (Statistics, bool) {
	p, ok := port.(DataPort)
	if !ok {
		return Statistics{}, false
	}
	return p.Stats(), true
}
