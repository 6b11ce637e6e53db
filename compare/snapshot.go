// Package compare checks Z32 architectural state from two sources, or from
// one source against literal expected values, component by component.
package compare

import (
	"github.com/google/go-cmp/cmp"

	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/insts"
)

// Observed is a set of state components a source can report.
type Observed uint8

// Observable components.
const (
	ObservedRegs Observed = 1 << iota
	ObservedPC
	ObservedFlags
	ObservedOutput

	ObservedAll = ObservedRegs | ObservedPC | ObservedFlags | ObservedOutput
)

// Has reports whether every component in o2 is in o.
func (o Observed) Has(o2 Observed) bool {
	return o&o2 == o2
}

// Snapshot is the final architectural state reported by one model.
// Components missing from Observed hold zero values and are not compared.
type Snapshot struct {
	Regs     [insts.NumRegs]uint32
	PC       uint32
	Flags    emu.Flags
	Output   []byte
	Observed Observed
}

// FromEmulator captures the full state of an emulator.
func FromEmulator(e *emu.Emulator) Snapshot {
	rf := e.RegFile()
	return Snapshot{
		Regs:     rf.R,
		PC:       rf.PC,
		Flags:    rf.Flags,
		Output:   e.Output(),
		Observed: ObservedAll,
	}
}

// FromRegisters builds a snapshot that observes the registers only, as
// reported by a register dump.
func FromRegisters(regs [insts.NumRegs]uint32) Snapshot {
	return Snapshot{Regs: regs, Observed: ObservedRegs}
}

// Diff returns a human-readable diff of two snapshots, or "" if they are
// identical including unobserved components.
func Diff(expected, actual Snapshot) string {
	return cmp.Diff(expected, actual)
}
