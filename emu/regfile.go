// Package emu provides functional Z32 emulation.
package emu

import "github.com/sarchlab/z32sim/insts"

// SPReg is the register used as the stack pointer by PUSH, POP, CALL and RET.
const SPReg uint8 = 15

// RegFile represents the Z32 architectural register state.
// It contains 16 general-purpose registers (R0-R15), the program
// counter (PC) and the condition flags.
type RegFile struct {
	// R holds general-purpose registers R0-R15.
	// R[0] is hard-wired to zero: it always reads as 0 and writes to it
	// are discarded.
	R [insts.NumRegs]uint32

	// PC is the program counter. It is always a multiple of 4.
	PC uint32

	// Flags holds the condition flags.
	Flags Flags
}

// Flags represents the Z32 condition flags.
type Flags struct {
	// Z is the zero flag.
	Z bool
	// N is the negative flag (bit 31 of the result).
	N bool
	// C is the carry flag.
	C bool
	// P is the parity flag, set when the result has an even number of
	// one bits.
	P bool
}

// String renders the flags as "ZNCP" with cleared flags shown as '-'.
func (f Flags) String() string {
	b := []byte("----")
	if f.Z {
		b[0] = 'Z'
	}
	if f.N {
		b[1] = 'N'
	}
	if f.C {
		b[2] = 'C'
	}
	if f.P {
		b[3] = 'P'
	}
	return string(b)
}

// ReadReg reads a register value. Register 0 and out-of-range indices
// return 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= insts.NumRegs {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to register 0 and to
// out-of-range indices are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 || reg >= insts.NumRegs {
		return
	}
	r.R[reg] = value
}

// SP returns the stack pointer.
func (r *RegFile) SP() uint32 {
	return r.R[SPReg]
}

// SetSP sets the stack pointer.
func (r *RegFile) SetSP(value uint32) {
	r.R[SPReg] = value
}
