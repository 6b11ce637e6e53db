package emu

import (
	"math/bits"

	"github.com/sarchlab/z32sim/insts"
)

// ALU implements Z32 arithmetic and logic operations.
//
// Every ALU operation, including CMP, updates all four flags:
//   - Z: result == 0
//   - N: bit 31 of the result
//   - C: operation specific (see each method), false for logic operations
//   - P: result has an even number of one bits
//
// Results destined for R0 are discarded but still set the flags.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Execute runs an ALU or compare instruction.
func (a *ALU) Execute(inst insts.Instruction) {
	rs1 := a.regFile.ReadReg(inst.Rs1)
	rs2 := a.regFile.ReadReg(inst.Rs2)
	imm := uint32(inst.Imm)

	switch inst.Op {
	case insts.OpADD:
		a.add(inst.Rd, rs1, rs2)
	case insts.OpADDI:
		a.add(inst.Rd, rs1, imm)
	case insts.OpSUB:
		a.sub(inst.Rd, rs1, rs2)
	case insts.OpCMP:
		a.sub(0, rs1, rs2)
	case insts.OpAND:
		a.logic(inst.Rd, rs1&rs2)
	case insts.OpANDI:
		a.logic(inst.Rd, rs1&imm)
	case insts.OpOR:
		a.logic(inst.Rd, rs1|rs2)
	case insts.OpORI:
		a.logic(inst.Rd, rs1|imm)
	case insts.OpXOR:
		a.logic(inst.Rd, rs1^rs2)
	case insts.OpXORI:
		a.logic(inst.Rd, rs1^imm)
	case insts.OpNOT:
		a.logic(inst.Rd, ^rs1)
	case insts.OpLUI:
		a.logic(inst.Rd, (imm&0x3FFFF)<<14)
	case insts.OpSHL:
		a.shl(inst.Rd, rs1, rs2)
	case insts.OpSHR:
		a.shr(inst.Rd, rs1, rs2)
	case insts.OpSAR:
		a.sar(inst.Rd, rs1, rs2)
	}
}

// add performs rd = op1 + op2. C is the unsigned carry out of bit 31.
func (a *ALU) add(rd uint8, op1, op2 uint32) {
	result, carry := bits.Add32(op1, op2, 0)
	a.regFile.WriteReg(rd, result)
	a.setFlags(result, carry == 1)
}

// sub performs rd = op1 - op2. C is the borrow, set when op1 < op2
// unsigned.
func (a *ALU) sub(rd uint8, op1, op2 uint32) {
	result, borrow := bits.Sub32(op1, op2, 0)
	a.regFile.WriteReg(rd, result)
	a.setFlags(result, borrow == 1)
}

func (a *ALU) logic(rd uint8, result uint32) {
	a.regFile.WriteReg(rd, result)
	a.setFlags(result, false)
}

// shl performs rd = value << (amount & 31). C is the last bit shifted out
// of bit 31, or false for a zero shift.
func (a *ALU) shl(rd uint8, value, amount uint32) {
	n := amount & 31
	result := value << n
	carry := n != 0 && (value>>(32-n))&1 == 1
	a.regFile.WriteReg(rd, result)
	a.setFlags(result, carry)
}

// shr performs a logical right shift. C is the last bit shifted out of
// bit 0, or false for a zero shift.
func (a *ALU) shr(rd uint8, value, amount uint32) {
	n := amount & 31
	result := value >> n
	carry := n != 0 && (value>>(n-1))&1 == 1
	a.regFile.WriteReg(rd, result)
	a.setFlags(result, carry)
}

// sar performs an arithmetic right shift. C follows shr.
func (a *ALU) sar(rd uint8, value, amount uint32) {
	n := amount & 31
	result := uint32(int32(value) >> n)
	carry := n != 0 && (value>>(n-1))&1 == 1
	a.regFile.WriteReg(rd, result)
	a.setFlags(result, carry)
}

func (a *ALU) setFlags(result uint32, carry bool) {
	a.regFile.Flags = Flags{
		Z: result == 0,
		N: result>>31 == 1,
		C: carry,
		P: bits.OnesCount32(result)%2 == 0,
	}
}
