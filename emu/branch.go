package emu

import "github.com/sarchlab/z32sim/insts"

// BranchUnit implements Z32 control transfer.
//
// Relative targets are word offsets from the following instruction:
// target = PC + 4 + offset*4, modulo 2^32.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Target computes the relative branch target for the current PC.
func (b *BranchUnit) Target(offset int32) uint32 {
	return b.regFile.PC + 4 + uint32(offset)*4
}

// Next advances PC past the current instruction.
func (b *BranchUnit) Next() {
	b.regFile.PC += 4
}

// B performs an unconditional relative branch.
func (b *BranchUnit) B(offset int32) {
	b.regFile.PC = b.Target(offset)
}

// BCond branches if the opcode's flag condition holds, otherwise it
// advances PC.
func (b *BranchUnit) BCond(op insts.Op, offset int32) {
	if b.CheckCondition(op) {
		b.B(offset)
		return
	}
	b.Next()
}

// CheckCondition evaluates a conditional branch opcode against the flags.
func (b *BranchUnit) CheckCondition(op insts.Op) bool {
	f := b.regFile.Flags

	switch op {
	case insts.OpBEQ:
		return f.Z
	case insts.OpBNE:
		return !f.Z
	case insts.OpBMI:
		return f.N
	case insts.OpBPL:
		return !f.N
	case insts.OpBCS:
		return f.C
	case insts.OpBCC:
		return !f.C
	default:
		return false
	}
}

// DBNZ decrements rd and branches if the decremented value is not zero.
// The decision uses the computed value, so DBNZ on R0 always branches.
// Flags are not affected.
func (b *BranchUnit) DBNZ(rd uint8, offset int32) {
	value := b.regFile.ReadReg(rd) - 1
	b.regFile.WriteReg(rd, value)
	if value != 0 {
		b.B(offset)
		return
	}
	b.Next()
}

// JAL saves the return address (PC + 4) to rd and branches.
func (b *BranchUnit) JAL(rd uint8, offset int32) {
	target := b.Target(offset)
	b.regFile.WriteReg(rd, b.regFile.PC+4)
	b.regFile.PC = target
}

// JR jumps to the address in rs1 with the low two bits cleared.
func (b *BranchUnit) JR(rs1 uint8) {
	b.regFile.PC = b.regFile.ReadReg(rs1) &^ 3
}

// Return jumps to an address popped from the stack, with the low two bits
// cleared.
func (b *BranchUnit) Return(addr uint32) {
	b.regFile.PC = addr &^ 3
}
