package insts

import "fmt"

// String renders the instruction in assembler syntax, e.g. "ADDI r1, r0, 10"
// or "LD r2, [r3+4]". Branch and jump targets are word offsets relative to
// the following instruction.
func (i Instruction) String() string {
	info, ok := Lookup(i.Op)
	if !ok {
		return i.Op.String()
	}
	m := info.Mnemonic

	switch i.Op {
	case OpNOP, OpHALT, OpRET:
		return m
	case OpNOT:
		return fmt.Sprintf("%s r%d, r%d", m, i.Rd, i.Rs1)
	case OpCMP:
		return fmt.Sprintf("%s r%d, r%d", m, i.Rs1, i.Rs2)
	case OpPUSH, OpJR, OpOUT:
		return fmt.Sprintf("%s r%d", m, i.Rs1)
	case OpPOP:
		return fmt.Sprintf("%s r%d", m, i.Rd)
	case OpLUI:
		return fmt.Sprintf("%s r%d, 0x%05X", m, i.Rd, uint32(i.Imm)&0x3FFFF)
	case OpLD, OpLDB, OpST, OpSTB:
		return fmt.Sprintf("%s r%d, [r%d%+d]", m, i.Rd, i.Rs1, i.Imm)
	case OpJAL, OpDBNZ:
		return fmt.Sprintf("%s r%d, %d", m, i.Rd, i.Imm)
	}

	switch info.Class {
	case ClassBranch, ClassJump:
		return fmt.Sprintf("%s %d", m, i.Imm)
	}

	switch info.Format {
	case FormatRegReg:
		return fmt.Sprintf("%s r%d, r%d, r%d", m, i.Rd, i.Rs1, i.Rs2)
	case FormatRegImm:
		return fmt.Sprintf("%s r%d, r%d, %d", m, i.Rd, i.Rs1, i.Imm)
	default:
		return fmt.Sprintf("%s %d", m, i.Imm)
	}
}
