package insts

import "fmt"

// Encode packs an instruction into a 32-bit word. Operands that do not fit
// their field, or that the format has no field for, fail with
// ErrFieldOverflow; nothing is ever truncated.
func Encode(inst Instruction) (uint32, error) {
	info, ok := Lookup(inst.Op)
	if !ok {
		return 0, fmt.Errorf("%w: 0x%02X", ErrInvalidOpcode, uint8(inst.Op))
	}
	if inst.Format != FormatUnknown && inst.Format != info.Format {
		return 0, fmt.Errorf("%w: %s is %s, not %s", ErrFormatMismatch, info.Mnemonic, info.Format, inst.Format)
	}

	layout := info.Format.Layout()

	word, err := FieldOpcode.Insert(0, uint32(inst.Op))
	if err != nil {
		return 0, err
	}

	regs := []struct {
		name  string
		field Field
		value uint8
	}{
		{"rd", layout.Rd, inst.Rd},
		{"rs1", layout.Rs1, inst.Rs1},
		{"rs2", layout.Rs2, inst.Rs2},
	}
	for _, r := range regs {
		word, err = r.field.Insert(word, uint32(r.value))
		if err != nil {
			return 0, fmt.Errorf("%s %s: %w", info.Mnemonic, r.name, err)
		}
	}

	if layout.Imm.Width == 0 {
		if inst.Imm != 0 {
			return 0, fmt.Errorf("%s imm: %w: %s format has no immediate", info.Mnemonic, ErrFieldOverflow, info.Format)
		}
		return word, nil
	}

	word, err = layout.Imm.InsertSigned(word, inst.Imm)
	if err != nil {
		return 0, fmt.Errorf("%s imm: %w", info.Mnemonic, err)
	}

	return word, nil
}

// MustEncode is like Encode but panics on error. It is intended for
// programs built from constants.
func MustEncode(inst Instruction) uint32 {
	word, err := Encode(inst)
	if err != nil {
		panic(err)
	}
	return word
}

// RR builds a register-register instruction.
func RR(op Op, rd, rs1, rs2 uint8) Instruction {
	return Instruction{Op: op, Format: FormatRegReg, Rd: rd, Rs1: rs1, Rs2: rs2}
}

// RI builds a register-immediate instruction.
func RI(op Op, rd, rs1 uint8, imm int32) Instruction {
	return Instruction{Op: op, Format: FormatRegImm, Rd: rd, Rs1: rs1, Imm: imm}
}

// J builds a jump-format instruction.
func J(op Op, imm int32) Instruction {
	return Instruction{Op: op, Format: FormatJump, Imm: imm}
}
