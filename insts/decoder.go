package insts

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrInvalidOpcode is returned when an opcode has no table entry.
	ErrInvalidOpcode = errors.New("invalid opcode")
	// ErrFieldOverflow is returned when an operand does not fit its field.
	ErrFieldOverflow = errors.New("field overflow")
	// ErrFormatMismatch is returned when an instruction's format disagrees
	// with the opcode table.
	ErrFormatMismatch = errors.New("format mismatch")
)

// Instruction represents a decoded Z32 instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format, always the table's format for Op

	Rd  uint8 // Destination register (RegReg, RegImm)
	Rs1 uint8 // First source register (RegReg, RegImm)
	Rs2 uint8 // Second source register (RegReg)

	// Imm is the sign-extended immediate: 18 bits for RegImm, 26 bits for
	// Jump, always zero for RegReg.
	Imm int32
}

// Decoder decodes Z32 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new Z32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. Reserved bits of the RegReg
// format are ignored.
func (d *Decoder) Decode(word uint32) (Instruction, error) {
	op := Op(FieldOpcode.Extract(word))

	info, ok := Lookup(op)
	if !ok {
		return Instruction{}, fmt.Errorf("%w: 0x%02X in word 0x%08X", ErrInvalidOpcode, uint8(op), word)
	}

	inst := Instruction{Op: op, Format: info.Format}
	layout := info.Format.Layout()

	if layout.Rd.Width > 0 {
		inst.Rd = uint8(layout.Rd.Extract(word))
	}
	if layout.Rs1.Width > 0 {
		inst.Rs1 = uint8(layout.Rs1.Extract(word))
	}
	if layout.Rs2.Width > 0 {
		inst.Rs2 = uint8(layout.Rs2.Extract(word))
	}
	if layout.Imm.Width > 0 {
		inst.Imm = layout.Imm.ExtractSigned(word)
	}

	return inst, nil
}
