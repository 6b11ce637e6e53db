package insts

import "fmt"

// Field describes a contiguous bit field inside an instruction word.
// Encoding and decoding both go through the same Field values, so a
// width can never disagree between the producer and the consumer.
type Field struct {
	Shift uint
	Width uint
}

// Bit layout of a Z32 instruction word.
const (
	OpcodeShift = 26
	OpcodeBits  = 6
	RdShift     = 22
	Rs1Shift    = 18
	Rs2Shift    = 14
	RegBits     = 4

	ImmBitsRegImm = 18
	ImmBitsJump   = 26

	// NumRegs is the number of architectural general-purpose registers.
	NumRegs = 1 << RegBits
	// WordSize is the width of one instruction word in bytes.
	WordSize = 4
)

// Instruction word fields.
var (
	FieldOpcode    = Field{Shift: OpcodeShift, Width: OpcodeBits}
	FieldRd        = Field{Shift: RdShift, Width: RegBits}
	FieldRs1       = Field{Shift: Rs1Shift, Width: RegBits}
	FieldRs2       = Field{Shift: Rs2Shift, Width: RegBits}
	FieldImmRegImm = Field{Shift: 0, Width: ImmBitsRegImm}
	FieldImmJump   = Field{Shift: 0, Width: ImmBitsJump}
)

func (f Field) mask() uint32 {
	return uint32(1)<<f.Width - 1
}

// Extract returns the unsigned value of the field.
func (f Field) Extract(word uint32) uint32 {
	return (word >> f.Shift) & f.mask()
}

// ExtractSigned returns the field sign-extended from its width.
func (f Field) ExtractSigned(word uint32) int32 {
	v := f.Extract(word)
	unused := 32 - f.Width
	return int32(v<<unused) >> unused
}

// Insert places v into the field. It fails with ErrFieldOverflow if v does
// not fit in the field width.
func (f Field) Insert(word, v uint32) (uint32, error) {
	if v&^f.mask() != 0 {
		return 0, fmt.Errorf("%w: value %d does not fit in %d bits", ErrFieldOverflow, v, f.Width)
	}
	return word | v<<f.Shift, nil
}

// InsertSigned places a two's complement v into the field. It fails with
// ErrFieldOverflow if v is outside the signed range of the field width.
func (f Field) InsertSigned(word uint32, v int32) (uint32, error) {
	lo, hi := f.SignedRange()
	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: immediate %d outside [%d, %d]", ErrFieldOverflow, v, lo, hi)
	}
	return word | (uint32(v)&f.mask())<<f.Shift, nil
}

// SignedRange returns the smallest and largest value representable in the
// field as a two's complement number.
func (f Field) SignedRange() (lo, hi int32) {
	hi = int32(1)<<(f.Width-1) - 1
	return -hi - 1, hi
}
