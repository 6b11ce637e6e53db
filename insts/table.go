package insts

import (
	"fmt"
	"strings"
)

// TableVersion identifies the revision of the canonical opcode table. It is
// bumped whenever an opcode is added, removed or changes semantics, so that
// hardware images and golden-model results can be matched up.
const TableVersion = 1

// Op represents a Z32 opcode. Its numeric value is the 6-bit opcode field.
type Op uint8

// Z32 opcodes.
const (
	OpNOP  Op = 0x00
	OpADD  Op = 0x01
	OpSUB  Op = 0x02
	OpAND  Op = 0x03
	OpOR   Op = 0x04
	OpXOR  Op = 0x05
	OpNOT  Op = 0x06
	OpSHL  Op = 0x07
	OpSHR  Op = 0x08
	OpSAR  Op = 0x09
	OpADDI Op = 0x0A
	OpANDI Op = 0x0B
	OpORI  Op = 0x0C
	OpXORI Op = 0x0D
	OpLUI  Op = 0x0E
	OpCMP  Op = 0x0F
	OpLD   Op = 0x10
	OpST   Op = 0x11
	OpLDB  Op = 0x12
	OpSTB  Op = 0x13
	OpPUSH Op = 0x14
	OpPOP  Op = 0x15
	OpBEQ  Op = 0x18
	OpBNE  Op = 0x19
	OpBMI  Op = 0x1A
	OpBPL  Op = 0x1B
	OpJAL  Op = 0x1C
	OpJR   Op = 0x1D
	OpBCS  Op = 0x1E
	OpBCC  Op = 0x1F
	OpDBNZ Op = 0x20
	OpJMP  Op = 0x21
	OpCALL Op = 0x22
	OpRET  Op = 0x23
	OpOUT  Op = 0x24
	OpHALT Op = 0x3F
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatRegReg
	FormatRegImm
	FormatJump
)

func (f Format) String() string {
	switch f {
	case FormatRegReg:
		return "RegReg"
	case FormatRegImm:
		return "RegImm"
	case FormatJump:
		return "Jump"
	default:
		return "Unknown"
	}
}

// Layout returns the fields a format carries besides the opcode.
// A zero-width Field means the format has no such operand.
func (f Format) Layout() Layout {
	switch f {
	case FormatRegReg:
		return Layout{Rd: FieldRd, Rs1: FieldRs1, Rs2: FieldRs2}
	case FormatRegImm:
		return Layout{Rd: FieldRd, Rs1: FieldRs1, Imm: FieldImmRegImm}
	case FormatJump:
		return Layout{Imm: FieldImmJump}
	default:
		return Layout{}
	}
}

// Layout lists the operand fields of a format.
type Layout struct {
	Rd  Field
	Rs1 Field
	Rs2 Field
	Imm Field
}

// Class groups opcodes by the execution unit that handles them.
type Class uint8

// Opcode classes.
const (
	ClassSystem Class = iota // NOP, HALT
	ClassALU                 // register and immediate arithmetic/logic
	ClassCompare             // CMP
	ClassLoad                // LD, LDB
	ClassStore               // ST, STB
	ClassStack               // PUSH, POP
	ClassBranch              // flag-conditional relative branches, DBNZ
	ClassJump                // JMP, JAL, JR, CALL, RET
	ClassIO                  // OUT
)

// OpInfo is one row of the opcode table.
type OpInfo struct {
	Op       Op
	Mnemonic string
	Format   Format
	Class    Class

	// Safe opcodes have defined behavior for any operand values and never
	// transfer control, so they can be drawn freely by the fuzzer.
	Safe bool
}

// table is the canonical opcode table, indexed by opcode value. Rows with an
// empty Mnemonic are invalid opcodes.
var table = buildTable([]OpInfo{
	{OpNOP, "NOP", FormatJump, ClassSystem, true},
	{OpADD, "ADD", FormatRegReg, ClassALU, true},
	{OpSUB, "SUB", FormatRegReg, ClassALU, true},
	{OpAND, "AND", FormatRegReg, ClassALU, true},
	{OpOR, "OR", FormatRegReg, ClassALU, true},
	{OpXOR, "XOR", FormatRegReg, ClassALU, true},
	{OpNOT, "NOT", FormatRegReg, ClassALU, true},
	{OpSHL, "SHL", FormatRegReg, ClassALU, true},
	{OpSHR, "SHR", FormatRegReg, ClassALU, true},
	{OpSAR, "SAR", FormatRegReg, ClassALU, true},
	{OpADDI, "ADDI", FormatRegImm, ClassALU, true},
	{OpANDI, "ANDI", FormatRegImm, ClassALU, true},
	{OpORI, "ORI", FormatRegImm, ClassALU, true},
	{OpXORI, "XORI", FormatRegImm, ClassALU, true},
	{OpLUI, "LUI", FormatRegImm, ClassALU, true},
	{OpCMP, "CMP", FormatRegReg, ClassCompare, true},
	{OpLD, "LD", FormatRegImm, ClassLoad, false},
	{OpST, "ST", FormatRegImm, ClassStore, false},
	{OpLDB, "LDB", FormatRegImm, ClassLoad, false},
	{OpSTB, "STB", FormatRegImm, ClassStore, false},
	{OpPUSH, "PUSH", FormatRegReg, ClassStack, false},
	{OpPOP, "POP", FormatRegReg, ClassStack, false},
	{OpBEQ, "BEQ", FormatRegImm, ClassBranch, false},
	{OpBNE, "BNE", FormatRegImm, ClassBranch, false},
	{OpBMI, "BMI", FormatRegImm, ClassBranch, false},
	{OpBPL, "BPL", FormatRegImm, ClassBranch, false},
	{OpJAL, "JAL", FormatRegImm, ClassJump, false},
	{OpJR, "JR", FormatRegReg, ClassJump, false},
	{OpBCS, "BCS", FormatRegImm, ClassBranch, false},
	{OpBCC, "BCC", FormatRegImm, ClassBranch, false},
	{OpDBNZ, "DBNZ", FormatRegImm, ClassBranch, false},
	{OpJMP, "JMP", FormatJump, ClassJump, false},
	{OpCALL, "CALL", FormatJump, ClassJump, false},
	{OpRET, "RET", FormatJump, ClassJump, false},
	{OpOUT, "OUT", FormatRegReg, ClassIO, true},
	{OpHALT, "HALT", FormatJump, ClassSystem, false},
})

func buildTable(rows []OpInfo) [1 << OpcodeBits]OpInfo {
	var t [1 << OpcodeBits]OpInfo
	for _, row := range rows {
		if t[row.Op].Mnemonic != "" {
			panic("insts: duplicate opcode " + row.Mnemonic)
		}
		t[row.Op] = row
	}
	return t
}

// Lookup returns the table row for an opcode.
func Lookup(op Op) (OpInfo, bool) {
	if int(op) >= len(table) {
		return OpInfo{}, false
	}
	info := table[op]
	return info, info.Mnemonic != ""
}

// ParseMnemonic finds the opcode with the given mnemonic (case-insensitive).
func ParseMnemonic(name string) (Op, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, info := range table {
		if info.Mnemonic != "" && info.Mnemonic == name {
			return info.Op, true
		}
	}
	return 0, false
}

// SafeOps returns the opcodes marked safe for random generation, in
// ascending order.
func SafeOps() []Op {
	var ops []Op
	for _, info := range table {
		if info.Mnemonic != "" && info.Safe {
			ops = append(ops, info.Op)
		}
	}
	return ops
}

// ValidOps returns every defined opcode in ascending order.
func ValidOps() []Op {
	var ops []Op
	for _, info := range table {
		if info.Mnemonic != "" {
			ops = append(ops, info.Op)
		}
	}
	return ops
}

func (op Op) String() string {
	if info, ok := Lookup(op); ok {
		return info.Mnemonic
	}
	return fmt.Sprintf("OP(0x%02X)", uint8(op))
}
