// Package gen builds Z32 test programs: directed scenarios with literal
// expected results, and seeded random programs for differential testing.
package gen

import (
	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/insts"
	"github.com/sarchlab/z32sim/loader"
)

// StackBase is the stack pointer value the directed scenarios start from.
const StackBase = 0xFF00

// Scenario is a directed test program together with its oracle.
type Scenario struct {
	Name        string
	Description string
	Program     loader.Program

	// ExpectedRegs maps register index to its value after the run.
	// Registers not listed are not checked.
	ExpectedRegs map[int]uint32

	// ExpectedOutput is the exact byte sequence OUT must produce.
	ExpectedOutput []byte
}

// Directed returns the standard directed scenarios.
func Directed() []Scenario {
	return []Scenario{
		arithmetic(),
		branchLoop(),
		stack(),
		output(),
		absoluteMemory(),
		indirectMemory(),
		callReturn(),
		flagsCompare(),
	}
}

// DirectedByName returns the directed scenario with the given name.
func DirectedByName(name string) (Scenario, bool) {
	for _, s := range Directed() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

func build(name string, instrs ...insts.Instruction) loader.Program {
	words := make([]uint32, len(instrs))
	for i, inst := range instrs {
		words[i] = insts.MustEncode(inst)
	}
	return loader.NewProgram(name, words)
}

var halt = insts.J(insts.OpHALT, 0)

func arithmetic() Scenario {
	return Scenario{
		Name:        "arithmetic",
		Description: "R3 = R1 + R2 with immediates 10 and 20",
		Program: build("arithmetic",
			insts.RI(insts.OpADDI, 1, 0, 10),
			insts.RI(insts.OpADDI, 2, 0, 20),
			insts.RR(insts.OpADD, 3, 1, 2),
			halt,
		),
		ExpectedRegs: map[int]uint32{1: 10, 2: 20, 3: 30},
	}
}

func branchLoop() Scenario {
	return Scenario{
		Name:        "branch_loop",
		Description: "DBNZ counts R1 down from 3 while R2 counts iterations",
		Program: build("branch_loop",
			insts.RI(insts.OpADDI, 1, 0, 3),
			insts.RI(insts.OpADDI, 2, 2, 1), // loop:
			insts.RI(insts.OpDBNZ, 1, 0, -2),
			halt,
		),
		ExpectedRegs: map[int]uint32{1: 0, 2: 3},
	}
}

func stack() Scenario {
	return Scenario{
		Name:        "stack",
		Description: "PUSH then POP restores R1 and the stack pointer",
		Program: build("stack",
			insts.RI(insts.OpADDI, emu.SPReg, 0, StackBase),
			insts.RI(insts.OpADDI, 1, 0, 42),
			insts.RR(insts.OpPUSH, 0, 1, 0),
			insts.RI(insts.OpADDI, 1, 0, 0),
			insts.RR(insts.OpPOP, 1, 0, 0),
			halt,
		),
		ExpectedRegs: map[int]uint32{1: 42, int(emu.SPReg): StackBase},
	}
}

func output() Scenario {
	return Scenario{
		Name:        "io",
		Description: "OUT writes a single 'X' to the output port",
		Program: build("io",
			insts.RI(insts.OpADDI, 1, 0, 'X'),
			insts.RR(insts.OpOUT, 0, 1, 0),
			halt,
		),
		ExpectedRegs:   map[int]uint32{1: 'X'},
		ExpectedOutput: []byte{'X'},
	}
}

func absoluteMemory() Scenario {
	return Scenario{
		Name:        "absolute_memory",
		Description: "store and reload through an absolute address",
		Program: build("absolute_memory",
			insts.RI(insts.OpADDI, 1, 0, 123),
			insts.RI(insts.OpST, 1, 0, 0x10),
			insts.RI(insts.OpLD, 2, 0, 0x10),
			halt,
		),
		ExpectedRegs: map[int]uint32{1: 123, 2: 123},
	}
}

func indirectMemory() Scenario {
	return Scenario{
		Name:        "indirect_memory",
		Description: "store and reload through a pointer in R3",
		Program: build("indirect_memory",
			insts.RI(insts.OpADDI, 3, 0, 0x20),
			insts.RI(insts.OpADDI, 1, 0, 77),
			insts.RI(insts.OpST, 1, 3, 0),
			insts.RI(insts.OpLD, 2, 3, 0),
			halt,
		),
		ExpectedRegs: map[int]uint32{1: 77, 2: 77, 3: 0x20},
	}
}

func callReturn() Scenario {
	return Scenario{
		Name:        "call_return",
		Description: "CALL a subroutine that sets R4, RET back to HALT",
		Program: build("call_return",
			insts.RI(insts.OpADDI, emu.SPReg, 0, StackBase),
			insts.J(insts.OpCALL, 1),
			halt,
			insts.RI(insts.OpADDI, 4, 0, 99), // subroutine
			insts.J(insts.OpRET, 0),
		),
		ExpectedRegs: map[int]uint32{4: 99, int(emu.SPReg): StackBase},
	}
}

func flagsCompare() Scenario {
	return Scenario{
		Name:        "flags_compare",
		Description: "CMP selects the BEQ and BNE taken paths",
		Program: build("flags_compare",
			insts.RI(insts.OpADDI, 1, 0, 5),
			insts.RI(insts.OpADDI, 2, 0, 5),
			insts.RR(insts.OpCMP, 0, 1, 2),
			insts.RI(insts.OpBEQ, 0, 0, 2),
			insts.RI(insts.OpADDI, 5, 0, 1),
			halt,
			insts.RI(insts.OpADDI, 5, 0, 2), // equal:
			insts.RR(insts.OpCMP, 0, 1, 0),
			insts.RI(insts.OpBNE, 0, 0, 1),
			halt,
			insts.RI(insts.OpADDI, 6, 0, 3), // not equal:
			halt,
		),
		ExpectedRegs: map[int]uint32{5: 2, 6: 3},
	}
}
