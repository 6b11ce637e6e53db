package emu

import (
	"fmt"
	"io"

	"github.com/sarchlab/z32sim/insts"
)

// StopReason tells why execution stopped.
type StopReason int

// Stop reasons.
const (
	// StopNone means execution can continue.
	StopNone StopReason = iota
	// StopHalt means a HALT instruction was executed.
	StopHalt
	// StopEndOfProgram means PC moved past the last program word.
	StopEndOfProgram
	// StopBudget means the instruction budget was used up.
	StopBudget
	// StopError means an instruction could not be fetched, decoded or
	// executed. PC points at that instruction.
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "running"
	case StopHalt:
		return "halt"
	case StopEndOfProgram:
		return "end-of-program"
	case StopBudget:
		return "budget"
	case StopError:
		return "error"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Stop is StopNone while execution can continue.
	Stop StopReason

	// Err is set when Stop is StopError.
	Err error
}

// RunResult summarizes a complete run.
type RunResult struct {
	Reason StopReason
	Steps  uint64
	Err    error
}

// Emulator executes Z32 instructions functionally.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder
	output  *OutputPort

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// Optional data cache, created from memory.
	newDataPort func(*Memory) DataPort
	dataPort    DataPort

	echo  io.Writer
	trace io.Writer

	// Execution state
	programEnd       uint32
	halted           bool
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithOutputEcho copies every byte written by OUT to w.
func WithOutputEcho(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.echo = w
	}
}

// WithTrace writes one disassembly line per executed instruction to w.
func WithTrace(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.trace = w
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithDataPort routes instruction fetches, loads and stores through a
// DataPort built on the emulator's memory. The port is flushed when Run
// returns, so memory contents match a run without it.
func WithDataPort(newPort func(*Memory) DataPort) EmulatorOption {
	return func(e *Emulator) {
		e.newDataPort = newPort
	}
}

// NewEmulator creates a new Z32 emulator with all-zero state.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{decoder: insts.NewDecoder()}

	for _, opt := range opts {
		opt(e)
	}

	e.Reset()

	return e
}

// Reset restores the all-zero initial state and forgets the loaded program.
func (e *Emulator) Reset() {
	e.regFile = &RegFile{}
	e.memory = NewMemory()
	e.output = NewOutputPort(e.echo)
	e.dataPort = nil
	if e.newDataPort != nil {
		e.dataPort = e.newDataPort(e.memory)
	}

	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory, e.dataPort)
	e.branchUnit = NewBranchUnit(e.regFile)

	e.programEnd = 0
	e.halted = false
	e.instructionCount = 0
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Output returns the bytes emitted by OUT instructions.
func (e *Emulator) Output() []byte {
	return e.output.Bytes()
}

// DataPort returns the data port, or nil if none is configured.
func (e *Emulator) DataPort() DataPort {
	return e.dataPort
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Halted reports whether a HALT instruction has been executed.
func (e *Emulator) Halted() bool {
	return e.halted
}

// LoadProgram stores the program words at address 0 and resets PC. The
// program bound used for the end-of-program condition is the number of
// words loaded.
func (e *Emulator) LoadProgram(words []uint32) error {
	if err := e.memory.LoadWords(0, words); err != nil {
		return err
	}
	e.programEnd = uint32(len(words)) * insts.WordSize
	e.regFile.PC = 0
	e.halted = false
	return nil
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Stop: StopHalt}
	}

	pc := e.regFile.PC
	if pc >= e.programEnd {
		return StepResult{Stop: StopEndOfProgram}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Stop: StopBudget}
	}

	// 1. Fetch
	word, err := e.lsu.Fetch(pc)
	if err != nil {
		return StepResult{Stop: StopError, Err: fmt.Errorf("fetch at PC=0x%08X: %w", pc, err)}
	}

	// 2. Decode
	inst, err := e.decoder.Decode(word)
	if err != nil {
		return StepResult{Stop: StopError, Err: fmt.Errorf("decode at PC=0x%08X: %w", pc, err)}
	}

	if e.trace != nil {
		_, _ = fmt.Fprintf(e.trace, "%08X: %08X  %s\n", pc, word, inst)
	}

	// 3. Execute
	if err := e.execute(inst); err != nil {
		e.regFile.PC = pc
		return StepResult{Stop: StopError, Err: fmt.Errorf("%s at PC=0x%08X: %w", inst.Op, pc, err)}
	}

	e.instructionCount++

	if e.halted {
		return StepResult{Stop: StopHalt}
	}
	return StepResult{}
}

// Run executes instructions until the program halts, runs off its end,
// exhausts the instruction budget or fails.
func (e *Emulator) Run() RunResult {
	defer e.lsu.Flush()

	for {
		result := e.Step()
		if result.Stop != StopNone {
			return RunResult{
				Reason: result.Stop,
				Steps:  e.instructionCount,
				Err:    result.Err,
			}
		}
	}
}

// execute dispatches and executes a decoded instruction. On error the
// register file may be partially updated only in PC, which Step restores.
func (e *Emulator) execute(inst insts.Instruction) error {
	info, _ := insts.Lookup(inst.Op)

	switch info.Class {
	case insts.ClassALU, insts.ClassCompare:
		e.alu.Execute(inst)
	case insts.ClassLoad, insts.ClassStore, insts.ClassStack:
		if err := e.executeMemory(inst); err != nil {
			return err
		}
	case insts.ClassBranch:
		e.executeBranch(inst)
		return nil // PC already updated
	case insts.ClassJump:
		return e.executeJump(inst) // PC updated on success
	case insts.ClassIO:
		e.output.Emit(byte(e.regFile.ReadReg(inst.Rs1)))
	case insts.ClassSystem:
		if inst.Op == insts.OpHALT {
			e.halted = true
		}
	default:
		return fmt.Errorf("%w: unhandled class for %s", insts.ErrInvalidOpcode, inst.Op)
	}

	// Advance PC by 4 (for non-branch instructions)
	e.branchUnit.Next()

	return nil
}

func (e *Emulator) executeMemory(inst insts.Instruction) error {
	switch inst.Op {
	case insts.OpLD:
		return e.lsu.LD(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpLDB:
		return e.lsu.LDB(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpST:
		return e.lsu.ST(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSTB:
		return e.lsu.STB(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpPUSH:
		return e.lsu.PUSH(inst.Rs1)
	case insts.OpPOP:
		return e.lsu.POP(inst.Rd)
	}
	return nil
}

func (e *Emulator) executeBranch(inst insts.Instruction) {
	if inst.Op == insts.OpDBNZ {
		e.branchUnit.DBNZ(inst.Rd, inst.Imm)
		return
	}
	e.branchUnit.BCond(inst.Op, inst.Imm)
}

func (e *Emulator) executeJump(inst insts.Instruction) error {
	switch inst.Op {
	case insts.OpJMP:
		e.branchUnit.B(inst.Imm)
	case insts.OpJAL:
		e.branchUnit.JAL(inst.Rd, inst.Imm)
	case insts.OpJR:
		e.branchUnit.JR(inst.Rs1)
	case insts.OpCALL:
		if err := e.lsu.Push(e.regFile.PC + 4); err != nil {
			return err
		}
		e.branchUnit.B(inst.Imm)
	case insts.OpRET:
		addr, err := e.lsu.Pop()
		if err != nil {
			return err
		}
		e.branchUnit.Return(addr)
	}
	return nil
}
