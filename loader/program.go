// Package loader provides Z32 programs and the hex interchange format
// shared by the instruction-set simulator and the hardware simulator's ROM
// preload.
package loader

import "github.com/sarchlab/z32sim/insts"

// Program is an ordered, immutable sequence of instruction words. The word
// at index i lives at address i*4.
type Program struct {
	name  string
	words []uint32
}

// NewProgram creates a program from a copy of words.
func NewProgram(name string, words []uint32) Program {
	w := make([]uint32, len(words))
	copy(w, words)
	return Program{name: name, words: w}
}

// Assemble encodes instructions into a program. It fails on the first
// instruction that cannot be encoded.
func Assemble(name string, instrs ...insts.Instruction) (Program, error) {
	words := make([]uint32, len(instrs))
	for i, inst := range instrs {
		w, err := insts.Encode(inst)
		if err != nil {
			return Program{}, err
		}
		words[i] = w
	}
	return Program{name: name, words: words}, nil
}

// Name returns the program's name.
func (p Program) Name() string {
	return p.name
}

// Len returns the number of words.
func (p Program) Len() int {
	return len(p.words)
}

// Word returns the word at index i.
func (p Program) Word(i int) uint32 {
	return p.words[i]
}

// Words returns a copy of the program words.
func (p Program) Words() []uint32 {
	w := make([]uint32, len(p.words))
	copy(w, p.words)
	return w
}

// Disassemble returns one line per word, "ADDR: WORD  TEXT". Words with an
// invalid opcode are shown as ".word".
func (p Program) Disassemble() []string {
	decoder := insts.NewDecoder()
	lines := make([]string, len(p.words))
	for i, w := range p.words {
		text := ".word"
		if inst, err := decoder.Decode(w); err == nil {
			text = inst.String()
		}
		lines[i] = formatLine(uint32(i)*insts.WordSize, w, text)
	}
	return lines
}
