package compare

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/insts"
)

// Status is the outcome for one component.
type Status int

// Component statuses.
const (
	Match Status = iota
	Mismatch
	Unobserved
)

func (s Status) String() string {
	switch s {
	case Match:
		return "ok"
	case Mismatch:
		return "MISMATCH"
	case Unobserved:
		return "unobserved"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Entry is the comparison of one component.
type Entry struct {
	// Component is "r0".."r15", "pc", "z", "n", "c", "p" or "out".
	Component string
	Status    Status
	Expected  uint32
	Actual    uint32

	// Note carries detail that does not fit in a word, such as the
	// output bytes.
	Note string
}

// Format renders the entry as "r3 iss=0000001E hw=0000001E ok" using the
// given labels for the two sides.
func (e Entry) Format(expectedLabel, actualLabel string) string {
	if e.Status == Unobserved {
		return fmt.Sprintf("%s %s", e.Component, e.Status)
	}

	verb := "%08X"
	if isFlag(e.Component) {
		verb = "%d"
	}
	line := fmt.Sprintf("%s %s="+verb+" %s="+verb+" %s",
		e.Component, expectedLabel, e.Expected, actualLabel, e.Actual, e.Status)
	if e.Note != "" {
		line += " (" + e.Note + ")"
	}
	return line
}

func isFlag(component string) bool {
	switch component {
	case "z", "n", "c", "p":
		return true
	}
	return false
}

// Result is the ordered outcome of a comparison.
type Result struct {
	Entries []Entry
}

// Passed reports whether no component mismatched. Unobserved components
// do not count either way.
func (r Result) Passed() bool {
	for _, e := range r.Entries {
		if e.Status == Mismatch {
			return false
		}
	}
	return true
}

// Mismatches returns the entries that did not match.
func (r Result) Mismatches() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == Mismatch {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of entries with the given status.
func (r Result) Count(s Status) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == s {
			n++
		}
	}
	return n
}

// String lists every mismatch, or "pass".
func (r Result) String() string {
	mismatches := r.Mismatches()
	if len(mismatches) == 0 {
		return "pass"
	}
	parts := make([]string, len(mismatches))
	for i, e := range mismatches {
		parts[i] = e.Format("expected", "actual")
	}
	return strings.Join(parts, "; ")
}

// Compare checks every register, PC and flag of actual against expected.
// It never stops at the first mismatch. A component is Unobserved when
// either side did not report it.
func Compare(expected, actual Snapshot) Result {
	var r Result

	both := expected.Observed & actual.Observed
	for i := 0; i < insts.NumRegs; i++ {
		r.add(fmt.Sprintf("r%d", i), both.Has(ObservedRegs), expected.Regs[i], actual.Regs[i])
	}

	r.add("pc", both.Has(ObservedPC), expected.PC, actual.PC)

	flagsSeen := both.Has(ObservedFlags)
	ef, af := flagWords(expected.Flags), flagWords(actual.Flags)
	for i, name := range []string{"z", "n", "c", "p"} {
		r.add(name, flagsSeen, ef[i], af[i])
	}

	return r
}

func (r *Result) add(component string, observed bool, expected, actual uint32) {
	e := Entry{Component: component, Expected: expected, Actual: actual}
	switch {
	case !observed:
		e.Status = Unobserved
	case expected == actual:
		e.Status = Match
	default:
		e.Status = Mismatch
	}
	r.Entries = append(r.Entries, e)
}

func flagWords(f emu.Flags) [4]uint32 {
	b := func(v bool) uint32 {
		if v {
			return 1
		}
		return 0
	}
	return [4]uint32{b(f.Z), b(f.N), b(f.C), b(f.P)}
}

// CheckOracle checks a snapshot against literal expected register values
// and output bytes. Only listed registers are checked, in index order.
// The output is always checked when the snapshot observes it.
func CheckOracle(s Snapshot, expectedRegs map[int]uint32, expectedOutput []byte) Result {
	var r Result

	regs := make([]int, 0, len(expectedRegs))
	for reg := range expectedRegs {
		regs = append(regs, reg)
	}
	sort.Ints(regs)

	for _, reg := range regs {
		name := fmt.Sprintf("r%d", reg)
		if reg < 0 || reg >= insts.NumRegs {
			r.Entries = append(r.Entries, Entry{
				Component: name,
				Status:    Mismatch,
				Expected:  expectedRegs[reg],
				Note:      "no such register",
			})
			continue
		}
		r.add(name, s.Observed.Has(ObservedRegs), expectedRegs[reg], s.Regs[reg])
	}

	out := Entry{
		Component: "out",
		Expected:  uint32(len(expectedOutput)),
		Actual:    uint32(len(s.Output)),
	}
	switch {
	case !s.Observed.Has(ObservedOutput):
		out.Status = Unobserved
	case bytes.Equal(expectedOutput, s.Output):
		out.Status = Match
	default:
		out.Status = Mismatch
		out.Note = fmt.Sprintf("want %q got %q", expectedOutput, s.Output)
	}
	r.Entries = append(r.Entries, out)

	return r
}
