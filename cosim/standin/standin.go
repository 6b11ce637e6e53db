// Package standin is a stand-in for the Z32 hardware simulator. It speaks
// the same command line and REGDUMP protocol but executes the program on
// the instruction-set simulator, which makes the co-simulation path
// testable without the RTL model.
package standin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sarchlab/z32sim/cosim"
	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/insts"
	"github.com/sarchlab/z32sim/loader"
)

// Environment variables read by Main.
const (
	// ModeEnv, when non-empty, tells a host binary to behave as the
	// stand-in. Main itself does not read it.
	ModeEnv = "Z32_STANDIN"

	// FaultEnv selects an injected fault:
	//
	//	hang          never exit
	//	garbage       print a malformed dump
	//	partial       print only half of the dump
	//	exit          exit 3 without a dump
	//	flip:<reg>    invert bit 0 of register <reg> in the dump
	FaultEnv = "Z32_STANDIN_FAULT"
)

// DefaultMaxSteps matches the hardware simulation's cycle bound.
const DefaultMaxSteps = 200

var errUsage = errors.New("usage: +rom=<path> [+max_steps=<n>]")

type options struct {
	rom      string
	maxSteps uint64
}

func parseArgs(args []string) (options, error) {
	opts := options{maxSteps: DefaultMaxSteps}
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "+rom="):
			opts.rom = strings.TrimPrefix(arg, "+rom=")
		case strings.HasPrefix(arg, "+max_steps="):
			n, err := strconv.ParseUint(strings.TrimPrefix(arg, "+max_steps="), 10, 64)
			if err != nil {
				return opts, fmt.Errorf("%w: %v", errUsage, err)
			}
			opts.maxSteps = n
		}
	}
	if opts.rom == "" {
		return opts, errUsage
	}
	return opts, nil
}

// Main runs the stand-in and returns the process exit code.
func Main(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	fault := os.Getenv(FaultEnv)
	if fault == "hang" {
		fmt.Fprintln(stdout, "- standin: waiting forever")
		for {
			time.Sleep(time.Hour)
		}
	}

	p, err := loader.Load(opts.rom)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintf(stdout, "- standin: loaded %d words from %s\n", p.Len(), opts.rom)

	e := emu.NewEmulator(emu.WithMaxInstructions(opts.maxSteps))
	if err := e.LoadProgram(p.Words()); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	result := e.Run()
	fmt.Fprintf(stdout, "- standin: stopped (%s) after %d steps\n", result.Reason, result.Steps)
	if result.Err != nil {
		fmt.Fprintf(stdout, "- standin: %v\n", result.Err)
	}

	regs := e.RegFile().R
	return dump(stdout, stderr, fault, regs)
}

func dump(stdout, stderr io.Writer, fault string, regs [insts.NumRegs]uint32) int {
	switch {
	case fault == "exit":
		fmt.Fprintln(stderr, "standin: injected failure")
		return 3
	case fault == "garbage":
		for i := range regs {
			fmt.Fprintf(stdout, "%s %d zz%06x\n", cosim.DumpTag, i, i)
		}
		return 0
	case fault == "partial":
		for i := 0; i < insts.NumRegs/2; i++ {
			fmt.Fprintf(stdout, "%s %d %08x\n", cosim.DumpTag, i, regs[i])
		}
		return 0
	case strings.HasPrefix(fault, "flip:"):
		reg, err := strconv.Atoi(strings.TrimPrefix(fault, "flip:"))
		if err != nil || reg < 0 || reg >= insts.NumRegs {
			fmt.Fprintf(stderr, "standin: bad fault %q\n", fault)
			return 2
		}
		regs[reg] ^= 1
	}

	if err := cosim.FormatDump(stdout, regs); err != nil {
		return 1
	}
	fmt.Fprintln(stdout, "- standin: $finish")
	return 0
}
