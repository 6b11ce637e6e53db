// Package main provides the Z32 instruction-set simulator CLI.
// It runs a hex program to completion and prints the final state.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp/v3"

	"github.com/sarchlab/z32sim/cache"
	"github.com/sarchlab/z32sim/compare"
	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/loader"
)

var (
	maxSteps = flag.Uint64("max-steps", 0, "Instruction budget (0 = unlimited)")
	trace    = flag.Bool("trace", false, "Print each executed instruction")
	useCache = flag.Bool("cache", false, "Run with the default data cache")
	echo     = flag.Bool("echo", true, "Copy OUT bytes to stdout as they are produced")
	disasm   = flag.Bool("d", false, "Disassemble the program and exit")
	verbose  = flag.Bool("v", false, "Pretty-print the final state")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: z32iss [options] <program.hex>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *disasm {
		for _, line := range prog.Disassemble() {
			fmt.Println(line)
		}
		return
	}

	os.Exit(run(prog, os.Stdout))
}

func run(prog loader.Program, stdout io.Writer) int {
	opts := []emu.EmulatorOption{emu.WithMaxInstructions(*maxSteps)}
	if *trace {
		opts = append(opts, emu.WithTrace(stdout))
	}
	if *echo {
		opts = append(opts, emu.WithOutputEcho(stdout))
	}
	if *useCache {
		opts = append(opts, emu.WithDataPort(cache.NewDataPort(cache.DefaultConfig())))
	}

	e := emu.NewEmulator(opts...)
	if err := e.LoadProgram(prog.Words()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		return 1
	}

	result := e.Run()

	fmt.Fprintf(stdout, "\nProgram: %s\n", prog.Name())
	fmt.Fprintf(stdout, "Stopped: %s after %d instructions\n", result.Reason, result.Steps)
	if result.Err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", result.Err)
	}
	printState(stdout, e)

	if stats, ok := cache.StatsOf(e.DataPort()); ok {
		fmt.Fprintf(stdout, "D-Cache: hits=%d misses=%d hit-rate=%.1f%%\n",
			stats.Hits, stats.Misses, 100*stats.HitRate())
	}

	if *verbose {
		_, _ = pp.Fprintln(stdout, compare.FromEmulator(e))
	}

	if result.Reason == emu.StopError {
		return 1
	}
	return 0
}

func printState(w io.Writer, e *emu.Emulator) {
	rf := e.RegFile()
	for i, v := range rf.R {
		sep := "  "
		if i%4 == 3 {
			sep = "\n"
		}
		fmt.Fprintf(w, "r%-2d %08X%s", i, v, sep)
	}
	fmt.Fprintf(w, "pc  %08X  flags %s\n", rf.PC, rf.Flags)
}
