// Package main provides the entry point for z32sim.
// z32sim is the Z32 golden model and differential regression harness.
//
// For the tools, use: go run ./cmd/z32iss, ./cmd/z32check or ./cmd/z32standin
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/z32sim/insts"
)

func main() {
	fmt.Println("z32sim - Z32 golden model and co-simulation harness")
	fmt.Printf("Opcode table version %d, %d opcodes\n", insts.TableVersion, len(insts.ValidOps()))
	fmt.Println("")
	fmt.Println("Tools:")
	fmt.Println("  z32iss [options] <program.hex>   Run a program on the instruction-set simulator")
	fmt.Println("  z32check [options]               Run the regression suite against a hardware simulator")
	fmt.Println("  z32standin +rom=<program.hex>    ISS-backed stand-in for the hardware simulator")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/<tool> -h' for options.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use one of the tools above instead.")
	}
}
