// Package main provides a stand-in for the Z32 hardware simulator. It
// accepts the same +rom=<path> argument and prints the same REGDUMP lines,
// computing them with the instruction-set simulator.
package main

import (
	"os"

	"github.com/sarchlab/z32sim/cosim/standin"
)

func main() {
	os.Exit(standin.Main(os.Args[1:], os.Stdout, os.Stderr))
}
