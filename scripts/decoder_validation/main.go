// Validate the instruction codec: every opcode in the table must survive
// encode -> decode -> encode, and decoding must not allocate.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/z32sim/gen"
	"github.com/sarchlab/z32sim/insts"
)

func main() {
	decoder := insts.NewDecoder()
	rng := rand.New(rand.NewPCG(1, 1))

	// Round-trip every opcode with random operands.
	words := make([]uint32, 0, 1024)
	failures := 0
	for _, op := range insts.ValidOps() {
		for i := 0; i < 256; i++ {
			inst := gen.RandomInstruction(rng, []insts.Op{op}, gen.ImmRange{})

			word, err := insts.Encode(inst)
			if err != nil {
				fmt.Printf("FAIL encode %+v: %v\n", inst, err)
				failures++
				continue
			}
			got, err := decoder.Decode(word)
			if err != nil || got != inst {
				fmt.Printf("FAIL 0x%08X: encoded %+v, decoded %+v (%v)\n", word, inst, got, err)
				failures++
				continue
			}
			words = append(words, word)
		}
	}

	fmt.Printf("Codec Validation Results:\n")
	fmt.Printf("=========================\n")
	fmt.Printf("Opcode table version: %d\n", insts.TableVersion)
	fmt.Printf("Opcodes checked: %d\n", len(insts.ValidOps()))
	fmt.Printf("Round trips: %d, failures: %d\n", len(words)+failures, failures)

	// Measure decode throughput and allocations.
	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 200
	for i := 0; i < iterations; i++ {
		for _, w := range words {
			_, _ = decoder.Decode(w)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(words)
	allocations := m2.Mallocs - m1.Mallocs

	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))

	if failures > 0 {
		os.Exit(1)
	}
}
