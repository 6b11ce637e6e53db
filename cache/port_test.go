package cache_test

import (
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/z32sim/cache"
	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/insts"
)

var _ = Describe("DataPort", func() {
	// Stores to a spread of addresses, reads them back, uses the stack and
	// makes a call, so lines are evicted and written back during the run.
	program := []insts.Instruction{
		insts.RI(insts.OpLUI, 15, 0, 0x4),   // SP = 0x10000
		insts.RI(insts.OpADDI, 1, 0, 0x100), // base
		insts.RI(insts.OpADDI, 2, 0, 8),     // loop counter
		insts.RI(insts.OpST, 2, 1, 0),
		insts.RI(insts.OpSTB, 2, 1, 0x41),
		insts.RR(insts.OpPUSH, 0, 2, 0),
		insts.RI(insts.OpADDI, 1, 1, 0x40),
		insts.RI(insts.OpDBNZ, 2, 0, -5),
		insts.RI(insts.OpLD, 3, 0, 0x140),
		insts.RI(insts.OpLDB, 4, 0, 0x181),
		insts.RR(insts.OpPOP, 5, 0, 0),
		insts.J(insts.OpCALL, 1),
		insts.J(insts.OpHALT, 0),
		insts.RI(insts.OpADDI, 6, 0, 77),
		insts.J(insts.OpRET, 0),
	}

	run := func(opts ...emu.EmulatorOption) *emu.Emulator {
		words := make([]uint32, len(program))
		for i, inst := range program {
			words[i] = insts.MustEncode(inst)
		}

		e := emu.NewEmulator(opts...)
		Expect(e.LoadProgram(words)).To(Succeed())
		result := e.Run()
		Expect(result.Err).NotTo(HaveOccurred())
		Expect(result.Reason).To(Equal(emu.StopHalt))
		return e
	}

	It("should leave the same architectural state as an uncached run", func() {
		plain := run()
		cached := run(emu.WithDataPort(cache.NewDataPort(cache.Config{
			Size: 64, Associativity: 2, BlockSize: 16,
		})))

		Expect(cmp.Diff(*plain.RegFile(), *cached.RegFile())).To(BeEmpty())
		Expect(cached.Memory().Equal(plain.Memory())).To(BeTrue())
		Expect(cached.RegFile().R[6]).To(Equal(uint32(77)))

		stats, ok := cache.StatsOf(cached.DataPort())
		Expect(ok).To(BeTrue())
		Expect(stats.Evictions).NotTo(BeZero())
		Expect(stats.Writebacks).NotTo(BeZero())
	})

	It("should report no stats for an emulator without a cache", func() {
		_, ok := cache.StatsOf(run().DataPort())
		Expect(ok).To(BeFalse())
	})
})
