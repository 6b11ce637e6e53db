package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/insts"
)

var _ = Describe("BranchUnit", func() {
	var (
		regFile *emu.RegFile
		bu      *emu.BranchUnit
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{PC: 0x100}
		bu = emu.NewBranchUnit(regFile)
	})

	It("should branch relative to the next instruction", func() {
		bu.B(2)
		Expect(regFile.PC).To(Equal(uint32(0x10C)))
	})

	It("should branch backwards", func() {
		bu.B(-1)
		Expect(regFile.PC).To(Equal(uint32(0x100)))
	})

	DescribeTable("conditions",
		func(op insts.Op, flags emu.Flags, taken bool) {
			regFile.Flags = flags
			Expect(bu.CheckCondition(op)).To(Equal(taken))

			bu.BCond(op, 3)
			if taken {
				Expect(regFile.PC).To(Equal(uint32(0x110)))
			} else {
				Expect(regFile.PC).To(Equal(uint32(0x104)))
			}
		},
		Entry("BEQ taken", insts.OpBEQ, emu.Flags{Z: true}, true),
		Entry("BEQ not taken", insts.OpBEQ, emu.Flags{}, false),
		Entry("BNE taken", insts.OpBNE, emu.Flags{}, true),
		Entry("BNE not taken", insts.OpBNE, emu.Flags{Z: true}, false),
		Entry("BMI taken", insts.OpBMI, emu.Flags{N: true}, true),
		Entry("BPL taken", insts.OpBPL, emu.Flags{}, true),
		Entry("BPL not taken", insts.OpBPL, emu.Flags{N: true}, false),
		Entry("BCS taken", insts.OpBCS, emu.Flags{C: true}, true),
		Entry("BCC taken", insts.OpBCC, emu.Flags{}, true),
		Entry("BCC not taken", insts.OpBCC, emu.Flags{C: true}, false),
	)

	It("should decrement and branch while non-zero", func() {
		regFile.WriteReg(1, 2)

		bu.DBNZ(1, -1)
		Expect(regFile.ReadReg(1)).To(Equal(uint32(1)))
		Expect(regFile.PC).To(Equal(uint32(0x100)))

		bu.DBNZ(1, -1)
		Expect(regFile.ReadReg(1)).To(BeZero())
		Expect(regFile.PC).To(Equal(uint32(0x104)))
	})

	It("should leave flags alone on DBNZ", func() {
		regFile.Flags = emu.Flags{N: true}
		regFile.WriteReg(1, 1)

		bu.DBNZ(1, 5)

		Expect(regFile.Flags).To(Equal(emu.Flags{N: true}))
	})

	It("should link and jump with JAL", func() {
		bu.JAL(14, 4)

		Expect(regFile.ReadReg(14)).To(Equal(uint32(0x104)))
		Expect(regFile.PC).To(Equal(uint32(0x114)))
	})

	It("should keep PC word aligned on JR", func() {
		regFile.WriteReg(1, 0x203)

		bu.JR(1)

		Expect(regFile.PC).To(Equal(uint32(0x200)))
	})
})
