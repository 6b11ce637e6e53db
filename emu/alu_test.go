package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/insts"
)

var _ = Describe("ALU", func() {
	var (
		regFile *emu.RegFile
		alu     *emu.ALU
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		alu = emu.NewALU(regFile)
	})

	Context("arithmetic", func() {
		It("should wrap ADD modulo 2^32 and set carry", func() {
			regFile.WriteReg(1, 0xFFFFFFFF)
			regFile.WriteReg(2, 1)

			alu.Execute(rr(insts.OpADD, 3, 1, 2))

			Expect(regFile.ReadReg(3)).To(BeZero())
			Expect(regFile.Flags).To(Equal(emu.Flags{Z: true, C: true, P: true}))
		})

		It("should set borrow, negative and parity on SUB underflow", func() {
			regFile.WriteReg(1, 1)
			regFile.WriteReg(2, 2)

			alu.Execute(rr(insts.OpSUB, 3, 1, 2))

			Expect(regFile.ReadReg(3)).To(Equal(uint32(0xFFFFFFFF)))
			Expect(regFile.Flags).To(Equal(emu.Flags{N: true, C: true, P: true}))
		})

		It("should sign-extend ADDI immediates", func() {
			regFile.WriteReg(1, 10)

			alu.Execute(ri(insts.OpADDI, 1, 1, -3))

			Expect(regFile.ReadReg(1)).To(Equal(uint32(7)))
			// 7 = 0b111 has an odd number of ones; adding -3 carries out.
			Expect(regFile.Flags).To(Equal(emu.Flags{C: true}))
		})

		It("should only set flags on CMP", func() {
			regFile.WriteReg(1, 5)
			regFile.WriteReg(2, 5)
			regFile.WriteReg(3, 0xAA)

			alu.Execute(insts.Instruction{Op: insts.OpCMP, Format: insts.FormatRegReg, Rd: 3, Rs1: 1, Rs2: 2})

			Expect(regFile.ReadReg(3)).To(Equal(uint32(0xAA)))
			Expect(regFile.Flags.Z).To(BeTrue())
			Expect(regFile.Flags.C).To(BeFalse())
		})

		It("should discard writes to R0 but still set flags", func() {
			alu.Execute(ri(insts.OpADDI, 0, 0, 5))

			Expect(regFile.ReadReg(0)).To(BeZero())
			Expect(regFile.Flags.Z).To(BeFalse())
			Expect(regFile.Flags.P).To(BeTrue())
		})
	})

	Context("logic", func() {
		It("should clear carry on logic operations", func() {
			regFile.Flags.C = true
			regFile.WriteReg(1, 0xF0)
			regFile.WriteReg(2, 0x3C)

			alu.Execute(rr(insts.OpAND, 3, 1, 2))

			Expect(regFile.ReadReg(3)).To(Equal(uint32(0x30)))
			Expect(regFile.Flags.C).To(BeFalse())
		})

		It("should apply ANDI with a sign-extended mask", func() {
			regFile.WriteReg(1, 0x12345678)

			alu.Execute(ri(insts.OpANDI, 2, 1, -16))

			Expect(regFile.ReadReg(2)).To(Equal(uint32(0x12345670)))
		})

		It("should compute OR, XOR and NOT", func() {
			regFile.WriteReg(1, 0x0F)
			regFile.WriteReg(2, 0xFF)

			alu.Execute(rr(insts.OpOR, 3, 1, 2))
			Expect(regFile.ReadReg(3)).To(Equal(uint32(0xFF)))

			alu.Execute(rr(insts.OpXOR, 4, 1, 2))
			Expect(regFile.ReadReg(4)).To(Equal(uint32(0xF0)))

			alu.Execute(rr(insts.OpNOT, 5, 0, 0))
			Expect(regFile.ReadReg(5)).To(Equal(uint32(0xFFFFFFFF)))
			Expect(regFile.Flags.N).To(BeTrue())

			alu.Execute(ri(insts.OpXORI, 6, 1, 0xF))
			Expect(regFile.ReadReg(6)).To(BeZero())
			Expect(regFile.Flags.Z).To(BeTrue())

			alu.Execute(ri(insts.OpORI, 7, 0, 0x100))
			Expect(regFile.ReadReg(7)).To(Equal(uint32(0x100)))
		})

		It("should load the upper 18 bits with LUI", func() {
			alu.Execute(ri(insts.OpLUI, 1, 0, 1))
			Expect(regFile.ReadReg(1)).To(Equal(uint32(0x4000)))

			alu.Execute(ri(insts.OpLUI, 2, 0, -1))
			Expect(regFile.ReadReg(2)).To(Equal(uint32(0xFFFFC000)))
			Expect(regFile.Flags.N).To(BeTrue())
		})
	})

	Context("shifts", func() {
		It("should carry out the last bit shifted left", func() {
			regFile.WriteReg(1, 0x80000001)
			regFile.WriteReg(2, 1)

			alu.Execute(rr(insts.OpSHL, 3, 1, 2))

			Expect(regFile.ReadReg(3)).To(Equal(uint32(2)))
			Expect(regFile.Flags.C).To(BeTrue())
		})

		It("should carry out the last bit shifted right", func() {
			regFile.WriteReg(1, 3)
			regFile.WriteReg(2, 1)

			alu.Execute(rr(insts.OpSHR, 3, 1, 2))

			Expect(regFile.ReadReg(3)).To(Equal(uint32(1)))
			Expect(regFile.Flags.C).To(BeTrue())
		})

		It("should replicate the sign bit on SAR", func() {
			regFile.WriteReg(1, 0x80000000)
			regFile.WriteReg(2, 4)

			alu.Execute(rr(insts.OpSAR, 3, 1, 2))

			Expect(regFile.ReadReg(3)).To(Equal(uint32(0xF8000000)))
			Expect(regFile.Flags.N).To(BeTrue())
			Expect(regFile.Flags.C).To(BeFalse())
		})

		It("should use only the low five bits of the shift amount", func() {
			regFile.Flags.C = true
			regFile.WriteReg(1, 0x1234)
			regFile.WriteReg(2, 32)

			alu.Execute(rr(insts.OpSHL, 3, 1, 2))

			Expect(regFile.ReadReg(3)).To(Equal(uint32(0x1234)))
			Expect(regFile.Flags.C).To(BeFalse())
		})
	})
})
