package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/z32sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	It("should decode the all-zero word as NOP", func() {
		inst, err := decoder.Decode(0x00000000)

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpNOP))
		Expect(inst.Format).To(Equal(insts.FormatJump))
		Expect(inst.Imm).To(BeZero())
	})

	// ADD r3, r1, r2 -> 0x04C48000
	It("should decode ADD r3, r1, r2", func() {
		inst, err := decoder.Decode(0x04C48000)

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpADD))
		Expect(inst.Format).To(Equal(insts.FormatRegReg))
		Expect(inst.Rd).To(Equal(uint8(3)))
		Expect(inst.Rs1).To(Equal(uint8(1)))
		Expect(inst.Rs2).To(Equal(uint8(2)))
		Expect(inst.Imm).To(BeZero())
	})

	It("should ignore the reserved bits of a RegReg word", func() {
		inst, err := decoder.Decode(0x04C48000 | 0x3FFF)

		Expect(err).NotTo(HaveOccurred())
		Expect(inst).To(Equal(insts.RR(insts.OpADD, 3, 1, 2)))
	})

	// ADDI r1, r0, 10 -> 0x2840000A
	It("should decode ADDI r1, r0, 10", func() {
		inst, err := decoder.Decode(0x2840000A)

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpADDI))
		Expect(inst.Format).To(Equal(insts.FormatRegImm))
		Expect(inst.Rd).To(Equal(uint8(1)))
		Expect(inst.Rs1).To(Equal(uint8(0)))
		Expect(inst.Imm).To(Equal(int32(10)))
	})

	// ADDI r1, r1, -1 -> 0x2847FFFF
	It("should sign-extend an 18-bit immediate", func() {
		inst, err := decoder.Decode(0x2847FFFF)

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Rd).To(Equal(uint8(1)))
		Expect(inst.Rs1).To(Equal(uint8(1)))
		Expect(inst.Imm).To(Equal(int32(-1)))
	})

	// JMP -1 -> 0x87FFFFFF
	It("should sign-extend a 26-bit jump immediate", func() {
		inst, err := decoder.Decode(0x87FFFFFF)

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpJMP))
		Expect(inst.Format).To(Equal(insts.FormatJump))
		Expect(inst.Imm).To(Equal(int32(-1)))
	})

	It("should decode HALT", func() {
		inst, err := decoder.Decode(0xFC000000)

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpHALT))
	})

	It("should reject opcodes without a table entry", func() {
		_, err := decoder.Decode(0x16 << 26)

		Expect(err).To(MatchError(insts.ErrInvalidOpcode))
		Expect(err.Error()).To(ContainSubstring("0x16"))
	})

	It("should reject every undefined opcode", func() {
		valid := map[insts.Op]bool{}
		for _, op := range insts.ValidOps() {
			valid[op] = true
		}

		for op := 0; op < 1<<insts.OpcodeBits; op++ {
			_, err := decoder.Decode(uint32(op) << insts.OpcodeShift)
			if valid[insts.Op(op)] {
				Expect(err).NotTo(HaveOccurred(), "opcode 0x%02X", op)
			} else {
				Expect(err).To(MatchError(insts.ErrInvalidOpcode), "opcode 0x%02X", op)
			}
		}
	})
})
