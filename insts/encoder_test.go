package insts_test

import (
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/z32sim/gen"
	"github.com/sarchlab/z32sim/insts"
)

var _ = Describe("Encoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	It("should encode ADD r3, r1, r2", func() {
		word, err := insts.Encode(insts.RR(insts.OpADD, 3, 1, 2))

		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint32(0x04C48000)))
	})

	It("should encode a negative immediate in two's complement", func() {
		word, err := insts.Encode(insts.RI(insts.OpADDI, 1, 1, -1))

		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint32(0x2847FFFF)))
	})

	It("should encode the zero-value instruction as the all-zero word", func() {
		word, err := insts.Encode(insts.Instruction{})

		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(BeZero())
	})

	DescribeTable("field overflow",
		func(inst insts.Instruction) {
			_, err := insts.Encode(inst)
			Expect(err).To(MatchError(insts.ErrFieldOverflow))
		},
		Entry("rd beyond 15", insts.RR(insts.OpADD, 16, 0, 0)),
		Entry("rs1 beyond 15", insts.RI(insts.OpADDI, 0, 16, 0)),
		Entry("rs2 beyond 15", insts.RR(insts.OpSUB, 0, 0, 255)),
		Entry("imm18 above range", insts.RI(insts.OpADDI, 1, 0, 131072)),
		Entry("imm18 below range", insts.RI(insts.OpADDI, 1, 0, -131073)),
		Entry("imm26 above range", insts.J(insts.OpJMP, 1<<25)),
		Entry("immediate on a RegReg op", insts.Instruction{Op: insts.OpADD, Imm: 1}),
		Entry("rs2 on a RegImm op", insts.Instruction{Op: insts.OpADDI, Rs2: 1}),
		Entry("register on a Jump op", insts.Instruction{Op: insts.OpCALL, Rd: 1}),
	)

	It("should accept the extremes of each immediate range", func() {
		for _, inst := range []insts.Instruction{
			insts.RI(insts.OpADDI, 1, 0, 131071),
			insts.RI(insts.OpADDI, 1, 0, -131072),
			insts.J(insts.OpJMP, 1<<25-1),
			insts.J(insts.OpJMP, -(1 << 25)),
		} {
			word, err := insts.Encode(inst)
			Expect(err).NotTo(HaveOccurred())

			decoded, err := decoder.Decode(word)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(inst))
		}
	})

	It("should reject unknown opcodes", func() {
		_, err := insts.Encode(insts.Instruction{Op: 0x30})
		Expect(err).To(MatchError(insts.ErrInvalidOpcode))
	})

	It("should reject a format that disagrees with the table", func() {
		_, err := insts.Encode(insts.Instruction{Op: insts.OpADD, Format: insts.FormatRegImm})
		Expect(err).To(MatchError(insts.ErrFormatMismatch))
	})

	It("should panic in MustEncode on overflow", func() {
		Expect(func() { insts.MustEncode(insts.RR(insts.OpADD, 99, 0, 0)) }).To(Panic())
	})

	It("should round-trip every valid opcode with random operands", func() {
		rng := rand.New(rand.NewPCG(1, 1))

		for _, op := range insts.ValidOps() {
			for n := 0; n < 200; n++ {
				inst := gen.RandomInstruction(rng, []insts.Op{op}, gen.ImmRange{})

				word, err := insts.Encode(inst)
				Expect(err).NotTo(HaveOccurred(), "%v", inst)

				decoded, err := decoder.Decode(word)
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded).To(Equal(inst))
			}
		}
	})
})
