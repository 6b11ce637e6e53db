package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/z32sim/insts"
)

var _ = Describe("Opcode table", func() {
	It("should give every valid opcode a known format", func() {
		for _, op := range insts.ValidOps() {
			info, ok := insts.Lookup(op)
			Expect(ok).To(BeTrue())
			Expect(info.Op).To(Equal(op))
			Expect(info.Format).NotTo(Equal(insts.FormatUnknown), info.Mnemonic)
		}
	})

	It("should only mark non-control-transfer opcodes as safe", func() {
		safe := insts.SafeOps()
		Expect(safe).To(ContainElements(insts.OpADD, insts.OpADDI, insts.OpLUI, insts.OpCMP))

		for _, op := range safe {
			info, _ := insts.Lookup(op)
			Expect(info.Class).NotTo(BeElementOf(
				insts.ClassBranch, insts.ClassJump, insts.ClassLoad,
				insts.ClassStore, insts.ClassStack))
			Expect(op).NotTo(Equal(insts.OpHALT))
		}
	})

	It("should find opcodes by mnemonic", func() {
		op, ok := insts.ParseMnemonic("dbnz")
		Expect(ok).To(BeTrue())
		Expect(op).To(Equal(insts.OpDBNZ))

		_, ok = insts.ParseMnemonic("MOV")
		Expect(ok).To(BeFalse())
	})

	It("should name unknown opcodes by value", func() {
		Expect(insts.Op(0x30).String()).To(Equal("OP(0x30)"))
		Expect(insts.OpHALT.String()).To(Equal("HALT"))
	})

	DescribeTable("disassembly",
		func(inst insts.Instruction, text string) {
			Expect(inst.String()).To(Equal(text))
		},
		Entry(nil, insts.RR(insts.OpADD, 3, 1, 2), "ADD r3, r1, r2"),
		Entry(nil, insts.RI(insts.OpADDI, 1, 0, 10), "ADDI r1, r0, 10"),
		Entry(nil, insts.RI(insts.OpLD, 2, 3, 4), "LD r2, [r3+4]"),
		Entry(nil, insts.RI(insts.OpST, 1, 0, -8), "ST r1, [r0-8]"),
		Entry(nil, insts.RR(insts.OpPUSH, 0, 1, 0), "PUSH r1"),
		Entry(nil, insts.RR(insts.OpPOP, 1, 0, 0), "POP r1"),
		Entry(nil, insts.RR(insts.OpCMP, 0, 4, 5), "CMP r4, r5"),
		Entry(nil, insts.RI(insts.OpDBNZ, 1, 0, -1), "DBNZ r1, -1"),
		Entry(nil, insts.RI(insts.OpBNE, 0, 0, -2), "BNE -2"),
		Entry(nil, insts.J(insts.OpCALL, 3), "CALL 3"),
		Entry(nil, insts.J(insts.OpHALT, 0), "HALT"),
	)
})
