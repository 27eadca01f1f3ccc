package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2asm/insts"
)

var _ = Describe("Operand classification", func() {
	DescribeTable("ParseOperand kinds",
		func(tok string, kind insts.OperandKind) {
			op, err := insts.ParseOperand(tok)

			Expect(err).NotTo(HaveOccurred())
			Expect(op.Kind).To(Equal(kind))
			Expect(op.Text).To(Equal(tok))
		},
		Entry("64-bit register", "X0", insts.OperandRegister),
		Entry("highest 64-bit register", "X30", insts.OperandRegister),
		Entry("32-bit register", "W7", insts.OperandRegister),
		Entry("lower-case register", "x12", insts.OperandRegister),
		Entry("stack pointer", "SP", insts.OperandRegister),
		Entry("zero register", "XZR", insts.OperandRegister),
		Entry("32-bit zero register", "wzr", insts.OperandRegister),
		Entry("frame pointer alias", "FP", insts.OperandRegister),
		Entry("link register alias", "LR", insts.OperandRegister),
		Entry("out-of-range register spelling", "X31", insts.OperandRegister),
		Entry("decimal immediate", "#42", insts.OperandImmediate),
		Entry("hex immediate", "#0x2A", insts.OperandImmediate),
		Entry("negative immediate", "#-8", insts.OperandImmediate),
		Entry("SP memory", "[SP]", insts.OperandMemory),
		Entry("SP memory with offset", "[SP, #32]", insts.OperandMemory),
		Entry("register memory with bare offset", "[X1, 0x10]", insts.OperandMemory),
		Entry("register offset memory", "[X1, X2, LSL #3]", insts.OperandMemory),
		Entry("label", "loop", insts.OperandLabel),
		Entry("dotted label", "le_or_eq", insts.OperandLabel),
		Entry("bare number is a label", "42", insts.OperandLabel),
		Entry("register-like label", "X100", insts.OperandLabel),
		Entry("pre-index form is not memory", "[SP, #-16]!", insts.OperandLabel),
	)

	Describe("ParseRegister", func() {
		It("should decode X registers as 64-bit", func() {
			reg, ok := insts.ParseRegister("X5")

			Expect(ok).To(BeTrue())
			Expect(reg.Class).To(Equal(insts.RegGP))
			Expect(reg.Num).To(Equal(uint8(5)))
			Expect(reg.Is64Bit).To(BeTrue())
		})

		It("should decode W registers as 32-bit", func() {
			reg, ok := insts.ParseRegister("w30")

			Expect(ok).To(BeTrue())
			Expect(reg.Num).To(Equal(uint8(30)))
			Expect(reg.Is64Bit).To(BeFalse())
			Expect(reg.String()).To(Equal("W30"))
		})

		It("should decode the zero registers", func() {
			xzr, ok := insts.ParseRegister("XZR")
			Expect(ok).To(BeTrue())
			Expect(xzr.Class).To(Equal(insts.RegZR))
			Expect(xzr.Num).To(Equal(uint8(insts.ZeroRegNum)))
			Expect(xzr.Is64Bit).To(BeTrue())

			wzr, ok := insts.ParseRegister("WZR")
			Expect(ok).To(BeTrue())
			Expect(wzr.Class).To(Equal(insts.RegZR))
			Expect(wzr.Is64Bit).To(BeFalse())
		})

		It("should map FP and LR to X29 and X30", func() {
			fp, _ := insts.ParseRegister("fp")
			lr, _ := insts.ParseRegister("LR")

			Expect(fp.String()).To(Equal("X29"))
			Expect(lr.String()).To(Equal("X30"))
		})

		It("should reject non-register spellings", func() {
			for _, tok := range []string{"", "X", "Q0", "X1A", "SPX", "#1"} {
				_, ok := insts.ParseRegister(tok)
				Expect(ok).To(BeFalse(), tok)
			}
		})
	})

	Describe("ParseImmediate", func() {
		DescribeTable("values",
			func(tok string, want int64) {
				v, err := insts.ParseImmediate(tok)

				Expect(err).NotTo(HaveOccurred())
				Expect(v).To(Equal(want))
			},
			Entry("decimal", "#10", int64(10)),
			Entry("hex", "#0x10", int64(16)),
			Entry("upper-case hex prefix", "#0XfF", int64(255)),
			Entry("bare decimal", "32", int64(32)),
			Entry("negative", "#-1", int64(-1)),
			Entry("explicit plus", "#+7", int64(7)),
			Entry("leading zeros stay decimal", "#010", int64(10)),
			Entry("full-width hex wraps", "#0xFFFFFFFFFFFFFFFF", int64(-1)),
		)

		It("should reject malformed immediates", func() {
			for _, tok := range []string{"#", "#abc", "#0x", "#1.5", "#0xZZ"} {
				_, err := insts.ParseImmediate(tok)
				Expect(err).To(MatchError(insts.ErrBadImmediate), tok)
			}
		})
	})

	Describe("memory operands", func() {
		It("should decode base and immediate offset", func() {
			op, err := insts.ParseOperand("[SP, #32]")

			Expect(err).NotTo(HaveOccurred())
			Expect(op.Mem.BaseValid).To(BeTrue())
			Expect(op.Mem.Base.Class).To(Equal(insts.RegSP))
			Expect(op.Mem.Offset).To(Equal(int64(32)))
			Expect(op.Mem.HasIndex).To(BeFalse())
		})

		It("should decode a bare hex offset", func() {
			op, err := insts.ParseOperand("[x3, 0x10]")

			Expect(err).NotTo(HaveOccurred())
			Expect(op.Mem.Base.Num).To(Equal(uint8(3)))
			Expect(op.Mem.Offset).To(Equal(int64(16)))
		})

		It("should decode register offsets with a shift", func() {
			op, err := insts.ParseOperand("[X1, X2, LSL #3]")

			Expect(err).NotTo(HaveOccurred())
			Expect(op.Mem.HasIndex).To(BeTrue())
			Expect(op.Mem.Index.Num).To(Equal(uint8(2)))
			Expect(op.Mem.Shift).To(Equal(uint8(3)))
		})

		It("should keep an unrecognized base for later rejection", func() {
			op, err := insts.ParseOperand("[W1, #4]")

			Expect(err).NotTo(HaveOccurred())
			Expect(op.Kind).To(Equal(insts.OperandMemory))
			Expect(op.Mem.BaseValid).To(BeFalse())
			Expect(op.Mem.BaseText).To(Equal("W1"))
		})

		It("should reject malformed memory operands", func() {
			for _, tok := range []string{"[]", "[SP, #x]", "[SP, #4, LSL #2]", "[X1, X2, ROR #1]", "[X1, X2, LSL #64]"} {
				_, err := insts.ParseOperand(tok)
				Expect(err).To(MatchError(insts.ErrBadMemoryOperand), tok)
			}
		})
	})

	Describe("SplitOperands", func() {
		It("should not split inside brackets", func() {
			parts := insts.SplitOperands("X7, [SP, #32]")

			Expect(parts).To(Equal([]string{"X7", "[SP, #32]"}))
		})

		It("should trim every part", func() {
			parts := insts.SplitOperands("  X2 ,X0,   #10 ")

			Expect(parts).To(Equal([]string{"X2", "X0", "#10"}))
		})

		It("should return nothing for blank input", func() {
			Expect(insts.SplitOperands("   ")).To(BeEmpty())
		})
	})
})
