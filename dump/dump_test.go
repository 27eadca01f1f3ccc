package dump_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2asm/dump"
	"github.com/sarchlab/m2asm/emu"
	"github.com/sarchlab/m2asm/insts"
	"github.com/sarchlab/m2asm/loader"
)

var _ = Describe("Dump", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("should format 64-bit values with 16 hex digits", func() {
		Expect(dump.Hex64(0xF)).To(Equal("0x000000000000000f"))
	})

	It("should render registers and flags", func() {
		regFile := &emu.RegFile{}
		regFile.X[2] = 8
		regFile.X[30] = 0xABC
		regFile.SP = 0x100
		regFile.PSTATE = emu.PSTATE{Z: true, C: true}

		dump.Registers(buf, regFile)

		out := buf.String()
		Expect(out).To(ContainSubstring("Registers"))
		Expect(out).To(ContainSubstring("X2"))
		Expect(out).To(ContainSubstring("0x0000000000000008"))
		Expect(out).To(ContainSubstring("0x0000000000000100"))
		Expect(out).To(ContainSubstring("0x0000000000000abc"))
	})

	It("should hex dump memory with ASCII", func() {
		memory := emu.NewMemory(0, 32)
		Expect(memory.Load(16, []byte("Hi!"))).To(Succeed())

		dump.Memory(buf, memory)

		out := buf.String()
		Expect(out).To(ContainSubstring("00000000"))
		Expect(out).To(ContainSubstring("00000010"))
		Expect(out).To(ContainSubstring("48 69 21 00"))
		Expect(out).To(ContainSubstring("|Hi!.............|"))
	})

	DescribeTable("MemoryArrow",
		func(tok, want string) {
			op, err := insts.ParseOperand(tok)
			Expect(err).NotTo(HaveOccurred())
			Expect(dump.MemoryArrow(op)).To(Equal(want))
		},
		Entry("immediate offset", "[SP, #8]", "[SP, #8] --> SP + 8"),
		Entry("bare offset", "[X1, 16]", "[X1, 16] --> X1 + 16"),
		Entry("no offset", "[SP]", "[SP]"),
		Entry("index register", "[X0, X1]", "[X0, X1] --> X0 + X1"),
		Entry("shifted index", "[X0, X1, LSL #3]", "[X0, X1, LSL #3] --> X0 + X1 << 3"),
		Entry("register operand", "X5", "X5"),
	)

	It("should list decoded instructions", func() {
		prog, err := loader.BuildString("start: MOV X0, #5\nloop:\nSTR X0, [SP, #8]\n")
		Expect(err).NotTo(HaveOccurred())

		dump.Program(buf, prog)
		dump.Instruction(buf, &prog.Instructions[1])

		out := buf.String()
		Expect(out).To(ContainSubstring("Program (2 instructions)"))
		Expect(out).To(ContainSubstring("START"))
		Expect(out).To(ContainSubstring("LOOP"))
		Expect(out).To(ContainSubstring("MOV X0, #5"))
		Expect(out).To(ContainSubstring("Instruction #2: STR"))
		Expect(out).To(ContainSubstring("[SP, #8] --> SP + 8"))
	})

	It("should print executed instructions as a tracer", func() {
		prog, err := loader.BuildString("NOP\n")
		Expect(err).NotTo(HaveOccurred())

		e := emu.NewEmulator(prog, emu.WithTracer(dump.NewStepPrinter(buf)))
		Expect(e.Run()).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("PC: 0x0000000000000000"))
		Expect(out).To(ContainSubstring("Instruction #1: NOP"))
		Expect(out).To(ContainSubstring("Halted at PC: 0x0000000000000004"))
	})
})
