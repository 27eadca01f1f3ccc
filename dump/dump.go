// Package dump renders interpreter state as text tables. It only reads the
// register file, memory and program it is given.
package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/m2asm/emu"
	"github.com/sarchlab/m2asm/insts"
	"github.com/sarchlab/m2asm/loader"
)

// BytesPerRow is the width of a memory dump row.
const BytesPerRow = 16

// Hex64 formats a value as 0x followed by 16 lower-case hex digits.
func Hex64(v uint64) string {
	return fmt.Sprintf("0x%016x", v)
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Registers writes X0-X30 in three columns followed by SP, PC and the flags.
func Registers(w io.Writer, regFile *emu.RegFile) {
	regTable := table.NewWriter()
	regTable.SetTitle("Registers")
	regTable.AppendHeader(table.Row{"Reg", "Value", "Reg", "Value", "Reg", "Value"})

	for base := 0; base < 10; base++ {
		row := table.Row{}
		for col := 0; col < 3; col++ {
			n := base + col*10
			row = append(row, fmt.Sprintf("X%d", n), Hex64(regFile.X[n]))
		}
		regTable.AppendRow(row)
	}
	regTable.AppendSeparator()
	regTable.AppendRow(table.Row{
		"SP", Hex64(regFile.SP),
		"PC", Hex64(regFile.PC),
		"X30", Hex64(regFile.X[30]),
	})

	flagTable := table.NewWriter()
	flagTable.SetTitle("PSTATE")
	flagTable.AppendHeader(table.Row{"N", "Z", "C", "V"})
	flagTable.AppendRow(table.Row{
		bit(regFile.PSTATE.N),
		bit(regFile.PSTATE.Z),
		bit(regFile.PSTATE.C),
		bit(regFile.PSTATE.V),
	})

	fmt.Fprintln(w, regTable.Render())
	fmt.Fprintln(w, flagTable.Render())
}

// Memory writes a hex dump of the whole region, 16 bytes per row, with the
// printable ASCII rendering of each row.
func Memory(w io.Writer, memory *emu.Memory) {
	data := memory.Bytes()

	memTable := table.NewWriter()
	memTable.SetTitle(fmt.Sprintf("Memory [%s, %s)",
		Hex64(memory.Base()), Hex64(memory.End())))
	memTable.AppendHeader(table.Row{"Address", "Bytes", "ASCII"})

	for off := 0; off < len(data); off += BytesPerRow {
		end := min(off+BytesPerRow, len(data))
		row := data[off:end]

		hexParts := make([]string, len(row))
		var ascii strings.Builder
		for i, b := range row {
			hexParts[i] = fmt.Sprintf("%02x", b)
			if b >= 0x20 && b <= 0x7e {
				ascii.WriteByte(b)
			} else {
				ascii.WriteByte('.')
			}
		}

		memTable.AppendRow(table.Row{
			fmt.Sprintf("%08x", memory.Base()+uint64(off)),
			strings.Join(hexParts, " "),
			"|" + ascii.String() + "|",
		})
	}

	fmt.Fprintln(w, memTable.Render())
}

// MemoryArrow renders a memory operand with its address expression, as in
// "[SP, #8] --> SP + 8". Operands without an offset are returned as written.
func MemoryArrow(op insts.Operand) string {
	if op.Kind != insts.OperandMemory {
		return op.Text
	}

	m := op.Mem
	parts := insts.SplitOperands(strings.TrimSpace(op.Text[1 : len(op.Text)-1]))
	if len(parts) < 2 {
		return op.Text
	}

	expr := m.BaseText + " + " + strings.TrimPrefix(parts[1], "#")
	if m.HasIndex {
		expr = m.BaseText + " + " + m.Index.String()
		if m.Shift > 0 {
			expr += fmt.Sprintf(" << %d", m.Shift)
		}
	}

	return op.Text + " --> " + expr
}

// Instruction writes one decoded instruction with its operands listed one
// per row.
func Instruction(w io.Writer, ai *loader.AddressedInstruction) {
	instTable := table.NewWriter()
	instTable.SetTitle(fmt.Sprintf("Instruction #%d: %s", ai.Index, ai.Inst.Mnemonic))
	instTable.AppendHeader(table.Row{"Operand", "Kind", "Value"})

	for i, op := range ai.Inst.Operands {
		instTable.AppendRow(table.Row{
			fmt.Sprintf("#%d", i+1),
			op.Kind.String(),
			MemoryArrow(op),
		})
	}

	fmt.Fprintln(w, instTable.Render())
}

// Program writes the address, labels and source of every instruction.
func Program(w io.Writer, prog *loader.Program) {
	progTable := table.NewWriter()
	progTable.SetTitle(fmt.Sprintf("Program (%d instructions)", prog.Len()))
	progTable.AppendHeader(table.Row{"#", "Address", "Labels", "Instruction"})

	for i := range prog.Instructions {
		ai := &prog.Instructions[i]
		progTable.AppendRow(table.Row{
			ai.Index,
			fmt.Sprintf("%04x", ai.Addr),
			strings.Join(prog.LabelsAt(ai.Addr), ", "),
			ai.Inst.String(),
		})
	}

	fmt.Fprintln(w, progTable.Render())
}

// StepPrinter is an emu.Tracer that prints every executed instruction and
// the PC it was fetched from.
type StepPrinter struct {
	w io.Writer
}

// NewStepPrinter creates a StepPrinter writing to w.
func NewStepPrinter(w io.Writer) *StepPrinter {
	return &StepPrinter{w: w}
}

// Trace implements emu.Tracer.
func (p *StepPrinter) Trace(ai *loader.AddressedInstruction, result emu.StepResult) {
	fmt.Fprintf(p.w, "PC: %s\n", Hex64(ai.Addr))
	Instruction(p.w, ai)
	if result.Halted {
		fmt.Fprintf(p.w, "Halted at PC: %s\n", Hex64(result.PC))
	}
}
