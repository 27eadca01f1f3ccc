package loader

import (
	"slices"
	"strings"

	"github.com/sarchlab/m2asm/insts"
)

// InstSize is the number of address units each instruction occupies.
const InstSize = 4

// AddressedInstruction is a decoded instruction placed at a linear address.
type AddressedInstruction struct {
	// Addr is the instruction address (0x0, 0x4, ...).
	Addr uint64
	// Index is the 1-based position of the instruction in the program.
	Index int
	// Line is the 1-based source line the instruction came from.
	Line int
	// Source is the trimmed source text of the instruction.
	Source string
	// Inst is the decoded instruction.
	Inst *insts.Instruction
}

// Program represents an assembled program ready for execution. A Program is
// never modified after Build returns it.
type Program struct {
	// Instructions holds the instructions in address order.
	Instructions []AddressedInstruction
	// Labels maps upper-cased label names to addresses. Several labels may
	// share an address.
	Labels map[string]uint64
	// AddrIndex maps an instruction address to its index in Instructions.
	AddrIndex map[uint64]int
}

func newProgram() *Program {
	return &Program{
		Labels:    make(map[string]uint64),
		AddrIndex: make(map[uint64]int),
	}
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// EndAddr returns the address one past the last instruction. Reaching it
// halts execution; no instruction lives there.
func (p *Program) EndAddr() uint64 {
	return uint64(len(p.Instructions)) * InstSize
}

// Lookup returns the instruction at addr.
func (p *Program) Lookup(addr uint64) (*AddressedInstruction, bool) {
	idx, ok := p.AddrIndex[addr]
	if !ok {
		return nil, false
	}
	return &p.Instructions[idx], true
}

// Resolve returns the address bound to a label. Label names are
// case-insensitive.
func (p *Program) Resolve(label string) (uint64, bool) {
	addr, ok := p.Labels[strings.ToUpper(strings.TrimSpace(label))]
	return addr, ok
}

// LabelsAt returns the labels bound to addr, sorted by name.
func (p *Program) LabelsAt(addr uint64) []string {
	var names []string
	for name, a := range p.Labels {
		if a == addr {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
