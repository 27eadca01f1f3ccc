package emu

import (
	"fmt"

	"github.com/sarchlab/m2asm/insts"
	"github.com/sarchlab/m2asm/loader"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// PC is the committed program counter after the step.
	PC uint64

	// Halted is true if the program reached RET or the end address.
	Halted bool

	// Err is set if an error occurred during execution.
	Err error
}

// execution is the state one instruction operates on.
type execution struct {
	prog    *loader.Program
	regFile *RegFile
	memory  *Memory
	inst    *insts.Instruction

	nextPC uint64
	halt   bool
}

type execFunc func(x *execution) error

var dispatch = [...]execFunc{
	insts.OpADD:   execArith,
	insts.OpSUB:   execArith,
	insts.OpAND:   execArith,
	insts.OpEOR:   execArith,
	insts.OpMUL:   execArith,
	insts.OpMOV:   execMOV,
	insts.OpCMP:   execCMP,
	insts.OpLDR:   execLoad,
	insts.OpLDRB:  execLoad,
	insts.OpSTR:   execStore,
	insts.OpSTRB:  execStore,
	insts.OpB:     execB,
	insts.OpBCond: execBCond,
	insts.OpNOP:   execNOP,
	insts.OpRET:   execRET,
}

// Step executes the instruction at pc against regFile and memory.
//
// Stepping at the end address halts without touching any state. Otherwise
// the instruction runs, and unless it is RET the next PC is committed to
// regFile.PC. A runtime error leaves state as of the last successful write and
// is returned wrapped in a *StepError.
func Step(prog *loader.Program, regFile *RegFile, memory *Memory, pc uint64) StepResult {
	end := prog.EndAddr()
	if pc == end {
		return StepResult{PC: pc, Halted: true}
	}

	ai, ok := prog.Lookup(pc)
	if !ok {
		return StepResult{
			PC:  pc,
			Err: &ControlFlowError{PC: pc, EndAddr: end},
		}
	}

	x := &execution{
		prog:    prog,
		regFile: regFile,
		memory:  memory,
		inst:    ai.Inst,
		nextPC:  pc + loader.InstSize,
	}

	if err := execute(x); err != nil {
		return StepResult{
			PC: pc,
			Err: &StepError{
				PC:    pc,
				Index: ai.Index,
				Line:  ai.Line,
				Inst:  ai.Inst.String(),
				Err:   err,
			},
		}
	}

	if x.halt {
		return StepResult{PC: pc, Halted: true}
	}

	regFile.PC = x.nextPC

	return StepResult{PC: x.nextPC, Halted: x.nextPC == end}
}

func execute(x *execution) error {
	op := x.inst.Op
	if int(op) >= len(dispatch) || dispatch[op] == nil {
		return &UnsupportedInstructionError{Mnemonic: x.inst.Mnemonic}
	}
	return dispatch[op](x)
}

// operand returns operand i, checking that it has the expected kind.
func (x *execution) operand(i int, kind insts.OperandKind) (insts.Operand, error) {
	if i >= len(x.inst.Operands) {
		return insts.Operand{}, &InvalidOperandError{
			Operand: x.inst.String(),
			Reason:  fmt.Sprintf("missing operand %d", i+1),
		}
	}

	op := x.inst.Operands[i]
	if op.Kind != kind {
		return insts.Operand{}, &InvalidOperandError{
			Operand: op.Text,
			Reason:  fmt.Sprintf("expected %s, got %s", kind, op.Kind),
		}
	}

	return op, nil
}

// value resolves operand i as a register or immediate value.
func (x *execution) value(i int) (uint64, error) {
	if i >= len(x.inst.Operands) {
		return 0, &InvalidOperandError{
			Operand: x.inst.String(),
			Reason:  fmt.Sprintf("missing operand %d", i+1),
		}
	}

	op := x.inst.Operands[i]
	switch op.Kind {
	case insts.OperandRegister:
		return x.regFile.Read(op.Reg)
	case insts.OperandImmediate:
		return uint64(op.Imm), nil
	}

	return 0, &InvalidOperandError{
		Operand: op.Text,
		Reason:  "expected register or immediate, got " + op.Kind.String(),
	}
}

func execNOP(*execution) error {
	return nil
}

func execMOV(x *execution) error {
	rd, err := x.operand(0, insts.OperandRegister)
	if err != nil {
		return err
	}

	v, err := x.value(1)
	if err != nil {
		return err
	}

	return x.regFile.Write(rd.Reg, v)
}

// execArith handles ADD, SUB, AND, EOR and MUL. Flags are not modified.
func execArith(x *execution) error {
	rd, err := x.operand(0, insts.OperandRegister)
	if err != nil {
		return err
	}

	a, err := x.value(1)
	if err != nil {
		return err
	}

	b, err := x.value(2)
	if err != nil {
		return err
	}

	result, ok := Compute(x.inst.Op, a, b)
	if !ok {
		return &UnsupportedInstructionError{Mnemonic: x.inst.Mnemonic}
	}

	return x.regFile.Write(rd.Reg, result)
}

// execCMP subtracts in the width of the first operand and sets NZCV.
func execCMP(x *execution) error {
	rn, err := x.operand(0, insts.OperandRegister)
	if err != nil {
		return err
	}

	a, err := x.regFile.Read(rn.Reg)
	if err != nil {
		return err
	}

	b, err := x.value(1)
	if err != nil {
		return err
	}

	if rn.Reg.Is64Bit {
		x.regFile.PSTATE = SubFlags64(a, b)
	} else {
		x.regFile.PSTATE = SubFlags32(uint32(a), uint32(b))
	}

	return nil
}
