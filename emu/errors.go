package emu

import (
	"errors"
	"fmt"
)

// ErrMaxInstructions is returned by the Emulator when the instruction limit
// is reached before the program halts.
var ErrMaxInstructions = errors.New("max instructions reached")

// InvalidRegisterError reports a register number outside X0-X30 that is not
// the zero register.
type InvalidRegisterError struct {
	Name string
}

func (e *InvalidRegisterError) Error() string {
	return fmt.Sprintf("invalid register %s", e.Name)
}

// InvalidOperandError reports an operand the engine cannot resolve, such as a
// memory operand with an unrecognized base.
type InvalidOperandError struct {
	Operand string
	Reason  string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand %q: %s", e.Operand, e.Reason)
}

// OutOfBoundsError reports a memory access that does not lie entirely inside
// the memory region.
type OutOfBoundsError struct {
	Op    string
	Addr  uint64
	Width uint64
	Base  uint64
	Size  uint64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s of %d bytes at 0x%X outside memory [0x%X, 0x%X)",
		e.Op, e.Width, e.Addr, e.Base, e.Base+e.Size)
}

// UndefinedLabelError reports a branch to a label the program never binds.
type UndefinedLabelError struct {
	Label string
}

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("undefined label %s", e.Label)
}

// UnsupportedInstructionError reports a mnemonic the engine does not
// implement.
type UnsupportedInstructionError struct {
	Mnemonic string
}

func (e *UnsupportedInstructionError) Error() string {
	return fmt.Sprintf("unsupported instruction %s", e.Mnemonic)
}

// ControlFlowError reports a program counter that is neither an instruction
// address nor the end address.
type ControlFlowError struct {
	PC      uint64
	EndAddr uint64
}

func (e *ControlFlowError) Error() string {
	return fmt.Sprintf("PC=0x%X is not an instruction address (end=0x%X)", e.PC, e.EndAddr)
}

// StepError attaches the failing instruction to a runtime error.
type StepError struct {
	PC    uint64
	Index int
	Line  int
	Inst  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("PC=0x%X instruction #%d (line %d) %q: %v",
		e.PC, e.Index, e.Line, e.Inst, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
