// Package emu provides functional emulation of an ARM64 instruction subset.
package emu

import (
	"strconv"

	"github.com/sarchlab/m2asm/insts"
)

// NumGPRs is the number of general-purpose registers (X0-X30).
const NumGPRs = 31

// ZeroReg is the register number that reads as zero and ignores writes.
const ZeroReg = insts.ZeroRegNum

// RegFile represents the ARM64 register file.
// It contains 31 general-purpose registers (X0-X30),
// the stack pointer (SP), and the program counter (PC).
type RegFile struct {
	// X holds general-purpose registers X0-X30.
	X [NumGPRs]uint64

	// SP is the stack pointer.
	SP uint64

	// PC is the program counter.
	PC uint64

	// PSTATE holds the processor state flags.
	PSTATE PSTATE
}

// PSTATE represents the processor state flags.
type PSTATE struct {
	// N is the negative flag.
	N bool
	// Z is the zero flag.
	Z bool
	// C is the carry flag.
	C bool
	// V is the overflow flag.
	V bool
}

func invalidReg(prefix string, n uint8) error {
	return &InvalidRegisterError{Name: prefix + strconv.Itoa(int(n))}
}

// ReadX reads a 64-bit register. Register 31 returns 0 (XZR).
func (r *RegFile) ReadX(n uint8) (uint64, error) {
	switch {
	case n == ZeroReg:
		return 0, nil
	case n >= NumGPRs:
		return 0, invalidReg("X", n)
	}
	return r.X[n], nil
}

// WriteX writes a 64-bit register. Writes to register 31 (XZR) are ignored.
func (r *RegFile) WriteX(n uint8, value uint64) error {
	switch {
	case n == ZeroReg:
		return nil
	case n >= NumGPRs:
		return invalidReg("X", n)
	}
	r.X[n] = value
	return nil
}

// ReadW reads the lower 32 bits of a register.
func (r *RegFile) ReadW(n uint8) (uint32, error) {
	v, err := r.ReadX(n)
	if err != nil {
		return 0, invalidReg("W", n)
	}
	return uint32(v), nil
}

// WriteW writes to the lower 32 bits and zero-extends.
func (r *RegFile) WriteW(n uint8, value uint32) error {
	if err := r.WriteX(n, uint64(value)); err != nil {
		return invalidReg("W", n)
	}
	return nil
}

// ReadSP returns the stack pointer.
func (r *RegFile) ReadSP() uint64 { return r.SP }

// WriteSP sets the stack pointer.
func (r *RegFile) WriteSP(value uint64) { r.SP = value }

// ReadPC returns the program counter.
func (r *RegFile) ReadPC() uint64 { return r.PC }

// WritePC sets the program counter.
func (r *RegFile) WritePC(value uint64) { r.PC = value }

// Read resolves a register operand to a 64-bit value. The zero register
// reads 0, SP reads the stack pointer, and W registers are zero-extended.
func (r *RegFile) Read(reg insts.Register) (uint64, error) {
	switch reg.Class {
	case insts.RegZR:
		return 0, nil
	case insts.RegSP:
		return r.SP, nil
	}

	if reg.Num >= NumGPRs {
		return 0, &InvalidRegisterError{Name: reg.String()}
	}
	if reg.Is64Bit {
		return r.ReadX(reg.Num)
	}
	w, err := r.ReadW(reg.Num)
	return uint64(w), err
}

// Write stores a value into a register operand, honoring its width.
func (r *RegFile) Write(reg insts.Register, value uint64) error {
	switch reg.Class {
	case insts.RegZR:
		return nil
	case insts.RegSP:
		r.SP = value
		return nil
	}

	if reg.Num >= NumGPRs {
		return &InvalidRegisterError{Name: reg.String()}
	}
	if reg.Is64Bit {
		return r.WriteX(reg.Num, value)
	}
	return r.WriteW(reg.Num, uint32(value))
}
