package emu

import "github.com/sarchlab/m2asm/insts"

// Compute performs the data-processing operation op on two 64-bit operands.
// The result wraps to 64 bits; MUL keeps the low 64 bits of the product.
// ok is false when op is not a data-processing opcode.
func Compute(op insts.Op, a, b uint64) (result uint64, ok bool) {
	switch op {
	case insts.OpADD:
		return a + b, true
	case insts.OpSUB:
		return a - b, true
	case insts.OpAND:
		return a & b, true
	case insts.OpEOR:
		return a ^ b, true
	case insts.OpMUL:
		return a * b, true
	}
	return 0, false
}

// SubFlags64 returns the NZCV flags of the 64-bit subtraction a - b.
func SubFlags64(a, b uint64) PSTATE {
	result := a - b

	aSign := a >> 63
	bSign := b >> 63
	resultSign := result >> 63

	return PSTATE{
		// N: Set if result is negative
		N: resultSign == 1,
		// Z: Set if result is zero
		Z: result == 0,
		// C: Set if NO borrow occurred (a >= b)
		C: a >= b,
		// V: operand signs differ and the result sign differs from a
		V: aSign != bSign && resultSign != aSign,
	}
}

// SubFlags32 returns the NZCV flags of the 32-bit subtraction a - b.
func SubFlags32(a, b uint32) PSTATE {
	result := a - b

	aSign := a >> 31
	bSign := b >> 31
	resultSign := result >> 31

	return PSTATE{
		N: resultSign == 1,
		Z: result == 0,
		C: a >= b,
		V: aSign != bSign && resultSign != aSign,
	}
}
