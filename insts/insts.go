// Package insts provides ARM64 assembly-text instruction definitions and
// decoding.
//
// This package turns one line of ARM64 assembly source into a structured
// instruction representation. It supports:
//   - Data processing: ADD, SUB, AND, EOR, MUL, MOV, CMP
//   - Load/store: LDR, LDRB, STR, STRB with [base{, offset}] addressing
//   - Branch instructions: B, B.GT, B.LE, RET
//   - NOP
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode("ADD X0, X1, #42")
//	fmt.Printf("Op: %v, Operands: %d\n", inst.Op, len(inst.Operands))
package insts

import (
	"strconv"
	"strings"
)

// Op represents an ARM64 opcode.
type Op uint16

// ARM64 opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpAND
	OpEOR
	OpMUL
	OpMOV
	OpCMP
	OpLDR
	OpLDRB
	OpSTR
	OpSTRB
	OpB
	OpBCond
	OpNOP
	OpRET

	numOps
)

var opNames = [numOps]string{
	OpUnknown: "UNKNOWN",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpAND:     "AND",
	OpEOR:     "EOR",
	OpMUL:     "MUL",
	OpMOV:     "MOV",
	OpCMP:     "CMP",
	OpLDR:     "LDR",
	OpLDRB:    "LDRB",
	OpSTR:     "STR",
	OpSTRB:    "STRB",
	OpB:       "B",
	OpBCond:   "B.cond",
	OpNOP:     "NOP",
	OpRET:     "RET",
}

// String returns the canonical mnemonic of the opcode.
func (op Op) String() string {
	if op >= numOps {
		return "UNKNOWN"
	}
	return opNames[op]
}

// Cond represents an ARM64 condition code.
type Cond uint8

// ARM64 condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set / Unsigned higher or same (C == 1)
	CondCC Cond = 0b0011 // Carry Clear / Unsigned lower (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always (unconditional)
	CondNV Cond = 0b1111 // Always (unconditional, reserved)
)

// mnemonics maps upper-case mnemonic spellings to opcodes. Conditional
// branches carry their condition in condBranches.
var mnemonics = map[string]Op{
	"ADD":  OpADD,
	"SUB":  OpSUB,
	"AND":  OpAND,
	"EOR":  OpEOR,
	"MUL":  OpMUL,
	"MOV":  OpMOV,
	"CMP":  OpCMP,
	"LDR":  OpLDR,
	"LDRB": OpLDRB,
	"STR":  OpSTR,
	"STRB": OpSTRB,
	"B":    OpB,
	"B.GT": OpBCond,
	"B.LE": OpBCond,
	"NOP":  OpNOP,
	"RET":  OpRET,
}

var condBranches = map[string]Cond{
	"B.GT": CondGT,
	"B.LE": CondLE,
}

// LookupMnemonic returns the opcode and, for conditional branches, the
// condition code for a mnemonic. The lookup is case-insensitive.
func LookupMnemonic(mnemonic string) (Op, Cond) {
	up := strings.ToUpper(mnemonic)
	op, ok := mnemonics[up]
	if !ok {
		return OpUnknown, CondAL
	}
	if cond, ok := condBranches[up]; ok {
		return op, cond
	}
	return op, CondAL
}

// OperandKind classifies an operand token.
type OperandKind uint8

// Operand kinds, in classification priority order.
const (
	OperandMemory OperandKind = iota
	OperandRegister
	OperandImmediate
	OperandLabel
)

// String returns a human-readable operand kind.
func (k OperandKind) String() string {
	switch k {
	case OperandMemory:
		return "memory"
	case OperandRegister:
		return "register"
	case OperandImmediate:
		return "immediate"
	case OperandLabel:
		return "label"
	default:
		return "unknown"
	}
}

// RegClass distinguishes the register families an operand can name.
type RegClass uint8

// Register classes.
const (
	RegGP RegClass = iota // X0-X30 / W0-W30
	RegZR                 // XZR / WZR
	RegSP                 // SP
)

// ZeroRegNum is the register number of XZR/WZR.
const ZeroRegNum = 31

// Register is a decoded register token.
type Register struct {
	Class   RegClass
	Num     uint8 // register number; ZeroRegNum for XZR/WZR, unused for SP
	Is64Bit bool  // false for the W view
}

// String returns the canonical spelling of the register.
func (r Register) String() string {
	switch r.Class {
	case RegSP:
		return "SP"
	case RegZR:
		if r.Is64Bit {
			return "XZR"
		}
		return "WZR"
	}
	prefix := "W"
	if r.Is64Bit {
		prefix = "X"
	}
	return prefix + strconv.Itoa(int(r.Num))
}

// MemRef is a decoded [base{, offset}] memory operand.
type MemRef struct {
	BaseText  string   // normalized base token
	Base      Register // valid only when BaseValid
	BaseValid bool

	Offset int64 // immediate offset; 0 when absent

	HasIndex bool     // register offset form [Xn, Xm{, LSL #s}]
	Index    Register // index register when HasIndex
	Shift    uint8    // LSL amount applied to Index
}

// Operand is one decoded instruction argument.
type Operand struct {
	Kind OperandKind
	Text string // raw trimmed token, e.g. "X0", "#42", "[SP, #8]"

	Reg   Register // OperandRegister
	Imm   int64    // OperandImmediate
	Mem   MemRef   // OperandMemory
	Label string   // OperandLabel, upper-cased
}

// IsReg reports whether the operand is a register.
func (o Operand) IsReg() bool { return o.Kind == OperandRegister }

// IsImm reports whether the operand is an immediate.
func (o Operand) IsImm() bool { return o.Kind == OperandImmediate }

// Instruction represents a decoded ARM64 instruction.
type Instruction struct {
	Op       Op     // Operation code; OpUnknown for unsupported mnemonics
	Mnemonic string // Upper-case mnemonic as written
	Cond     Cond   // Condition code for conditional branches

	Operands []Operand
}

// String renders the instruction in canonical assembly form.
func (inst *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(inst.Mnemonic)
	for i, op := range inst.Operands {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(op.Text)
	}
	return sb.String()
}
