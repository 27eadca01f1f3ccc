package insts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Operand parse errors. The decoder wraps them in a DecodeError that names
// the mnemonic.
var (
	ErrEmptyOperand     = errors.New("empty operand")
	ErrBadImmediate     = errors.New("malformed immediate")
	ErrBadMemoryOperand = errors.New("malformed memory operand")
)

var regAliases = map[string]Register{
	"SP":  {Class: RegSP, Is64Bit: true},
	"XZR": {Class: RegZR, Num: ZeroRegNum, Is64Bit: true},
	"WZR": {Class: RegZR, Num: ZeroRegNum},
	"FP":  {Class: RegGP, Num: 29, Is64Bit: true},
	"LR":  {Class: RegGP, Num: 30, Is64Bit: true},
}

// ParseRegister decodes a register spelling: X0-X30, W0-W30, SP, XZR, WZR and
// the FP/LR aliases. Numbers up to 99 are accepted so that X31 and friends
// classify as registers and fail later as invalid registers instead of
// silently becoming labels.
func ParseRegister(tok string) (Register, bool) {
	u := strings.ToUpper(strings.TrimSpace(tok))
	if reg, ok := regAliases[u]; ok {
		return reg, true
	}

	if len(u) < 2 || len(u) > 3 || (u[0] != 'X' && u[0] != 'W') {
		return Register{}, false
	}
	for i := 1; i < len(u); i++ {
		if u[i] < '0' || u[i] > '9' {
			return Register{}, false
		}
	}

	n, err := strconv.Atoi(u[1:])
	if err != nil {
		return Register{}, false
	}

	return Register{Class: RegGP, Num: uint8(n), Is64Bit: u[0] == 'X'}, true
}

// ParseImmediate decodes an immediate literal. The leading '#' is optional,
// a sign is allowed, and the value is decimal or 0x-prefixed hexadecimal.
// Hex literals may use all 64 bits; they wrap into the int64 result.
func ParseImmediate(tok string) (int64, error) {
	s := strings.TrimSpace(tok)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimSpace(s)

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrBadImmediate, tok)
	}

	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadImmediate, tok)
	}

	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}

// ParseOperand classifies and decodes one operand token. Classification is
// attempted in a fixed order: bracketed memory form, register spelling,
// '#'-prefixed immediate, and finally label.
func ParseOperand(tok string) (Operand, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return Operand{}, ErrEmptyOperand
	}

	if strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]") {
		mem, err := parseMemRef(tok)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandMemory, Text: tok, Mem: mem}, nil
	}

	if reg, ok := ParseRegister(tok); ok {
		return Operand{Kind: OperandRegister, Text: tok, Reg: reg}, nil
	}

	if strings.HasPrefix(tok, "#") {
		imm, err := ParseImmediate(tok)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandImmediate, Text: tok, Imm: imm}, nil
	}

	return Operand{Kind: OperandLabel, Text: tok, Label: strings.ToUpper(tok)}, nil
}

// parseMemRef decodes [base], [base, #imm], [base, imm], [base, Xm] and
// [base, Xm, LSL #s].
func parseMemRef(tok string) (MemRef, error) {
	inner := strings.TrimSpace(tok[1 : len(tok)-1])
	parts := SplitOperands(inner)
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return MemRef{}, fmt.Errorf("%w: %q", ErrBadMemoryOperand, tok)
	}

	mem := MemRef{BaseText: strings.ToUpper(parts[0])}
	if base, ok := ParseRegister(parts[0]); ok && base.Is64Bit {
		mem.Base = base
		mem.BaseValid = true
	}

	if len(parts) >= 2 {
		off := parts[1]
		if idx, ok := ParseRegister(off); ok {
			mem.HasIndex = true
			mem.Index = idx
		} else {
			imm, err := ParseImmediate(off)
			if err != nil {
				return MemRef{}, fmt.Errorf("%w: offset %q in %q",
					ErrBadMemoryOperand, off, tok)
			}
			mem.Offset = imm
		}
	}

	if len(parts) == 3 {
		if !mem.HasIndex {
			return MemRef{}, fmt.Errorf("%w: shift without index register in %q",
				ErrBadMemoryOperand, tok)
		}
		shift, err := parseLSL(parts[2])
		if err != nil {
			return MemRef{}, fmt.Errorf("%w: %v in %q", ErrBadMemoryOperand, err, tok)
		}
		mem.Shift = shift
	}

	return mem, nil
}

func parseLSL(s string) (uint8, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "LSL") {
		return 0, fmt.Errorf("expected LSL #amount, got %q", s)
	}
	amount, err := ParseImmediate(fields[1])
	if err != nil || amount < 0 || amount > 63 {
		return 0, fmt.Errorf("bad shift amount %q", fields[1])
	}
	return uint8(amount), nil
}

// SplitOperands splits an operand list on commas that are not nested inside
// brackets. Each part is trimmed. An empty or blank input yields no parts.
func SplitOperands(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var result []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				result = append(result, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	result = append(result, strings.TrimSpace(s[start:]))

	return result
}
