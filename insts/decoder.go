package insts

import (
	"fmt"
	"strings"
)

// DecodeError reports a line that could not be decoded into an instruction,
// either because an operand is malformed or because the operands violate the
// mnemonic's signature.
type DecodeError struct {
	Mnemonic string
	Reason   string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Mnemonic == "" {
		return "decode: " + e.Reason
	}
	return fmt.Sprintf("decode %s: %s", e.Mnemonic, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder decodes ARM64 assembly text into instructions.
type Decoder struct {
	signatures map[Op]signature
}

// NewDecoder creates a new ARM64 assembly decoder with the signature checks
// of every supported mnemonic.
func NewDecoder() *Decoder {
	return &Decoder{signatures: defaultSignatures()}
}

// Decode decodes one line of assembly text. Leading labels and trailing
// comments are stripped. It returns a nil instruction and a nil error for
// blank lines, comment lines and bare-label lines.
func (d *Decoder) Decode(line string) (*Instruction, error) {
	s := strings.TrimSpace(StripComment(line))
	_, s = StripLabels(s)
	if s == "" {
		return nil, nil
	}

	mnemonic, rest := splitMnemonic(s)
	mnemonic = strings.ToUpper(mnemonic)

	operands := make([]Operand, 0, 3)
	for _, tok := range SplitOperands(rest) {
		op, err := ParseOperand(tok)
		if err != nil {
			return nil, &DecodeError{Mnemonic: mnemonic, Reason: err.Error(), Err: err}
		}
		operands = append(operands, op)
	}

	op, cond := LookupMnemonic(mnemonic)
	inst := &Instruction{
		Op:       op,
		Mnemonic: mnemonic,
		Cond:     cond,
		Operands: operands,
	}

	if sig, ok := d.signatures[op]; ok {
		if reason := sig.check(inst.Operands); reason != "" {
			return nil, &DecodeError{Mnemonic: mnemonic, Reason: reason}
		}
	}

	return inst, nil
}

func splitMnemonic(s string) (mnemonic, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

// StripComment removes a "//" or ";" comment that starts outside of a
// bracketed memory operand.
func StripComment(line string) string {
	depth := 0
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '[':
			depth++
		case c == ']' && depth > 0:
			depth--
		case depth > 0:
		case c == ';':
			return line[:i]
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}

// StripLabels removes any chain of leading "NAME:" label definitions and
// returns the upper-cased label names together with the remaining text.
func StripLabels(line string) (labels []string, rest string) {
	s := strings.TrimSpace(line)
	for {
		pos := strings.IndexByte(s, ':')
		if pos < 0 {
			break
		}
		name := strings.TrimSpace(s[:pos])
		if name == "" || strings.ContainsAny(name, " \t[],#") {
			break
		}
		labels = append(labels, strings.ToUpper(name))
		s = strings.TrimSpace(s[pos+1:])
	}
	return labels, s
}

// slot describes the operand kinds accepted at one operand position.
type slot struct {
	role  string
	kinds []OperandKind
}

func (s slot) accepts(k OperandKind) bool {
	for _, kind := range s.kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func (s slot) describe() string {
	names := make([]string, len(s.kinds))
	for i, k := range s.kinds {
		names[i] = k.String()
	}
	return strings.Join(names, " or ")
}

// signature is the operand shape of a mnemonic. The last `optional` slots
// may be omitted.
type signature struct {
	slots    []slot
	optional int
}

func (sig signature) check(ops []Operand) string {
	maxOps := len(sig.slots)
	minOps := maxOps - sig.optional
	if len(ops) < minOps || len(ops) > maxOps {
		if minOps == maxOps {
			return fmt.Sprintf("expects %d operands, got %d", maxOps, len(ops))
		}
		return fmt.Sprintf("expects %d to %d operands, got %d", minOps, maxOps, len(ops))
	}

	for i, op := range ops {
		s := sig.slots[i]
		if !s.accepts(op.Kind) {
			return fmt.Sprintf("%s %q must be a %s, got %s",
				s.role, op.Text, s.describe(), op.Kind)
		}
	}

	return ""
}

func defaultSignatures() map[Op]signature {
	var (
		reg    = []OperandKind{OperandRegister}
		regImm = []OperandKind{OperandRegister, OperandImmediate}
		mem    = []OperandKind{OperandMemory}
		label  = []OperandKind{OperandLabel}
	)

	arith := signature{slots: []slot{
		{"destination", reg},
		{"first source", reg},
		{"second source", regImm},
	}}
	move := signature{slots: []slot{
		{"destination", reg},
		{"source", regImm},
	}}
	compare := signature{slots: []slot{
		{"first operand", reg},
		{"second operand", regImm},
	}}
	loadStore := signature{slots: []slot{
		{"transfer register", reg},
		{"address", mem},
	}}
	branch := signature{slots: []slot{{"target", label}}}

	return map[Op]signature{
		OpADD:   arith,
		OpSUB:   arith,
		OpAND:   arith,
		OpEOR:   arith,
		OpMUL:   arith,
		OpMOV:   move,
		OpCMP:   compare,
		OpLDR:   loadStore,
		OpLDRB:  loadStore,
		OpSTR:   loadStore,
		OpSTRB:  loadStore,
		OpB:     branch,
		OpBCond: branch,
		OpNOP:   {},
		OpRET:   {slots: []slot{{"return register", reg}}, optional: 1},
	}
}
