// Package loader assembles ARM64 assembly source text into a Program ready
// for execution.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/m2asm/insts"
)

// LineError reports a source line that could not be assembled.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Builder assigns addresses to decoded source lines and collects labels.
// Lines must be added in source order.
type Builder struct {
	decoder *insts.Decoder
	prog    *Program
	lineNo  int
}

// NewBuilder creates a Builder that decodes lines with decoder. A nil
// decoder selects insts.NewDecoder().
func NewBuilder(decoder *insts.Decoder) *Builder {
	if decoder == nil {
		decoder = insts.NewDecoder()
	}
	return &Builder{
		decoder: decoder,
		prog:    newProgram(),
	}
}

// nextAddr is the address the next instruction will receive.
func (b *Builder) nextAddr() uint64 {
	return uint64(len(b.prog.Instructions)) * InstSize
}

// AddLine processes one source line. Labels on the line bind to the address
// of the next instruction, whether or not the line itself holds one.
func (b *Builder) AddLine(text string) error {
	b.lineNo++

	s := strings.TrimSpace(insts.StripComment(text))
	s = stripAddressPrefix(s)
	s = stripOpcodeWord(s)

	addr := b.nextAddr()
	labels, rest := insts.StripLabels(s)
	for _, label := range labels {
		b.prog.Labels[label] = addr
	}
	if rest == "" {
		return nil
	}

	inst, err := b.decoder.Decode(rest)
	if err != nil {
		return &LineError{Line: b.lineNo, Text: strings.TrimSpace(text), Err: err}
	}
	if inst == nil {
		return nil
	}

	b.prog.AddrIndex[addr] = len(b.prog.Instructions)
	b.prog.Instructions = append(b.prog.Instructions, AddressedInstruction{
		Addr:   addr,
		Index:  len(b.prog.Instructions) + 1,
		Line:   b.lineNo,
		Source: rest,
		Inst:   inst,
	})

	return nil
}

// Program returns the assembled program. The builder must not be used
// afterwards.
func (b *Builder) Program() *Program {
	prog := b.prog
	b.prog = nil
	return prog
}

// Build assembles every line read from r.
func Build(r io.Reader) (*Program, error) {
	b := NewBuilder(nil)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := b.AddLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return b.Program(), nil
}

// BuildString assembles source held in a string.
func BuildString(src string) (*Program, error) {
	return Build(strings.NewReader(src))
}

// Load reads and assembles the source file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Build(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return prog, nil
}

// stripAddressPrefix removes a listing address such as "0004:". The prefix
// must be all hex digits and start with a decimal digit, so "beef:" stays a
// label.
func stripAddressPrefix(s string) string {
	pos := strings.IndexByte(s, ':')
	if pos <= 0 {
		return s
	}
	tok := s[:pos]
	if tok[0] < '0' || tok[0] > '9' || !isHex(tok) {
		return s
	}
	return strings.TrimSpace(s[pos+1:])
}

// stripOpcodeWord removes a standalone 8-hex-digit machine-code word that
// precedes the mnemonic, as in "d2800000 MOV X0, #0".
func stripOpcodeWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields[0]) != 8 || !isHex(fields[0]) {
		return s
	}
	return strings.TrimSpace(s[len(fields[0]):])
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return s != ""
}
