package emu

import (
	"context"
	"log/slog"

	"github.com/sarchlab/m2asm/loader"
)

// LevelTrace is the slog level of per-instruction trace records.
const LevelTrace slog.Level = slog.LevelDebug - 4

// Tracer observes every instruction the Emulator completes.
type Tracer interface {
	Trace(inst *loader.AddressedInstruction, result StepResult)
}

// Emulator runs a Program against its own register file and memory.
type Emulator struct {
	prog    *loader.Program
	regFile *RegFile
	memory  *Memory

	logger *slog.Logger
	tracer Tracer

	// Execution state
	halted           bool
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit

	stackPointer    uint64
	hasStackPointer bool
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemory replaces the default 256-byte memory region.
func WithMemory(memory *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = memory
	}
}

// WithStackPointer sets the initial stack pointer value. Without it the stack
// pointer starts one past the memory region.
func WithStackPointer(sp uint64) EmulatorOption {
	return func(e *Emulator) {
		e.stackPointer = sp
		e.hasStackPointer = true
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(limit uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = limit
	}
}

// WithLogger sets the logger used for trace and error records.
func WithLogger(logger *slog.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithTracer registers a Tracer called after every executed instruction.
func WithTracer(t Tracer) EmulatorOption {
	return func(e *Emulator) {
		e.tracer = t
	}
}

// NewEmulator creates an emulator for prog with PC at 0.
func NewEmulator(prog *loader.Program, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		prog:    prog,
		regFile: &RegFile{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.memory == nil {
		e.memory = NewMemory(DefaultMemoryBase, DefaultMemorySize)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.regFile.SP = e.memory.End()
	if e.hasStackPointer {
		e.regFile.SP = e.stackPointer
	}

	return e
}

// Program returns the program being executed.
func (e *Emulator) Program() *loader.Program {
	return e.prog
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Halted reports whether the program has finished.
func (e *Emulator) Halted() bool {
	return e.halted
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	pc := e.regFile.PC

	if e.halted {
		return StepResult{PC: pc, Halted: true}
	}

	// Stepping onto the end address is not an instruction.
	if pc == e.prog.EndAddr() {
		e.halted = true
		return StepResult{PC: pc, Halted: true}
	}

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{PC: pc, Err: ErrMaxInstructions}
	}

	inst, _ := e.prog.Lookup(pc)

	result := Step(e.prog, e.regFile, e.memory, pc)
	if result.Err != nil {
		e.logger.Error("execution failed", "pc", pc, "err", result.Err)
		return result
	}

	e.instructionCount++
	e.halted = result.Halted

	e.logger.Log(context.Background(), LevelTrace, "step",
		"pc", pc,
		"index", inst.Index,
		"inst", inst.Inst.String(),
		"next", result.PC,
	)

	if e.tracer != nil {
		e.tracer.Trace(inst, result)
	}

	return result
}

// Run executes instructions until the program halts or an error occurs.
func (e *Emulator) Run() error {
	for !e.halted {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
	}

	return nil
}
