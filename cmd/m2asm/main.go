// Package main provides the m2asm command, which runs an ARM64 assembly
// source file on the interpreter and prints the final machine state.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/m2asm/config"
	"github.com/sarchlab/m2asm/dump"
	"github.com/sarchlab/m2asm/emu"
	"github.com/sarchlab/m2asm/loader"
)

// Exit codes.
const (
	exitOK          = 0
	exitUsage       = 1
	exitMaxSteps    = 2
	exitControlFlow = 3
	exitError       = 4
)

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	verbose    bool
	decode     bool
	noDump     bool
	max        uint64
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}

	fs := flag.NewFlagSet("m2asm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to run configuration JSON file")
	fs.BoolVar(&opts.verbose, "v", false, "Print every executed instruction")
	fs.BoolVar(&opts.decode, "decode", false, "Decode and list the program without running it")
	fs.BoolVar(&opts.noDump, "no-dump", false, "Do not print final registers and memory")
	fs.Uint64Var(&opts.max, "max", 0, "Instruction limit (overrides the config when > 0)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: m2asm [options] <program.s>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return opts, fs.Args(), nil
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.max > 0 {
		cfg.MaxInstructions = opts.max
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil || len(rest) < 1 {
		if err == nil {
			fmt.Fprintf(stderr, "Usage: m2asm [options] <program.s>\n")
		}
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	logger := slog.New(slog.NewTextHandler(stderr,
		&slog.HandlerOptions{Level: cfg.SlogLevel()}))

	prog, err := loader.Load(rest[0])
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	if opts.decode {
		dump.Program(stdout, prog)
		for i := range prog.Instructions {
			dump.Instruction(stdout, &prog.Instructions[i])
		}
		return exitOK
	}

	if prog.Len() == 0 {
		fmt.Fprintln(stderr, "No instructions parsed.")
		return exitOK
	}

	return execute(prog, cfg, opts, logger, stdout, stderr)
}

func execute(
	prog *loader.Program,
	cfg *config.Config,
	opts *options,
	logger *slog.Logger,
	stdout, stderr io.Writer,
) int {
	emuOpts := []emu.EmulatorOption{
		emu.WithMemory(emu.NewMemory(cfg.MemoryBase, cfg.MemorySize)),
		emu.WithStackPointer(cfg.InitialSP()),
		emu.WithMaxInstructions(cfg.MaxInstructions),
		emu.WithLogger(logger),
	}
	if opts.verbose {
		emuOpts = append(emuOpts, emu.WithTracer(dump.NewStepPrinter(stdout)))
	}

	emulator := emu.NewEmulator(prog, emuOpts...)

	code := exitOK
	if err := emulator.Run(); err != nil {
		code = exitCode(err)
		if errors.Is(err, emu.ErrMaxInstructions) {
			fmt.Fprintf(stderr, "Aborting: exceeded max step count (%d)\n", cfg.MaxInstructions)
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	} else {
		fmt.Fprintf(stdout, "Program finished. Final PC = %s\n",
			dump.Hex64(emulator.RegFile().PC))
	}

	if !opts.noDump {
		dump.Registers(stdout, emulator.RegFile())
		dump.Memory(stdout, emulator.Memory())
	}

	fmt.Fprintf(stdout, "Instructions executed: %d\n", emulator.InstructionCount())

	return code
}

func exitCode(err error) int {
	var cfErr *emu.ControlFlowError

	switch {
	case errors.Is(err, emu.ErrMaxInstructions):
		return exitMaxSteps
	case errors.As(err, &cfErr):
		return exitControlFlow
	default:
		return exitError
	}
}
