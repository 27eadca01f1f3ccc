// Package config holds the run configuration of the m2asm interpreter.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sarchlab/m2asm/emu"
)

// Config describes the memory region, the instruction cap and the log level
// of a run.
type Config struct {
	// MemoryBase is the lowest address of the data memory region.
	// Default: 0x0.
	MemoryBase uint64 `json:"memory_base"`

	// MemorySize is the length of the data memory region in bytes.
	// Default: 256.
	MemorySize uint64 `json:"memory_size"`

	// MaxInstructions stops runaway programs. 0 means no limit.
	// Default: 100000.
	MaxInstructions uint64 `json:"max_instructions"`

	// LogLevel is one of "trace", "debug", "info", "warn" or "error".
	// Default: "info".
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		MemoryBase:      0x0,
		MemorySize:      256,
		MaxInstructions: 100000,
		LogLevel:        "info",
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the memory region is usable and the log level is
// known.
func (c *Config) Validate() error {
	if c.MemorySize == 0 {
		return fmt.Errorf("memory_size must be > 0")
	}
	if c.MemoryBase+c.MemorySize < c.MemoryBase {
		return fmt.Errorf("memory region overflows the address space")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// InitialSP returns the stack pointer a run starts with: one past the memory
// region, since the stack grows down.
func (c *Config) InitialSP() uint64 {
	return c.MemoryBase + c.MemorySize
}

// SlogLevel returns the configured log level. Unknown names map to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps a level name to a slog level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return emu.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", name)
}
