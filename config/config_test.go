package config_test

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2asm/config"
	"github.com/sarchlab/m2asm/emu"
)

var _ = Describe("Config", func() {
	Describe("Default Config", func() {
		It("should describe a 256-byte region at 0", func() {
			c := config.DefaultConfig()
			Expect(c.MemoryBase).To(BeZero())
			Expect(c.MemorySize).To(Equal(uint64(256)))
			Expect(c.MaxInstructions).To(Equal(uint64(100000)))
			Expect(c.LogLevel).To(Equal("info"))
			Expect(c.Validate()).To(Succeed())
		})

		It("should start the stack one past the region", func() {
			c := config.DefaultConfig()
			c.MemoryBase = 0x1000
			Expect(c.InitialSP()).To(Equal(uint64(0x1100)))
		})
	})

	Describe("Validate", func() {
		It("should reject an empty region", func() {
			c := config.DefaultConfig()
			c.MemorySize = 0
			Expect(c.Validate()).To(MatchError(ContainSubstring("memory_size")))
		})

		It("should reject a region that wraps", func() {
			c := config.DefaultConfig()
			c.MemoryBase = 0xFFFFFFFFFFFFFFF0
			c.MemorySize = 0x20
			Expect(c.Validate()).NotTo(Succeed())
		})

		It("should reject unknown log levels", func() {
			c := config.DefaultConfig()
			c.LogLevel = "loud"
			Expect(c.Validate()).To(MatchError(ContainSubstring("loud")))
		})
	})

	DescribeTable("log levels",
		func(name string, want slog.Level) {
			c := config.DefaultConfig()
			c.LogLevel = name
			Expect(c.SlogLevel()).To(Equal(want))
		},
		Entry("trace", "trace", emu.LevelTrace),
		Entry("debug", "DEBUG", slog.LevelDebug),
		Entry("empty", "", slog.LevelInfo),
		Entry("warn", "warn", slog.LevelWarn),
		Entry("error", "error", slog.LevelError),
		Entry("unknown falls back to info", "loud", slog.LevelInfo),
	)

	It("should clone independently", func() {
		original := config.DefaultConfig()
		clone := original.Clone()
		clone.MemorySize = 1024

		Expect(original.MemorySize).To(Equal(uint64(256)))
		Expect(clone.MaxInstructions).To(Equal(original.MaxInstructions))
	})

	Describe("File I/O", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := config.DefaultConfig()
			original.MemorySize = 4096
			original.LogLevel = "trace"

			path := filepath.Join(tempDir, "run.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"memory_size": 512}`), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MemorySize).To(Equal(uint64(512)))
			Expect(loaded.MaxInstructions).To(Equal(uint64(100000)))
		})

		It("should return error for non-existent file", func() {
			_, err := config.LoadConfig(filepath.Join(tempDir, "missing.json"))
			Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			Expect(os.WriteFile(path, []byte("not valid json"), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})
	})
})
