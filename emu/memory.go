package emu

import (
	"github.com/sarchlab/akita/v4/mem/mem"
)

// Default memory region: 256 bytes starting at address 0.
const (
	DefaultMemoryBase = 0x0
	DefaultMemorySize = 256
)

// Memory is a fixed-size, bounds-checked byte region starting at a base
// address. Multi-byte values are little-endian and are built from the byte
// accessors.
type Memory struct {
	base    uint64
	size    uint64
	storage *mem.Storage
}

// NewMemory creates a zero-filled region of size bytes at base.
func NewMemory(base, size uint64) *Memory {
	return &Memory{
		base:    base,
		size:    size,
		storage: mem.NewStorage(size),
	}
}

// Base returns the lowest address of the region.
func (m *Memory) Base() uint64 { return m.base }

// Size returns the region length in bytes.
func (m *Memory) Size() uint64 { return m.size }

// End returns the address one past the region.
func (m *Memory) End() uint64 { return m.base + m.size }

// check returns the storage offset of an access of width bytes at addr.
func (m *Memory) check(op string, addr, width uint64) (uint64, error) {
	if addr < m.base || addr-m.base > m.size || width > m.size-(addr-m.base) {
		return 0, &OutOfBoundsError{
			Op:    op,
			Addr:  addr,
			Width: width,
			Base:  m.base,
			Size:  m.size,
		}
	}
	return addr - m.base, nil
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint64) (uint8, error) {
	off, err := m.check("read8", addr, 1)
	if err != nil {
		return 0, err
	}

	data, err := m.storage.Read(off, 1)
	if err != nil {
		return 0, err
	}

	return data[0], nil
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint64, value uint8) error {
	off, err := m.check("write8", addr, 1)
	if err != nil {
		return err
	}

	return m.storage.Write(off, []byte{value})
}

func (m *Memory) readLE(op string, addr, width uint64) (uint64, error) {
	if _, err := m.check(op, addr, width); err != nil {
		return 0, err
	}

	var value uint64
	for i := uint64(0); i < width; i++ {
		b, err := m.Read8(addr + i)
		if err != nil {
			return 0, err
		}
		value |= uint64(b) << (8 * i)
	}

	return value, nil
}

func (m *Memory) writeLE(op string, addr, width, value uint64) error {
	// Checked up front so a failing access leaves memory untouched.
	if _, err := m.check(op, addr, width); err != nil {
		return err
	}

	for i := uint64(0); i < width; i++ {
		if err := m.Write8(addr+i, uint8(value>>(8*i))); err != nil {
			return err
		}
	}

	return nil
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint64) (uint16, error) {
	v, err := m.readLE("read16", addr, 2)
	return uint16(v), err
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint64, value uint16) error {
	return m.writeLE("write16", addr, 2, uint64(value))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint64) (uint32, error) {
	v, err := m.readLE("read32", addr, 4)
	return uint32(v), err
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint64, value uint32) error {
	return m.writeLE("write32", addr, 4, uint64(value))
}

// Read64 reads a little-endian doubleword.
func (m *Memory) Read64(addr uint64) (uint64, error) {
	return m.readLE("read64", addr, 8)
}

// Write64 writes a little-endian doubleword.
func (m *Memory) Write64(addr uint64, value uint64) error {
	return m.writeLE("write64", addr, 8, value)
}

// Bytes returns a copy of the whole region.
func (m *Memory) Bytes() []byte {
	if m.size == 0 {
		return nil
	}

	data, err := m.storage.Read(0, m.size)
	if err != nil {
		return make([]byte, m.size)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// Load copies data into the region starting at addr.
func (m *Memory) Load(addr uint64, data []byte) error {
	off, err := m.check("load", addr, uint64(len(data)))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	return m.storage.Write(off, data)
}
