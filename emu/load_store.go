package emu

import (
	"fmt"

	"github.com/sarchlab/m2asm/insts"
)

// EffectiveAddress computes the address named by a memory operand: the base
// register (SP or an X register) plus an immediate offset or a shifted index
// register.
func EffectiveAddress(m insts.MemRef, regFile *RegFile) (uint64, error) {
	if !m.BaseValid {
		return 0, &InvalidOperandError{
			Operand: m.BaseText,
			Reason:  "memory base must be SP or an X register",
		}
	}

	base, err := regFile.Read(m.Base)
	if err != nil {
		return 0, err
	}

	if !m.HasIndex {
		return base + uint64(m.Offset), nil
	}

	index, err := regFile.Read(m.Index)
	if err != nil {
		return 0, err
	}

	return base + index<<m.Shift, nil
}

// transferWidth returns the number of bytes a load or store moves. Byte forms
// always move one byte; otherwise the register width decides.
func transferWidth(op insts.Op, reg insts.Register) uint64 {
	switch {
	case op == insts.OpLDRB || op == insts.OpSTRB:
		return 1
	case reg.Is64Bit:
		return 8
	default:
		return 4
	}
}

// LoadValue reads width bytes (1, 4 or 8) at addr, zero-extended.
func LoadValue(memory *Memory, addr, width uint64) (uint64, error) {
	switch width {
	case 1:
		v, err := memory.Read8(addr)
		return uint64(v), err
	case 4:
		v, err := memory.Read32(addr)
		return uint64(v), err
	case 8:
		return memory.Read64(addr)
	}
	return 0, fmt.Errorf("unsupported load width %d", width)
}

// StoreValue writes the low width bytes (1, 4 or 8) of value at addr.
func StoreValue(memory *Memory, addr, width, value uint64) error {
	switch width {
	case 1:
		return memory.Write8(addr, uint8(value))
	case 4:
		return memory.Write32(addr, uint32(value))
	case 8:
		return memory.Write64(addr, value)
	}
	return fmt.Errorf("unsupported store width %d", width)
}

// loadStoreOperands resolves the transfer register and effective address.
func loadStoreOperands(x *execution) (insts.Register, uint64, error) {
	rt, err := x.operand(0, insts.OperandRegister)
	if err != nil {
		return insts.Register{}, 0, err
	}

	mem, err := x.operand(1, insts.OperandMemory)
	if err != nil {
		return insts.Register{}, 0, err
	}

	addr, err := EffectiveAddress(mem.Mem, x.regFile)
	if err != nil {
		return insts.Register{}, 0, err
	}

	return rt.Reg, addr, nil
}

func execLoad(x *execution) error {
	rt, addr, err := loadStoreOperands(x)
	if err != nil {
		return err
	}

	value, err := LoadValue(x.memory, addr, transferWidth(x.inst.Op, rt))
	if err != nil {
		return err
	}

	return x.regFile.Write(rt, value)
}

func execStore(x *execution) error {
	rt, addr, err := loadStoreOperands(x)
	if err != nil {
		return err
	}

	value, err := x.regFile.Read(rt)
	if err != nil {
		return err
	}

	return StoreValue(x.memory, addr, transferWidth(x.inst.Op, rt), value)
}
