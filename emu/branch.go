package emu

import "github.com/sarchlab/m2asm/insts"

// CheckCondition evaluates an ARM64 condition code against PSTATE flags.
func CheckCondition(pstate PSTATE, cond insts.Cond) bool {
	switch cond {
	case insts.CondEQ:
		// Equal: Z == 1
		return pstate.Z
	case insts.CondNE:
		// Not Equal: Z == 0
		return !pstate.Z
	case insts.CondCS:
		// Carry Set / Unsigned higher or same: C == 1
		return pstate.C
	case insts.CondCC:
		// Carry Clear / Unsigned lower: C == 0
		return !pstate.C
	case insts.CondMI:
		// Minus / Negative: N == 1
		return pstate.N
	case insts.CondPL:
		// Plus / Positive or zero: N == 0
		return !pstate.N
	case insts.CondVS:
		// Overflow: V == 1
		return pstate.V
	case insts.CondVC:
		// No overflow: V == 0
		return !pstate.V
	case insts.CondHI:
		return pstate.C && !pstate.Z
	case insts.CondLS:
		return !pstate.C || pstate.Z
	case insts.CondGE:
		return pstate.N == pstate.V
	case insts.CondLT:
		return pstate.N != pstate.V
	case insts.CondGT:
		// Signed greater than: Z == 0 && N == V
		return !pstate.Z && (pstate.N == pstate.V)
	case insts.CondLE:
		// Signed less than or equal: Z == 1 || N != V
		return pstate.Z || (pstate.N != pstate.V)
	case insts.CondAL, insts.CondNV:
		return true
	default:
		return false
	}
}

// branchTarget resolves the label operand of a branch.
func branchTarget(x *execution) (uint64, error) {
	op, err := x.operand(0, insts.OperandLabel)
	if err != nil {
		return 0, err
	}

	addr, ok := x.prog.Resolve(op.Label)
	if !ok {
		return 0, &UndefinedLabelError{Label: op.Text}
	}

	return addr, nil
}

func execB(x *execution) error {
	target, err := branchTarget(x)
	if err != nil {
		return err
	}
	x.nextPC = target
	return nil
}

// execBCond only resolves the label when the branch is taken.
func execBCond(x *execution) error {
	if !CheckCondition(x.regFile.PSTATE, x.inst.Cond) {
		return nil
	}
	return execB(x)
}

func execRET(x *execution) error {
	x.halt = true
	return nil
}
