package emu

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/sarchlab/rvsim/insts"
)

// ALU computes integer register-register and register-immediate results.
// Results are returned at full 64-bit width; the caller narrows them to
// XLEN when writing the destination register.
type ALU struct {
	xlen insts.XLEN
}

// NewALU creates an ALU for the given register width.
func NewALU(xlen insts.XLEN) *ALU {
	return &ALU{xlen: xlen}
}

// shiftMask limits shift amounts taken from a register to XLEN-1.
func (a *ALU) shiftMask() int64 {
	if a.xlen == insts.XLEN32 {
		return 31
	}
	return 63
}

// Compute evaluates op on rs1 and the second operand, which is rs2 for
// register forms and the immediate for immediate forms. ok is false when
// op is not an ALU operation.
func (a *ALU) Compute(op insts.Op, rs1, rs2, imm int64) (result int64, ok bool) {
	switch op {
	case insts.OpADDI, insts.OpCADDI, insts.OpCADDI4SPN, insts.OpCADDI16SP, insts.OpCLI:
		return rs1 + imm, true
	case insts.OpSLTI:
		return boolToInt(rs1 < imm), true
	case insts.OpSLTIU:
		return boolToInt(uint64(rs1) < uint64(imm)), true
	case insts.OpXORI:
		return rs1 ^ imm, true
	case insts.OpORI:
		return rs1 | imm, true
	case insts.OpANDI, insts.OpCANDI:
		return rs1 & imm, true
	case insts.OpSLLI, insts.OpCSLLI, insts.OpCSLLI64:
		return a.SLL(rs1, imm), true
	case insts.OpSRLI, insts.OpCSRLI:
		return a.SRL(rs1, imm), true
	case insts.OpSRAI, insts.OpCSRAI:
		return a.SRA(rs1, imm), true

	case insts.OpADD, insts.OpCADD, insts.OpCMV:
		return rs1 + rs2, true
	case insts.OpSUB, insts.OpCSUB:
		return rs1 - rs2, true
	case insts.OpSLL:
		return a.SLL(rs1, rs2&a.shiftMask()), true
	case insts.OpSLT:
		return boolToInt(rs1 < rs2), true
	case insts.OpSLTU:
		return boolToInt(uint64(rs1) < uint64(rs2)), true
	case insts.OpXOR, insts.OpCXOR:
		return rs1 ^ rs2, true
	case insts.OpSRL:
		return a.SRL(rs1, rs2&a.shiftMask()), true
	case insts.OpSRA:
		return a.SRA(rs1, rs2&a.shiftMask()), true
	case insts.OpOR, insts.OpCOR:
		return rs1 | rs2, true
	case insts.OpAND, insts.OpCAND:
		return rs1 & rs2, true

	case insts.OpADDIW, insts.OpCADDIW:
		return int64(int32(rs1 + imm)), true
	case insts.OpSLLIW:
		return int64(int32(uint32(rs1) << uint(imm&31))), true
	case insts.OpSRLIW:
		return int64(int32(uint32(rs1) >> uint(imm&31))), true
	case insts.OpSRAIW:
		return int64(int32(rs1) >> uint(imm&31)), true
	case insts.OpADDW, insts.OpCADDW:
		return int64(int32(rs1 + rs2)), true
	case insts.OpSUBW, insts.OpCSUBW:
		return int64(int32(rs1 - rs2)), true
	case insts.OpSLLW:
		return int64(int32(uint32(rs1) << uint(rs2&31))), true
	case insts.OpSRLW:
		return int64(int32(uint32(rs1) >> uint(rs2&31))), true
	case insts.OpSRAW:
		return int64(int32(rs1) >> uint(rs2&31)), true
	}

	return a.computeM(op, rs1, rs2)
}

// computeM evaluates the M extension. Division by zero and signed overflow
// produce the architectural results instead of trapping.
func (a *ALU) computeM(op insts.Op, rs1, rs2 int64) (int64, bool) {
	switch op {
	case insts.OpMUL:
		return rs1 * rs2, true
	case insts.OpMULH:
		return a.MulHigh(rs1, rs2, true, true), true
	case insts.OpMULHSU:
		return a.MulHigh(rs1, rs2, true, false), true
	case insts.OpMULHU:
		return a.MulHigh(rs1, rs2, false, false), true
	case insts.OpDIV:
		return DIV(rs1, rs2), true
	case insts.OpDIVU:
		if a.xlen == insts.XLEN32 {
			return int64(int32(DIVU32(uint32(rs1), uint32(rs2)))), true
		}
		return int64(DIVU(uint64(rs1), uint64(rs2))), true
	case insts.OpREM:
		return REM(rs1, rs2), true
	case insts.OpREMU:
		if a.xlen == insts.XLEN32 {
			return int64(int32(REMU32(uint32(rs1), uint32(rs2)))), true
		}
		return int64(REMU(uint64(rs1), uint64(rs2))), true

	case insts.OpMULW:
		return int64(int32(rs1) * int32(rs2)), true
	case insts.OpDIVW:
		return int64(DIV32(int32(rs1), int32(rs2))), true
	case insts.OpDIVUW:
		return int64(int32(DIVU32(uint32(rs1), uint32(rs2)))), true
	case insts.OpREMW:
		return int64(REM32(int32(rs1), int32(rs2))), true
	case insts.OpREMUW:
		return int64(int32(REMU32(uint32(rs1), uint32(rs2)))), true
	}
	return 0, false
}

// SLL shifts left by a non-negative amount.
func (a *ALU) SLL(v, shamt int64) int64 {
	return v << uint(shamt)
}

// SRL shifts right logically. On RV32 only the low word takes part.
func (a *ALU) SRL(v, shamt int64) int64 {
	if a.xlen == insts.XLEN32 {
		return int64(int32(uint32(v) >> uint(shamt)))
	}
	return int64(uint64(v) >> uint(shamt))
}

// SRA shifts right arithmetically.
func (a *ALU) SRA(v, shamt int64) int64 {
	return v >> uint(shamt)
}

// MulHigh returns the upper XLEN bits of the 2*XLEN-bit product. Each
// operand is treated as signed or unsigned independently, which covers
// MULH, MULHSU and MULHU.
func (a *ALU) MulHigh(x, y int64, xSigned, ySigned bool) int64 {
	if a.xlen == insts.XLEN32 {
		return int64(int32(mulHigh32(int32(x), int32(y), xSigned, ySigned)))
	}

	// The 256-bit product of the sign-extended operands carries the
	// 128-bit product in its low half.
	product := new(uint256.Int).Mul(widen(x, xSigned), widen(y, ySigned))
	return int64(new(uint256.Int).Rsh(product, 64).Uint64())
}

func mulHigh32(x, y int32, xSigned, ySigned bool) uint32 {
	wx, wy := int64(uint32(x)), int64(uint32(y))
	if xSigned {
		wx = int64(x)
	}
	if ySigned {
		wy = int64(y)
	}
	return uint32(uint64(wx*wy) >> 32)
}

// widen converts v to a 256-bit integer, sign-extending when signed.
func widen(v int64, signed bool) *uint256.Int {
	w := uint256.NewInt(uint64(v))
	if signed && v < 0 {
		w[1], w[2], w[3] = math.MaxUint64, math.MaxUint64, math.MaxUint64
	}
	return w
}

// DIV is signed division rounding toward zero.
func DIV(x, y int64) int64 {
	switch {
	case y == 0:
		return -1
	case x == math.MinInt64 && y == -1:
		return x
	}
	return x / y
}

// DIVU is unsigned division.
func DIVU(x, y uint64) uint64 {
	if y == 0 {
		return math.MaxUint64
	}
	return x / y
}

// REM is the remainder of DIV; it takes the sign of the dividend.
func REM(x, y int64) int64 {
	switch {
	case y == 0:
		return x
	case x == math.MinInt64 && y == -1:
		return 0
	}
	return x % y
}

// REMU is the remainder of DIVU.
func REMU(x, y uint64) uint64 {
	if y == 0 {
		return x
	}
	return x % y
}

// DIV32 is the 32-bit form of DIV.
func DIV32(x, y int32) int32 {
	switch {
	case y == 0:
		return -1
	case x == math.MinInt32 && y == -1:
		return x
	}
	return x / y
}

// DIVU32 is the 32-bit form of DIVU.
func DIVU32(x, y uint32) uint32 {
	if y == 0 {
		return math.MaxUint32
	}
	return x / y
}

// REM32 is the 32-bit form of REM.
func REM32(x, y int32) int32 {
	switch {
	case y == 0:
		return x
	case x == math.MinInt32 && y == -1:
		return 0
	}
	return x % y
}

// REMU32 is the 32-bit form of REMU.
func REMU32(x, y uint32) uint32 {
	if y == 0 {
		return x
	}
	return x % y
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
