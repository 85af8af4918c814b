package insts

import (
	"fmt"
	"strconv"
	"strings"
)

// RegisterName identifies one of the 32 integer registers.
type RegisterName uint8

// Integer registers by ABI name.
const (
	Zero RegisterName = iota
	RA
	SP
	GP
	TP
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6
)

// NumRegisters is the size of the integer register file.
const NumRegisters = 32

var registerNames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// String returns the ABI name of the register.
func (r RegisterName) String() string {
	if int(r) < NumRegisters {
		return registerNames[r]
	}
	return fmt.Sprintf("x?%d", uint8(r))
}

// Index returns the numeric encoding of the register.
func (r RegisterName) Index() int {
	return int(r)
}

// RegisterFromIndex returns the register with the given 5-bit encoding.
// Only the low five bits of idx are used.
func RegisterFromIndex(idx int64) RegisterName {
	return RegisterName(idx & 0x1f)
}

// CompressedRegister maps a 3-bit compressed register field to x8-x15.
func CompressedRegister(field int64) RegisterName {
	return RegisterName(field&0x7 + 8)
}

// ParseRegister accepts an ABI name ("a0"), the frame pointer alias "fp",
// or an architectural name ("x10").
func ParseRegister(name string) (RegisterName, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "fp" {
		return S0, nil
	}

	for i, n := range registerNames {
		if n == name {
			return RegisterName(i), nil
		}
	}

	if strings.HasPrefix(name, "x") {
		idx, err := strconv.Atoi(name[1:])
		if err == nil && idx >= 0 && idx < NumRegisters {
			return RegisterName(idx), nil
		}
	}

	return Zero, fmt.Errorf("unknown register %q", name)
}
