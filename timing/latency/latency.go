// Package latency provides instruction timing models for cycle-level
// simulation of a RISC-V core.
//
// The latency values approximate a single-issue in-order pipeline and can
// be configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/rvsim/insts"
)

// Class groups instructions that share a latency.
type Class uint8

// Instruction classes.
const (
	ClassOther Class = iota
	ClassALU
	ClassBranch
	ClassJump
	ClassLoad
	ClassStore
	ClassMultiply
	ClassDivide
	ClassSyscall
	ClassCSR
)

var classNames = [...]string{
	"other", "alu", "branch", "jump", "load", "store",
	"multiply", "divide", "syscall", "csr",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Classify returns the latency class of an instruction.
func Classify(inst *insts.Instruction) Class {
	switch {
	case inst == nil:
		return ClassOther
	case inst.IsBranch():
		return ClassBranch
	case inst.IsJump():
		return ClassJump
	case inst.IsLoad():
		return ClassLoad
	case inst.IsStore():
		return ClassStore
	}

	switch inst.Op {
	case insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU, insts.OpMULW:
		return ClassMultiply
	case insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU,
		insts.OpDIVW, insts.OpDIVUW, insts.OpREMW, insts.OpREMUW:
		return ClassDivide
	case insts.OpECALL, insts.OpEBREAK, insts.OpCEBREAK:
		return ClassSyscall
	case insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC,
		insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI,
		insts.OpFENCE, insts.OpFENCEI:
		return ClassCSR
	case insts.OpUnknown, insts.OpCNOP:
		return ClassOther
	}
	return ClassALU
}

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given instruction.
// For variable-latency operations, returns the typical/expected latency.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	switch Classify(inst) {
	case ClassALU:
		return t.config.ALULatency
	case ClassBranch, ClassJump:
		return t.config.BranchLatency
	case ClassLoad:
		return t.config.LoadLatency
	case ClassStore:
		return t.config.StoreLatency
	case ClassMultiply:
		return t.config.MultiplyLatency
	case ClassDivide:
		return (t.config.DivideLatencyMin + t.config.DivideLatencyMax) / 2
	case ClassSyscall:
		return t.config.SyscallLatency
	case ClassCSR:
		return t.config.CSRLatency
	default:
		return 1
	}
}

// GetMinLatency returns the minimum execution latency for variable-latency operations.
func (t *Table) GetMinLatency(inst *insts.Instruction) uint64 {
	if Classify(inst) == ClassDivide {
		return t.config.DivideLatencyMin
	}
	return t.GetLatency(inst)
}

// GetMaxLatency returns the maximum execution latency for variable-latency operations.
func (t *Table) GetMaxLatency(inst *insts.Instruction) uint64 {
	if Classify(inst) == ClassDivide {
		return t.config.DivideLatencyMax
	}
	return t.GetLatency(inst)
}

// IsMemoryOp returns true if the instruction accesses memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	c := Classify(inst)
	return c == ClassLoad || c == ClassStore
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	return Classify(inst) == ClassLoad
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	return Classify(inst) == ClassStore
}

// IsBranchOp returns true if the instruction transfers control.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	c := Classify(inst)
	return c == ClassBranch || c == ClassJump
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
