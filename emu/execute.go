package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

// Execution outcomes that need a decision from the driving loop. Execute
// returns them without touching the state, PC included.
var (
	// ErrEnvironmentCall is returned by ECALL.
	ErrEnvironmentCall = errors.New("environment call")

	// ErrBreakpoint is returned by EBREAK and C.EBREAK.
	ErrBreakpoint = errors.New("breakpoint")
)

// Execute applies one decoded instruction to s.
//
// Instructions that do not transfer control advance PC by their own
// length. Jumps and taken branches set PC directly. An instruction that
// fails leaves s exactly as it was: memory accesses are validated before
// anything is written and a load's destination is written only after the
// read succeeds.
func Execute(inst insts.Instruction, s *ArchState) error {
	switch inst.Op {
	case insts.OpLUI, insts.OpCLUI:
		s.Set(inst.Rd, inst.Imm)
	case insts.OpAUIPC:
		s.Set(inst.Rd, s.PC+inst.Imm)

	case insts.OpJAL, insts.OpJALR, insts.OpCJ, insts.OpCJAL, insts.OpCJR, insts.OpCJALR:
		executeJump(inst, s)
		return nil
	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU,
		insts.OpCBEQZ, insts.OpCBNEZ:
		executeBranch(inst, s)
		return nil

	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLD, insts.OpLBU, insts.OpLHU, insts.OpLWU,
		insts.OpCLW, insts.OpCLD, insts.OpCLWSP, insts.OpCLDSP:
		if err := executeLoad(inst, s); err != nil {
			return err
		}
	case insts.OpSB, insts.OpSH, insts.OpSW, insts.OpSD,
		insts.OpCSW, insts.OpCSD, insts.OpCSWSP, insts.OpCSDSP:
		if err := executeStore(inst, s); err != nil {
			return err
		}
	case insts.OpFLW, insts.OpFLD, insts.OpCFLW, insts.OpCFLD, insts.OpCFLWSP, insts.OpCFLDSP:
		if err := executeFPLoad(inst, s); err != nil {
			return err
		}
	case insts.OpFSW, insts.OpFSD, insts.OpCFSW, insts.OpCFSD, insts.OpCFSWSP, insts.OpCFSDSP:
		if err := executeFPStore(inst, s); err != nil {
			return err
		}
	case insts.OpCLQ, insts.OpCSQ, insts.OpCLQSP, insts.OpCSQSP:
		return unimplemented(inst, s)

	case insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC,
		insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
		executeCSR(inst, s)
	case insts.OpFENCE, insts.OpFENCEI, insts.OpCNOP:
	case insts.OpECALL:
		return ErrEnvironmentCall
	case insts.OpEBREAK, insts.OpCEBREAK:
		return ErrBreakpoint

	default:
		result, ok := NewALU(s.XLEN).Compute(inst.Op, s.Get(inst.Rs1), s.Get(inst.Rs2), inst.Imm)
		if !ok {
			return unimplemented(inst, s)
		}
		s.Set(inst.Rd, result)
	}

	s.advance(inst.Len)
	return nil
}

func unimplemented(inst insts.Instruction, s *ArchState) error {
	return fmt.Errorf("execute %v at pc=%#x: %w", inst.Op, uint64(s.PC), insts.ErrUnimplemented)
}
