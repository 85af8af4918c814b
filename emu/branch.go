package emu

import "github.com/sarchlab/rvsim/insts"

// BranchTaken evaluates a conditional branch on its two source values.
// BLTU and BGEU compare the registers as unsigned 64-bit values.
func BranchTaken(op insts.Op, rs1, rs2 int64) bool {
	switch op {
	case insts.OpBEQ, insts.OpCBEQZ:
		return rs1 == rs2
	case insts.OpBNE, insts.OpCBNEZ:
		return rs1 != rs2
	case insts.OpBLT:
		return rs1 < rs2
	case insts.OpBGE:
		return rs1 >= rs2
	case insts.OpBLTU:
		return uint64(rs1) < uint64(rs2)
	case insts.OpBGEU:
		return uint64(rs1) >= uint64(rs2)
	}
	return false
}

// executeBranch resolves a conditional branch. A taken branch sets PC to
// PC+offset; an untaken one falls through by the instruction length.
func executeBranch(inst insts.Instruction, s *ArchState) {
	if BranchTaken(inst.Op, s.Get(inst.Rs1), s.Get(inst.Rs2)) {
		s.jump(s.PC + inst.Imm)
		return
	}
	s.advance(inst.Len)
}

// executeJump performs JAL, JALR and their compressed forms. The link
// value PC+Len is written after the target is computed, so a jump whose
// rd equals rs1 still uses the old rs1.
func executeJump(inst insts.Instruction, s *ArchState) {
	var target int64
	switch inst.Op {
	case insts.OpJALR, insts.OpCJR, insts.OpCJALR:
		target = (s.Get(inst.Rs1) + inst.Imm) &^ 1
	default:
		target = s.PC + inst.Imm
	}

	s.Set(inst.Rd, s.PC+int64(inst.Len))
	s.jump(target)
}
