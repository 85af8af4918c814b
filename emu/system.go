package emu

import "github.com/sarchlab/rvsim/insts"

// executeCSR performs an atomic read-modify-write of a placeholder CSR.
// The set and clear forms leave the CSR alone when their source is x0 or
// a zero immediate. No privilege checks are made.
func executeCSR(inst insts.Instruction, s *ArchState) {
	csr := inst.CSR % NumCSRs
	old := s.CSRs[csr]

	var src uint64
	var write bool
	switch inst.Op {
	case insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC:
		src = uint64(s.Get(inst.Rs1))
		write = inst.Op == insts.OpCSRRW || inst.Rs1 != insts.Zero
	default:
		src = uint64(inst.Imm)
		write = inst.Op == insts.OpCSRRWI || src != 0
	}

	if write {
		switch inst.Op {
		case insts.OpCSRRW, insts.OpCSRRWI:
			s.CSRs[csr] = src
		case insts.OpCSRRS, insts.OpCSRRSI:
			s.CSRs[csr] = old | src
		default:
			s.CSRs[csr] = old &^ src
		}
	}

	s.Set(inst.Rd, int64(old))
}
