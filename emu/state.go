package emu

import (
	"github.com/sarchlab/rvsim/insts"
)

// NumCSRs is the size of the CSR address space.
const NumCSRs = 4096

// ArchState is the architectural state of one hart: program counter,
// integer registers, register width mode and the memory it executes from.
//
// FRegs and CSRs are placeholders. Floating-point loads and stores move raw
// bit patterns in and out of FRegs and the Zicsr instructions read and
// write CSRs, but neither has any further architectural effect.
type ArchState struct {
	PC     int64
	Regs   RegFile
	XLEN   insts.XLEN
	Memory *Memory

	FRegs [32]uint64
	CSRs  [NumCSRs]uint64
}

// NewArchState creates a state with all registers zero and PC at 0. A nil
// memory is replaced by an empty one.
func NewArchState(xlen insts.XLEN, memory *Memory) *ArchState {
	if memory == nil {
		memory = NewMemory()
	}
	return &ArchState{XLEN: xlen, Memory: memory}
}

// Get reads an integer register.
func (s *ArchState) Get(name insts.RegisterName) int64 {
	return s.Regs.Get(name)
}

// Set writes an integer register, narrowing the value to XLEN first.
func (s *ArchState) Set(name insts.RegisterName, value int64) {
	s.Regs.Set(name, s.narrow(value))
}

// narrow sign-extends a result from bit 31 on RV32. Registers always hold
// the XLEN-bit value sign-extended to 64 bits.
func (s *ArchState) narrow(v int64) int64 {
	if s.XLEN == insts.XLEN32 {
		return int64(int32(v))
	}
	return v
}

// Address forms the effective address base+offset. On RV32 the address
// wraps at 32 bits.
func (s *ArchState) Address(base, offset int64) uint64 {
	addr := uint64(base + offset)
	if s.XLEN == insts.XLEN32 {
		addr = uint64(uint32(addr))
	}
	return addr
}

// jump sets the PC to target.
func (s *ArchState) jump(target int64) {
	s.PC = s.narrow(target)
}

// advance moves the PC past an instruction of the given length.
func (s *ArchState) advance(length uint8) {
	s.PC = s.narrow(s.PC + int64(length))
}

// Fetch reads the instruction at PC. The first halfword is read
// little-endian and classified by insts.Length; a standard instruction
// then reads its upper halfword. Longer encodings are refused with
// insts.ErrUnsupportedLength. Fetch never modifies the state.
func (s *ArchState) Fetch() (insts.RawInstruction, error) {
	pc := s.Address(s.PC, 0)

	lo, err := s.Memory.Read16(pc)
	if err != nil {
		return insts.RawInstruction{}, err
	}

	switch n := insts.Length(lo); n {
	case 2:
		return insts.NewRaw16(lo), nil
	case 4:
		hi, err := s.Memory.Read16(s.Address(s.PC, 2))
		if err != nil {
			return insts.RawInstruction{}, err
		}
		return insts.NewRaw32(uint32(hi)<<16 | uint32(lo)), nil
	default:
		return insts.RawInstruction{}, insts.UnsupportedLength(lo, n, s.XLEN)
	}
}
