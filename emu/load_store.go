package emu

import (
	"encoding/binary"

	"github.com/sarchlab/rvsim/insts"
)

// nanBox is the upper word of a NaN-boxed single-precision value.
const nanBox = 0xffffffff00000000

// executeLoad reads memory into an integer register. The register is
// written only after the read succeeds.
func executeLoad(inst insts.Instruction, s *ArchState) error {
	addr := s.Address(s.Get(inst.Rs1), inst.Imm)
	width := inst.AccessWidth()

	data, err := s.Memory.Read(addr, width)
	if err != nil {
		return err
	}

	var v int64
	switch inst.Op {
	case insts.OpLB:
		v = int64(int8(data[0]))
	case insts.OpLBU:
		v = int64(data[0])
	case insts.OpLH:
		v = int64(int16(binary.LittleEndian.Uint16(data)))
	case insts.OpLHU:
		v = int64(binary.LittleEndian.Uint16(data))
	case insts.OpLW, insts.OpCLW, insts.OpCLWSP:
		v = int64(int32(binary.LittleEndian.Uint32(data)))
	case insts.OpLWU:
		v = int64(binary.LittleEndian.Uint32(data))
	default: // LD, C.LD, C.LDSP
		v = int64(binary.LittleEndian.Uint64(data))
	}

	s.Set(inst.Rd, v)
	return nil
}

// executeStore writes the low AccessWidth bytes of rs2 to memory.
func executeStore(inst insts.Instruction, s *ArchState) error {
	addr := s.Address(s.Get(inst.Rs1), inst.Imm)
	data := binary.LittleEndian.AppendUint64(nil, uint64(s.Get(inst.Rs2)))
	return s.Memory.Write(addr, inst.AccessWidth(), data)
}

// executeFPLoad moves raw bits from memory into an f register. 32-bit
// values are NaN-boxed.
func executeFPLoad(inst insts.Instruction, s *ArchState) error {
	addr := s.Address(s.Get(inst.Rs1), inst.Imm)

	data, err := s.Memory.Read(addr, inst.AccessWidth())
	if err != nil {
		return err
	}

	if len(data) == 4 {
		s.FRegs[inst.Rd&0x1f] = nanBox | uint64(binary.LittleEndian.Uint32(data))
	} else {
		s.FRegs[inst.Rd&0x1f] = binary.LittleEndian.Uint64(data)
	}
	return nil
}

// executeFPStore writes the low bits of an f register to memory.
func executeFPStore(inst insts.Instruction, s *ArchState) error {
	addr := s.Address(s.Get(inst.Rs1), inst.Imm)
	data := binary.LittleEndian.AppendUint64(nil, s.FRegs[inst.Rs2&0x1f])
	return s.Memory.Write(addr, inst.AccessWidth(), data)
}
