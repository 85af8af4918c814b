// Package emu provides functional RISC-V emulation.
package emu

import "github.com/sarchlab/rvsim/insts"

// RegFile represents the RISC-V integer register file.
// It contains 32 general-purpose registers x0-x31. x0 is hard-wired to
// zero: it always reads as 0 and writes to it are discarded.
type RegFile struct {
	// X holds the register values. X[0] is never written.
	X [insts.NumRegisters]int64
}

// Get reads a register.
func (r *RegFile) Get(name insts.RegisterName) int64 {
	if name == insts.Zero {
		return 0
	}
	return r.X[name&0x1f]
}

// Set writes a register. Writes to zero are ignored.
func (r *RegFile) Set(name insts.RegisterName, value int64) {
	if name == insts.Zero {
		return
	}
	r.X[name&0x1f] = value
}

// ReadReg reads a register by index as an unsigned value.
func (r *RegFile) ReadReg(reg uint8) uint64 {
	return uint64(r.Get(insts.RegisterName(reg)))
}

// WriteReg writes a register by index. Writes to register 0 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint64) {
	r.Set(insts.RegisterName(reg), int64(value))
}
