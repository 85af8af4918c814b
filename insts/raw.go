package insts

import "fmt"

// RawInstruction is one fetched instruction word before decoding. Len is 2
// for a compressed halfword and 4 for a standard word.
type RawInstruction struct {
	Bits uint32
	Len  uint8
}

// NewRaw16 wraps a 16-bit compressed instruction.
func NewRaw16(half uint16) RawInstruction {
	return RawInstruction{Bits: uint32(half), Len: 2}
}

// NewRaw32 wraps a 32-bit standard instruction.
func NewRaw32(word uint32) RawInstruction {
	return RawInstruction{Bits: word, Len: 4}
}

// Is16 reports whether the raw instruction is a compressed halfword.
func (r RawInstruction) Is16() bool {
	return r.Len == 2
}

// String formats the raw bits with a width that matches Len.
func (r RawInstruction) String() string {
	if r.Is16() {
		return fmt.Sprintf("%#04x", uint16(r.Bits))
	}
	return fmt.Sprintf("%#08x", r.Bits)
}
