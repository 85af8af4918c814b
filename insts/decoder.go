package insts

// Decoder decodes RISC-V machine code for a fixed XLEN.
type Decoder struct {
	xlen XLEN
}

// NewDecoder creates a decoder for the given register width.
func NewDecoder(xlen XLEN) *Decoder {
	return &Decoder{xlen: xlen}
}

// XLEN returns the register width the decoder was created for.
func (d *Decoder) XLEN() XLEN {
	return d.xlen
}

// Decode decodes a fetched instruction.
func (d *Decoder) Decode(raw RawInstruction) (Instruction, error) {
	return Decode(raw, d.xlen)
}

// Decode16 decodes a 16-bit compressed instruction.
func (d *Decoder) Decode16(half uint16) (Instruction, error) {
	return decode16(half, d.xlen)
}

// Decode32 decodes a 32-bit standard instruction.
func (d *Decoder) Decode32(word uint32) (Instruction, error) {
	return decode32(word, d.xlen)
}

// Decode turns a raw instruction into a typed Instruction. Decoding is a
// pure function of the bits and xlen; every input yields either an
// instruction or a *DecodeError.
func Decode(raw RawInstruction, xlen XLEN) (Instruction, error) {
	switch raw.Len {
	case 2:
		return decode16(uint16(raw.Bits), xlen)
	case 4:
		return decode32(raw.Bits, xlen)
	default:
		return Instruction{}, UnsupportedLength(uint16(raw.Bits), int(raw.Len), xlen)
	}
}
