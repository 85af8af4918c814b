package insts_test

// Instruction encoders for building test words by field.

func encR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encI(imm int32, rs1, funct3, rd, opcode uint32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encS(imm int32, rs2, rs1, funct3, opcode uint32) uint32 {
	u := uint32(imm)
	return (u>>5&0x7f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | opcode
}

func encB(imm int32, rs2, rs1, funct3, opcode uint32) uint32 {
	u := uint32(imm)
	return (u>>12&1)<<31 | (u>>5&0x3f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 |
		(u>>1&0xf)<<8 | (u>>11&1)<<7 | opcode
}

func encU(imm uint32, rd, opcode uint32) uint32 {
	return imm&0xfffff000 | rd<<7 | opcode
}

func encJ(imm int32, rd, opcode uint32) uint32 {
	u := uint32(imm)
	return (u>>20&1)<<31 | (u>>1&0x3ff)<<21 | (u>>11&1)<<20 | (u>>12&0xff)<<12 | rd<<7 | opcode
}

// encCJ builds a C.J/C.JAL halfword for a byte offset.
func encCJ(funct3 uint16, offset int32) uint16 {
	u := uint16(offset)
	return funct3<<13 | (u>>11&1)<<12 | (u>>4&1)<<11 | (u>>8&3)<<9 | (u>>10&1)<<8 |
		(u>>6&1)<<7 | (u>>7&1)<<6 | (u>>1&7)<<3 | (u>>5&1)<<2 | 0b01
}

// encCB builds a C.BEQZ/C.BNEZ halfword for a byte offset.
func encCB(funct3 uint16, rs1p uint16, offset int32) uint16 {
	u := uint16(offset)
	return funct3<<13 | (u>>8&1)<<12 | (u>>3&3)<<10 | rs1p<<7 |
		(u>>6&3)<<5 | (u>>1&3)<<3 | (u>>5&1)<<2 | 0b01
}

// encCI builds a CI-format halfword with a 6-bit immediate.
func encCI(funct3, rd uint16, imm int32, op uint16) uint16 {
	u := uint16(imm)
	return funct3<<13 | (u>>5&1)<<12 | rd<<7 | (u&0x1f)<<2 | op
}

// encADDI16SP builds a C.ADDI16SP halfword for a multiple of 16.
func encADDI16SP(imm int32) uint16 {
	u := uint16(imm)
	return 0b011<<13 | (u>>9&1)<<12 | 2<<7 | (u>>4&1)<<6 | (u>>6&1)<<5 |
		(u>>7&3)<<3 | (u>>5&1)<<2 | 0b01
}

// encCIW builds a C.ADDI4SPN halfword.
func encCIW(uimm int32, rdp uint16) uint16 {
	u := uint16(uimm)
	return (u>>4&3)<<11 | (u>>6&0xf)<<7 | (u>>2&1)<<6 | (u>>3&1)<<5 | rdp<<2
}

// encCLW builds a CL/CS halfword with a word-scaled offset (C.LW, C.SW).
func encCLW(funct3, rs1p, rp uint16, uimm int32) uint16 {
	u := uint16(uimm)
	return funct3<<13 | (u>>3&7)<<10 | rs1p<<7 | (u>>2&1)<<6 | (u>>6&1)<<5 | rp<<2
}

// encCLD builds a CL/CS halfword with a doubleword-scaled offset (C.LD,
// C.SD).
func encCLD(funct3, rs1p, rp uint16, uimm int32) uint16 {
	u := uint16(uimm)
	return funct3<<13 | (u>>3&7)<<10 | rs1p<<7 | (u>>6&3)<<5 | rp<<2
}

// encLWSP builds a C.LWSP halfword.
func encLWSP(rd uint16, uimm int32) uint16 {
	u := uint16(uimm)
	return 0b010<<13 | (u>>5&1)<<12 | rd<<7 | (u>>2&7)<<4 | (u>>6&3)<<2 | 0b10
}

// encLDSP builds a C.LDSP halfword.
func encLDSP(rd uint16, uimm int32) uint16 {
	u := uint16(uimm)
	return 0b011<<13 | (u>>5&1)<<12 | rd<<7 | (u>>3&3)<<5 | (u>>6&7)<<2 | 0b10
}

// encSWSP builds a C.SWSP halfword.
func encSWSP(rs2 uint16, uimm int32) uint16 {
	u := uint16(uimm)
	return 0b110<<13 | (u>>2&0xf)<<9 | (u>>6&3)<<7 | rs2<<2 | 0b10
}

// encSDSP builds a C.SDSP halfword.
func encSDSP(rs2 uint16, uimm int32) uint16 {
	u := uint16(uimm)
	return 0b111<<13 | (u>>3&7)<<10 | (u>>6&7)<<7 | rs2<<2 | 0b10
}

const (
	opcLoad   = 0b0000011
	opcFPLoad = 0b0000111
	opcFence  = 0b0001111
	opcOpImm  = 0b0010011
	opcAUIPC  = 0b0010111
	opcOpImmW = 0b0011011
	opcStore  = 0b0100011
	opcFPStor = 0b0100111
	opcOp     = 0b0110011
	opcLUI    = 0b0110111
	opcOpW    = 0b0111011
	opcBranch = 0b1100011
	opcJALR   = 0b1100111
	opcJAL    = 0b1101111
	opcSystem = 0b1110011
)
