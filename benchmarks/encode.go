package benchmarks

import (
	"encoding/binary"

	"github.com/sarchlab/rvsim/insts"
)

// Major opcodes used by the encoders below.
const (
	opcLoad   = 0b0000011
	opcOpImm  = 0b0010011
	opcStore  = 0b0100011
	opcOp     = 0b0110011
	opcLUI    = 0b0110111
	opcBranch = 0b1100011
	opcJALR   = 0b1100111
	opcJAL    = 0b1101111
	opcSystem = 0b1110011
)

// Builder assembles a program from 32-bit and 16-bit instructions.
type Builder struct {
	code []byte
}

// Emit appends 32-bit instructions.
func (b *Builder) Emit(words ...uint32) *Builder {
	for _, w := range words {
		b.code = binary.LittleEndian.AppendUint32(b.code, w)
	}
	return b
}

// EmitC appends compressed instructions.
func (b *Builder) EmitC(halves ...uint16) *Builder {
	for _, h := range halves {
		b.code = binary.LittleEndian.AppendUint16(b.code, h)
	}
	return b
}

// Offset returns the byte offset of the next instruction.
func (b *Builder) Offset() int32 {
	return int32(len(b.code))
}

// Bytes returns the assembled program.
func (b *Builder) Bytes() []byte {
	return b.code
}

// BuildProgram assembles 32-bit instruction words into a byte slice.
func BuildProgram(instrs ...uint32) []byte {
	return new(Builder).Emit(instrs...).Bytes()
}

func r(reg insts.RegisterName) uint32 {
	return uint32(reg)
}

// EncodeR encodes an R-type instruction.
func EncodeR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// EncodeI encodes an I-type instruction.
func EncodeI(imm int32, rs1, funct3, rd, opcode uint32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// EncodeS encodes an S-type instruction.
func EncodeS(imm int32, rs2, rs1, funct3 uint32) uint32 {
	u := uint32(imm)
	return (u>>5&0x7f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | opcStore
}

// EncodeB encodes a conditional branch with a byte offset.
func EncodeB(offset int32, rs2, rs1, funct3 uint32) uint32 {
	u := uint32(offset)
	return (u>>12&1)<<31 | (u>>5&0x3f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 |
		(u>>1&0xf)<<8 | (u>>11&1)<<7 | opcBranch
}

// EncodeADDI encodes ADDI rd, rs1, imm.
func EncodeADDI(rd, rs1 insts.RegisterName, imm int32) uint32 {
	return EncodeI(imm, r(rs1), 0, r(rd), opcOpImm)
}

// EncodeLI encodes LI rd, imm for a 12-bit immediate.
func EncodeLI(rd insts.RegisterName, imm int32) uint32 {
	return EncodeADDI(rd, insts.Zero, imm)
}

// EncodeLUI encodes LUI rd, imm20.
func EncodeLUI(rd insts.RegisterName, imm20 uint32) uint32 {
	return imm20<<12 | r(rd)<<7 | opcLUI
}

// EncodeADD encodes ADD rd, rs1, rs2.
func EncodeADD(rd, rs1, rs2 insts.RegisterName) uint32 {
	return EncodeR(0, r(rs2), r(rs1), 0, r(rd), opcOp)
}

// EncodeSUB encodes SUB rd, rs1, rs2.
func EncodeSUB(rd, rs1, rs2 insts.RegisterName) uint32 {
	return EncodeR(0b0100000, r(rs2), r(rs1), 0, r(rd), opcOp)
}

// EncodeMUL encodes MUL rd, rs1, rs2.
func EncodeMUL(rd, rs1, rs2 insts.RegisterName) uint32 {
	return EncodeR(1, r(rs2), r(rs1), 0b000, r(rd), opcOp)
}

// EncodeDIV encodes DIV rd, rs1, rs2.
func EncodeDIV(rd, rs1, rs2 insts.RegisterName) uint32 {
	return EncodeR(1, r(rs2), r(rs1), 0b100, r(rd), opcOp)
}

// EncodeREM encodes REM rd, rs1, rs2.
func EncodeREM(rd, rs1, rs2 insts.RegisterName) uint32 {
	return EncodeR(1, r(rs2), r(rs1), 0b110, r(rd), opcOp)
}

// EncodeLD encodes LD rd, imm(rs1).
func EncodeLD(rd, rs1 insts.RegisterName, imm int32) uint32 {
	return EncodeI(imm, r(rs1), 0b011, r(rd), opcLoad)
}

// EncodeSD encodes SD rs2, imm(rs1).
func EncodeSD(rs2, rs1 insts.RegisterName, imm int32) uint32 {
	return EncodeS(imm, r(rs2), r(rs1), 0b011)
}

// EncodeBEQ encodes BEQ rs1, rs2, offset.
func EncodeBEQ(rs1, rs2 insts.RegisterName, offset int32) uint32 {
	return EncodeB(offset, r(rs2), r(rs1), 0b000)
}

// EncodeBNE encodes BNE rs1, rs2, offset.
func EncodeBNE(rs1, rs2 insts.RegisterName, offset int32) uint32 {
	return EncodeB(offset, r(rs2), r(rs1), 0b001)
}

// EncodeJAL encodes JAL rd, offset.
func EncodeJAL(rd insts.RegisterName, offset int32) uint32 {
	u := uint32(offset)
	return (u>>20&1)<<31 | (u>>1&0x3ff)<<21 | (u>>11&1)<<20 | (u>>12&0xff)<<12 |
		r(rd)<<7 | opcJAL
}

// EncodeJALR encodes JALR rd, imm(rs1).
func EncodeJALR(rd, rs1 insts.RegisterName, imm int32) uint32 {
	return EncodeI(imm, r(rs1), 0, r(rd), opcJALR)
}

// EncodeRET encodes RET (JALR zero, 0(ra)).
func EncodeRET() uint32 {
	return EncodeJALR(insts.Zero, insts.RA, 0)
}

// EncodeECALL encodes ECALL.
func EncodeECALL() uint32 {
	return opcSystem
}

// EncodeCLI encodes C.LI rd, imm for a 6-bit signed immediate.
func EncodeCLI(rd insts.RegisterName, imm int8) uint16 {
	u := uint16(imm)
	return 0b010<<13 | (u>>5&1)<<12 | uint16(rd)<<7 | (u&0x1f)<<2 | 0b01
}

// EncodeCADDI encodes C.ADDI rd, imm for a nonzero 6-bit signed immediate.
func EncodeCADDI(rd insts.RegisterName, imm int8) uint16 {
	u := uint16(imm)
	return (u>>5&1)<<12 | uint16(rd)<<7 | (u&0x1f)<<2 | 0b01
}

// EncodeCADD encodes C.ADD rd, rs2.
func EncodeCADD(rd, rs2 insts.RegisterName) uint16 {
	return 0b100<<13 | 1<<12 | uint16(rd)<<7 | uint16(rs2)<<2 | 0b10
}

// EncodeCBNEZ encodes C.BNEZ rs1, offset. rs1 must be one of x8-x15.
func EncodeCBNEZ(rs1 insts.RegisterName, offset int32) uint16 {
	u := uint16(offset)
	return 0b111<<13 | (u>>8&1)<<12 | (u>>3&3)<<10 | (uint16(rs1)-8)<<7 |
		(u>>6&3)<<5 | (u>>1&3)<<3 | (u>>5&1)<<2 | 0b01
}

// exitSequence loads the exit syscall number and traps.
func exitSequence() []uint32 {
	return []uint32{EncodeLI(insts.A7, 93), EncodeECALL()}
}
