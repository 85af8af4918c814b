package insts

// Operand formatters. Each one pulls the register fields and the assembled
// immediate for a single encoding format out of a raw word. They are pure
// and never consult the hart state.

// ParseR extracts the operands of an R-type word.
//
//	funct7 | rs2 | rs1 | funct3 | rd | opcode
func ParseR(w uint32) (rd, rs1, rs2 RegisterName) {
	return RegisterFromIndex(X(w, 7, 5)),
		RegisterFromIndex(X(w, 15, 5)),
		RegisterFromIndex(X(w, 20, 5))
}

// ParseI extracts the operands of an I-type word. imm is sign-extended from
// 12 bits.
//
//	imm[11:0] | rs1 | funct3 | rd | opcode
func ParseI(w uint32) (rd, rs1 RegisterName, imm int64) {
	return RegisterFromIndex(X(w, 7, 5)),
		RegisterFromIndex(X(w, 15, 5)),
		SignExtend(X(w, 20, 12), 12)
}

// ParseS extracts the operands of an S-type word.
//
//	imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode
func ParseS(w uint32) (rs1, rs2 RegisterName, imm int64) {
	imm = X(w, 25, 7)<<5 | X(w, 7, 5)
	return RegisterFromIndex(X(w, 15, 5)),
		RegisterFromIndex(X(w, 20, 5)),
		SignExtend(imm, 12)
}

// ParseB extracts the operands of a B-type word. The 13-bit offset always
// has bit 0 clear.
//
//	imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | opcode
func ParseB(w uint32) (rs1, rs2 RegisterName, imm int64) {
	imm = X(w, 31, 1)<<12 | X(w, 7, 1)<<11 | X(w, 25, 6)<<5 | X(w, 8, 4)<<1
	return RegisterFromIndex(X(w, 15, 5)),
		RegisterFromIndex(X(w, 20, 5)),
		SignExtend(imm, 13)
}

// ParseU extracts the operands of a U-type word. imm is the 20-bit field
// already shifted left by 12 and sign-extended from bit 31.
//
//	imm[31:12] | rd | opcode
func ParseU(w uint32) (rd RegisterName, imm int64) {
	return RegisterFromIndex(X(w, 7, 5)), SignExtend(X(w, 12, 20)<<12, 32)
}

// ParseJ extracts the operands of a J-type word. The 21-bit offset always
// has bit 0 clear.
//
//	imm[20|10:1|11|19:12] | rd | opcode
func ParseJ(w uint32) (rd RegisterName, imm int64) {
	imm = X(w, 31, 1)<<20 | X(w, 12, 8)<<12 | X(w, 20, 1)<<11 | X(w, 21, 10)<<1
	return RegisterFromIndex(X(w, 7, 5)), SignExtend(imm, 21)
}

// ParseCR extracts the operands of a CR-format halfword.
//
//	funct4 | rd/rs1 | rs2 | op
func ParseCR(h uint16) (rd, rs2 RegisterName) {
	return RegisterFromIndex(X(h, 7, 5)), RegisterFromIndex(X(h, 2, 5))
}

// ParseCI extracts the operands of a CI-format halfword with a signed
// 6-bit immediate.
//
//	funct3 | imm[5] | rd/rs1 | imm[4:0] | op
func ParseCI(h uint16) (rd RegisterName, imm int64) {
	return RegisterFromIndex(X(h, 7, 5)), SignExtend(ciField(h), 6)
}

// ciField returns the raw 6-bit CI immediate, imm[5] from bit 12 and
// imm[4:0] from bits 6:2.
func ciField(h uint16) int64 {
	return X(h, 12, 1)<<5 | X(h, 2, 5)
}

// ParseCIStack extracts the destination and zero-extended offset of a
// stack-pointer-relative load of the given width (4, 8 or 16 bytes).
func ParseCIStack(h uint16, width int) (rd RegisterName, imm int64) {
	rd = RegisterFromIndex(X(h, 7, 5))
	switch width {
	case 4: // uimm[5] | uimm[4:2|7:6]
		imm = X(h, 12, 1)<<5 | X(h, 4, 3)<<2 | X(h, 2, 2)<<6
	case 8: // uimm[5] | uimm[4:3|8:6]
		imm = X(h, 12, 1)<<5 | X(h, 5, 2)<<3 | X(h, 2, 3)<<6
	default: // uimm[5] | uimm[4|9:6]
		imm = X(h, 12, 1)<<5 | X(h, 6, 1)<<4 | X(h, 2, 4)<<6
	}
	return rd, imm
}

// ParseCSS extracts the source and zero-extended offset of a
// stack-pointer-relative store of the given width (4, 8 or 16 bytes).
//
//	funct3 | imm | rs2 | op
func ParseCSS(h uint16, width int) (rs2 RegisterName, imm int64) {
	rs2 = RegisterFromIndex(X(h, 2, 5))
	switch width {
	case 4: // uimm[5:2|7:6]
		imm = X(h, 9, 4)<<2 | X(h, 7, 2)<<6
	case 8: // uimm[5:3|8:6]
		imm = X(h, 10, 3)<<3 | X(h, 7, 3)<<6
	default: // uimm[5:4|9:6]
		imm = X(h, 11, 2)<<4 | X(h, 7, 4)<<6
	}
	return rs2, imm
}

// ParseCIW extracts the operands of C.ADDI4SPN, the only CIW instruction.
//
//	funct3 | nzuimm[5:4|9:6|2|3] | rd' | op
func ParseCIW(h uint16) (rd RegisterName, imm int64) {
	imm = X(h, 11, 2)<<4 | X(h, 7, 4)<<6 | X(h, 6, 1)<<2 | X(h, 5, 1)<<3
	return CompressedRegister(X(h, 2, 3)), imm
}

// clOffset decodes the offset shared by the CL and CS layouts.
func clOffset(h uint16, width int) int64 {
	switch width {
	case 4: // uimm[5:3] | uimm[2|6]
		return X(h, 10, 3)<<3 | X(h, 6, 1)<<2 | X(h, 5, 1)<<6
	case 8: // uimm[5:3] | uimm[7:6]
		return X(h, 10, 3)<<3 | X(h, 5, 2)<<6
	default: // uimm[5:4|8] | uimm[7:6]
		return X(h, 11, 2)<<4 | X(h, 10, 1)<<8 | X(h, 5, 2)<<6
	}
}

// ParseCL extracts the operands of a CL-format load of the given width.
//
//	funct3 | imm | rs1' | imm | rd' | op
func ParseCL(h uint16, width int) (rd, rs1 RegisterName, imm int64) {
	return CompressedRegister(X(h, 2, 3)),
		CompressedRegister(X(h, 7, 3)),
		clOffset(h, width)
}

// ParseCS extracts the operands of a CS-format store of the given width.
//
//	funct3 | imm | rs1' | imm | rs2' | op
func ParseCS(h uint16, width int) (rs1, rs2 RegisterName, imm int64) {
	return CompressedRegister(X(h, 7, 3)),
		CompressedRegister(X(h, 2, 3)),
		clOffset(h, width)
}

// ParseCA extracts the operands of the register-register subset of CS
// (C.SUB, C.XOR, C.OR, C.AND, C.SUBW, C.ADDW).
//
//	funct6 | rd'/rs1' | funct2 | rs2' | op
func ParseCA(h uint16) (rd, rs2 RegisterName) {
	return CompressedRegister(X(h, 7, 3)), CompressedRegister(X(h, 2, 3))
}

// ParseCB extracts the operands of C.BEQZ and C.BNEZ. The 9-bit offset is
// sign-extended and has bit 0 clear.
//
//	funct3 | offset[8|4:3] | rs1' | offset[7:6|2:1|5] | op
func ParseCB(h uint16) (rs1 RegisterName, imm int64) {
	imm = X(h, 12, 1)<<8 | X(h, 10, 2)<<3 | X(h, 5, 2)<<6 | X(h, 3, 2)<<1 | X(h, 2, 1)<<5
	return CompressedRegister(X(h, 7, 3)), SignExtend(imm, 9)
}

// ParseCBImm extracts the operands of C.SRLI, C.SRAI and C.ANDI. The
// returned field is the raw 6-bit immediate; shifts use it unsigned and
// C.ANDI sign-extends it.
//
//	funct3 | imm[5] | funct2 | rd'/rs1' | imm[4:0] | op
func ParseCBImm(h uint16) (rd RegisterName, field int64) {
	return CompressedRegister(X(h, 7, 3)), ciField(h)
}

// ParseCJ extracts the 12-bit sign-extended offset of C.J and C.JAL.
//
//	funct3 | offset[11|4|9:8|10|6|7|3:1|5] | op
func ParseCJ(h uint16) int64 {
	imm := X(h, 12, 1)<<11 | X(h, 11, 1)<<4 | X(h, 9, 2)<<8 | X(h, 8, 1)<<10 |
		X(h, 7, 1)<<6 | X(h, 6, 1)<<7 | X(h, 3, 3)<<1 | X(h, 2, 1)<<5
	return SignExtend(imm, 12)
}

// addi16spImm decodes the scaled, sign-extended C.ADDI16SP immediate.
//
//	nzimm[9] | nzimm[4|6|8:7|5]
func addi16spImm(h uint16) int64 {
	imm := X(h, 12, 1)<<9 | X(h, 6, 1)<<4 | X(h, 5, 1)<<6 | X(h, 3, 2)<<7 | X(h, 2, 1)<<5
	return SignExtend(imm, 10)
}

// cluiImm decodes the C.LUI immediate, shifted into bits 17:12.
func cluiImm(h uint16) int64 {
	return SignExtend(ciField(h), 6) << 12
}
