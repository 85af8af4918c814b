package insts

import "fmt"

// Major opcodes, bits 6:2 of a 32-bit word.
const (
	opLoad    = 0b00000
	opLoadFP  = 0b00001
	opCustom0 = 0b00010
	opMiscMem = 0b00011
	opOpImm   = 0b00100
	opAUIPC   = 0b00101
	opOpImm32 = 0b00110
	opStore   = 0b01000
	opStoreFP = 0b01001
	opCustom1 = 0b01010
	opAMO     = 0b01011
	opOp      = 0b01100
	opLUI     = 0b01101
	opOp32    = 0b01110
	opMadd    = 0b10000
	opMsub    = 0b10001
	opNmsub   = 0b10010
	opNmadd   = 0b10011
	opOpFP    = 0b10100
	opOpV     = 0b10101
	opCustom2 = 0b10110
	opBranch  = 0b11000
	opJALR    = 0b11001
	opJAL     = 0b11011
	opSystem  = 0b11100
	opCustom3 = 0b11110
)

// Encodings of the two SYSTEM instructions without operands.
const (
	wordECALL  = 0x00000073
	wordEBREAK = 0x00100073
)

func decode32(w uint32, xlen XLEN) (Instruction, error) {
	raw := NewRaw32(w)

	switch n := Length(uint16(w)); n {
	case 4:
	case 2:
		return Instruction{}, illegal(raw, xlen, "compressed encoding in a 32-bit word")
	default:
		return Instruction{}, UnsupportedLength(uint16(w), n, xlen)
	}

	switch X(w, 2, 5) {
	case opLoad:
		return decodeLoad(w, xlen)
	case opLoadFP:
		return decodeLoadFP(w, xlen)
	case opMiscMem:
		return decodeMiscMem(w, xlen)
	case opOpImm:
		return decodeOpImm(w, xlen)
	case opAUIPC:
		rd, imm := ParseU(w)
		return Instruction{Op: OpAUIPC, Format: FormatU, Len: 4, Rd: rd, Imm: imm}, nil
	case opOpImm32:
		return decodeOpImm32(w, xlen)
	case opStore:
		return decodeStore(w, xlen)
	case opStoreFP:
		return decodeStoreFP(w, xlen)
	case opOp:
		return decodeOp(w, xlen)
	case opLUI:
		rd, imm := ParseU(w)
		return Instruction{Op: OpLUI, Format: FormatU, Len: 4, Rd: rd, Imm: imm}, nil
	case opOp32:
		return decodeOp32(w, xlen)
	case opBranch:
		return decodeBranch(w, xlen)
	case opJALR:
		if X(w, 12, 3) != 0 {
			return Instruction{}, reserved(raw, xlen, "jalr with funct3!=0")
		}
		return typeI(OpJALR, w), nil
	case opJAL:
		rd, imm := ParseJ(w)
		return Instruction{Op: OpJAL, Format: FormatJ, Len: 4, Rd: rd, Imm: imm}, nil
	case opSystem:
		return decodeSystem(w, xlen)
	case opAMO:
		return Instruction{}, unimplemented(raw, xlen, "atomic memory operation")
	case opMadd, opMsub, opNmsub, opNmadd, opOpFP:
		return Instruction{}, unimplemented(raw, xlen, "floating-point arithmetic")
	case opOpV:
		return Instruction{}, unimplemented(raw, xlen, "vector operation")
	case opCustom0, opCustom1, opCustom2, opCustom3:
		return Instruction{}, unimplemented(raw, xlen, "custom opcode")
	default:
		return Instruction{}, reserved(raw, xlen, fmt.Sprintf("major opcode %#07b", X(w, 2, 5)))
	}
}

func typeI(op Op, w uint32) Instruction {
	rd, rs1, imm := ParseI(w)
	return Instruction{Op: op, Format: FormatI, Len: 4, Rd: rd, Rs1: rs1, Imm: imm}
}

func typeR(op Op, w uint32) Instruction {
	rd, rs1, rs2 := ParseR(w)
	return Instruction{Op: op, Format: FormatR, Len: 4, Rd: rd, Rs1: rs1, Rs2: rs2}
}

func typeS(op Op, w uint32) Instruction {
	rs1, rs2, imm := ParseS(w)
	return Instruction{Op: op, Format: FormatS, Len: 4, Rs1: rs1, Rs2: rs2, Imm: imm}
}

var loadOps = [8]Op{OpLB, OpLH, OpLW, OpLD, OpLBU, OpLHU, OpLWU, OpUnknown}

func decodeLoad(w uint32, xlen XLEN) (Instruction, error) {
	raw := NewRaw32(w)
	f3 := X(w, 12, 3)

	switch {
	case f3 == 7 && xlen == XLEN128:
		return Instruction{}, unimplemented(raw, xlen, "ldu")
	case f3 == 7:
		return Instruction{}, reserved(raw, xlen, "load funct3=111")
	case xlen == XLEN32 && (f3 == 3 || f3 == 6):
		return Instruction{}, reserved(raw, xlen, loadOps[f3].String()+" requires RV64")
	}
	return typeI(loadOps[f3], w), nil
}

func decodeLoadFP(w uint32, xlen XLEN) (Instruction, error) {
	switch X(w, 12, 3) {
	case 2:
		return typeI(OpFLW, w), nil
	case 3:
		return typeI(OpFLD, w), nil
	}
	return Instruction{}, unimplemented(NewRaw32(w), xlen, "floating-point or vector load width")
}

func decodeStore(w uint32, xlen XLEN) (Instruction, error) {
	raw := NewRaw32(w)

	switch X(w, 12, 3) {
	case 0:
		return typeS(OpSB, w), nil
	case 1:
		return typeS(OpSH, w), nil
	case 2:
		return typeS(OpSW, w), nil
	case 3:
		if xlen == XLEN32 {
			return Instruction{}, reserved(raw, xlen, "sd requires RV64")
		}
		return typeS(OpSD, w), nil
	case 4:
		if xlen == XLEN128 {
			return Instruction{}, unimplemented(raw, xlen, "sq")
		}
	}
	return Instruction{}, reserved(raw, xlen, fmt.Sprintf("store funct3=%03b", X(w, 12, 3)))
}

func decodeStoreFP(w uint32, xlen XLEN) (Instruction, error) {
	switch X(w, 12, 3) {
	case 2:
		return typeS(OpFSW, w), nil
	case 3:
		return typeS(OpFSD, w), nil
	}
	return Instruction{}, unimplemented(NewRaw32(w), xlen, "floating-point or vector store width")
}

func decodeMiscMem(w uint32, xlen XLEN) (Instruction, error) {
	rd, rs1, _ := ParseI(w)

	switch X(w, 12, 3) {
	case 0:
		// fm, pred and succ are kept unsigned in Imm.
		return Instruction{Op: OpFENCE, Format: FormatI, Len: 4, Rd: rd, Rs1: rs1, Imm: X(w, 20, 12)}, nil
	case 1:
		return typeI(OpFENCEI, w), nil
	}
	return Instruction{}, unimplemented(NewRaw32(w), xlen, "misc-mem funct3")
}

var opImmOps = [8]Op{OpADDI, OpUnknown, OpSLTI, OpSLTIU, OpXORI, OpUnknown, OpORI, OpANDI}

func decodeOpImm(w uint32, xlen XLEN) (Instruction, error) {
	f3 := X(w, 12, 3)
	if f3 == 1 || f3 == 5 {
		return decodeShiftImm(w, xlen, false)
	}
	return typeI(opImmOps[f3], w), nil
}

func decodeOpImm32(w uint32, xlen XLEN) (Instruction, error) {
	raw := NewRaw32(w)
	if xlen == XLEN32 {
		return Instruction{}, reserved(raw, xlen, "OP-IMM-32 requires RV64")
	}

	switch X(w, 12, 3) {
	case 0:
		return typeI(OpADDIW, w), nil
	case 1, 5:
		return decodeShiftImm(w, xlen, true)
	}
	return Instruction{}, reserved(raw, xlen, fmt.Sprintf("OP-IMM-32 funct3=%03b", X(w, 12, 3)))
}

// decodeShiftImm decodes SLLI/SRLI/SRAI and their W forms. The shamt field
// is 5, 6 or 7 bits wide depending on xlen (always 5 for the W forms); the
// bits above it must be zero except for bit 30, which selects SRAI.
func decodeShiftImm(w uint32, xlen XLEN, word bool) (Instruction, error) {
	raw := NewRaw32(w)
	f3 := X(w, 12, 3)

	bits := uint(5)
	switch {
	case word:
	case xlen == XLEN64:
		bits = 6
	case xlen == XLEN128:
		bits = 7
	}
	shamt := X(w, 20, bits)
	hi := X(w, 20+bits, 12-bits)
	sraFlag := int64(1) << (10 - bits)

	left, logical, arith := OpSLLI, OpSRLI, OpSRAI
	if word {
		left, logical, arith = OpSLLIW, OpSRLIW, OpSRAIW
	}

	var op Op
	switch {
	case f3 == 1 && hi == 0:
		op = left
	case f3 == 5 && hi == 0:
		op = logical
	case f3 == 5 && hi == sraFlag:
		op = arith
	case bits == 5 && hi&1 == 1 && (hi>>1 == 0 || (f3 == 5 && hi>>1 == sraFlag>>1)):
		return Instruction{}, reserved(raw, xlen, "shift immediate with shamt[5]=1")
	default:
		return Instruction{}, unimplemented(raw, xlen, fmt.Sprintf("shift-immediate funct %#x", hi))
	}

	rd, rs1, _ := ParseI(w)
	return Instruction{Op: op, Format: FormatI, Len: 4, Rd: rd, Rs1: rs1, Imm: shamt}, nil
}

var (
	opOps  = [8]Op{OpADD, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpOR, OpAND}
	mulOps = [8]Op{OpMUL, OpMULH, OpMULHSU, OpMULHU, OpDIV, OpDIVU, OpREM, OpREMU}
)

func decodeOp(w uint32, xlen XLEN) (Instruction, error) {
	f3 := X(w, 12, 3)

	switch X(w, 25, 7) {
	case 0x00:
		return typeR(opOps[f3], w), nil
	case 0x01:
		return typeR(mulOps[f3], w), nil
	case 0x20:
		switch f3 {
		case 0:
			return typeR(OpSUB, w), nil
		case 5:
			return typeR(OpSRA, w), nil
		}
	}
	return Instruction{}, unimplemented(NewRaw32(w), xlen, fmt.Sprintf("OP funct7=%#x funct3=%d", X(w, 25, 7), f3))
}

func decodeOp32(w uint32, xlen XLEN) (Instruction, error) {
	raw := NewRaw32(w)
	if xlen == XLEN32 {
		return Instruction{}, reserved(raw, xlen, "OP-32 requires RV64")
	}

	f3 := X(w, 12, 3)
	var op Op
	switch X(w, 25, 7)<<3 | f3 {
	case 0x00<<3 | 0:
		op = OpADDW
	case 0x00<<3 | 1:
		op = OpSLLW
	case 0x00<<3 | 5:
		op = OpSRLW
	case 0x20<<3 | 0:
		op = OpSUBW
	case 0x20<<3 | 5:
		op = OpSRAW
	case 0x01<<3 | 0:
		op = OpMULW
	case 0x01<<3 | 4:
		op = OpDIVW
	case 0x01<<3 | 5:
		op = OpDIVUW
	case 0x01<<3 | 6:
		op = OpREMW
	case 0x01<<3 | 7:
		op = OpREMUW
	default:
		return Instruction{}, unimplemented(raw, xlen, fmt.Sprintf("OP-32 funct7=%#x funct3=%d", X(w, 25, 7), f3))
	}
	return typeR(op, w), nil
}

var branchOps = [8]Op{OpBEQ, OpBNE, OpUnknown, OpUnknown, OpBLT, OpBGE, OpBLTU, OpBGEU}

func decodeBranch(w uint32, xlen XLEN) (Instruction, error) {
	f3 := X(w, 12, 3)
	if f3 == 2 || f3 == 3 {
		return Instruction{}, reserved(NewRaw32(w), xlen, fmt.Sprintf("branch funct3=%03b", f3))
	}
	rs1, rs2, imm := ParseB(w)
	return Instruction{Op: branchOps[f3], Format: FormatB, Len: 4, Rs1: rs1, Rs2: rs2, Imm: imm}, nil
}

var csrOps = [8]Op{OpUnknown, OpCSRRW, OpCSRRS, OpCSRRC, OpUnknown, OpCSRRWI, OpCSRRSI, OpCSRRCI}

func decodeSystem(w uint32, xlen XLEN) (Instruction, error) {
	raw := NewRaw32(w)
	f3 := X(w, 12, 3)

	switch f3 {
	case 0:
		switch w {
		case wordECALL:
			return Instruction{Op: OpECALL, Format: FormatI, Len: 4}, nil
		case wordEBREAK:
			return Instruction{Op: OpEBREAK, Format: FormatI, Len: 4}, nil
		}
		return Instruction{}, unimplemented(raw, xlen, "privileged instruction")
	case 4:
		return Instruction{}, unimplemented(raw, xlen, "hypervisor load/store")
	}

	rd, rs1, _ := ParseI(w)
	inst := Instruction{Op: csrOps[f3], Format: FormatI, Len: 4, Rd: rd, CSR: uint16(X(w, 20, 12))}
	if f3 >= 5 {
		inst.Imm = X(w, 15, 5)
	} else {
		inst.Rs1 = rs1
	}
	return inst, nil
}
