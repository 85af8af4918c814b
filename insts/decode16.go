package insts

// decode16 decodes a compressed instruction. The quadrant (bits 1:0)
// selects the table and funct3 (bits 15:13) the row; rows that alias
// several mnemonics are split on the remaining fields.
func decode16(h uint16, xlen XLEN) (Instruction, error) {
	switch X(h, 0, 2) {
	case 0b00:
		return decodeQ0(h, xlen)
	case 0b01:
		return decodeQ1(h, xlen)
	case 0b10:
		return decodeQ2(h, xlen)
	default:
		return Instruction{}, illegal(NewRaw16(h), xlen, "quadrant 3 is not a compressed encoding")
	}
}

func decodeQ0(h uint16, xlen XLEN) (Instruction, error) {
	raw := NewRaw16(h)

	switch X(h, 13, 3) {
	case 0b000:
		if h == 0 {
			return Instruction{}, illegal(raw, xlen, "all-zero halfword")
		}
		rd, imm := ParseCIW(h)
		if imm == 0 {
			return Instruction{}, reserved(raw, xlen, "c.addi4spn with nzuimm=0")
		}
		return Instruction{Op: OpCADDI4SPN, Format: FormatCIW, Len: 2, Rd: rd, Rs1: SP, Imm: imm}, nil
	case 0b001:
		if xlen == XLEN128 {
			return compressedLoad(OpCLQ, h, 16), nil
		}
		return compressedLoad(OpCFLD, h, 8), nil
	case 0b010:
		return compressedLoad(OpCLW, h, 4), nil
	case 0b011:
		if xlen == XLEN32 {
			return compressedLoad(OpCFLW, h, 4), nil
		}
		return compressedLoad(OpCLD, h, 8), nil
	case 0b100:
		return Instruction{}, reserved(raw, xlen, "quadrant 0 funct3=100")
	case 0b101:
		if xlen == XLEN128 {
			return compressedStore(OpCSQ, h, 16), nil
		}
		return compressedStore(OpCFSD, h, 8), nil
	case 0b110:
		return compressedStore(OpCSW, h, 4), nil
	default:
		if xlen == XLEN32 {
			return compressedStore(OpCFSW, h, 4), nil
		}
		return compressedStore(OpCSD, h, 8), nil
	}
}

func decodeQ1(h uint16, xlen XLEN) (Instruction, error) {
	raw := NewRaw16(h)

	switch X(h, 13, 3) {
	case 0b000:
		if h == 1 {
			return Instruction{Op: OpCNOP, Format: FormatCI, Len: 2}, nil
		}
		rd, imm := ParseCI(h)
		return Instruction{Op: OpCADDI, Format: FormatCI, Len: 2, Rd: rd, Rs1: rd, Imm: imm}, nil
	case 0b001:
		if xlen == XLEN32 {
			return Instruction{Op: OpCJAL, Format: FormatCJ, Len: 2, Rd: RA, Imm: ParseCJ(h)}, nil
		}
		rd, imm := ParseCI(h)
		if rd == Zero {
			return Instruction{}, reserved(raw, xlen, "c.addiw with rd=0")
		}
		return Instruction{Op: OpCADDIW, Format: FormatCI, Len: 2, Rd: rd, Rs1: rd, Imm: imm}, nil
	case 0b010:
		rd, imm := ParseCI(h)
		return Instruction{Op: OpCLI, Format: FormatCI, Len: 2, Rd: rd, Rs1: Zero, Imm: imm}, nil
	case 0b011:
		rd := RegisterFromIndex(X(h, 7, 5))
		if rd == SP {
			imm := addi16spImm(h)
			if imm == 0 {
				return Instruction{}, reserved(raw, xlen, "c.addi16sp with nzimm=0")
			}
			return Instruction{Op: OpCADDI16SP, Format: FormatCI, Len: 2, Rd: SP, Rs1: SP, Imm: imm}, nil
		}
		imm := cluiImm(h)
		if imm == 0 {
			return Instruction{}, reserved(raw, xlen, "c.lui with nzimm=0")
		}
		return Instruction{Op: OpCLUI, Format: FormatCI, Len: 2, Rd: rd, Imm: imm}, nil
	case 0b100:
		return decodeCArith(h, xlen)
	case 0b101:
		return Instruction{Op: OpCJ, Format: FormatCJ, Len: 2, Rd: Zero, Imm: ParseCJ(h)}, nil
	case 0b110:
		rs1, imm := ParseCB(h)
		return Instruction{Op: OpCBEQZ, Format: FormatCB, Len: 2, Rs1: rs1, Rs2: Zero, Imm: imm}, nil
	default:
		rs1, imm := ParseCB(h)
		return Instruction{Op: OpCBNEZ, Format: FormatCB, Len: 2, Rs1: rs1, Rs2: Zero, Imm: imm}, nil
	}
}

// decodeCArith splits quadrant 1 funct3=100 on bits 11:10, then on bit 12
// and bits 6:5 for the register-register group.
func decodeCArith(h uint16, xlen XLEN) (Instruction, error) {
	raw := NewRaw16(h)
	rd, field := ParseCBImm(h)

	switch X(h, 10, 2) {
	case 0b00, 0b01:
		shamt, err := compressedShamt(h, field, xlen)
		if err != nil {
			return Instruction{}, err
		}
		op := OpCSRLI
		if X(h, 10, 2) == 0b01 {
			op = OpCSRAI
		}
		return Instruction{Op: op, Format: FormatCB, Len: 2, Rd: rd, Rs1: rd, Imm: shamt}, nil
	case 0b10:
		return Instruction{Op: OpCANDI, Format: FormatCB, Len: 2, Rd: rd, Rs1: rd, Imm: SignExtend(field, 6)}, nil
	}

	rd, rs2 := ParseCA(h)
	var op Op
	switch X(h, 12, 1)<<2 | X(h, 5, 2) {
	case 0b000:
		op = OpCSUB
	case 0b001:
		op = OpCXOR
	case 0b010:
		op = OpCOR
	case 0b011:
		op = OpCAND
	case 0b100, 0b101:
		if xlen == XLEN32 {
			return Instruction{}, reserved(raw, xlen, "c.subw/c.addw on RV32")
		}
		op = OpCSUBW
		if X(h, 5, 2) == 0b01 {
			op = OpCADDW
		}
	default:
		return Instruction{}, reserved(raw, xlen, "quadrant 1 arithmetic funct=11x")
	}

	return Instruction{Op: op, Format: FormatCS, Len: 2, Rd: rd, Rs1: rd, Rs2: rs2}, nil
}

// compressedShamt validates a compressed shift amount. RV32 reserves
// shamt[5]=1 and RV128 encodes a shift of 64 as zero.
func compressedShamt(h uint16, field int64, xlen XLEN) (int64, error) {
	if xlen == XLEN32 && X(h, 12, 1) == 1 {
		return 0, reserved(NewRaw16(h), xlen, "compressed shift with shamt[5]=1 on RV32")
	}
	if xlen == XLEN128 && field == 0 {
		return 64, nil
	}
	return field, nil
}

func decodeQ2(h uint16, xlen XLEN) (Instruction, error) {
	raw := NewRaw16(h)
	rd := RegisterFromIndex(X(h, 7, 5))

	switch X(h, 13, 3) {
	case 0b000:
		field := ciField(h)
		shamt, err := compressedShamt(h, field, xlen)
		if err != nil {
			return Instruction{}, err
		}
		op := OpCSLLI
		if field == 0 {
			op = OpCSLLI64
		}
		return Instruction{Op: op, Format: FormatCI, Len: 2, Rd: rd, Rs1: rd, Imm: shamt}, nil
	case 0b001:
		if xlen == XLEN128 {
			if rd == Zero {
				return Instruction{}, reserved(raw, xlen, "c.lqsp with rd=0")
			}
			return stackLoad(OpCLQSP, h, 16), nil
		}
		return stackLoad(OpCFLDSP, h, 8), nil
	case 0b010:
		if rd == Zero {
			return Instruction{}, reserved(raw, xlen, "c.lwsp with rd=0")
		}
		return stackLoad(OpCLWSP, h, 4), nil
	case 0b011:
		if xlen == XLEN32 {
			return stackLoad(OpCFLWSP, h, 4), nil
		}
		if rd == Zero {
			return Instruction{}, reserved(raw, xlen, "c.ldsp with rd=0")
		}
		return stackLoad(OpCLDSP, h, 8), nil
	case 0b100:
		return decodeCR(h, xlen)
	case 0b101:
		if xlen == XLEN128 {
			return stackStore(OpCSQSP, h, 16), nil
		}
		return stackStore(OpCFSDSP, h, 8), nil
	case 0b110:
		return stackStore(OpCSWSP, h, 4), nil
	default:
		if xlen == XLEN32 {
			return stackStore(OpCFSWSP, h, 4), nil
		}
		return stackStore(OpCSDSP, h, 8), nil
	}
}

// decodeCR splits quadrant 2 funct3=100 on bit 12 and on whether the rs1
// and rs2 fields are zero.
func decodeCR(h uint16, xlen XLEN) (Instruction, error) {
	rs1, rs2 := ParseCR(h)

	if X(h, 12, 1) == 0 {
		if rs2 == Zero {
			if rs1 == Zero {
				return Instruction{}, reserved(NewRaw16(h), xlen, "c.jr with rs1=0")
			}
			return Instruction{Op: OpCJR, Format: FormatCR, Len: 2, Rd: Zero, Rs1: rs1}, nil
		}
		return Instruction{Op: OpCMV, Format: FormatCR, Len: 2, Rd: rs1, Rs1: Zero, Rs2: rs2}, nil
	}

	if rs2 == Zero {
		if rs1 == Zero {
			return Instruction{Op: OpCEBREAK, Format: FormatCR, Len: 2}, nil
		}
		return Instruction{Op: OpCJALR, Format: FormatCR, Len: 2, Rd: RA, Rs1: rs1}, nil
	}
	return Instruction{Op: OpCADD, Format: FormatCR, Len: 2, Rd: rs1, Rs1: rs1, Rs2: rs2}, nil
}

func compressedLoad(op Op, h uint16, width int) Instruction {
	rd, rs1, imm := ParseCL(h, width)
	return Instruction{Op: op, Format: FormatCL, Len: 2, Rd: rd, Rs1: rs1, Imm: imm}
}

func compressedStore(op Op, h uint16, width int) Instruction {
	rs1, rs2, imm := ParseCS(h, width)
	return Instruction{Op: op, Format: FormatCS, Len: 2, Rs1: rs1, Rs2: rs2, Imm: imm}
}

func stackLoad(op Op, h uint16, width int) Instruction {
	rd, imm := ParseCIStack(h, width)
	return Instruction{Op: op, Format: FormatCI, Len: 2, Rd: rd, Rs1: SP, Imm: imm}
}

func stackStore(op Op, h uint16, width int) Instruction {
	rs2, imm := ParseCSS(h, width)
	return Instruction{Op: op, Format: FormatCSS, Len: 2, Rs1: SP, Rs2: rs2, Imm: imm}
}
