package insts

// Op represents a RISC-V mnemonic. Every decodable instruction has exactly
// one Op; compressed forms have their own Op even when they expand to a
// base instruction.
type Op uint16

// RISC-V opcodes.
const (
	OpUnknown Op = iota

	// RV32I / RV64I
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU
	OpSB
	OpSH
	OpSW
	OpSD
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW
	OpFENCE
	OpFENCEI
	OpECALL
	OpEBREAK

	// M extension
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW

	// Zicsr
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// F/D loads and stores
	OpFLW
	OpFLD
	OpFSW
	OpFSD

	// RVC quadrant 0
	OpCADDI4SPN
	OpCFLD
	OpCLQ
	OpCLW
	OpCFLW
	OpCLD
	OpCFSD
	OpCSQ
	OpCSW
	OpCFSW
	OpCSD

	// RVC quadrant 1
	OpCNOP
	OpCADDI
	OpCJAL
	OpCADDIW
	OpCLI
	OpCADDI16SP
	OpCLUI
	OpCSRLI
	OpCSRAI
	OpCANDI
	OpCSUB
	OpCXOR
	OpCOR
	OpCAND
	OpCSUBW
	OpCADDW
	OpCJ
	OpCBEQZ
	OpCBNEZ

	// RVC quadrant 2
	OpCSLLI
	OpCSLLI64
	OpCFLDSP
	OpCLQSP
	OpCLWSP
	OpCFLWSP
	OpCLDSP
	OpCJR
	OpCMV
	OpCEBREAK
	OpCJALR
	OpCADD
	OpCFSDSP
	OpCSQSP
	OpCSWSP
	OpCFSWSP
	OpCSDSP

	numOps
)

var opNames = [numOps]string{
	OpUnknown: "unknown",

	OpLUI: "lui", OpAUIPC: "auipc", OpJAL: "jal", OpJALR: "jalr",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge",
	OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLD: "ld",
	OpLBU: "lbu", OpLHU: "lhu", OpLWU: "lwu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw", OpSD: "sd",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori",
	OpORI: "ori", OpANDI: "andi", OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpADD: "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt", OpSLTU: "sltu",
	OpXOR: "xor", OpSRL: "srl", OpSRA: "sra", OpOR: "or", OpAND: "and",
	OpADDIW: "addiw", OpSLLIW: "slliw", OpSRLIW: "srliw", OpSRAIW: "sraiw",
	OpADDW: "addw", OpSUBW: "subw", OpSLLW: "sllw", OpSRLW: "srlw", OpSRAW: "sraw",
	OpFENCE: "fence", OpFENCEI: "fence.i", OpECALL: "ecall", OpEBREAK: "ebreak",

	OpMUL: "mul", OpMULH: "mulh", OpMULHSU: "mulhsu", OpMULHU: "mulhu",
	OpDIV: "div", OpDIVU: "divu", OpREM: "rem", OpREMU: "remu",
	OpMULW: "mulw", OpDIVW: "divw", OpDIVUW: "divuw", OpREMW: "remw", OpREMUW: "remuw",

	OpCSRRW: "csrrw", OpCSRRS: "csrrs", OpCSRRC: "csrrc",
	OpCSRRWI: "csrrwi", OpCSRRSI: "csrrsi", OpCSRRCI: "csrrci",

	OpFLW: "flw", OpFLD: "fld", OpFSW: "fsw", OpFSD: "fsd",

	OpCADDI4SPN: "c.addi4spn", OpCFLD: "c.fld", OpCLQ: "c.lq", OpCLW: "c.lw",
	OpCFLW: "c.flw", OpCLD: "c.ld", OpCFSD: "c.fsd", OpCSQ: "c.sq",
	OpCSW: "c.sw", OpCFSW: "c.fsw", OpCSD: "c.sd",

	OpCNOP: "c.nop", OpCADDI: "c.addi", OpCJAL: "c.jal", OpCADDIW: "c.addiw",
	OpCLI: "c.li", OpCADDI16SP: "c.addi16sp", OpCLUI: "c.lui",
	OpCSRLI: "c.srli", OpCSRAI: "c.srai", OpCANDI: "c.andi",
	OpCSUB: "c.sub", OpCXOR: "c.xor", OpCOR: "c.or", OpCAND: "c.and",
	OpCSUBW: "c.subw", OpCADDW: "c.addw",
	OpCJ: "c.j", OpCBEQZ: "c.beqz", OpCBNEZ: "c.bnez",

	OpCSLLI: "c.slli", OpCSLLI64: "c.slli64", OpCFLDSP: "c.fldsp", OpCLQSP: "c.lqsp",
	OpCLWSP: "c.lwsp", OpCFLWSP: "c.flwsp", OpCLDSP: "c.ldsp",
	OpCJR: "c.jr", OpCMV: "c.mv", OpCEBREAK: "c.ebreak", OpCJALR: "c.jalr",
	OpCADD: "c.add", OpCFSDSP: "c.fsdsp", OpCSQSP: "c.sqsp", OpCSWSP: "c.swsp",
	OpCFSWSP: "c.fswsp", OpCSDSP: "c.sdsp",
}

// String returns the assembler mnemonic.
func (op Op) String() string {
	if op < numOps {
		return opNames[op]
	}
	return "unknown"
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatCR  // Compressed register
	FormatCI  // Compressed immediate
	FormatCSS // Compressed stack-relative store
	FormatCIW // Compressed wide immediate
	FormatCL  // Compressed load
	FormatCS  // Compressed store / register-register arithmetic
	FormatCB  // Compressed branch / shift-immediate
	FormatCJ  // Compressed jump
)

var formatNames = [...]string{
	"unknown", "R", "I", "S", "B", "U", "J",
	"CR", "CI", "CSS", "CIW", "CL", "CS", "CB", "CJ",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// Instruction represents a decoded RISC-V instruction.
//
// Only the operands relevant to Op are meaningful. For the floating-point
// load/store variants Rd (loads) and Rs2 (stores) carry the index of an f
// register rather than an integer register. For the immediate CSR forms Imm
// holds the 5-bit zimm.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format
	Len    uint8  // Encoded length in bytes (2 or 4)

	Rd  RegisterName // Destination register
	Rs1 RegisterName // First source register
	Rs2 RegisterName // Second source register

	// Imm is the sign- or zero-extended immediate, already scaled and
	// shifted into place (branch offsets in bytes, LUI/AUIPC values <<12).
	Imm int64

	// CSR is the 12-bit CSR address for Zicsr instructions.
	CSR uint16
}

// IsBranch reports whether the instruction is a conditional branch.
func (i Instruction) IsBranch() bool {
	switch i.Op {
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU, OpCBEQZ, OpCBNEZ:
		return true
	}
	return false
}

// IsJump reports whether the instruction is an unconditional jump.
func (i Instruction) IsJump() bool {
	switch i.Op {
	case OpJAL, OpJALR, OpCJ, OpCJAL, OpCJR, OpCJALR:
		return true
	}
	return false
}

// IsControlTransfer reports whether the instruction writes the PC directly.
func (i Instruction) IsControlTransfer() bool {
	return i.IsBranch() || i.IsJump()
}

// IsLoad reports whether the instruction reads data memory.
func (i Instruction) IsLoad() bool {
	switch i.Op {
	case OpLB, OpLH, OpLW, OpLD, OpLBU, OpLHU, OpLWU, OpFLW, OpFLD,
		OpCLW, OpCLD, OpCFLW, OpCFLD, OpCLQ,
		OpCLWSP, OpCLDSP, OpCFLWSP, OpCFLDSP, OpCLQSP:
		return true
	}
	return false
}

// IsStore reports whether the instruction writes data memory.
func (i Instruction) IsStore() bool {
	switch i.Op {
	case OpSB, OpSH, OpSW, OpSD, OpFSW, OpFSD,
		OpCSW, OpCSD, OpCFSW, OpCFSD, OpCSQ,
		OpCSWSP, OpCSDSP, OpCFSWSP, OpCFSDSP, OpCSQSP:
		return true
	}
	return false
}

// AccessWidth returns the number of bytes a load or store touches, or 0.
func (i Instruction) AccessWidth() int {
	switch i.Op {
	case OpLB, OpLBU, OpSB:
		return 1
	case OpLH, OpLHU, OpSH:
		return 2
	case OpLW, OpLWU, OpSW, OpFLW, OpFSW,
		OpCLW, OpCSW, OpCFLW, OpCFSW, OpCLWSP, OpCSWSP, OpCFLWSP, OpCFSWSP:
		return 4
	case OpLD, OpSD, OpFLD, OpFSD,
		OpCLD, OpCSD, OpCFLD, OpCFSD, OpCLDSP, OpCSDSP, OpCFLDSP, OpCFSDSP:
		return 8
	case OpCLQ, OpCSQ, OpCLQSP, OpCSQSP:
		return 16
	}
	return 0
}

// IsFloat reports whether the register operands name f registers.
func (i Instruction) IsFloat() bool {
	switch i.Op {
	case OpFLW, OpFLD, OpFSW, OpFSD,
		OpCFLW, OpCFLD, OpCFSW, OpCFSD,
		OpCFLWSP, OpCFLDSP, OpCFSWSP, OpCFSDSP:
		return true
	}
	return false
}
