package insts

import "fmt"

// String renders the instruction in assembler syntax. The output is meant
// for traces and logs; it is not a round-trippable assembly format.
func (i Instruction) String() string {
	name := i.Op.String()

	switch {
	case i.Op == OpUnknown:
		return name
	case i.IsFloat() && i.IsLoad():
		return fmt.Sprintf("%s f%d, %d(%v)", name, uint8(i.Rd), i.Imm, i.Rs1)
	case i.IsFloat() && i.IsStore():
		return fmt.Sprintf("%s f%d, %d(%v)", name, uint8(i.Rs2), i.Imm, i.Rs1)
	case i.IsLoad():
		return fmt.Sprintf("%s %v, %d(%v)", name, i.Rd, i.Imm, i.Rs1)
	case i.IsStore():
		return fmt.Sprintf("%s %v, %d(%v)", name, i.Rs2, i.Imm, i.Rs1)
	}

	switch i.Op {
	case OpECALL, OpEBREAK, OpCEBREAK, OpCNOP, OpFENCE, OpFENCEI:
		return name
	case OpLUI, OpAUIPC, OpCLUI:
		return fmt.Sprintf("%s %v, %#x", name, i.Rd, uint64(i.Imm>>12)&0xfffff)
	case OpJAL, OpCJAL, OpCJ:
		return fmt.Sprintf("%s %v, %d", name, i.Rd, i.Imm)
	case OpJALR:
		return fmt.Sprintf("%s %v, %d(%v)", name, i.Rd, i.Imm, i.Rs1)
	case OpCJR, OpCJALR:
		return fmt.Sprintf("%s %v", name, i.Rs1)
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return fmt.Sprintf("%s %v, %v, %d", name, i.Rs1, i.Rs2, i.Imm)
	case OpCBEQZ, OpCBNEZ:
		return fmt.Sprintf("%s %v, %d", name, i.Rs1, i.Imm)
	case OpCSRRW, OpCSRRS, OpCSRRC:
		return fmt.Sprintf("%s %v, %#x, %v", name, i.Rd, i.CSR, i.Rs1)
	case OpCSRRWI, OpCSRRSI, OpCSRRCI:
		return fmt.Sprintf("%s %v, %#x, %d", name, i.Rd, i.CSR, i.Imm)
	case OpCLI, OpCADDI, OpCADDIW, OpCADDI16SP, OpCSLLI, OpCSLLI64,
		OpCSRLI, OpCSRAI, OpCANDI:
		return fmt.Sprintf("%s %v, %d", name, i.Rd, i.Imm)
	case OpCADDI4SPN:
		return fmt.Sprintf("%s %v, %v, %d", name, i.Rd, i.Rs1, i.Imm)
	case OpCMV, OpCADD, OpCSUB, OpCXOR, OpCOR, OpCAND, OpCSUBW, OpCADDW:
		return fmt.Sprintf("%s %v, %v", name, i.Rd, i.Rs2)
	}

	if i.Format == FormatR {
		return fmt.Sprintf("%s %v, %v, %v", name, i.Rd, i.Rs1, i.Rs2)
	}
	return fmt.Sprintf("%s %v, %v, %d", name, i.Rd, i.Rs1, i.Imm)
}
