// Package insts provides RISC-V instruction definitions and decoding.
//
// This package implements decoding of RISC-V machine code into structured
// instruction representations. It supports:
//   - Length detection for the variable-length encoding scheme
//   - The base integer ISA (RV32I, RV64I) and the M extension
//   - The compressed extension (RVC) for RV32, RV64 and RV128
//   - Placeholder variants for F/D loads and stores and Zicsr
//
// Usage:
//
//	decoder := insts.NewDecoder(insts.XLEN64)
//	inst, err := decoder.Decode(insts.NewRaw32(0x76818513)) // ADDI a0, gp, 1896
//	fmt.Printf("Op: %v, Rd: %v, Rs1: %v, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts
