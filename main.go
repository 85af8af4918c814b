// Package main provides the entry point for rvsim, a RISC-V instruction set
// simulator with an optional timing model built on Akita.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/rvsim/benchmarks"
)

func main() {
	fmt.Printf("rvsim %s - RISC-V Instruction Set Simulator\n", benchmarks.Version)
	fmt.Println("RV32/RV64 base integer, M extension and compressed instructions")
	fmt.Println("")
	fmt.Println("Usage: rvsim [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -timing    Enable timing simulation mode")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -xlen      Register width: auto, 32, 64 or 128")
	fmt.Println("  -max       Stop after this many instructions")
	fmt.Println("  -policy    halt or skip on an illegal instruction")
	fmt.Println("  -dump      Dump the final registers")
	fmt.Println("  -v, -q     Verbose or quiet logging")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim' for the full CLI and 'go run ./cmd/benchmark' for the benchmarks.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
