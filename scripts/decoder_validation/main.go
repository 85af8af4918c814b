// Validate decoder allocation behavior - measures allocations and throughput
// of the RISC-V decoder over a mix of 32-bit and compressed instructions.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/rvsim/insts"
)

func main() {
	decoder := insts.NewDecoder(insts.XLEN64)

	mix := []insts.RawInstruction{
		insts.NewRaw32(0x02a58513), // addi a0, a1, 42
		insts.NewRaw32(0x00c58533), // add a0, a1, a2
		insts.NewRaw32(0x0085b503), // ld a0, 8(a1)
		insts.NewRaw32(0x00b50463), // beq a0, a1, 8
		insts.NewRaw16(0x4515),     // c.li a0, 5
		insts.NewRaw16(0x0505),     // c.addi a0, 1
		insts.NewRaw16(0xe406),     // c.sdsp ra, 8(sp)
		insts.NewRaw16(0x8082),     // c.jr ra
	}

	for _, raw := range mix {
		inst, err := decoder.Decode(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode %#x: %v\n", raw.Bits, err)
			os.Exit(1)
		}
		fmt.Printf("  %#010x  %s\n", raw.Bits, inst)
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		_, _ = decoder.Decode(mix[i%len(mix)])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for _, raw := range mix {
			_, _ = decoder.Decode(raw)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(mix)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("\nDecoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))

	if float64(allocations)/float64(totalDecodes) >= 0.1 {
		fmt.Printf("\nWARNING: high allocation rate detected\n")
		os.Exit(1)
	}
	fmt.Printf("\nOK: low allocation rate (< 0.1 per decode)\n")
}
