// Package main provides a profiling wrapper for rvsim to identify
// performance bottlenecks in the emulator and the timing model.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/timing/core"
)

var (
	timing      = flag.Bool("timing", false, "Enable timing simulation mode")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			logger.WithError(err).Fatal("failed to create CPU profile")
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			logger.WithError(err).Fatal("failed to start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)
	prog, err := loader.Load(programPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load program")
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)

	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	e := newEmulator(prog, logger)

	start := time.Now()
	var exitCode int64
	if *timing {
		c := core.NewCore(e, core.DefaultConfig(), core.WithLogger(logger))
		exitCode = c.Run()
		fmt.Printf("Simulated cycles: %d (CPI %.3f)\n", c.Stats().Cycles, c.Stats().CPI())
	} else {
		exitCode = e.Run()
	}
	elapsed := time.Since(start)
	instrCount := e.InstructionCount()

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			logger.WithError(err).Fatal("failed to create memory profile")
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			logger.WithError(err).Error("failed to write memory profile")
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Exit code: %d\n", exitCode)
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

// newEmulator maps prog into a fresh emulator. Guest output is discarded so
// it does not skew the measurement.
func newEmulator(prog *loader.Program, logger logrus.FieldLogger) *emu.Emulator {
	e := emu.NewEmulator(
		emu.WithXLEN(prog.XLEN),
		emu.WithStackPointer(prog.InitialSP),
		emu.WithMaxInstructions(*instruction),
		emu.WithStdout(io.Discard),
		emu.WithLogger(logger),
	)
	prog.LoadInto(e.Memory())
	e.SetProgramBreak(prog.Break())
	e.SetPC(prog.EntryPoint)
	return e
}
