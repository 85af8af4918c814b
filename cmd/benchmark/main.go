// Command benchmark runs the rvsim benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv         Output results in CSV format (default: human-readable)
//	-json        Output results in JSON format
//	-functional  Run on the functional emulator only
//	-config      Path to timing configuration JSON file
//	-core        Run only the core benchmark subset
//	-v           Dump the final registers of every benchmark
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/benchmarks"
	"github.com/sarchlab/rvsim/timing/latency"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	functional := flag.Bool("functional", false, "Run on the functional emulator only")
	configPath := flag.String("config", "", "Path to timing configuration JSON file")
	coreOnly := flag.Bool("core", false, "Run only the core benchmark subset")
	verbose := flag.Bool("v", false, "Dump the final registers of every benchmark")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	config := benchmarks.DefaultConfig()
	config.EnableTiming = !*functional
	config.Output = os.Stdout
	config.Verbose = *verbose
	config.Logger = logger

	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to load timing config")
		}
		config.Timing = timing
	}

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("rvsim Benchmark Harness")
		fmt.Println("=======================")
		fmt.Printf("Timing: %v\n", config.EnableTiming)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			logger.WithError(err).Fatal("failed to write JSON")
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Passed: %d/%d\n", summary.Passed, summary.TotalBenchmarks)
		fmt.Printf("Instructions: %d\n", summary.TotalInstructions)
		if config.EnableTiming {
			fmt.Printf("Cycles: %d (average CPI %.3f)\n", summary.TotalCycles, summary.AverageCPI)
		}
	}

	if summary := benchmarks.Summarize(results); summary.Passed != summary.TotalBenchmarks {
		os.Exit(1)
	}
}
