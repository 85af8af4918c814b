// Package benchmarks provides hand-assembled RISC-V programs and a harness
// that runs them functionally and under the timing model.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
)

// Version is reported in JSON output.
const Version = "0.1.0"

// Layout of a benchmark image.
const (
	programAddr = 0x1000
	stackTop    = 0x20000
	stackSize   = 0x10000
)

// maxInstructions stops a runaway benchmark.
const maxInstructions = 10_000_000

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing model. It
	// is zero for functional runs.
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of cycles spent waiting on caches
	StallCycles uint64 `json:"stall_cycles"`

	// PipelineFlushes is the number of mispredicted control transfers
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	BranchPredictions     uint64  `json:"branch_predictions,omitempty"`
	BranchCorrect         uint64  `json:"branch_correct,omitempty"`
	BranchMispredictions  uint64  `json:"branch_mispredictions,omitempty"`
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent,omitempty"`

	// ExitCode is the program's exit code
	ExitCode     int64 `json:"exit_code"`
	ExpectedExit int64 `json:"expected_exit"`
	Passed       bool  `json:"passed"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	Name        string
	Description string

	// Setup prepares the emulator state (e.g., initialize registers, memory)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the RISC-V machine code, loaded at 0x1000.
	Program []byte

	// ExpectedExit is the expected exit code (for validation)
	ExpectedExit int64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableTiming runs benchmarks on the timing core. Otherwise they run
	// on the functional emulator only.
	EnableTiming bool

	// Timing overrides the default latencies.
	Timing *latency.TimingConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose dumps the final register file of every benchmark.
	Verbose bool

	Logger logrus.FieldLogger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableTiming: true,
		Output:       os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	if config.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		config.Logger = logger
	}
	return &Harness{config: config}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}
	return results
}

func (h *Harness) newEmulator(bench Benchmark) *emu.Emulator {
	e := emu.NewEmulator(
		emu.WithStdout(io.Discard),
		emu.WithStderr(io.Discard),
		emu.WithLogger(h.config.Logger),
		emu.WithMaxInstructions(maxInstructions),
	)

	e.Memory().MapRegion(stackTop-stackSize, stackSize)
	e.RegFile().Set(insts.SP, stackTop)

	if bench.Setup != nil {
		bench.Setup(e.RegFile(), e.Memory())
	}

	e.LoadProgram(programAddr, bench.Program)
	return e
}

func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	e := h.newEmulator(bench)
	result := BenchmarkResult{
		Name:         bench.Name,
		Description:  bench.Description,
		ExpectedExit: bench.ExpectedExit,
	}

	start := time.Now()
	if h.config.EnableTiming {
		c := core.NewCore(e, core.ConfigFromTiming(h.config.Timing),
			core.WithLogger(h.config.Logger))
		result.ExitCode = c.Run()
		fillTimingStats(&result, c)
	} else {
		result.ExitCode = e.Run()
		result.InstructionsRetired = e.InstructionCount()
	}
	result.WallTime = time.Since(start)
	result.Passed = result.ExitCode == bench.ExpectedExit

	h.config.Logger.WithFields(logrus.Fields{
		"benchmark": bench.Name,
		"exit":      result.ExitCode,
		"passed":    result.Passed,
	}).Info("benchmark finished")

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "--- %s registers ---\n", bench.Name)
		spew.Fdump(h.config.Output, e.RegFile())
	}

	return result
}

func fillTimingStats(result *BenchmarkResult, c *core.Core) {
	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.StallCycles = stats.Stalls
	result.PipelineFlushes = stats.Flushes
	result.ICacheHits = stats.ICacheHits
	result.ICacheMisses = stats.ICacheMisses
	result.DCacheHits = stats.DCacheHits
	result.DCacheMisses = stats.DCacheMisses

	result.BranchPredictions = stats.BranchPredictions
	result.BranchMispredictions = stats.BranchMispredicts
	result.BranchCorrect = stats.BranchPredictions - stats.BranchMispredicts
	if stats.BranchPredictions > 0 {
		result.BranchAccuracyPercent =
			float64(result.BranchCorrect) / float64(stats.BranchPredictions) * 100
	}
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	out := h.config.Output
	_, _ = fmt.Fprintln(out, "=== rvsim Benchmark Results ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}

		_, _ = fmt.Fprintf(out, "Benchmark: %s [%s]\n", r.Name, status)
		_, _ = fmt.Fprintf(out, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(out, "  Exit Code: %d (expected %d)\n", r.ExitCode, r.ExpectedExit)
		_, _ = fmt.Fprintf(out, "  Instructions Retired: %d\n", r.InstructionsRetired)

		if r.SimulatedCycles > 0 {
			_, _ = fmt.Fprintln(out, "  --- Timing ---")
			_, _ = fmt.Fprintf(out, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
			_, _ = fmt.Fprintf(out, "  CPI:                  %.3f\n", r.CPI)
			_, _ = fmt.Fprintf(out, "  Stall Cycles:         %d\n", r.StallCycles)
			_, _ = fmt.Fprintf(out, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)
		}

		if r.ICacheHits > 0 || r.ICacheMisses > 0 {
			_, _ = fmt.Fprintln(out, "  --- I-Cache ---")
			_, _ = fmt.Fprintf(out, "  Hits:   %d\n", r.ICacheHits)
			_, _ = fmt.Fprintf(out, "  Misses: %d\n", r.ICacheMisses)
		}

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(out, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(out, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(out, "  Misses: %d\n", r.DCacheMisses)
		}

		if r.BranchPredictions > 0 {
			_, _ = fmt.Fprintln(out, "  --- Branch Predictor ---")
			_, _ = fmt.Fprintf(out, "  Predictions:     %d\n", r.BranchPredictions)
			_, _ = fmt.Fprintf(out, "  Correct:         %d\n", r.BranchCorrect)
			_, _ = fmt.Fprintf(out, "  Mispredictions:  %d\n", r.BranchMispredictions)
			_, _ = fmt.Fprintf(out, "  Accuracy:        %.1f%%\n", r.BranchAccuracyPercent)
		}

		_, _ = fmt.Fprintf(out, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(out, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,flushes,icache_hits,icache_misses,dcache_hits,dcache_misses,exit_code,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.PipelineFlushes,
			r.ICacheHits,
			r.ICacheMisses,
			r.DCacheHits,
			r.DCacheMisses,
			r.ExitCode,
			r.Passed,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	Metadata ReportMetadata    `json:"metadata"`
	Results  []BenchmarkResult `json:"results"`
	Summary  ReportSummary     `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	Timestamp string                `json:"timestamp"`
	Version   string                `json:"version"`
	Timing    bool                  `json:"timing"`
	Config    *latency.TimingConfig `json:"config,omitempty"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Passed            int           `json:"passed"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
		if r.Passed {
			summary.Passed++
		}
	}

	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}
	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
			Timing:    h.config.EnableTiming,
		},
		Results: results,
		Summary: Summarize(results),
	}
	if h.config.EnableTiming {
		report.Metadata.Config = h.config.Timing
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
