// Command rvsim runs a RISC-V ELF program on the functional emulator or on
// the timing model.
//
// Usage:
//
//	rvsim [options] <program.elf>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
)

type options struct {
	xlen       string
	timing     bool
	configPath string
	max        uint64
	verbose    bool
	quiet      bool
	dump       bool
	policy     string
	statsJSON  bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}

	fs := flag.NewFlagSet("rvsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.xlen, "xlen", "auto", "Register width: auto (from the ELF class), 32, 64 or 128")
	fs.BoolVar(&opts.timing, "timing", false, "Enable timing simulation mode")
	fs.StringVar(&opts.configPath, "config", "", "Path to timing configuration JSON file")
	fs.Uint64Var(&opts.max, "max", 0, "Stop after this many instructions (0 means no limit)")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output (logs every instruction)")
	fs.BoolVar(&opts.quiet, "q", false, "Only log errors")
	fs.BoolVar(&opts.dump, "dump", false, "Dump the final registers")
	fs.StringVar(&opts.policy, "policy", "halt", "What to do on an illegal instruction: halt or skip")
	fs.BoolVar(&opts.statsJSON, "json", false, "Print timing statistics as JSON")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: rvsim [options] <program.elf>\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func newLogger(w io.Writer, opts *options) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.WarnLevel)

	switch {
	case opts.quiet:
		logger.SetLevel(logrus.ErrorLevel)
	case opts.verbose:
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func resolveXLEN(flagValue string, fromELF insts.XLEN) (insts.XLEN, error) {
	if flagValue == "auto" || flagValue == "" {
		if !fromELF.Valid() {
			return 0, fmt.Errorf("ELF class gives no register width, pass -xlen")
		}
		return fromELF, nil
	}

	xlen, err := insts.ParseXLEN(flagValue)
	if err != nil {
		return 0, fmt.Errorf("invalid -xlen: %w", err)
	}
	return xlen, nil
}

func loadTimingConfig(path string) (*latency.TimingConfig, error) {
	if path == "" {
		return latency.DefaultTimingConfig(), nil
	}
	return latency.LoadConfig(path)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if len(rest) < 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: rvsim [options] <program.elf>\n")
		return 1
	}

	logger := newLogger(stderr, opts)
	programPath := rest[0]

	prog, err := loader.Load(programPath)
	if err != nil {
		logger.WithError(err).Error("failed to load program")
		return 1
	}

	xlen, err := resolveXLEN(opts.xlen, prog.XLEN)
	if err != nil {
		logger.WithError(err).Error("bad flag")
		return 1
	}

	policy, err := emu.ParseErrorPolicy(opts.policy)
	if err != nil {
		logger.WithError(err).Error("bad flag")
		return 1
	}

	var timingConfig *latency.TimingConfig
	if opts.timing {
		timingConfig, err = loadTimingConfig(opts.configPath)
		if err != nil {
			logger.WithError(err).Error("failed to load timing config")
			return 1
		}
	}

	e := emu.NewEmulator(
		emu.WithXLEN(xlen),
		emu.WithStackPointer(prog.InitialSP),
		emu.WithMaxInstructions(opts.max),
		emu.WithErrorPolicy(policy),
		emu.WithLogger(logger),
		emu.WithStdout(stdout),
		emu.WithStderr(stderr),
	)
	prog.LoadInto(e.Memory())
	e.SetProgramBreak(prog.Break())
	e.SetPC(prog.EntryPoint)

	logger.WithFields(logrus.Fields{
		"path":     programPath,
		"entry":    fmt.Sprintf("%#x", prog.EntryPoint),
		"segments": len(prog.Segments),
		"xlen":     xlen,
	}).Info("program loaded")

	var exitCode int64
	if opts.timing {
		c := core.NewCore(e, core.ConfigFromTiming(timingConfig), core.WithLogger(logger))
		exitCode = c.Run()
		if err := printTimingReport(stdout, programPath, exitCode, c, opts.statsJSON); err != nil {
			logger.WithError(err).Error("failed to write timing report")
		}
	} else {
		exitCode = e.Run()
	}

	logger.WithFields(logrus.Fields{
		"exit":         exitCode,
		"instructions": e.InstructionCount(),
	}).Info("program exited")

	if opts.dump {
		dumpState(stdout, e)
	}

	return int(exitCode)
}

// archDump is the part of the architectural state printed by -dump.
type archDump struct {
	PC   uint64
	XLEN insts.XLEN
	Regs *emu.RegFile
}

func dumpState(w io.Writer, e *emu.Emulator) {
	spew.Fdump(w, archDump{
		PC:   uint64(e.PC()),
		XLEN: e.XLEN(),
		Regs: e.RegFile(),
	})
}

func printTimingReport(w io.Writer, programPath string, exitCode int64, c *core.Core, asJSON bool) error {
	stats := c.Stats()

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Program  string     `json:"program"`
			ExitCode int64      `json:"exit_code"`
			CPI      float64    `json:"cpi"`
			Stats    core.Stats `json:"stats"`
		}{programPath, exitCode, stats.CPI(), stats})
	}

	totalCycles := max(stats.Cycles, 1)
	percent := func(n uint64) float64 {
		return 100.0 * float64(n) / float64(totalCycles)
	}
	bp := c.Predictor().Stats()

	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Program: %s\n", programPath)
	_, _ = fmt.Fprintf(w, "Exit code: %d\n", exitCode)
	_, _ = fmt.Fprintf(w, "Total Instructions: %d\n", stats.Instructions)
	_, _ = fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(w, "CPI: %.2f\n", stats.CPI())
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Breakdown:\n")
	_, _ = fmt.Fprintf(w, "  Cache stalls:  %6d cycles (%5.1f%%)\n", stats.Stalls, percent(stats.Stalls))
	_, _ = fmt.Fprintf(w, "  Flushes:       %6d\n", stats.Flushes)
	_, _ = fmt.Fprintf(w, "\n")
	caches := c.Caches()
	_, _ = fmt.Fprintf(w, "I-Cache: %d hits, %d misses (%.1f%% hit rate)\n",
		stats.ICacheHits, stats.ICacheMisses, 100*caches.L1I.Stats().HitRate())
	_, _ = fmt.Fprintf(w, "D-Cache: %d hits, %d misses (%.1f%% hit rate)\n",
		stats.DCacheHits, stats.DCacheMisses, 100*caches.L1D.Stats().HitRate())
	l2 := caches.L2.Stats()
	_, _ = fmt.Fprintf(w, "L2: %d hits, %d misses (%.1f%% hit rate)\n", l2.Hits, l2.Misses, 100*l2.HitRate())
	_, _ = fmt.Fprintf(w, "Branches: %d predicted, %d mispredicted (direction accuracy %.1f%%)\n",
		stats.BranchPredictions, stats.BranchMispredicts, bp.Accuracy())
	return nil
}
