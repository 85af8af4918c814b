// Package core provides the timing model of a single-issue in-order RISC-V
// core. It drives the functional emulator one instruction at a time and
// charges cycles for execution latency, cache misses and branch
// mispredictions.
package core

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/timing/cache"
	"github.com/sarchlab/rvsim/timing/latency"
)

// Config holds the parameters of the timing model.
type Config struct {
	Timing    *latency.TimingConfig
	L1I       cache.Config
	L1D       cache.Config
	L2        cache.Config
	Predictor BranchPredictorConfig
}

// DefaultConfig returns the default core configuration.
func DefaultConfig() Config {
	return ConfigFromTiming(latency.DefaultTimingConfig())
}

// ConfigFromTiming builds a configuration whose cache hit latencies come
// from t.
func ConfigFromTiming(t *latency.TimingConfig) Config {
	l1i := cache.DefaultL1IConfig()
	l1i.HitLatency = t.L1HitLatency
	l1d := cache.DefaultL1DConfig()
	l1d.HitLatency = t.L1HitLatency
	l2 := cache.DefaultL2Config()
	l2.HitLatency = t.L2HitLatency

	return Config{
		Timing:    t,
		L1I:       l1i,
		L1D:       l1d,
		L2:        l2,
		Predictor: DefaultBranchPredictorConfig(),
	}
}

// Validate checks the latency table and every cache geometry.
func (c Config) Validate() error {
	if c.Timing == nil {
		return fmt.Errorf("missing timing config")
	}
	if err := c.Timing.Validate(); err != nil {
		return err
	}
	for name, cc := range map[string]cache.Config{"l1i": c.L1I, "l1d": c.L1D, "l2": c.L2} {
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64 `json:"cycles"`
	// Instructions is the number of instructions retired.
	Instructions uint64 `json:"instructions"`
	// Stalls is the number of cycles spent waiting on caches.
	Stalls uint64 `json:"stalls"`
	// Flushes is the number of pipeline flushes caused by mispredictions.
	Flushes uint64 `json:"flushes"`

	ICacheHits   uint64 `json:"icache_hits"`
	ICacheMisses uint64 `json:"icache_misses"`
	DCacheHits   uint64 `json:"dcache_hits"`
	DCacheMisses uint64 `json:"dcache_misses"`

	BranchPredictions uint64 `json:"branch_predictions"`
	BranchMispredicts uint64 `json:"branch_mispredicts"`
}

// CPI returns cycles per instruction, or 0 before any instruction retired.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core is the timing model wrapped around a functional emulator.
type Core struct {
	emulator  *emu.Emulator
	config    Config
	latencies *latency.Table
	caches    *cache.Hierarchy
	predictor *BranchPredictor
	logger    logrus.FieldLogger
	trace     bool

	stats    Stats
	halted   bool
	exitCode int64
}

// Option configures a Core.
type Option func(*Core)

// WithLogger sets the logger used for per-instruction cycle traces.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// NewCore creates a timing core around e. It panics if config is invalid.
func NewCore(e *emu.Emulator, config Config, opts ...Option) *Core {
	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("invalid core config: %v", err))
	}

	c := &Core{
		emulator:  e,
		config:    config,
		latencies: latency.NewTableWithConfig(config.Timing),
		caches: cache.NewHierarchy(config.L1I, config.L1D, config.L2,
			config.Timing.MemoryLatency),
		predictor: NewBranchPredictor(config.Predictor),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.InfoLevel)
		c.logger = logger
	}
	c.trace = traceEnabled(c.logger)

	return c
}

func traceEnabled(logger logrus.FieldLogger) bool {
	switch l := logger.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.TraceLevel)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(logrus.TraceLevel)
	}
	return true
}

// Emulator returns the functional emulator driven by the core.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// Caches returns the cache hierarchy.
func (c *Core) Caches() *cache.Hierarchy {
	return c.caches
}

// Predictor returns the branch predictor.
func (c *Core) Predictor() *BranchPredictor {
	return c.predictor
}

// Halted returns true once the program exited or an error stopped it.
func (c *Core) Halted() bool {
	return c.halted
}

// ExitCode returns the exit code if the core has halted.
func (c *Core) ExitCode() int64 {
	return c.exitCode
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Step executes one instruction functionally and charges its cycles.
func (c *Core) Step() emu.StepResult {
	if c.halted {
		return emu.StepResult{Exited: true, ExitCode: c.exitCode}
	}

	result := c.emulator.Step()
	switch {
	case result.Exited:
		c.halted = true
		c.exitCode = result.ExitCode
	case result.Err != nil && !result.Skipped:
		c.halted = true
		c.exitCode = -1
		return result
	}

	c.charge(result)
	return result
}

func (c *Core) charge(result emu.StepResult) {
	pc := uint64(result.PC)
	inst := &result.Inst
	if inst.Len == 0 {
		inst = nil
	}

	cycles := c.latencies.GetLatency(inst)
	stall := c.fetch(pc, result)

	if inst != nil && (inst.IsLoad() || inst.IsStore()) {
		stall += c.access(result.MemAddr, inst.IsStore())
	}

	penalty := uint64(0)
	if inst != nil && inst.IsControlTransfer() {
		if c.resolve(pc, uint64(result.NextPC), result) {
			c.stats.Flushes++
			c.stats.BranchMispredicts++
			penalty = c.config.Timing.BranchMispredictPenalty
		}
	}

	cycles += stall + penalty
	c.stats.Cycles += cycles
	c.stats.Stalls += stall
	c.stats.Instructions++

	if !c.trace {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"pc":      fmt.Sprintf("%#x", pc),
		"cycles":  cycles,
		"stall":   stall,
		"penalty": penalty,
	}).Trace("retired")
}

// fetch reads every L1I line the instruction touches and returns the stall
// beyond the hit latency.
func (c *Core) fetch(pc uint64, result emu.StepResult) uint64 {
	length := uint64(result.Inst.Len)
	if length == 0 {
		length = 2
	}

	stall := c.readLine(pc)
	lineMask := ^uint64(c.config.L1I.BlockSize - 1)
	if last := pc + length - 1; last&lineMask != pc&lineMask {
		stall += c.readLine(last)
	}
	return stall
}

func (c *Core) readLine(addr uint64) uint64 {
	r := c.caches.L1I.Read(addr)
	if r.Hit {
		c.stats.ICacheHits++
	} else {
		c.stats.ICacheMisses++
	}
	return r.Latency - c.config.L1I.HitLatency
}

func (c *Core) access(addr uint64, write bool) uint64 {
	var r cache.AccessResult
	if write {
		r = c.caches.L1D.Write(addr)
	} else {
		r = c.caches.L1D.Read(addr)
	}

	if r.Hit {
		c.stats.DCacheHits++
	} else {
		c.stats.DCacheMisses++
	}
	return r.Latency - c.config.L1D.HitLatency
}

// resolve trains the predictor and reports a misprediction.
func (c *Core) resolve(pc, next uint64, result emu.StepResult) bool {
	c.stats.BranchPredictions++

	if result.Inst.IsJump() {
		pred := c.predictor.PredictJump(pc)
		c.predictor.UpdateJump(pc, next)
		return !pred.Correct(true, next)
	}

	taken := next != pc+uint64(result.Inst.Len)
	pred := c.predictor.Predict(pc)
	c.predictor.Update(pc, taken, next)
	return !pred.Correct(taken, next)
}

// Run executes the program until it halts and returns the exit code.
func (c *Core) Run() int64 {
	for !c.halted {
		result := c.Step()
		if result.Err != nil && !result.Skipped && !result.Exited {
			c.logger.WithError(result.Err).Error("timing run stopped")
		}
	}

	c.logger.WithFields(logrus.Fields{
		"cycles":       c.stats.Cycles,
		"instructions": c.stats.Instructions,
		"cpi":          c.stats.CPI(),
	}).Debug("timing run finished")

	return c.exitCode
}

// Reset clears caches, predictor state and statistics. The emulator is
// left untouched.
func (c *Core) Reset() {
	c.caches.Reset()
	c.predictor.Reset()
	c.stats = Stats{}
	c.halted = false
	c.exitCode = 0
}
