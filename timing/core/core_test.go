package core_test

import (
	"encoding/binary"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
)

const entry = 0x1000

// Instruction words used below.
const (
	liA0Zero  = 0x00000513 // addi a0, zero, 0
	liA042    = 0x02a00513 // addi a0, zero, 42
	liT010    = 0x00a00293 // addi t0, zero, 10
	addA0T0   = 0x00550533 // add a0, a0, t0
	decT0     = 0xfff28293 // addi t0, t0, -1
	bneT0Back = 0xfe029ce3 // bne t0, zero, -8
	liA7Exit  = 0x05d00893 // addi a7, zero, 93
	luiT1     = 0x00002337 // lui t1, 0x2
	sdA0T1    = 0x00a33023 // sd a0, 0(t1)
	ldA0T1    = 0x00033503 // ld a0, 0(t1)
	jSkip     = 0x0080006f // jal zero, 8
	ecall     = 0x00000073
)

func newEmulator(words ...uint32) *emu.Emulator {
	code := make([]byte, 0, 4*len(words))
	for _, w := range words {
		code = binary.LittleEndian.AppendUint32(code, w)
	}

	logger, _ := test.NewNullLogger()
	e := emu.NewEmulator(
		emu.WithStdout(io.Discard),
		emu.WithStderr(io.Discard),
		emu.WithLogger(logger),
	)
	e.LoadProgram(entry, code)
	return e
}

func newCore(e *emu.Emulator, config core.Config) *core.Core {
	logger, _ := test.NewNullLogger()
	return core.NewCore(e, config, core.WithLogger(logger))
}

var _ = Describe("Core", func() {
	It("should charge a cold instruction fetch once", func() {
		c := newCore(newEmulator(liA042, liA7Exit, ecall), core.DefaultConfig())

		Expect(c.Run()).To(Equal(int64(42)))
		Expect(c.Halted()).To(BeTrue())

		stats := c.Stats()
		Expect(stats.Instructions).To(Equal(uint64(3)))
		Expect(stats.ICacheMisses).To(Equal(uint64(1)))
		Expect(stats.ICacheHits).To(Equal(uint64(2)))
		// L1 + L2 + memory on the first fetch, then one cycle each.
		Expect(stats.Stalls).To(Equal(uint64(90)))
		Expect(stats.Cycles).To(Equal(uint64(93)))
		Expect(stats.CPI()).To(BeNumerically("~", 31.0))
	})

	It("should retire as many instructions as the emulator executes", func() {
		e := newEmulator(liA042, liA7Exit, ecall)
		c := newCore(e, core.DefaultConfig())

		c.Run()

		Expect(c.Stats().Instructions).To(Equal(e.InstructionCount()))
	})

	It("should predict a counted loop", func() {
		c := newCore(newEmulator(
			liA0Zero, liT010, addA0T0, decT0, bneT0Back, liA7Exit, ecall,
		), core.DefaultConfig())

		Expect(c.Run()).To(Equal(int64(55)))

		stats := c.Stats()
		Expect(stats.Instructions).To(Equal(uint64(34)))
		Expect(stats.BranchPredictions).To(Equal(uint64(10)))
		// Cold BTB on the first taken branch, then the loop exit.
		Expect(stats.BranchMispredicts).To(Equal(uint64(2)))
		Expect(stats.Flushes).To(Equal(uint64(2)))
		Expect(stats.Cycles).To(Equal(uint64(34 + 90 + 2*3)))

		bp := c.Predictor().Stats()
		Expect(bp.Predictions).To(Equal(uint64(10)))
		Expect(bp.Correct).To(Equal(uint64(9)))
		Expect(bp.Mispredictions).To(Equal(uint64(1)))
	})

	It("should charge data cache misses and store forwarding", func() {
		e := newEmulator(luiT1, liA042, sdA0T1, liA0Zero, ldA0T1, liA7Exit, ecall)
		e.Memory().MapRegion(0x2000, 8)
		c := newCore(e, core.DefaultConfig())

		Expect(c.Run()).To(Equal(int64(42)))

		stats := c.Stats()
		Expect(stats.DCacheMisses).To(Equal(uint64(1)))
		Expect(stats.DCacheHits).To(Equal(uint64(1)))
		Expect(stats.Stalls).To(Equal(uint64(90 + 90 + 1)))
		// Six single-cycle instructions plus a two-cycle load.
		Expect(stats.Cycles).To(Equal(uint64(8 + 181)))
	})

	It("should charge a cold jump as a misprediction", func() {
		c := newCore(newEmulator(jSkip, 0, liA042, liA7Exit, ecall), core.DefaultConfig())

		Expect(c.Run()).To(Equal(int64(42)))

		stats := c.Stats()
		Expect(stats.BranchPredictions).To(Equal(uint64(1)))
		Expect(stats.BranchMispredicts).To(Equal(uint64(1)))
	})

	It("should halt with -1 on an illegal instruction", func() {
		c := newCore(newEmulator(liA042, 0), core.DefaultConfig())

		Expect(c.Run()).To(Equal(int64(-1)))
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Stats().Instructions).To(Equal(uint64(1)))
	})

	It("should not step once halted", func() {
		c := newCore(newEmulator(liA042, liA7Exit, ecall), core.DefaultConfig())
		c.Run()
		before := c.Stats()

		result := c.Step()

		Expect(result.Exited).To(BeTrue())
		Expect(result.ExitCode).To(Equal(int64(42)))
		Expect(c.Stats()).To(Equal(before))
	})

	It("should use latencies from the timing config", func() {
		timing := latency.DefaultTimingConfig()
		timing.MemoryLatency = 20
		c := newCore(newEmulator(liA042, liA7Exit, ecall), core.ConfigFromTiming(timing))

		c.Run()

		Expect(c.Stats().Cycles).To(Equal(uint64(3 + 10 + 20)))
	})

	It("should clear statistics on reset", func() {
		c := newCore(newEmulator(liA042, liA7Exit, ecall), core.DefaultConfig())
		c.Run()

		c.Reset()

		Expect(c.Halted()).To(BeFalse())
		Expect(c.Stats()).To(Equal(core.Stats{}))
		Expect(c.Caches().L1I.Contains(entry)).To(BeFalse())
		Expect(c.Stats().CPI()).To(BeZero())
	})

	Describe("Config", func() {
		It("should validate the defaults", func() {
			Expect(core.DefaultConfig().Validate()).To(Succeed())
		})

		It("should take cache hit latencies from the timing config", func() {
			timing := latency.DefaultTimingConfig()
			timing.L1HitLatency = 2
			timing.L2HitLatency = 12

			config := core.ConfigFromTiming(timing)

			Expect(config.L1I.HitLatency).To(Equal(uint64(2)))
			Expect(config.L1D.HitLatency).To(Equal(uint64(2)))
			Expect(config.L2.HitLatency).To(Equal(uint64(12)))
		})

		It("should reject bad cache geometry", func() {
			config := core.DefaultConfig()
			config.L1D.Size = 100

			Expect(config.Validate()).To(MatchError(ContainSubstring("l1d")))
			Expect(func() { core.NewCore(newEmulator(ecall), config) }).To(Panic())
		})

		It("should reject a missing timing config", func() {
			Expect(core.Config{}.Validate()).To(HaveOccurred())
		})
	})
})
