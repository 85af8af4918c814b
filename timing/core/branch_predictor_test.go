package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/timing/core"
)

var _ = Describe("BranchPredictor", func() {
	var bp *core.BranchPredictor

	BeforeEach(func() {
		bp = core.NewBranchPredictor(core.BranchPredictorConfig{
			BHTSize: 16,
			BTBSize: 8,
		})
	})

	Describe("Prediction", func() {
		It("should initially predict taken (biased)", func() {
			pred := bp.Predict(0x1000)
			Expect(pred.Taken).To(BeTrue())
			Expect(pred.TargetKnown).To(BeFalse())
		})

		It("should learn branch patterns", func() {
			pc := uint64(0x1000)
			target := uint64(0x2000)

			for i := 0; i < 10; i++ {
				bp.Update(pc, true, target)
			}

			pred := bp.Predict(pc)
			Expect(pred.Taken).To(BeTrue())
			Expect(pred.TargetKnown).To(BeTrue())
			Expect(pred.Target).To(Equal(target))
		})

		It("should learn not-taken pattern", func() {
			pc := uint64(0x1000)

			for i := 0; i < 10; i++ {
				bp.Update(pc, false, 0)
			}

			Expect(bp.Predict(pc).Taken).To(BeFalse())
		})

		It("should keep compressed branches two bytes apart separate", func() {
			bp.Update(0x1000, false, 0)
			bp.Update(0x1000, false, 0)

			Expect(bp.Predict(0x1000).Taken).To(BeFalse())
			Expect(bp.Predict(0x1002).Taken).To(BeTrue())
		})
	})

	Describe("2-bit saturating counter", func() {
		It("should require 2 mispredictions to change direction", func() {
			pc := uint64(0x1000)
			target := uint64(0x2000)

			bp.Update(pc, true, target)
			bp.Update(pc, true, target)
			bp.Update(pc, true, target)

			bp.Update(pc, false, 0)
			Expect(bp.Predict(pc).Taken).To(BeTrue())

			bp.Update(pc, false, 0)
			Expect(bp.Predict(pc).Taken).To(BeFalse())
		})
	})

	Describe("BTB", func() {
		It("should not cache not-taken branches", func() {
			bp.Update(0x1000, false, 0x2000)

			Expect(bp.Predict(0x1000).TargetKnown).To(BeFalse())
		})

		It("should handle BTB conflicts correctly", func() {
			bp = core.NewBranchPredictor(core.BranchPredictorConfig{
				BHTSize: 16,
				BTBSize: 4,
			})

			pc1 := uint64(0x1000)
			// Four halfword slots later wraps to the same entry.
			pc2 := pc1 + 4*2

			bp.Update(pc1, true, 0x2000)
			Expect(bp.Predict(pc1).Target).To(Equal(uint64(0x2000)))

			bp.Update(pc2, true, 0x3000)
			pred := bp.Predict(pc2)
			Expect(pred.TargetKnown).To(BeTrue())
			Expect(pred.Target).To(Equal(uint64(0x3000)))

			Expect(bp.Predict(pc1).TargetKnown).To(BeFalse())
		})

		It("should track jump targets", func() {
			Expect(bp.PredictJump(0x1000).TargetKnown).To(BeFalse())

			bp.UpdateJump(0x1000, 0x4000)

			pred := bp.PredictJump(0x1000)
			Expect(pred.Taken).To(BeTrue())
			Expect(pred.Target).To(Equal(uint64(0x4000)))
			Expect(bp.Stats().Predictions).To(BeZero())
		})
	})

	DescribeTable("Prediction.Correct",
		func(pred core.Prediction, taken bool, target uint64, expected bool) {
			Expect(pred.Correct(taken, target)).To(Equal(expected))
		},
		Entry("not taken as predicted", core.Prediction{}, false, uint64(0), true),
		Entry("direction wrong", core.Prediction{Taken: true}, false, uint64(0), false),
		Entry("taken with no target", core.Prediction{Taken: true}, true, uint64(0x20), false),
		Entry("taken with stale target",
			core.Prediction{Taken: true, TargetKnown: true, Target: 0x10}, true, uint64(0x20), false),
		Entry("taken with right target",
			core.Prediction{Taken: true, TargetKnown: true, Target: 0x20}, true, uint64(0x20), true),
	)

	Describe("Statistics", func() {
		It("should compute accuracy correctly", func() {
			pc := uint64(0x1000)
			target := uint64(0x2000)

			for i := 0; i < 3; i++ {
				bp.Predict(pc)
				bp.Update(pc, true, target)
			}
			bp.Predict(pc)
			bp.Update(pc, false, 0)

			stats := bp.Stats()
			Expect(stats.Predictions).To(Equal(uint64(4)))
			Expect(stats.Correct).To(Equal(uint64(3)))
			Expect(stats.Mispredictions).To(Equal(uint64(1)))
			Expect(stats.Accuracy()).To(BeNumerically("~", 75.0, 0.1))
			Expect(stats.MispredictionRate()).To(BeNumerically("~", 25.0, 0.1))
		})

		It("should track BTB hits and misses", func() {
			pc := uint64(0x1000)

			bp.Predict(pc)
			bp.Update(pc, true, 0x2000)
			bp.Predict(pc)

			stats := bp.Stats()
			Expect(stats.BTBHits).To(Equal(uint64(1)))
			Expect(stats.BTBMisses).To(Equal(uint64(1)))
			Expect(stats.BTBHitRate()).To(BeNumerically("~", 50.0, 0.1))
		})

		It("should report zero rates before any prediction", func() {
			stats := bp.Stats()
			Expect(stats.Accuracy()).To(BeZero())
			Expect(stats.MispredictionRate()).To(BeZero())
			Expect(stats.BTBHitRate()).To(BeZero())
		})
	})

	Describe("Reset", func() {
		It("should clear all state", func() {
			pc := uint64(0x1000)
			bp.Update(pc, false, 0)
			bp.Update(pc, false, 0)
			bp.UpdateJump(0x2000, 0x3000)
			bp.Predict(pc)

			bp.Reset()

			Expect(bp.Stats()).To(Equal(core.BranchPredictorStats{}))
			Expect(bp.Predict(pc).Taken).To(BeTrue())
			Expect(bp.PredictJump(0x2000).TargetKnown).To(BeFalse())
		})
	})

	It("should use default sizes for a zero config", func() {
		config := core.DefaultBranchPredictorConfig()
		Expect(config.BHTSize).To(Equal(uint32(1024)))
		Expect(config.BTBSize).To(Equal(uint32(256)))

		bp = core.NewBranchPredictor(core.BranchPredictorConfig{})
		Expect(bp.Predict(0x1000).Taken).To(BeTrue())
	})
})
