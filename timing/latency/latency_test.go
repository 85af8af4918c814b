package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/latency"
)

func decode(word uint32) *insts.Instruction {
	inst, err := insts.Decode(insts.NewRaw32(word), insts.XLEN64)
	Expect(err).NotTo(HaveOccurred())
	return &inst
}

func decode16(half uint16) *insts.Instruction {
	inst, err := insts.Decode(insts.NewRaw16(half), insts.XLEN64)
	Expect(err).NotTo(HaveOccurred())
	return &inst
}

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	Describe("Default Timing Values", func() {
		It("should have in-order core defaults", func() {
			config := table.Config()
			Expect(config.ALULatency).To(Equal(uint64(1)))
			Expect(config.BranchLatency).To(Equal(uint64(1)))
			Expect(config.LoadLatency).To(Equal(uint64(2)))
			Expect(config.StoreLatency).To(Equal(uint64(1)))
			Expect(config.BranchMispredictPenalty).To(Equal(uint64(3)))
			Expect(config.CSRLatency).To(Equal(uint64(2)))
		})
	})

	DescribeTable("instruction latencies",
		func(word uint32, class latency.Class, expected uint64) {
			inst := decode(word)
			Expect(latency.Classify(inst)).To(Equal(class))
			Expect(table.GetLatency(inst)).To(Equal(expected))
		},
		Entry("addi a0, a1, 42", uint32(0x02a58513), latency.ClassALU, uint64(1)),
		Entry("add a0, a1, a2", uint32(0x00c58533), latency.ClassALU, uint64(1)),
		Entry("lui a0, 0x12345", uint32(0x12345537), latency.ClassALU, uint64(1)),
		Entry("mul a0, a1, a2", uint32(0x02c58533), latency.ClassMultiply, uint64(3)),
		Entry("mulw a0, a1, a2", uint32(0x02c5853b), latency.ClassMultiply, uint64(3)),
		Entry("div a0, a1, a2", uint32(0x02c5c533), latency.ClassDivide, uint64(21)),
		Entry("remuw a0, a1, a2", uint32(0x02c5f53b), latency.ClassDivide, uint64(21)),
		Entry("beq a0, a1, 8", uint32(0x00b50463), latency.ClassBranch, uint64(1)),
		Entry("jal ra, 16", uint32(0x010000ef), latency.ClassJump, uint64(1)),
		Entry("jalr zero, 0(ra)", uint32(0x00008067), latency.ClassJump, uint64(1)),
		Entry("ld a0, 8(a1)", uint32(0x0085b503), latency.ClassLoad, uint64(2)),
		Entry("sd ra, 8(sp)", uint32(0x00113423), latency.ClassStore, uint64(1)),
		Entry("ecall", uint32(0x00000073), latency.ClassSyscall, uint64(1)),
		Entry("csrrw a0, mscratch, a1", uint32(0x34059573), latency.ClassCSR, uint64(2)),
		Entry("fence", uint32(0x0ff0000f), latency.ClassCSR, uint64(2)),
	)

	DescribeTable("compressed instruction latencies",
		func(half uint16, class latency.Class) {
			Expect(latency.Classify(decode16(half))).To(Equal(class))
		},
		Entry("c.li a0, 0", uint16(0x4501), latency.ClassALU),
		Entry("c.sdsp ra, 8(sp)", uint16(0xe406), latency.ClassStore),
		Entry("c.lwsp a0, 4(sp)", uint16(0x4512), latency.ClassLoad),
		Entry("c.jr ra", uint16(0x8082), latency.ClassJump),
		Entry("c.ebreak", uint16(0x9002), latency.ClassSyscall),
		Entry("c.nop", uint16(0x0001), latency.ClassOther),
	)

	Describe("Variable latencies", func() {
		It("should bound divides by the configured range", func() {
			inst := decode(0x02c5c533)
			Expect(table.GetMinLatency(inst)).To(Equal(uint64(8)))
			Expect(table.GetMaxLatency(inst)).To(Equal(uint64(34)))
		})

		It("should use the fixed latency elsewhere", func() {
			inst := decode(0x02a58513)
			Expect(table.GetMinLatency(inst)).To(Equal(uint64(1)))
			Expect(table.GetMaxLatency(inst)).To(Equal(uint64(1)))
		})
	})

	Describe("Instruction Type Detection", func() {
		It("should detect memory operations", func() {
			Expect(table.IsMemoryOp(decode(0x0085b503))).To(BeTrue())
			Expect(table.IsMemoryOp(decode(0x00113423))).To(BeTrue())
			Expect(table.IsMemoryOp(decode(0x02a58513))).To(BeFalse())
		})

		It("should separate loads and stores", func() {
			Expect(table.IsLoadOp(decode(0x0085b503))).To(BeTrue())
			Expect(table.IsLoadOp(decode(0x00113423))).To(BeFalse())
			Expect(table.IsStoreOp(decode(0x00113423))).To(BeTrue())
		})

		It("should detect branch operations", func() {
			Expect(table.IsBranchOp(decode(0x00b50463))).To(BeTrue())
			Expect(table.IsBranchOp(decode16(0x8082))).To(BeTrue())
			Expect(table.IsBranchOp(decode(0x02a58513))).To(BeFalse())
		})
	})

	Describe("Nil Instruction Handling", func() {
		It("should return 1 for nil instruction", func() {
			Expect(table.GetLatency(nil)).To(Equal(uint64(1)))
		})

		It("should return false for nil instruction checks", func() {
			Expect(table.IsMemoryOp(nil)).To(BeFalse())
			Expect(table.IsBranchOp(nil)).To(BeFalse())
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 2
			config.LoadLatency = 5
			config.MultiplyLatency = 7
			custom := latency.NewTableWithConfig(config)

			Expect(custom.GetLatency(decode(0x02a58513))).To(Equal(uint64(2)))
			Expect(custom.GetLatency(decode(0x0085b503))).To(Equal(uint64(5)))
			Expect(custom.GetLatency(decode(0x02c58533))).To(Equal(uint64(7)))
		})
	})

	It("should name classes", func() {
		Expect(latency.ClassDivide.String()).To(Equal("divide"))
		Expect(latency.Class(200).String()).To(Equal("unknown"))
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		var config *latency.TimingConfig

		BeforeEach(func() {
			config = latency.DefaultTimingConfig()
		})

		It("should reject zero ALU latency", func() {
			config.ALULatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("alu_latency")))
		})

		It("should reject zero branch latency", func() {
			config.BranchLatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("branch_latency")))
		})

		It("should reject zero load latency", func() {
			config.LoadLatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("load_latency")))
		})

		It("should reject zero CSR latency", func() {
			config.CSRLatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("csr_latency")))
		})

		It("should reject inverted divide latency range", func() {
			config.DivideLatencyMin = 40
			Expect(config.Validate()).To(MatchError(ContainSubstring("divide_latency_min")))
		})

		It("should reject an L2 faster than L1", func() {
			config.L2HitLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.ALULatency = 99

			Expect(original.ALULatency).To(Equal(uint64(1)))
			Expect(clone.LoadLatency).To(Equal(original.LoadLatency))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			tempDir = GinkgoT().TempDir()
		})

		It("should save and load config", func() {
			path := filepath.Join(tempDir, "timing.json")
			config := latency.DefaultTimingConfig()
			config.MemoryLatency = 200

			Expect(config.SaveConfig(path)).To(Succeed())
			loaded, err := latency.LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(config))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"load_latency": 6}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.LoadLatency).To(Equal(uint64(6)))
			Expect(loaded.ALULatency).To(Equal(uint64(1)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig(filepath.Join(tempDir, "missing.json"))
			Expect(err).To(MatchError(ContainSubstring("failed to read")))
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte("{not json"), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse")))
		})

		It("should reject invalid values", func() {
			path := filepath.Join(tempDir, "zero.json")
			Expect(os.WriteFile(path, []byte(`{"alu_latency": 0}`), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("invalid timing config")))
		})
	})
})
