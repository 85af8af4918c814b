package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for different instruction types.
// Values approximate a single-issue in-order RISC-V core.
type TimingConfig struct {
	// ALULatency is the execution latency for basic integer operations
	// (ADD, SUB, shifts, logic, compares, LUI, AUIPC). Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the base execution latency for branches and jumps.
	// This does not include misprediction penalty. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchMispredictPenalty is the additional cycles lost on branch
	// misprediction. Default: 3 cycles.
	BranchMispredictPenalty uint64 `json:"branch_mispredict_penalty"`

	// LoadLatency is the load-to-use latency assuming an L1 hit.
	// Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency for store operations. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// MultiplyLatency is the latency for MUL, MULH* and MULW.
	// Default: 3 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// DivideLatencyMin is the minimum latency for DIV, REM and their
	// variants. Default: 8 cycles.
	DivideLatencyMin uint64 `json:"divide_latency_min"`

	// DivideLatencyMax is the maximum latency for DIV, REM and their
	// variants. Default: 34 cycles.
	DivideLatencyMax uint64 `json:"divide_latency_max"`

	// SyscallLatency is the latency for ECALL. Default: 1 cycle (handling
	// is external).
	SyscallLatency uint64 `json:"syscall_latency"`

	// CSRLatency is the latency for the Zicsr instructions and FENCE.
	// Default: 2 cycles.
	CSRLatency uint64 `json:"csr_latency"`

	// L1HitLatency is the L1 cache hit latency. Default: 1 cycle.
	L1HitLatency uint64 `json:"l1_hit_latency"`

	// L2HitLatency is the L2 cache hit latency. Default: 10 cycles.
	L2HitLatency uint64 `json:"l2_hit_latency"`

	// MemoryLatency is the main memory access latency. Default: 80 cycles.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultTimingConfig returns a TimingConfig with in-order core defaults.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:              1,
		BranchLatency:           1,
		BranchMispredictPenalty: 3,
		LoadLatency:             2,
		StoreLatency:            1,
		MultiplyLatency:         3,
		DivideLatencyMin:        8,
		DivideLatencyMax:        34,
		SyscallLatency:          1,
		CSRLatency:              2,
		L1HitLatency:            1,
		L2HitLatency:            10,
		MemoryLatency:           80,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.MultiplyLatency == 0 {
		return fmt.Errorf("multiply_latency must be > 0")
	}
	if c.SyscallLatency == 0 {
		return fmt.Errorf("syscall_latency must be > 0")
	}
	if c.CSRLatency == 0 {
		return fmt.Errorf("csr_latency must be > 0")
	}
	if c.DivideLatencyMin == 0 {
		return fmt.Errorf("divide_latency_min must be > 0")
	}
	if c.DivideLatencyMin > c.DivideLatencyMax {
		return fmt.Errorf("divide_latency_min must be <= divide_latency_max")
	}
	if c.L1HitLatency > c.L2HitLatency || c.L2HitLatency > c.MemoryLatency {
		return fmt.Errorf("cache latencies must not decrease toward memory")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
