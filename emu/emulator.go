package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/insts"
)

// ErrMaxInstructions is returned by Step once the instruction limit set
// with WithMaxInstructions is reached.
var ErrMaxInstructions = errors.New("max instructions reached")

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true if the program terminated (via exit syscall or a
	// breakpoint).
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int64

	// Err is set if an error occurred during execution.
	Err error

	// Skipped is true when Err was logged and the instruction stepped over
	// under SkipOnError.
	Skipped bool

	// PC is the address of the instruction and NextPC the PC after it.
	PC     int64
	NextPC int64

	// Inst is the decoded instruction. It is the zero Instruction when
	// fetch or decode failed.
	Inst insts.Instruction

	// MemAddr is the effective address of a load or store.
	MemAddr uint64
}

// ErrorPolicy decides what Step does with a fetch, decode or execute
// error.
type ErrorPolicy uint8

const (
	// HaltOnError stops at the first error. This is the default.
	HaltOnError ErrorPolicy = iota

	// SkipOnError logs the error and steps over the offending instruction
	// when its length is known. Fetch errors still halt.
	SkipOnError
)

// String returns the policy name used on the command line.
func (p ErrorPolicy) String() string {
	if p == SkipOnError {
		return "skip"
	}
	return "halt"
}

// ParseErrorPolicy parses "halt" or "skip".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "halt":
		return HaltOnError, nil
	case "skip":
		return SkipOnError, nil
	}
	return HaltOnError, fmt.Errorf("invalid error policy %q", s)
}

// Emulator executes RISC-V instructions functionally.
type Emulator struct {
	state          *ArchState
	decoder        *insts.Decoder
	syscallHandler SyscallHandler
	customSyscalls bool

	// I/O
	stdout io.Writer
	stderr io.Writer

	logger logrus.FieldLogger
	debug  bool
	policy ErrorPolicy

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithSyscallHandler sets a custom syscall handler.
func WithSyscallHandler(handler SyscallHandler) EmulatorOption {
	return func(e *Emulator) {
		e.syscallHandler = handler
		e.customSyscalls = true
	}
}

// WithStackPointer sets the initial stack pointer value.
func WithStackPointer(sp uint64) EmulatorOption {
	return func(e *Emulator) {
		e.state.Set(insts.SP, int64(sp))
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithXLEN sets the register width. The default is RV64.
func WithXLEN(xlen insts.XLEN) EmulatorOption {
	return func(e *Emulator) {
		e.state.XLEN = xlen
	}
}

// WithLogger sets the logger. Every step is logged at debug level; errors
// are logged at warn level.
func WithLogger(logger logrus.FieldLogger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithErrorPolicy sets what Step does on an error.
func WithErrorPolicy(policy ErrorPolicy) EmulatorOption {
	return func(e *Emulator) {
		e.policy = policy
	}
}

// NewEmulator creates a new RISC-V emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		state:  NewArchState(insts.XLEN64, NewMemory()),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.decoder = insts.NewDecoder(e.state.XLEN)

	if e.logger == nil {
		logger := logrus.New()
		logger.SetOutput(e.stderr)
		e.logger = logger
	}
	e.debug = debugEnabled(e.logger)

	// If no syscall handler was provided, create a default one
	if e.syscallHandler == nil {
		e.syscallHandler = e.defaultSyscallHandler()
	}

	return e
}

func (e *Emulator) defaultSyscallHandler() *DefaultSyscallHandler {
	h := NewDefaultSyscallHandler(&e.state.Regs, e.state.Memory, e.stdout, e.stderr)
	h.SetXLEN(e.state.XLEN)
	return h
}

func debugEnabled(logger logrus.FieldLogger) bool {
	switch l := logger.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(logrus.DebugLevel)
	}
	return true
}

// State returns the architectural state.
func (e *Emulator) State() *ArchState {
	return e.state
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return &e.state.Regs
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.state.Memory
}

// XLEN returns the register width.
func (e *Emulator) XLEN() insts.XLEN {
	return e.state.XLEN
}

// PC returns the current program counter.
func (e *Emulator) PC() int64 {
	return e.state.PC
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint64) {
	e.state.jump(int64(pc))
}

// SyscallHandler returns the handler ECALL is routed to.
func (e *Emulator) SyscallHandler() SyscallHandler {
	return e.syscallHandler
}

// SetProgramBreak sets the initial brk of the default syscall handler. It
// has no effect with a custom handler.
func (e *Emulator) SetProgramBreak(addr uint64) {
	if h, ok := e.syscallHandler.(*DefaultSyscallHandler); ok {
		h.SetBreak(addr)
	}
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram loads a program into memory and sets the entry point.
// The program can be either a []byte or a *Memory.
func (e *Emulator) LoadProgram(entry uint64, program interface{}) {
	switch p := program.(type) {
	case []byte:
		e.state.Memory.LoadProgram(entry, p)
	case *Memory:
		e.state.Memory = p
		if !e.customSyscalls {
			e.syscallHandler = e.defaultSyscallHandler()
		}
	}
	e.SetPC(entry)
}

// Reset resets the emulator to its initial state, keeping the XLEN.
func (e *Emulator) Reset() {
	e.state = NewArchState(e.state.XLEN, NewMemory())
	e.instructionCount = 0

	if !e.customSyscalls {
		e.syscallHandler = e.defaultSyscallHandler()
	}
}

// Step fetches, decodes and executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions, PC: e.state.PC, NextPC: e.state.PC}
	}

	pc := e.state.PC
	result := StepResult{PC: pc}

	raw, err := e.state.Fetch()
	if err != nil {
		return e.fail(result, 0, fmt.Errorf("fetch at %#x: %w", uint64(pc), err))
	}

	inst, err := e.decoder.Decode(raw)
	if err != nil {
		return e.fail(result, raw.Len, err)
	}
	result.Inst = inst

	if inst.IsLoad() || inst.IsStore() {
		result.MemAddr = e.state.Address(e.state.Get(inst.Rs1), inst.Imm)
	}

	if e.debug {
		e.logger.WithFields(logrus.Fields{
			"pc":  fmt.Sprintf("%#x", uint64(pc)),
			"op":  inst.Op,
			"len": inst.Len,
		}).Debug(inst.String())
	}

	err = Execute(inst, e.state)
	switch {
	case errors.Is(err, ErrEnvironmentCall):
		e.state.advance(inst.Len)
		sys := e.syscallHandler.Handle()
		result.Exited = sys.Exited
		result.ExitCode = sys.ExitCode
	case errors.Is(err, ErrBreakpoint):
		result.Exited = true
		result.ExitCode = -1
		result.Err = fmt.Errorf("%w at pc=%#x", ErrBreakpoint, uint64(pc))
	case err != nil:
		return e.fail(result, inst.Len, err)
	}

	e.instructionCount++
	result.NextPC = e.state.PC
	return result
}

// fail applies the error policy. length is the size of the offending
// instruction, or 0 when it is unknown.
func (e *Emulator) fail(result StepResult, length uint8, err error) StepResult {
	e.logger.WithFields(logrus.Fields{
		"pc":    fmt.Sprintf("%#x", uint64(result.PC)),
		"error": err,
	}).Warn("instruction failed")

	result.Err = err
	if e.policy == SkipOnError && length != 0 {
		e.state.advance(length)
		e.instructionCount++
		result.Skipped = true
	}
	result.NextPC = e.state.PC
	return result
}

// Run executes instructions until the program exits or an error occurs.
// Returns the exit code (-1 if error).
func (e *Emulator) Run() int64 {
	for {
		result := e.Step()
		if result.Exited {
			return result.ExitCode
		}
		if result.Skipped {
			continue
		}
		if result.Err != nil {
			_, _ = fmt.Fprintf(e.stderr, "Emulation error: %v\n", result.Err)
			return -1
		}
	}
}
