package emu

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/sarchlab/rvsim/insts"
)

// RISC-V Linux syscall numbers.
const (
	SyscallOpenat    uint64 = 56  // openat(dirfd, path, flags, mode)
	SyscallClose     uint64 = 57  // close(fd)
	SyscallLseek     uint64 = 62  // lseek(fd, offset, whence)
	SyscallRead      uint64 = 63  // read(fd, buf, count)
	SyscallWrite     uint64 = 64  // write(fd, buf, count)
	SyscallExit      uint64 = 93  // exit(status)
	SyscallExitGroup uint64 = 94  // exit_group(status)
	SyscallBrk       uint64 = 214 // brk(addr)
)

// Linux error codes.
const (
	ENOENT = 2  // No such file or directory
	EIO    = 5  // I/O error
	EBADF  = 9  // Bad file descriptor
	EFAULT = 14 // Bad address
	EINVAL = 22 // Invalid argument
	ENOSYS = 38 // Function not implemented
)

// atFDCWD is the openat dirfd meaning "relative to the working directory".
const atFDCWD = -100

// maxTransfer bounds a single read or write.
const maxTransfer = 1 << 20

// maxPathLen bounds a guest path string.
const maxPathLen = 4096

// maxBrkGrowth bounds a single brk extension.
const maxBrkGrowth = 64 << 20

// SyscallResult represents the result of a syscall execution.
type SyscallResult struct {
	// Exited is true if the syscall caused program termination.
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int64
}

// SyscallHandler is the interface for handling ECALL.
type SyscallHandler interface {
	// Handle executes the syscall indicated by the register file state.
	// RISC-V Linux syscall convention:
	//   - Syscall number in a7
	//   - Arguments in a0-a5
	//   - Return value in a0
	Handle() SyscallResult
}

// DefaultSyscallHandler provides a basic syscall handler implementation.
type DefaultSyscallHandler struct {
	regFile *RegFile
	memory  *Memory
	files   *FDTable
	brk     uint64
	xlen    insts.XLEN
}

// NewDefaultSyscallHandler creates a default syscall handler.
func NewDefaultSyscallHandler(regFile *RegFile, memory *Memory, stdout, stderr io.Writer) *DefaultSyscallHandler {
	return &DefaultSyscallHandler{
		regFile: regFile,
		memory:  memory,
		files:   NewFDTable(nil, stdout, stderr),
		xlen:    insts.XLEN64,
	}
}

// SetXLEN sets the register width used to form guest pointers and return
// values. On RV32 pointer arguments wrap at 32 bits.
func (h *DefaultSyscallHandler) SetXLEN(xlen insts.XLEN) {
	h.xlen = xlen
}

// SetStdin sets the stdin reader for the syscall handler.
func (h *DefaultSyscallHandler) SetStdin(stdin io.Reader) {
	h.files.fds[0] = &fileEntry{path: "stdin", r: stdin}
}

// SetBreak sets the initial program break, normally the end of the
// highest loaded segment.
func (h *DefaultSyscallHandler) SetBreak(addr uint64) {
	h.brk = addr
}

// Files returns the descriptor table.
func (h *DefaultSyscallHandler) Files() *FDTable {
	return h.files
}

func (h *DefaultSyscallHandler) arg(n uint8) uint64 {
	return h.regFile.ReadReg(uint8(insts.A0) + n)
}

// ptr reads argument n as a guest address, following the same rule as
// ArchState.Address.
func (h *DefaultSyscallHandler) ptr(n uint8) uint64 {
	addr := h.arg(n)
	if h.xlen == insts.XLEN32 {
		addr = uint64(uint32(addr))
	}
	return addr
}

// ret writes a non-negative result to a0, sign-extended from bit 31 on
// RV32.
func (h *DefaultSyscallHandler) ret(v uint64) {
	if h.xlen == insts.XLEN32 {
		v = uint64(int64(int32(uint32(v))))
	}
	h.regFile.WriteReg(uint8(insts.A0), v)
}

// Handle executes the syscall indicated by the register file state.
func (h *DefaultSyscallHandler) Handle() SyscallResult {
	syscallNum := h.regFile.ReadReg(uint8(insts.A7))

	switch syscallNum {
	case SyscallOpenat:
		return h.handleOpenat()
	case SyscallClose:
		return h.handleClose()
	case SyscallLseek:
		return h.handleLseek()
	case SyscallRead:
		return h.handleRead()
	case SyscallWrite:
		return h.handleWrite()
	case SyscallExit, SyscallExitGroup:
		return h.handleExit()
	case SyscallBrk:
		return h.handleBrk()
	default:
		return h.handleUnknown()
	}
}

// handleExit handles exit (93) and exit_group (94).
func (h *DefaultSyscallHandler) handleExit() SyscallResult {
	return SyscallResult{
		Exited:   true,
		ExitCode: int64(h.arg(0)),
	}
}

// handleRead handles the read syscall (63).
func (h *DefaultSyscallHandler) handleRead() SyscallResult {
	fd := int64(h.arg(0))
	bufPtr := h.ptr(1)
	count := min(h.arg(2), maxTransfer)

	if !h.files.IsOpen(fd) {
		h.setError(EBADF)
		return SyscallResult{}
	}
	if err := h.memory.check(bufPtr, int(count), true); err != nil {
		h.setError(EFAULT)
		return SyscallResult{}
	}

	buf := make([]byte, count)
	n, err := h.files.Read(fd, buf)
	if err != nil && n == 0 {
		if errors.Is(err, io.EOF) {
			h.regFile.WriteReg(uint8(insts.A0), 0)
			return SyscallResult{}
		}
		h.setError(errno(err))
		return SyscallResult{}
	}

	// The range was checked above.
	_ = h.memory.Write(bufPtr, n, buf)

	h.ret(uint64(n))
	return SyscallResult{}
}

// handleWrite handles the write syscall (64).
func (h *DefaultSyscallHandler) handleWrite() SyscallResult {
	fd := int64(h.arg(0))
	bufPtr := h.ptr(1)
	count := min(h.arg(2), maxTransfer)

	if !h.files.IsOpen(fd) {
		h.setError(EBADF)
		return SyscallResult{}
	}

	buf, err := h.memory.Read(bufPtr, int(count))
	if err != nil {
		h.setError(EFAULT)
		return SyscallResult{}
	}

	n, err := h.files.Write(fd, buf)
	if err != nil {
		h.setError(errno(err))
		return SyscallResult{}
	}

	h.ret(uint64(n))
	return SyscallResult{}
}

// handleOpenat handles the openat syscall (56). Only AT_FDCWD is
// supported as the directory descriptor.
func (h *DefaultSyscallHandler) handleOpenat() SyscallResult {
	if int64(h.arg(0)) != atFDCWD {
		h.setError(EBADF)
		return SyscallResult{}
	}

	path, err := h.readString(h.ptr(1))
	if err != nil {
		h.setError(EFAULT)
		return SyscallResult{}
	}

	fd, err := h.files.Open(path, int64(h.arg(2)), os.FileMode(h.arg(3)&0o777))
	if err != nil {
		h.setError(errno(err))
		return SyscallResult{}
	}

	h.ret(uint64(fd))
	return SyscallResult{}
}

// handleClose handles the close syscall (57).
func (h *DefaultSyscallHandler) handleClose() SyscallResult {
	if err := h.files.Close(int64(h.arg(0))); err != nil {
		h.setError(errno(err))
		return SyscallResult{}
	}
	h.regFile.WriteReg(uint8(insts.A0), 0)
	return SyscallResult{}
}

// handleLseek handles the lseek syscall (62).
func (h *DefaultSyscallHandler) handleLseek() SyscallResult {
	whence := int(h.arg(2))
	if whence < io.SeekStart || whence > io.SeekEnd {
		h.setError(EINVAL)
		return SyscallResult{}
	}

	pos, err := h.files.Seek(int64(h.arg(0)), int64(h.arg(1)), whence)
	if err != nil {
		h.setError(errno(err))
		return SyscallResult{}
	}
	h.ret(uint64(pos))
	return SyscallResult{}
}

// handleBrk handles the brk syscall (214). Growing the break maps the new
// range. A request below the current break, a request that grows it by more
// than maxBrkGrowth, or any request before a break was set returns the
// current break unchanged.
func (h *DefaultSyscallHandler) handleBrk() SyscallResult {
	addr := h.ptr(0)
	if h.brk != 0 && addr > h.brk && addr-h.brk <= maxBrkGrowth {
		h.memory.MapRegion(h.brk, addr-h.brk)
		h.brk = addr
	}
	h.ret(h.brk)
	return SyscallResult{}
}

// handleUnknown handles unrecognized syscalls.
func (h *DefaultSyscallHandler) handleUnknown() SyscallResult {
	h.setError(ENOSYS)
	return SyscallResult{}
}

// setError sets a0 to -errno (as two's complement).
func (h *DefaultSyscallHandler) setError(code int) {
	h.regFile.WriteReg(uint8(insts.A0), uint64(-int64(code)))
}

// readString reads a NUL-terminated guest string.
func (h *DefaultSyscallHandler) readString(addr uint64) (string, error) {
	var buf []byte
	for i := uint64(0); i < maxPathLen; i++ {
		b, err := h.memory.Read8(addr + i)
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
	return "", errors.New("guest string too long")
}

// errno maps a host error to a Linux error code.
func errno(err error) int {
	switch {
	case errors.Is(err, errBadFD):
		return EBADF
	case errors.Is(err, fs.ErrNotExist):
		return ENOENT
	case errors.Is(err, fs.ErrInvalid):
		return EINVAL
	}
	return EIO
}
