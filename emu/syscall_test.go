package emu_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// errnoResult is the a0 value of a failed syscall.
func errnoResult(code int64) uint64 {
	return uint64(-code)
}

var _ = Describe("Syscall Handler", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		handler *emu.DefaultSyscallHandler
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		stdout = new(bytes.Buffer)
		stderr = new(bytes.Buffer)
		handler = emu.NewDefaultSyscallHandler(regFile, memory, stdout, stderr)
	})

	call := func(num uint64, args ...uint64) emu.SyscallResult {
		regFile.WriteReg(uint8(insts.A7), num)
		for i, a := range args {
			regFile.WriteReg(uint8(insts.A0)+uint8(i), a)
		}
		return handler.Handle()
	}

	a0 := func() uint64 {
		return regFile.ReadReg(uint8(insts.A0))
	}

	putString := func(addr uint64, s string) {
		memory.LoadProgram(addr, append([]byte(s), 0))
	}

	Describe("Unknown syscall", func() {
		It("should return ENOSYS", func() {
			result := call(999)

			Expect(result.Exited).To(BeFalse())
			Expect(a0()).To(Equal(errnoResult(emu.ENOSYS)))
		})
	})

	Describe("Exit", func() {
		It("should exit with the status in a0", func() {
			result := call(emu.SyscallExit, 42)

			Expect(result.Exited).To(BeTrue())
			Expect(result.ExitCode).To(Equal(int64(42)))
		})

		It("should treat exit_group like exit", func() {
			result := call(emu.SyscallExitGroup, 3)

			Expect(result.Exited).To(BeTrue())
			Expect(result.ExitCode).To(Equal(int64(3)))
		})
	})

	Describe("Write", func() {
		It("should write to stdout", func() {
			memory.LoadProgram(0x1000, []byte("hello"))

			result := call(emu.SyscallWrite, 1, 0x1000, 5)

			Expect(result.Exited).To(BeFalse())
			Expect(stdout.String()).To(Equal("hello"))
			Expect(a0()).To(Equal(uint64(5)))
		})

		It("should write to stderr", func() {
			memory.LoadProgram(0x1000, []byte("oops\n"))

			call(emu.SyscallWrite, 2, 0x1000, 5)

			Expect(stderr.String()).To(Equal("oops\n"))
			Expect(stdout.Len()).To(Equal(0))
		})

		It("should return EBADF for an unknown descriptor", func() {
			call(emu.SyscallWrite, 42, 0, 5)

			Expect(a0()).To(Equal(errnoResult(emu.EBADF)))
		})

		It("should return EFAULT for an unmapped buffer", func() {
			call(emu.SyscallWrite, 1, 0x9000, 5)

			Expect(a0()).To(Equal(errnoResult(emu.EFAULT)))
			Expect(stdout.Len()).To(Equal(0))
		})
	})

	Describe("Read", func() {
		BeforeEach(func() {
			memory.MapRegion(0x2000, 16)
		})

		It("should read from stdin", func() {
			handler.SetStdin(strings.NewReader("abc"))

			call(emu.SyscallRead, 0, 0x2000, 16)

			Expect(a0()).To(Equal(uint64(3)))
			Expect(memory.Read(0x2000, 3)).To(Equal([]byte("abc")))
		})

		It("should return 0 at end of input", func() {
			call(emu.SyscallRead, 0, 0x2000, 16)

			Expect(a0()).To(Equal(uint64(0)))
		})

		It("should return EFAULT for an unmapped buffer", func() {
			handler.SetStdin(strings.NewReader("abc"))

			call(emu.SyscallRead, 0, 0x2000, 32)

			Expect(a0()).To(Equal(errnoResult(emu.EFAULT)))
		})

		It("should return EBADF when reading stdout", func() {
			call(emu.SyscallRead, 1, 0x2000, 4)

			Expect(a0()).To(Equal(errnoResult(emu.EBADF)))
		})
	})

	Describe("Files", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should open, read, seek and close a host file", func() {
			path := filepath.Join(dir, "input.txt")
			Expect(os.WriteFile(path, []byte("riscv"), 0o644)).To(Succeed())
			putString(0x3000, path)
			memory.MapRegion(0x4000, 8)

			var cwd int64 = -100
			call(emu.SyscallOpenat, uint64(cwd), 0x3000, 0, 0)
			fd := a0()
			Expect(fd).To(Equal(uint64(3)))

			call(emu.SyscallRead, fd, 0x4000, 8)
			Expect(a0()).To(Equal(uint64(5)))
			Expect(memory.Read(0x4000, 5)).To(Equal([]byte("riscv")))

			call(emu.SyscallLseek, fd, 2, 0)
			Expect(a0()).To(Equal(uint64(2)))

			call(emu.SyscallRead, fd, 0x4000, 8)
			Expect(a0()).To(Equal(uint64(3)))

			call(emu.SyscallClose, fd)
			Expect(a0()).To(Equal(uint64(0)))

			call(emu.SyscallClose, fd)
			Expect(a0()).To(Equal(errnoResult(emu.EBADF)))
		})

		It("should create and write a host file", func() {
			path := filepath.Join(dir, "out.txt")
			putString(0x3000, path)
			memory.LoadProgram(0x4000, []byte("data"))

			var cwd int64 = -100
			call(emu.SyscallOpenat, uint64(cwd), 0x3000, 0x241, 0o644) // O_WRONLY|O_CREAT|O_TRUNC
			fd := a0()
			call(emu.SyscallWrite, fd, 0x4000, 4)
			Expect(a0()).To(Equal(uint64(4)))
			call(emu.SyscallClose, fd)

			Expect(os.ReadFile(path)).To(Equal([]byte("data")))
		})

		It("should return ENOENT for a missing file", func() {
			putString(0x3000, filepath.Join(dir, "missing"))

			var cwd int64 = -100
			call(emu.SyscallOpenat, uint64(cwd), 0x3000, 0, 0)

			Expect(a0()).To(Equal(errnoResult(emu.ENOENT)))
		})

		It("should only accept AT_FDCWD", func() {
			putString(0x3000, "x")

			call(emu.SyscallOpenat, 5, 0x3000, 0, 0)

			Expect(a0()).To(Equal(errnoResult(emu.EBADF)))
		})

		It("should return EFAULT for an unmapped path", func() {
			var cwd int64 = -100
			call(emu.SyscallOpenat, uint64(cwd), 0x9000, 0, 0)

			Expect(a0()).To(Equal(errnoResult(emu.EFAULT)))
		})

		It("should reject an invalid whence", func() {
			call(emu.SyscallLseek, 0, 0, 7)

			Expect(a0()).To(Equal(errnoResult(emu.EINVAL)))
		})

		It("should not seek standard streams", func() {
			call(emu.SyscallLseek, 1, 0, 0)

			Expect(a0()).To(Equal(errnoResult(emu.EBADF)))
		})
	})

	Describe("Brk", func() {
		It("should return 0 before a break is set", func() {
			call(emu.SyscallBrk, 0x20000)

			Expect(a0()).To(Equal(uint64(0)))
			Expect(memory.IsMapped(0x1ffff)).To(BeFalse())
		})

		It("should query and grow the break", func() {
			handler.SetBreak(0x10000)

			call(emu.SyscallBrk, 0)
			Expect(a0()).To(Equal(uint64(0x10000)))

			call(emu.SyscallBrk, 0x11000)
			Expect(a0()).To(Equal(uint64(0x11000)))
			Expect(memory.IsMapped(0x10000)).To(BeTrue())
			Expect(memory.IsMapped(0x10fff)).To(BeTrue())
			Expect(memory.IsMapped(0x11000)).To(BeFalse())
		})

		It("should not shrink the break", func() {
			handler.SetBreak(0x10000)

			call(emu.SyscallBrk, 0x8000)

			Expect(a0()).To(Equal(uint64(0x10000)))
		})

		It("should refuse oversized growth", func() {
			handler.SetBreak(0x10000)

			call(emu.SyscallBrk, 0x10000+(1<<30))

			Expect(a0()).To(Equal(uint64(0x10000)))
		})
	})

	Describe("RV32 pointers", func() {
		// signExtended is how an RV32 register holds an address at or above
		// 0x80000000.
		signExtended := func(addr uint32) uint64 {
			return uint64(int64(int32(addr)))
		}

		BeforeEach(func() {
			handler.SetXLEN(insts.XLEN32)
		})

		It("should write from a buffer above 0x80000000", func() {
			memory.LoadProgram(0x80000100, []byte("hi"))

			call(emu.SyscallWrite, 1, signExtended(0x80000100), 2)

			Expect(stdout.String()).To(Equal("hi"))
			Expect(a0()).To(Equal(uint64(2)))
		})

		It("should read into a buffer above 0x80000000", func() {
			memory.MapRegion(0x80002000, 4)
			handler.SetStdin(strings.NewReader("ok"))

			call(emu.SyscallRead, 0, signExtended(0x80002000), 4)

			Expect(a0()).To(Equal(uint64(2)))
			b, err := memory.Read(0x80002000, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal("ok"))
		})

		It("should open a path above 0x80000000", func() {
			path := filepath.Join(GinkgoT().TempDir(), "data.txt")
			Expect(os.WriteFile(path, []byte("x"), 0o600)).To(Succeed())
			putString(0x80003000, path)

			var cwd int64 = -100
			call(emu.SyscallOpenat, uint64(cwd), signExtended(0x80003000), 0, 0)

			fd := a0()
			Expect(int64(fd)).To(BeNumerically(">=", 3))
			call(emu.SyscallClose, fd)
			Expect(a0()).To(Equal(uint64(0)))
		})

		It("should grow the break above 0x80000000", func() {
			handler.SetBreak(0x80010000)

			call(emu.SyscallBrk, signExtended(0x80011000))

			Expect(a0()).To(Equal(signExtended(0x80011000)))
			Expect(memory.IsMapped(0x80010000)).To(BeTrue())
			Expect(memory.IsMapped(0x80010fff)).To(BeTrue())
		})
	})
})
