package emu_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("FDTable", func() {
	var (
		out   *bytes.Buffer
		table *emu.FDTable
	)

	BeforeEach(func() {
		out = new(bytes.Buffer)
		table = emu.NewFDTable(nil, out, nil)
	})

	It("should bind the standard streams", func() {
		Expect(table.IsOpen(0)).To(BeTrue())
		Expect(table.IsOpen(1)).To(BeTrue())
		Expect(table.IsOpen(2)).To(BeTrue())
		Expect(table.IsOpen(3)).To(BeFalse())
	})

	It("should read EOF from a nil stdin", func() {
		n, err := table.Read(0, make([]byte, 4))

		Expect(n).To(Equal(0))
		Expect(err).To(MatchError(io.EOF))
	})

	It("should discard writes to a nil stderr", func() {
		n, err := table.Write(2, []byte("x"))

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
	})

	It("should write to stdout", func() {
		_, err := table.Write(1, []byte("hi"))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal("hi"))
	})

	It("should allocate increasing descriptors", func() {
		dir := GinkgoT().TempDir()
		a := filepath.Join(dir, "a")
		b := filepath.Join(dir, "b")
		Expect(os.WriteFile(a, nil, 0o644)).To(Succeed())
		Expect(os.WriteFile(b, nil, 0o644)).To(Succeed())

		Expect(table.Open(a, 0, 0)).To(Equal(int64(3)))
		Expect(table.Open(b, 0, 0)).To(Equal(int64(4)))

		table.CloseAll()
		Expect(table.IsOpen(3)).To(BeFalse())
		Expect(table.IsOpen(1)).To(BeFalse())
	})

	It("should append with the guest append flag", func() {
		path := filepath.Join(GinkgoT().TempDir(), "log")
		Expect(os.WriteFile(path, []byte("ab"), 0o644)).To(Succeed())

		fd, err := table.Open(path, 0x401, 0) // O_WRONLY|O_APPEND
		Expect(err).NotTo(HaveOccurred())
		_, err = table.Write(fd, []byte("cd"))
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Close(fd)).To(Succeed())

		Expect(os.ReadFile(path)).To(Equal([]byte("abcd")))
	})

	It("should fail operations on closed descriptors", func() {
		Expect(table.Close(1)).To(Succeed())

		_, err := table.Write(1, []byte("x"))
		Expect(err).To(HaveOccurred())
		Expect(table.Close(1)).NotTo(Succeed())
		_, err = table.Seek(9, 0, io.SeekStart)
		Expect(err).To(HaveOccurred())
	})
})
