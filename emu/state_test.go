package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

var _ = Describe("RegFile", func() {
	It("should hard-wire zero", func() {
		var r emu.RegFile

		r.Set(insts.Zero, 42)
		r.WriteReg(0, 7)

		Expect(r.Get(insts.Zero)).To(Equal(int64(0)))
		Expect(r.ReadReg(0)).To(Equal(uint64(0)))
	})

	It("should read back written registers", func() {
		var r emu.RegFile

		r.Set(insts.A0, -5)
		r.WriteReg(uint8(insts.T6), 0xffff)

		Expect(r.Get(insts.A0)).To(Equal(int64(-5)))
		Expect(r.ReadReg(uint8(insts.A0))).To(Equal(uint64(0xfffffffffffffffb)))
		Expect(r.Get(insts.T6)).To(Equal(int64(0xffff)))
	})
})

var _ = Describe("ArchState", func() {
	It("should start zeroed with an empty memory", func() {
		s := emu.NewArchState(insts.XLEN64, nil)

		Expect(s.PC).To(Equal(int64(0)))
		Expect(s.Memory).NotTo(BeNil())
		for r := insts.Zero; r <= insts.T6; r++ {
			Expect(s.Get(r)).To(Equal(int64(0)))
		}
	})

	It("should sign-extend register writes from bit 31 on RV32", func() {
		s := emu.NewArchState(insts.XLEN32, nil)

		s.Set(insts.A0, 0x80000000)
		s.Set(insts.A1, 0x1_0000_0005)

		Expect(s.Get(insts.A0)).To(Equal(int64(-0x80000000)))
		Expect(s.Get(insts.A1)).To(Equal(int64(5)))
	})

	It("should keep full values on RV64", func() {
		s := emu.NewArchState(insts.XLEN64, nil)

		s.Set(insts.A0, 0x1_0000_0005)

		Expect(s.Get(insts.A0)).To(Equal(int64(0x1_0000_0005)))
	})

	It("should wrap addresses at 32 bits on RV32", func() {
		s32 := emu.NewArchState(insts.XLEN32, nil)
		s64 := emu.NewArchState(insts.XLEN64, nil)

		Expect(s32.Address(-4, 0)).To(Equal(uint64(0xfffffffc)))
		Expect(s64.Address(-4, 0)).To(Equal(uint64(0xfffffffffffffffc)))
		Expect(s64.Address(0x1000, -8)).To(Equal(uint64(0xff8)))
	})

	Describe("Fetch", func() {
		var s *emu.ArchState

		BeforeEach(func() {
			s = emu.NewArchState(insts.XLEN64, nil)
		})

		It("should fetch a compressed halfword", func() {
			s.Memory.LoadProgram(0, []byte{0x01, 0x45})

			raw, err := s.Fetch()

			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(Equal(insts.NewRaw16(0x4501)))
		})

		It("should fetch a standard word from two halfwords", func() {
			s.Memory.LoadProgram(0x100, program(addi(10, 3, 1896)))
			s.PC = 0x100

			raw, err := s.Fetch()

			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(Equal(insts.NewRaw32(addi(10, 3, 1896))))
		})

		It("should not need the upper halfword of a compressed instruction", func() {
			s.Memory.LoadProgram(0x200, []byte{0x41, 0x11})
			s.PC = 0x200

			_, err := s.Fetch()

			Expect(err).NotTo(HaveOccurred())
		})

		It("should fail when the upper halfword is unmapped", func() {
			s.Memory.LoadProgram(0x300, []byte{0x13, 0x05})
			s.PC = 0x300

			_, err := s.Fetch()

			Expect(errors.Is(err, emu.ErrUnmappedMemory)).To(BeTrue())
		})

		It("should refuse instructions longer than 32 bits", func() {
			s.Memory.LoadProgram(0, []byte{0x1f, 0x00, 0x00, 0x00, 0x00, 0x00})

			_, err := s.Fetch()

			Expect(errors.Is(err, insts.ErrUnsupportedLength)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(s.XLEN.String()))
		})

		It("should leave the state untouched", func() {
			s.Memory.LoadProgram(0, []byte{0x01, 0x45})

			_, _ = s.Fetch()

			Expect(s.PC).To(Equal(int64(0)))
		})
	})
})
