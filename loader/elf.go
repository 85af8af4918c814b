// Package loader provides ELF binary loading for RISC-V executables.
package loader

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Stack tops for RV64 and RV32 user space.
const (
	DefaultStackTop   = 0x7ffffffff000
	DefaultStackTop32 = 0x7ffff000
)

// DefaultStackSize is the size of the zero-filled stack mapped below the
// stack top (64KB).
const DefaultStackSize = 64 * 1024

// initialFrame is the space left above the initial SP. It reads as argc=0
// followed by a NULL argv terminator.
const initialFrame = 16

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// End returns the first address past the segment in memory.
func (s Segment) End() uint64 {
	return s.VirtAddr + s.MemSize
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the virtual address where execution should begin.
	EntryPoint uint64
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
	// XLEN is the register width implied by the ELF class.
	XLEN insts.XLEN
	// StackTop is the first address above the stack.
	StackTop uint64
	// InitialSP is the initial stack pointer value.
	InitialSP uint64
}

// Load parses a RISC-V ELF binary and returns a Program struct ready for
// loading into the emulator's memory. Both ELFCLASS32 (RV32) and
// ELFCLASS64 (RV64) little-endian executables are accepted.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return fromFile(f)
}

// Parse reads a RISC-V ELF binary from r.
func Parse(r io.ReaderAt) (*Program, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return fromFile(f)
}

func fromFile(f *elf.File) (*Program, error) {
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file (%v)", f.Data)
	}

	prog := &Program{EntryPoint: f.Entry}

	switch f.Class {
	case elf.ELFCLASS64:
		prog.XLEN = insts.XLEN64
		prog.StackTop = DefaultStackTop
	case elf.ELFCLASS32:
		prog.XLEN = insts.XLEN32
		prog.StackTop = DefaultStackTop32
	default:
		return nil, fmt.Errorf("unsupported ELF class %v", f.Class)
	}
	prog.InitialSP = prog.StackTop - initialFrame

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		seg, err := readSegment(phdr)
		if err != nil {
			return nil, err
		}
		prog.Segments = append(prog.Segments, seg)
	}

	return prog, nil
}

func readSegment(phdr *elf.Prog) (Segment, error) {
	if phdr.Filesz > phdr.Memsz {
		return Segment{}, fmt.Errorf("segment at 0x%x has file size %d above memory size %d",
			phdr.Vaddr, phdr.Filesz, phdr.Memsz)
	}

	data := make([]byte, phdr.Filesz)
	if phdr.Filesz > 0 {
		n, err := phdr.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return Segment{}, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
		}
		if uint64(n) != phdr.Filesz {
			return Segment{}, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				phdr.Vaddr, n, phdr.Filesz)
		}
	}

	var flags SegmentFlags
	if phdr.Flags&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if phdr.Flags&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if phdr.Flags&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}

	return Segment{
		VirtAddr: phdr.Vaddr,
		Data:     data,
		MemSize:  phdr.Memsz,
		Flags:    flags,
	}, nil
}

// Break returns the initial program break: the end of the highest segment
// rounded up to a page boundary.
func (p *Program) Break() uint64 {
	var end uint64
	for _, seg := range p.Segments {
		end = max(end, seg.End())
	}
	return (end + emu.PageSize - 1) &^ (emu.PageSize - 1)
}

// LoadInto maps every segment into img, zero-filling the BSS part, and maps
// a DefaultStackSize stack below StackTop.
func (p *Program) LoadInto(img emu.ImageLoader) {
	for _, seg := range p.Segments {
		for i := uint64(0); i < seg.MemSize; i++ {
			var b byte
			if i < uint64(len(seg.Data)) {
				b = seg.Data[i]
			}
			img.Map(seg.VirtAddr+i, b)
		}
	}

	for addr := p.StackTop - DefaultStackSize; addr < p.StackTop; addr++ {
		img.Map(addr, 0)
	}
}
