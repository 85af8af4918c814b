package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Page geometry of the sparse memory.
const (
	PageSize  = 4096
	pageShift = 12
	pageMask  = PageSize - 1
)

// ErrUnmappedMemory is returned for an access that touches a byte no
// loader has mapped.
var ErrUnmappedMemory = errors.New("unmapped memory")

// MemoryError describes a failed access. It wraps ErrUnmappedMemory.
type MemoryError struct {
	Addr  uint64 // first byte of the access
	Fault uint64 // first unmapped byte
	Width int
	Write bool
}

func (e *MemoryError) Error() string {
	kind := "read"
	if e.Write {
		kind = "write"
	}
	return fmt.Sprintf("%v: %d-byte %s at %#x faults at %#x",
		ErrUnmappedMemory, e.Width, kind, e.Addr, e.Fault)
}

// Unwrap returns ErrUnmappedMemory.
func (e *MemoryError) Unwrap() error {
	return ErrUnmappedMemory
}

type page struct {
	data   [PageSize]byte
	mapped [PageSize / 64]uint64
}

func (p *page) isMapped(off uint64) bool {
	return p.mapped[off/64]&(1<<(off%64)) != 0
}

func (p *page) setMapped(off uint64) {
	p.mapped[off/64] |= 1 << (off % 64)
}

// Memory is a sparse, byte-addressable, little-endian memory. Only bytes
// placed by Map, MapRegion or LoadProgram exist; reading or writing any
// other byte fails with a *MemoryError.
type Memory struct {
	pages map[uint64]*page
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint64]*page)}
}

func (m *Memory) lookup(addr uint64) *page {
	return m.pages[addr>>pageShift]
}

func (m *Memory) ensure(addr uint64) *page {
	key := addr >> pageShift
	p, ok := m.pages[key]
	if !ok {
		p = &page{}
		m.pages[key] = p
	}
	return p
}

// Map places byte b at addr. It satisfies ImageLoader.
func (m *Memory) Map(addr uint64, b byte) {
	p := m.ensure(addr)
	off := addr & pageMask
	p.data[off] = b
	p.setMapped(off)
}

// MapRegion maps size zero bytes starting at addr. Bytes that are already
// mapped keep their value.
func (m *Memory) MapRegion(addr, size uint64) {
	for size > 0 {
		p := m.ensure(addr)
		off := addr & pageMask
		n := min(size, PageSize-off)
		for i := off; i < off+n; i++ {
			p.setMapped(i)
		}
		addr += n
		size -= n
	}
}

// LoadProgram maps data starting at addr.
func (m *Memory) LoadProgram(addr uint64, data []byte) {
	for i, b := range data {
		m.Map(addr+uint64(i), b)
	}
}

// IsMapped reports whether the byte at addr exists.
func (m *Memory) IsMapped(addr uint64) bool {
	p := m.lookup(addr)
	return p != nil && p.isMapped(addr&pageMask)
}

// PageCount returns the number of 4 KiB pages holding at least one mapped
// byte.
func (m *Memory) PageCount() int {
	return len(m.pages)
}

func (m *Memory) check(addr uint64, width int, write bool) error {
	for i := 0; i < width; i++ {
		a := addr + uint64(i)
		if !m.IsMapped(a) {
			return &MemoryError{Addr: addr, Fault: a, Width: width, Write: write}
		}
	}
	return nil
}

// Read returns width bytes starting at addr. Every byte must be mapped.
func (m *Memory) Read(addr uint64, width int) ([]byte, error) {
	if err := m.check(addr, width, false); err != nil {
		return nil, err
	}

	buf := make([]byte, width)
	for i := range buf {
		a := addr + uint64(i)
		buf[i] = m.lookup(a).data[a&pageMask]
	}
	return buf, nil
}

// Write stores the first width bytes of data at addr. Nothing is written
// unless every destination byte is mapped.
func (m *Memory) Write(addr uint64, width int, data []byte) error {
	if len(data) < width {
		return fmt.Errorf("write of %d bytes with only %d supplied", width, len(data))
	}
	if err := m.check(addr, width, true); err != nil {
		return err
	}

	for i := 0; i < width; i++ {
		a := addr + uint64(i)
		m.lookup(a).data[a&pageMask] = data[i]
	}
	return nil
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint64) (uint8, error) {
	b, err := m.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint64) (uint16, error) {
	b, err := m.Read(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint64) (uint32, error) {
	b, err := m.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Read64 reads a little-endian doubleword.
func (m *Memory) Read64(addr uint64) (uint64, error) {
	b, err := m.Read(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint64, v uint8) error {
	return m.Write(addr, 1, []byte{v})
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint64, v uint16) error {
	return m.Write(addr, 2, binary.LittleEndian.AppendUint16(nil, v))
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint64, v uint32) error {
	return m.Write(addr, 4, binary.LittleEndian.AppendUint32(nil, v))
}

// Write64 writes a little-endian doubleword.
func (m *Memory) Write64(addr uint64, v uint64) error {
	return m.Write(addr, 8, binary.LittleEndian.AppendUint64(nil, v))
}

// ImageLoader is the narrow interface a program loader needs: place one
// byte at one address.
type ImageLoader interface {
	Map(addr uint64, b byte)
}
