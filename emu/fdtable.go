package emu

import (
	"errors"
	"io"
	"os"
)

// errBadFD is returned for a descriptor that is not open.
var errBadFD = errors.New("bad file descriptor")

// Linux open(2) flag bits as seen by a RISC-V guest.
const (
	guestWriteOnly = 0x1
	guestReadWrite = 0x2
	guestCreate    = 0x40
	guestTruncate  = 0x200
	guestAppend    = 0x400
)

// fileEntry is one open guest descriptor. The standard streams have only
// a reader or a writer; opened host files have file set.
type fileEntry struct {
	path string
	r    io.Reader
	w    io.Writer
	file *os.File
}

// FDTable maps guest file descriptors to host streams and files.
type FDTable struct {
	fds    map[int64]*fileEntry
	nextFD int64
}

// NewFDTable creates a table with descriptors 0, 1 and 2 bound to the
// given streams. A nil stream makes the descriptor read EOF or discard
// writes.
func NewFDTable(stdin io.Reader, stdout, stderr io.Writer) *FDTable {
	if stdin == nil {
		stdin = eofReader{}
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	return &FDTable{
		fds: map[int64]*fileEntry{
			0: {path: "stdin", r: stdin},
			1: {path: "stdout", w: stdout},
			2: {path: "stderr", w: stderr},
		},
		nextFD: 3,
	}
}

// hostFlags converts guest open flags to os.OpenFile flags.
func hostFlags(guest int64) int {
	flags := os.O_RDONLY
	switch {
	case guest&guestReadWrite != 0:
		flags = os.O_RDWR
	case guest&guestWriteOnly != 0:
		flags = os.O_WRONLY
	}
	if guest&guestCreate != 0 {
		flags |= os.O_CREATE
	}
	if guest&guestTruncate != 0 {
		flags |= os.O_TRUNC
	}
	if guest&guestAppend != 0 {
		flags |= os.O_APPEND
	}
	return flags
}

// Open opens a host file with guest open flags and returns the new
// descriptor.
func (t *FDTable) Open(path string, guestFlags int64, mode os.FileMode) (int64, error) {
	f, err := os.OpenFile(path, hostFlags(guestFlags), mode)
	if err != nil {
		return 0, err
	}

	fd := t.nextFD
	t.nextFD++
	t.fds[fd] = &fileEntry{path: path, r: f, w: f, file: f}

	return fd, nil
}

// Close releases a descriptor. Closing a standard stream only unbinds it.
func (t *FDTable) Close(fd int64) error {
	entry, ok := t.fds[fd]
	if !ok {
		return errBadFD
	}
	delete(t.fds, fd)

	if entry.file != nil {
		return entry.file.Close()
	}
	return nil
}

// CloseAll closes every host file still open.
func (t *FDTable) CloseAll() {
	for fd, entry := range t.fds {
		if entry.file != nil {
			_ = entry.file.Close()
		}
		delete(t.fds, fd)
	}
}

// IsOpen reports whether fd is bound.
func (t *FDTable) IsOpen(fd int64) bool {
	_, ok := t.fds[fd]
	return ok
}

// Read reads from a descriptor.
func (t *FDTable) Read(fd int64, buf []byte) (int, error) {
	entry, ok := t.fds[fd]
	if !ok || entry.r == nil {
		return 0, errBadFD
	}
	return entry.r.Read(buf)
}

// Write writes to a descriptor.
func (t *FDTable) Write(fd int64, buf []byte) (int, error) {
	entry, ok := t.fds[fd]
	if !ok || entry.w == nil {
		return 0, errBadFD
	}
	return entry.w.Write(buf)
}

// Seek repositions an opened host file. Standard streams cannot seek.
func (t *FDTable) Seek(fd int64, offset int64, whence int) (int64, error) {
	entry, ok := t.fds[fd]
	if !ok || entry.file == nil {
		return 0, errBadFD
	}
	return entry.file.Seek(offset, whence)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
