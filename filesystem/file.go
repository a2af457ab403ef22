package filesystem

import (
	"fmt"
	"io"
	"strings"

	"github.com/brettbedarf/vdir/internal/buffer"
)

// Mode is the set of accesses a file is open for
type Mode uint8

const (
	ModeRead Mode = 1 << iota
	ModeWrite
	ModeAppend

	// ModeReadWrite is the default mode for newly opened files
	ModeReadWrite = ModeRead | ModeWrite
)

// ParseMode converts a mode string made of the letters r, w and a (in any
// order, repeats allowed) into a Mode.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for _, c := range s {
		switch c {
		case 'r':
			m |= ModeRead
		case 'w':
			m |= ModeWrite
		case 'a':
			m |= ModeAppend
		default:
			return 0, fmt.Errorf("mode %q: unknown flag %q: %w", s, c, ErrInvalid)
		}
	}
	return m, nil
}

// MustParseMode is like ParseMode but panics on error. For constant mode strings.
func MustParseMode(s string) Mode {
	m, err := ParseMode(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Mode) String() string {
	var sb strings.Builder
	if m&ModeRead != 0 {
		sb.WriteByte('r')
	}
	if m&ModeWrite != 0 {
		sb.WriteByte('w')
	}
	if m&ModeAppend != 0 {
		sb.WriteByte('a')
	}
	return sb.String()
}

func (m Mode) CanRead() bool {
	return m&ModeRead != 0
}

func (m Mode) CanWrite() bool {
	return m&(ModeWrite|ModeAppend) != 0
}

// File is a leaf node owning its content buffer.
// Reads and writes share one cursor.
type File struct {
	node
	buf  *buffer.Buffer
	mode Mode
}

// NewFile creates a detached, empty file open with mode
func NewFile(name string, mode Mode) *File {
	f := &File{
		node: newNode(name),
		buf:  &buffer.Buffer{},
	}
	f.SetMode(mode)
	return f
}

func (f *File) IsRoot() bool {
	return f.parent == nil
}

func (f *File) Path() string {
	return pathOf(f)
}

func (f *File) detach() {
	f.parent = nil
}

func (f *File) clone() Node {
	return &File{
		node: newNode(f.name),
		buf:  f.buf.Clone(),
		mode: f.mode,
	}
}

// Mode returns the access flags the file is currently open with
func (f *File) Mode() Mode {
	return f.mode
}

// SetMode replaces the access flags. Read or write access rewinds the cursor;
// append-only access moves it to the end. Content is never touched.
func (f *File) SetMode(mode Mode) {
	f.mode = mode
	switch {
	case mode&(ModeRead|ModeWrite) != 0:
		f.buf.Seek(0, io.SeekStart) //nolint:errcheck // never fails for a non-negative offset
	case mode&ModeAppend != 0:
		f.buf.Seek(0, io.SeekEnd) //nolint:errcheck
	}
}

// Read implements io.Reader. Requires read access.
func (f *File) Read(p []byte) (int, error) {
	if !f.mode.CanRead() {
		return 0, newPathError("read", displayPath(f), ErrMode)
	}
	return f.buf.Read(p)
}

// ReadAll returns the content from the cursor to the end. Requires read access.
func (f *File) ReadAll() ([]byte, error) {
	if !f.mode.CanRead() {
		return nil, newPathError("read", displayPath(f), ErrMode)
	}
	return f.buf.ReadAll(), nil
}

// Write implements io.Writer. Requires write or append access.
func (f *File) Write(p []byte) (int, error) {
	if !f.mode.CanWrite() {
		return 0, newPathError("write", displayPath(f), ErrMode)
	}
	return f.buf.Write(p)
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Seek implements io.Seeker
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.buf.Seek(offset, whence)
}

// Bytes returns a copy of the whole content regardless of mode or cursor
func (f *File) Bytes() []byte {
	return f.buf.Bytes()
}

// Size returns the content length in bytes
func (f *File) Size() int64 {
	return int64(f.buf.Len())
}

var (
	_ Node               = (*File)(nil)
	_ io.ReadWriteSeeker = (*File)(nil)
	_ io.StringWriter    = (*File)(nil)
)
