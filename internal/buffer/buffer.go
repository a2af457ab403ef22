// Package buffer provides the growable in-memory byte sequence backing file
// content: a single cursor shared by reads and writes, like an open file.
package buffer

import (
	"errors"
	"io"
)

var errNegativeOffset = errors.New("buffer: negative position")

// Buffer is a growable byte slice with one read/write cursor.
// The zero value is an empty buffer ready to use. Not safe for concurrent use.
type Buffer struct {
	data []byte
	off  int64
}

// New returns a buffer holding a copy of data with the cursor at 0
func New(data []byte) *Buffer {
	return &Buffer{data: append([]byte(nil), data...)}
}

// Len returns the total content length regardless of the cursor
func (b *Buffer) Len() int {
	return len(b.data)
}

// Offset returns the cursor position
func (b *Buffer) Offset() int64 {
	return b.off
}

// Read reads from the cursor and advances it. Returns io.EOF at or past the end.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.off >= int64(len(b.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.data[b.off:])
	b.off += int64(n)
	return n, nil
}

// ReadAll returns everything from the cursor to the end and moves the cursor to the end
func (b *Buffer) ReadAll() []byte {
	if b.off >= int64(len(b.data)) {
		return []byte{}
	}
	out := append([]byte(nil), b.data[b.off:]...)
	b.off = int64(len(b.data))
	return out
}

// Write overwrites from the cursor, growing the buffer as needed. A cursor past
// the end zero-fills the gap first.
func (b *Buffer) Write(p []byte) (int, error) {
	end := b.off + int64(len(p))
	if oldLen := int64(len(b.data)); end > oldLen {
		if end > int64(cap(b.data)) {
			grown := make([]byte, oldLen, growCap(cap(b.data), end))
			copy(grown, b.data)
			b.data = grown
		}
		b.data = b.data[:end]
		if b.off > oldLen {
			// spare capacity may hold bytes from before a Truncate
			clear(b.data[oldLen:b.off])
		}
	}
	copy(b.data[b.off:], p)
	b.off = end
	return len(p), nil
}

// Seek implements io.Seeker. Seeking past the end is allowed; a later Write fills the gap.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return b.off, errors.New("buffer: invalid whence")
	}
	if abs < 0 {
		return b.off, errNegativeOffset
	}
	b.off = abs
	return abs, nil
}

// Bytes returns a copy of the whole content; the cursor is untouched
func (b *Buffer) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

// Clone returns an independent buffer with the same content and cursor
func (b *Buffer) Clone() *Buffer {
	return &Buffer{data: append([]byte(nil), b.data...), off: b.off}
}

// Truncate drops all content and rewinds the cursor
func (b *Buffer) Truncate() {
	b.data = b.data[:0]
	b.off = 0
}

func growCap(current int, need int64) int {
	next := max(current*2, 64)
	if int64(next) < need {
		return int(need)
	}
	return next
}

var (
	_ io.ReadWriteSeeker = (*Buffer)(nil)
)
