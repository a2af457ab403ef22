// Package archive exports a directory tree as a zip archive
package archive

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// DefaultName is the name of the file returned by [Export]
const DefaultName = "vdir.zip"

// Method is the compression method of one archive entry
type Method uint16

const (
	Store   = Method(zip.Store)
	Deflate = Method(zip.Deflate)
)

// ParseMethod accepts "deflate" or "store", case-insensitively
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "deflate":
		return Deflate, nil
	case "store":
		return Store, nil
	default:
		return 0, fmt.Errorf("unknown compression method %q", s)
	}
}

func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method(%d)", uint16(m))
	}
}

// EntryWriter receives archive entries one at a time. Close finishes the
// archive; no entries may be written afterwards.
type EntryWriter interface {
	WriteEntry(name string, data []byte, method Method) error
	Close() error
}

// Levels accepted by [WithLevel] and [NewZipWriter]
const (
	DefaultCompression = flate.DefaultCompression
	BestSpeed          = flate.BestSpeed
	BestCompression    = flate.BestCompression
)
