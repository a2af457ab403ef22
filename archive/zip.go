package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// ZipWriter is the zip [EntryWriter]
type ZipWriter struct {
	zw *zip.Writer
}

// NewZipWriter writes a zip archive to w. Deflated entries use the given flate
// level.
func NewZipWriter(w io.Writer, level int) *ZipWriter {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		fw, err := flate.NewWriter(out, level)
		if err != nil {
			return nil, err
		}
		return fw, nil
	})
	return &ZipWriter{zw: zw}
}

func (z *ZipWriter) WriteEntry(name string, data []byte, method Method) error {
	w, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: uint16(method),
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func (z *ZipWriter) Close() error {
	return z.zw.Close()
}

// Entry is one decoded archive member
type Entry struct {
	Name   string
	Method Method
	Data   []byte
}

// Entries decodes a zip archive, in archive order
func Entries(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Method: Method(f.Method), Data: content})
	}
	return entries, nil
}

var _ EntryWriter = (*ZipWriter)(nil)
