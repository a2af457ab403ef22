package archive

import (
	"path"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"

	"github.com/brettbedarf/vdir/filesystem"
	"github.com/brettbedarf/vdir/internal/util"
)

type options struct {
	method          Method
	level           int
	exclude         map[string]struct{}
	storeCompressed bool
}

// Option configures an export
type Option func(*options)

// WithMethod sets the method used for every entry not stored uncompressed
// (default [Deflate])
func WithMethod(m Method) Option {
	return func(o *options) {
		o.method = m
	}
}

// WithExclude stores files with any of the given names (basenames, not paths)
// uncompressed
func WithExclude(names ...string) Option {
	return func(o *options) {
		for k, v := range lo.Associate(names, func(n string) (string, struct{}) { return n, struct{}{} }) {
			o.exclude[k] = v
		}
	}
}

// WithLevel sets the deflate level used by [Export]
func WithLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithStoreCompressed stores content whose detected type is already compressed
// (archives, most image, audio and video formats) uncompressed
func WithStoreCompressed(enabled bool) Option {
	return func(o *options) {
		o.storeCompressed = enabled
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		method:  Deflate,
		level:   DefaultCompression,
		exclude: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) methodFor(name string, data []byte) Method {
	if _, ok := o.exclude[name]; ok {
		return Store
	}
	if o.storeCompressed && isCompressed(data) {
		return Store
	}
	return o.method
}

// Export archives every file below d's current directory and returns the
// archive as a read-only file named [DefaultName], positioned at its start.
// Entry names are paths relative to the current directory.
func Export(d *filesystem.Dir, opts ...Option) (*filesystem.File, error) {
	o := newOptions(opts)

	out := filesystem.NewFile(DefaultName, filesystem.ModeWrite)
	zw := NewZipWriter(out, o.level)
	if err := writeEntries(d, zw, o); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	out.SetMode(filesystem.ModeRead)
	logger := util.GetLogger("Export")
	logger.Debug().
		Str("size", humanize.Bytes(uint64(out.Size()))).
		Str("method", o.method.String()).
		Msg("Exported archive")
	return out, nil
}

// WriteTo feeds every file below d's current directory to ew without closing
// it. The level option is ignored; it belongs to the writer.
func WriteTo(d *filesystem.Dir, ew EntryWriter, opts ...Option) error {
	return writeEntries(d, ew, newOptions(opts))
}

func writeEntries(d *filesystem.Dir, ew EntryWriter, o *options) error {
	logger := util.GetLogger("Export")

	for l := range d.Walk() {
		for i, name := range l.FileNames {
			data := l.Files[i].Bytes()
			method := o.methodFor(name, data)
			entry := path.Join(l.Base, name)
			if err := ew.WriteEntry(entry, data, method); err != nil {
				return err
			}
			logger.Trace().
				Str("entry", entry).
				Str("method", method.String()).
				Str("size", humanize.Bytes(uint64(len(data)))).
				Msg("Archived file")
		}
	}
	return nil
}

// compressedTypes are content types deflate cannot meaningfully shrink
var compressedTypes = []string{
	"application/zip",
	"application/gzip",
	"application/x-bzip2",
	"application/x-xz",
	"application/zstd",
	"application/x-7z-compressed",
	"application/x-rar-compressed",
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"audio/mpeg",
	"video/mp4",
}

// isCompressed reports whether data sniffs as one of compressedTypes or a
// subtype of one (jar and docx are zips, for example)
func isCompressed(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if lo.ContainsBy(compressedTypes, m.Is) {
			return true
		}
	}
	return false
}
