package config

import "github.com/brettbedarf/vdir/internal/util"

// Verbosity levels as given on the command line (-v). Higher is chattier.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultMode is the access mode of files created from a manifest
	DefaultMode = "rw"

	// DefaultCompression is the archive method for entries not excluded
	DefaultCompression = "deflate"

	// DefaultCompressionLevel is flate's default level
	DefaultCompressionLevel = -1

	DefaultStoreCompressedContent = false

	// DefaultAttrTimeout is the attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0

	// DefaultDirectIO bypasses the kernel page cache for file reads
	DefaultDirectIO = false
)

// verbosityToLogLvl clamps v to [ErrorVerbose, TraceVerbose] and converts it
// to a util.LogLevel
func verbosityToLogLvl(v int) util.LogLevel {
	v = max(ErrorVerbose, min(v, TraceVerbose))
	return util.ErrorLevel - (v - ErrorVerbose)
}
