package filesystem

import (
	"errors"
	"io/fs"
)

// Errors returned by tree operations are *fs.PathError values wrapping one of
// these, so callers can match them with [errors.Is].
var (
	ErrNotDir   = errors.New("not a directory")               // a component that must be a directory is a file
	ErrNotExist = fs.ErrNotExist                              // a required component is missing and creation was disabled
	ErrIsDir    = errors.New("is a directory")                // a file was required but the path names a directory
	ErrMode     = errors.New("file not open for this access") // read/write attempted outside the file's mode
	ErrInvalid  = fs.ErrInvalid                               // invalid argument, e.g. removing the root
)

func newPathError(op, path string, err error) error {
	return &fs.PathError{Op: op, Path: path, Err: err}
}
