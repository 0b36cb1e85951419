package filesystem

import (
	"errors"
	"fmt"
)

// Error kinds returned by filesystem operations. Callers classify with
// [errors.Is]; the concrete error always carries the offending path.
var (
	ErrNotFound      = errors.New("no such file or directory")
	ErrNotADirectory = errors.New("not a directory")
	ErrIsADirectory  = errors.New("is a directory")
	ErrExists        = errors.New("file exists")
	ErrInvalidName   = errors.New("invalid name")
	ErrDirNotEmpty   = errors.New("directory not empty")
)

// OpError records a failed operation, the path it was applied to and the
// error kind. Every public FileSystem method fails with an *OpError wrapping
// one of the Err* sentinels, and guarantees the tree was not mutated.
type OpError struct {
	Op   string // operation verb, e.g. "mkdir"
	Path string // path or name as given by the caller
	Err  error  // one of the Err* sentinels
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op, path string, err error) *OpError {
	return &OpError{Op: op, Path: path, Err: err}
}
