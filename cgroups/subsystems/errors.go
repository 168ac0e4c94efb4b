package subsystems

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrParse is the cause of every malformed kernel record or policy token.
	ErrParse = errors.New("parse error")

	// ErrKindMismatch is returned when a Subsystem is asked for a controller of another kind.
	ErrKindMismatch = errors.New("subsystem kind mismatch")
)

// ReadFailedError reports an I/O failure opening or reading a cgroup file.
type ReadFailedError struct {
	Path string
	Err  error
}

func (e *ReadFailedError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadFailedError) Unwrap() error { return e.Err }

// WriteFailedError reports an I/O failure writing Payload to a cgroup file.
type WriteFailedError struct {
	Path    string
	Payload string
	Err     error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("write %q to %s: %v", e.Payload, e.Path, e.Err)
}

func (e *WriteFailedError) Unwrap() error { return e.Err }

func parseErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrParse, format, args...)
}
