package runner

import (
	"fmt"

	"github.com/pkg/errors"
)

// Exit statuses for the validation CLI.
const (
	ExitOK          = 0
	ExitInvalid     = 1
	ExitOperational = 2
)

// OperationalError means the tool could not do its job: the schema or a data
// file was missing, unreadable or not valid JSON. It is never produced for
// data that merely fails validation.
type OperationalError struct {
	Op   string
	Path string
	Err  error
}

func (e *OperationalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OperationalError) Unwrap() error {
	return e.Err
}

// StackTrace exposes the stack captured by the wrapped error, if any.
func (e *OperationalError) StackTrace() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	var st stackTracer
	if errors.As(e.Err, &st) {
		return st.StackTrace()
	}
	return nil
}

func operational(op, path string, err error) error {
	return &OperationalError{Op: op, Path: path, Err: err}
}

// ExitCode maps a run outcome to the process exit status.
func ExitCode(res Result, err error) int {
	if err != nil {
		return ExitOperational
	}
	if res.Failed() {
		return ExitInvalid
	}
	return ExitOK
}
