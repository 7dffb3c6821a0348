// Package errors defines the sentinel errors shared across wordfreq and maps
// them to process exit codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrTableFull         = errors.New("hash table full")
	ErrEmptyKey          = errors.New("empty key")
	ErrInvalidCapacity   = errors.New("invalid capacity")
	ErrInvalidPolicy     = errors.New("invalid probing policy")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSourceUnavailable = errors.New("word source unavailable")
	ErrExportFailed      = errors.New("export failed")
	ErrTimeout           = errors.New("operation timed out")
	ErrInternal          = errors.New("internal error")
)

// Exit codes follow the BSD sysexits convention.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitDataErr     = 65
	ExitNoInput     = 66
	ExitUnavailable = 69
	ExitSoftware    = 70
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ExitCode returns the process exit code for err. An AppError anywhere in the
// chain wins over sentinel matching.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidCapacity), errors.Is(err, ErrInvalidPolicy), errors.Is(err, ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, ErrTableFull), errors.Is(err, ErrEmptyKey):
		return ExitDataErr
	case errors.Is(err, ErrSourceUnavailable):
		return ExitNoInput
	case errors.Is(err, ErrExportFailed), errors.Is(err, ErrTimeout):
		return ExitUnavailable
	case errors.Is(err, ErrInternal):
		return ExitSoftware
	default:
		return ExitFailure
	}
}
