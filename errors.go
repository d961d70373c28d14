package gbdi

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// GBDIError is the error type returned by every stage of the analyzer. All of
// them are fatal to a run; there are no warnings.
type GBDIError interface {
	error
	WithMessage(message string) GBDIError
	Wrap(err error) GBDIError
}

type baseGBDIError string

const rootError = baseGBDIError("")

var ErrUsage = rootError.WithMessage("Invalid usage")
var ErrIOFailed = rootError.WithMessage("Input/output error")
var ErrInvalidFormat = rootError.WithMessage("Unrecognized executable format")
var ErrOutOfMemory = rootError.WithMessage("Cannot allocate memory")
var ErrMalformedVarint = rootError.WithMessage("Malformed variable-length integer")
var ErrBufferOverflow = rootError.WithMessage("Output buffer capacity exceeded")
var ErrCorruptedStream = rootError.WithMessage("Compressed stream is corrupted")

func (e baseGBDIError) Error() string {
	return string(e)
}

func (e baseGBDIError) WithMessage(message string) GBDIError {
	return customGBDIError{
		message:       message,
		originalError: e,
	}
}

func (e baseGBDIError) Wrap(err error) GBDIError {
	return customGBDIError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customGBDIError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customGBDIError) Error() string {
	return e.message
}

func (e customGBDIError) WithMessage(message string) GBDIError {
	return customGBDIError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customGBDIError) Wrap(err error) GBDIError {
	return customGBDIError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customGBDIError) Unwrap() error {
	return e.originalError
}
