package gbdi_test

import (
	"errors"
	"io"
	"testing"

	"github.com/dargueta/gbdi"
	"github.com/stretchr/testify/assert"
)

func TestGBDIErrorWithMessage(t *testing.T) {
	newErr := gbdi.ErrInvalidFormat.WithMessage("not an ELF file")
	assert.Equal(
		t,
		"Unrecognized executable format: not an ELF file",
		newErr.Error(),
		"error message is wrong")
	assert.ErrorIs(t, newErr, gbdi.ErrInvalidFormat)
	assert.NotErrorIs(t, newErr, gbdi.ErrIOFailed)
}

func TestGBDIErrorWrap(t *testing.T) {
	originalErr := errors.New("original error")
	newErr := gbdi.ErrIOFailed.Wrap(originalErr)
	expectedMessage := "Input/output error: original error"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, gbdi.ErrIOFailed, "GBDI error not set as parent")
}

func TestGBDIErrorWrapThenMessage(t *testing.T) {
	newErr := gbdi.ErrMalformedVarint.Wrap(io.ErrUnexpectedEOF).WithMessage("record 7")

	assert.Equal(
		t,
		"Malformed variable-length integer: unexpected EOF: record 7",
		newErr.Error())
	assert.ErrorIs(t, newErr, gbdi.ErrMalformedVarint)
	assert.ErrorIs(t, newErr, io.ErrUnexpectedEOF)
}
