// Package varint implements the unsigned LEB128 encoding used by the GBDI
// compressed stream.
//
// Each byte carries seven bits of the value, least significant group first. The
// high bit of a byte is set if more bytes follow. Zero is encoded as a single
// null byte, and a 64-bit value never needs more than ten bytes.
package varint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dargueta/gbdi"
)

// Size returns the number of bytes needed to encode `value`.
func Size(value uint64) int {
	n := 1
	for value >= 0x80 {
		value >>= 7
		n++
	}
	return n
}

// Append encodes `value` and appends it to `dst`, returning the extended slice.
func Append(dst []byte, value uint64) []byte {
	return binary.AppendUvarint(dst, value)
}

// Put encodes `value` into the beginning of `buf` and returns the number of
// bytes written. It panics if `buf` is too small; a buffer of
// [gbdi.MaxVarintLen64] bytes is always big enough.
func Put(buf []byte, value uint64) int {
	return binary.PutUvarint(buf, value)
}

// Write encodes `value` and writes it to `output` in a single call. The return
// value is the number of bytes written.
func Write(output io.Writer, value uint64) (int, error) {
	var buf [gbdi.MaxVarintLen64]byte
	n := Put(buf[:], value)
	return output.Write(buf[:n])
}

// Uvarint decodes a value from the beginning of `buf`. It returns the value and
// the number of bytes consumed.
//
// If `buf` ends before a terminating byte is found, or the value doesn't fit in
// 64 bits, this returns an error wrapping [gbdi.ErrMalformedVarint].
func Uvarint(buf []byte) (uint64, int, error) {
	pos := 0
	value, err := decode(func() (byte, error) {
		if pos >= len(buf) {
			return 0, io.EOF
		}
		b := buf[pos]
		pos++
		return b, nil
	})
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = gbdi.ErrMalformedVarint.Wrap(io.ErrUnexpectedEOF)
		}
		return 0, pos, err
	}
	return value, pos, nil
}

// Read decodes a single value from `input`.
//
// If `input` is exhausted before the first byte is read, Read returns io.EOF
// unwrapped so callers can detect a clean end of stream. If it's exhausted
// partway through a value, the error wraps both [gbdi.ErrMalformedVarint] and
// [io.ErrUnexpectedEOF]. Any other read error is returned as-is.
func Read(input io.ByteReader) (uint64, error) {
	started := false
	value, err := decode(func() (byte, error) {
		b, err := input.ReadByte()
		if err != nil {
			if started && errors.Is(err, io.EOF) {
				return 0, gbdi.ErrMalformedVarint.Wrap(io.ErrUnexpectedEOF)
			}
			return 0, err
		}
		started = true
		return b, nil
	})
	return value, err
}

// decode pulls bytes from `next` until it sees one with the high bit clear.
func decode(next func() (byte, error)) (uint64, error) {
	var value uint64
	var shift uint

	for i := 0; i < gbdi.MaxVarintLen64; i++ {
		b, err := next()
		if err != nil {
			return 0, err
		}

		if b < 0x80 {
			// The tenth byte only has room for the single remaining bit.
			if i == gbdi.MaxVarintLen64-1 && b > 1 {
				return 0, gbdi.ErrMalformedVarint.WithMessage(
					"value overflows a 64-bit integer")
			}
			return value | uint64(b)<<shift, nil
		}

		value |= uint64(b&0x7f) << shift
		shift += 7
	}

	return 0, gbdi.ErrMalformedVarint.WithMessage(
		fmt.Sprintf("no terminating byte within %d bytes", gbdi.MaxVarintLen64))
}
