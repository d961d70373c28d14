package varint_test

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/dargueta/gbdi"
	"github.com/dargueta/gbdi/utilities/varint"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type EncodingTestCase struct {
	Value          uint64
	ExpectedOutput []byte
	Name           string
}

var encodingTestCases = []EncodingTestCase{
	{0, []byte{0x00}, "zero"},
	{1, []byte{0x01}, "one"},
	{0x7f, []byte{0x7f}, "largest single byte"},
	{0x80, []byte{0x80, 0x01}, "smallest two bytes"},
	{300, []byte{0xac, 0x02}, "300"},
	{624485, []byte{0xe5, 0x8e, 0x26}, "624485"},
	{
		math.MaxUint64,
		[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
		"max uint64",
	},
}

func TestAppend__Basic(t *testing.T) {
	for _, test := range encodingTestCases {
		t.Run(
			test.Name,
			func(t *testing.T) {
				output := varint.Append(nil, test.Value)
				assert.Equal(t, test.ExpectedOutput, output)
				assert.Equal(t, len(test.ExpectedOutput), varint.Size(test.Value), "wrong size")
			},
		)
	}
}

func TestWrite__Basic(t *testing.T) {
	for _, test := range encodingTestCases {
		t.Run(
			test.Name,
			func(t *testing.T) {
				buffer := make([]byte, len(test.ExpectedOutput))
				writer := bytewriter.New(buffer)

				n, err := varint.Write(writer, test.Value)
				require.NoError(t, err)
				assert.Equal(t, len(test.ExpectedOutput), n, "bytes written is wrong")
				assert.Equal(t, test.ExpectedOutput, buffer)
			},
		)
	}
}

func TestUvarint__Basic(t *testing.T) {
	for _, test := range encodingTestCases {
		t.Run(
			test.Name,
			func(t *testing.T) {
				// Trailing garbage must not be consumed.
				input := append(append([]byte{}, test.ExpectedOutput...), 0xaa, 0xbb)

				value, n, err := varint.Uvarint(input)
				require.NoError(t, err)
				assert.Equal(t, test.Value, value)
				assert.Equal(t, len(test.ExpectedOutput), n, "bytes consumed is wrong")
			},
		)
	}
}

// Round-trip test of random values of every magnitude.
func TestRoundTrip__Random(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5000; i++ {
		value := rng.Uint64() >> uint(rng.Intn(64))
		encoded := varint.Append(nil, value)
		require.NotEmpty(t, encoded)

		// Only the last byte has the high bit clear.
		for j, b := range encoded {
			if j == len(encoded)-1 {
				require.Zerof(t, b&0x80, "last byte of %d has continuation bit set", value)
			} else {
				require.NotZerof(t, b&0x80, "byte %d of %d is missing continuation bit", j, value)
			}
		}

		decoded, n, err := varint.Uvarint(encoded)
		require.NoError(t, err)
		require.Equal(t, value, decoded)
		require.Equal(t, len(encoded), n)
	}
}

func TestRead__Sequence(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16384, math.MaxUint32, math.MaxUint64}

	var stream []byte
	for _, value := range values {
		stream = varint.Append(stream, value)
	}

	reader := bufio.NewReader(bytes.NewReader(stream))
	for i, expected := range values {
		value, err := varint.Read(reader)
		require.NoErrorf(t, err, "value %d", i)
		assert.Equalf(t, expected, value, "value %d is wrong", i)
	}

	_, err := varint.Read(reader)
	assert.Equal(t, io.EOF, err, "expected clean EOF at end of stream")
}

func TestRead__Truncated(t *testing.T) {
	_, err := varint.Read(bytes.NewReader([]byte{0x80, 0x80}))
	require.Error(t, err)
	assert.ErrorIs(t, err, gbdi.ErrMalformedVarint)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestUvarint__Malformed(t *testing.T) {
	tests := []struct {
		Input []byte
		Name  string
	}{
		{[]byte{}, "empty"},
		{[]byte{0x80}, "missing terminator"},
		{[]byte{0xff, 0xff, 0xff}, "truncated long value"},
		{bytes.Repeat([]byte{0x80}, 11), "more than ten bytes"},
		{
			[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02},
			"overflows 64 bits",
		},
	}

	for _, test := range tests {
		t.Run(
			test.Name,
			func(t *testing.T) {
				_, _, err := varint.Uvarint(test.Input)
				require.Error(t, err)
				assert.ErrorIs(t, err, gbdi.ErrMalformedVarint)
			},
		)
	}
}
