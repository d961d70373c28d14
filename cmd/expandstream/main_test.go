package main

import (
	"bytes"
	"testing"

	"github.com/dargueta/gbdi"
	dt "github.com/dargueta/gbdi/testing"
	"github.com/dargueta/gbdi/utilities/compression"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArchive(t *testing.T) {
	segments := dt.CreateRandomSegments(t, 50, 0, 700)
	result, err := compression.Compress(segments, compression.DefaultOptions())
	require.NoError(t, err)

	archiveBuffer := bytes.Buffer{}
	_, err = compression.WriteArchive(&archiveBuffer, compression.NewArchive(result))
	require.NoError(t, err)

	expected := []byte{}
	for _, segment := range segments {
		expected = append(expected, segment.Data...)
	}

	outputBuffer := make([]byte, len(expected))
	n, err := expandArchive(bytes.NewReader(archiveBuffer.Bytes()), bytewriter.New(outputBuffer))
	require.NoError(t, err)
	assert.EqualValues(t, len(expected), n, "returned expanded size is wrong")
	assert.Equal(t, expected, outputBuffer, "expanded data is wrong")
}

func TestExpandArchive__NotAnArchive(t *testing.T) {
	_, err := expandArchive(bytes.NewReader([]byte("nope")), &bytes.Buffer{})
	assert.ErrorIs(t, err, gbdi.ErrInvalidFormat)
}
