package testing

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// ProgramHeader describes one entry of the program header table of a test
// image, together with the bytes the entry points to.
type ProgramHeader struct {
	Type           elf.ProgType
	VirtualAddress uint64
	Data           []byte
}

// ImageSpec describes an ELF64 image to build with [BuildELF64].
type ImageSpec struct {
	// BigEndian selects ELFDATA2MSB instead of ELFDATA2LSB.
	BigEndian bool
	Programs  []ProgramHeader
}

const elfHeaderSize = 64
const programHeaderSize = 56

// BuildELF64 assembles a minimal ELF64 executable. The program header table
// immediately follows the file header, and the data of each program header is
// laid out after the table in the same order as the headers.
//
// The image has no section headers, which is all the analyzer needs.
func BuildELF64(t *testing.T, spec ImageSpec) []byte {
	var order binary.ByteOrder = binary.LittleEndian
	dataEncoding := elf.ELFDATA2LSB
	if spec.BigEndian {
		order = binary.BigEndian
		dataEncoding = elf.ELFDATA2MSB
	}

	header := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Phoff:     elfHeaderSize,
		Ehsize:    elfHeaderSize,
		Phentsize: programHeaderSize,
		Phnum:     uint16(len(spec.Programs)),
	}
	copy(header.Ident[:], elf.ELFMAG)
	header.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	header.Ident[elf.EI_DATA] = byte(dataEncoding)
	header.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	buffer := bytes.Buffer{}
	err := binary.Write(&buffer, order, &header)
	require.NoError(t, err, "failed to write ELF header")

	dataOffset := uint64(elfHeaderSize + programHeaderSize*len(spec.Programs))
	for i, program := range spec.Programs {
		rawProgram := elf.Prog64{
			Type:   uint32(program.Type),
			Flags:  uint32(elf.PF_R),
			Off:    dataOffset,
			Vaddr:  program.VirtualAddress,
			Paddr:  program.VirtualAddress,
			Filesz: uint64(len(program.Data)),
			Memsz:  uint64(len(program.Data)),
			Align:  1,
		}
		err = binary.Write(&buffer, order, &rawProgram)
		require.NoErrorf(t, err, "failed to write program header %d", i)
		dataOffset += uint64(len(program.Data))
	}

	for _, program := range spec.Programs {
		buffer.Write(program.Data)
	}

	require.EqualValues(t, dataOffset, buffer.Len(), "image size is wrong")
	return buffer.Bytes()
}

// LoadImage returns a stream over a copy of `imageBytes`. Writes to the stream
// do not affect `imageBytes`.
func LoadImage(t *testing.T, imageBytes []byte) io.ReadSeeker {
	require.Greater(t, len(imageBytes), 0, "image is empty")

	imageCopy := make([]byte, len(imageBytes))
	copy(imageCopy, imageBytes)
	return bytesextra.NewReadWriteSeeker(imageCopy)
}

// WriteImageFile writes `imageBytes` to a new file in a temporary directory
// that's removed when the test finishes, and returns the file's path.
func WriteImageFile(t *testing.T, imageBytes []byte) string {
	path := filepath.Join(t.TempDir(), "image.elf")
	err := os.WriteFile(path, imageBytes, 0o644)
	require.NoErrorf(t, err, "failed to write image to %s", path)
	return path
}
