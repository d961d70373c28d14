package executable

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dargueta/gbdi"
)

// Image is the loadable content of an executable.
type Image struct {
	// ByteOrder is the byte order declared by the file header.
	ByteOrder binary.ByteOrder
	// Machine is the target architecture from the file header.
	Machine elf.Machine
	// Entry is the virtual address of the entry point.
	Entry uint64
	// ProgramHeaders is the number of entries in the program header table,
	// loadable or not.
	ProgramHeaders int
	Segments       []gbdi.Segment
}

var _ gbdi.SegmentSource = (*Image)(nil)

// LoadableSegments returns the PT_LOAD segments of the image in program header
// order.
func (image *Image) LoadableSegments() []gbdi.Segment {
	return image.Segments
}

// Open reads the executable at `path`.
func Open(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, gbdi.ErrIOFailed.Wrap(err)
	}
	defer file.Close()

	return Read(file)
}

// Read reads an ELF64 image from `input`.
//
// If the input isn't an ELF file or isn't a 64-bit one, the error wraps
// [gbdi.ErrInvalidFormat]. If the program header table or any segment's data
// is cut short, it wraps [gbdi.ErrIOFailed].
func Read(input io.ReadSeeker) (*Image, error) {
	var ident [elf.EI_NIDENT]byte
	if _, err := io.ReadFull(input, ident[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, gbdi.ErrInvalidFormat.WithMessage("file is too small to be an ELF file")
		}
		return nil, gbdi.ErrIOFailed.Wrap(err)
	}

	if string(ident[:len(elf.ELFMAG)]) != elf.ELFMAG {
		return nil, gbdi.ErrInvalidFormat.WithMessage("not an ELF file")
	}
	if elf.Class(ident[elf.EI_CLASS]) != elf.ELFCLASS64 {
		return nil, gbdi.ErrInvalidFormat.WithMessage(
			fmt.Sprintf("not a 64-bit ELF file (class is %s)", elf.Class(ident[elf.EI_CLASS])))
	}

	var byteOrder binary.ByteOrder
	switch elf.Data(ident[elf.EI_DATA]) {
	case elf.ELFDATA2LSB:
		byteOrder = binary.LittleEndian
	case elf.ELFDATA2MSB:
		byteOrder = binary.BigEndian
	default:
		return nil, gbdi.ErrInvalidFormat.WithMessage(
			fmt.Sprintf("unknown data encoding %s", elf.Data(ident[elf.EI_DATA])))
	}

	// Read the whole header again now that we know the byte order.
	var header elf.Header64
	if _, err := input.Seek(0, io.SeekStart); err != nil {
		return nil, gbdi.ErrIOFailed.Wrap(err)
	}
	if err := binary.Read(input, byteOrder, &header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, gbdi.ErrInvalidFormat.WithMessage("ELF header is truncated")
		}
		return nil, gbdi.ErrIOFailed.Wrap(err)
	}

	programs, err := readProgramHeaders(input, byteOrder, &header)
	if err != nil {
		return nil, err
	}

	image := &Image{
		ByteOrder:      byteOrder,
		Machine:        elf.Machine(header.Machine),
		Entry:          header.Entry,
		ProgramHeaders: len(programs),
		Segments:       make([]gbdi.Segment, 0, len(programs)),
	}

	for i, program := range programs {
		if elf.ProgType(program.Type) != elf.PT_LOAD {
			continue
		}

		data, err := readSegmentData(input, &program)
		if err != nil {
			return nil, fmt.Errorf("failed to read program header %d: %w", i, err)
		}
		image.Segments = append(
			image.Segments, gbdi.Segment{Address: program.Vaddr, Data: data})
	}
	return image, nil
}

func readProgramHeaders(
	input io.ReadSeeker, byteOrder binary.ByteOrder, header *elf.Header64,
) ([]elf.Prog64, error) {
	if header.Phnum == 0 {
		return nil, nil
	}

	entrySize := binary.Size(elf.Prog64{})
	if int(header.Phentsize) < entrySize {
		return nil, gbdi.ErrInvalidFormat.WithMessage(
			fmt.Sprintf(
				"program header entries are %d bytes, need at least %d",
				header.Phentsize,
				entrySize,
			),
		)
	}

	programs := make([]elf.Prog64, header.Phnum)
	for i := range programs {
		offset := header.Phoff + uint64(i)*uint64(header.Phentsize)
		if _, err := input.Seek(int64(offset), io.SeekStart); err != nil {
			return nil, gbdi.ErrIOFailed.Wrap(err)
		}

		err := binary.Read(input, byteOrder, &programs[i])
		if err != nil {
			return nil, gbdi.ErrIOFailed.Wrap(err).WithMessage(
				fmt.Sprintf("failed to read program header %d at offset %#x", i, offset))
		}
	}
	return programs, nil
}

func readSegmentData(input io.ReadSeeker, program *elf.Prog64) ([]byte, error) {
	// Make sure the segment actually fits in the file before allocating a
	// buffer for it.
	fileSize, err := input.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, gbdi.ErrIOFailed.Wrap(err)
	}
	if program.Off > uint64(fileSize) || program.Filesz > uint64(fileSize)-program.Off {
		return nil, gbdi.ErrIOFailed.Wrap(io.ErrUnexpectedEOF).WithMessage(
			fmt.Sprintf(
				"segment at offset %#x with size %d extends past the end of the file (%d bytes)",
				program.Off,
				program.Filesz,
				fileSize,
			),
		)
	}

	if _, err := input.Seek(int64(program.Off), io.SeekStart); err != nil {
		return nil, gbdi.ErrIOFailed.Wrap(err)
	}

	data := make([]byte, program.Filesz)
	if _, err := io.ReadFull(input, data); err != nil {
		return nil, gbdi.ErrIOFailed.Wrap(err)
	}
	return data, nil
}
