package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dargueta/gbdi"
	"github.com/dargueta/gbdi/utilities/compression"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(
			os.Stderr,
			"Expand a GBDI archive back into the raw segment bytes.\nUsage: %s archive-file output-file\n",
			os.Args[0])
		os.Exit(1)
	}

	sourceFilePath := os.Args[1]
	outputFilePath := os.Args[2]

	sourceFile, errSrc := os.Open(sourceFilePath)
	if errSrc != nil {
		fmt.Fprintf(
			os.Stderr, "Failed to open file for reading: `%v`: %s\n", sourceFilePath, errSrc)
		os.Exit(1)
	}
	defer sourceFile.Close()

	outFile, errOut := os.Create(outputFilePath)
	if errOut != nil {
		fmt.Fprintf(
			os.Stderr, "Failed to open file for writing: `%v`: %s\n", outputFilePath, errOut)
		os.Exit(1)
	}
	defer outFile.Close()

	nWritten, err := expandArchive(sourceFile, outFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error expanding file: %s\n", err)
		os.Exit(2)
	}

	fmt.Printf("Expanded archive to %d bytes.\n", nWritten)
}

// expandArchive decodes the archive read from `source` and writes the bytes of
// every segment, in order and without padding, to `output`.
func expandArchive(source io.Reader, output io.Writer) (int64, error) {
	archive, err := compression.ReadArchive(source)
	if err != nil {
		return 0, err
	}

	segments, err := archive.Expand()
	if err != nil {
		return 0, err
	}

	totalBytesWritten := int64(0)
	for _, segment := range segments {
		n, err := output.Write(segment.Data)
		totalBytesWritten += int64(n)
		if err != nil {
			return totalBytesWritten, gbdi.ErrIOFailed.Wrap(err)
		}
	}
	return totalBytesWritten, nil
}
