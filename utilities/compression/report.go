package compression

import (
	"fmt"
	"io"

	"github.com/dargueta/gbdi"
	"github.com/gocarina/gocsv"
)

// ReportFormat selects how [WriteReport] renders a result.
type ReportFormat string

const (
	// ReportText is the single human-readable line printed by the analyzer.
	ReportText = ReportFormat("text")
	// ReportCSV renders a CSV table with a header row.
	ReportCSV = ReportFormat("csv")
)

// ReportRow is a single row of a CSV report. The summary row has "total" in the
// Segment column.
type ReportRow struct {
	Segment        string  `csv:"segment"`
	Address        string  `csv:"address"`
	Size           int64   `csv:"size"`
	Words          int     `csv:"words"`
	OriginalSize   int64   `csv:"original_size"`
	CompressedSize int64   `csv:"compressed_size"`
	Ratio          float64 `csv:"ratio"`
	BaseHits       int     `csv:"base_hits"`
}

// ReportRows builds the rows of a CSV report for `result`. If `perSegment` is
// true there's one row per segment before the summary row.
func ReportRows(result *Result, perSegment bool) []*ReportRow {
	rows := []*ReportRow{}
	totalSize := int64(0)
	totalHits := 0

	for i, segment := range result.Segments {
		totalSize += int64(segment.Size)
		totalHits += segment.BaseHits
		if !perSegment {
			continue
		}

		originalSize := int64(segment.Words) * gbdi.WordSize
		rows = append(
			rows,
			&ReportRow{
				Segment:        fmt.Sprint(i),
				Address:        fmt.Sprintf("%#x", segment.Address),
				Size:           int64(segment.Size),
				Words:          segment.Words,
				OriginalSize:   originalSize,
				CompressedSize: segment.CompressedSize,
				Ratio:          Ratio(originalSize, segment.CompressedSize),
				BaseHits:       segment.BaseHits,
			},
		)
	}

	rows = append(
		rows,
		&ReportRow{
			Segment:        "total",
			Size:           totalSize,
			Words:          len(result.Words),
			OriginalSize:   result.OriginalSize(),
			CompressedSize: result.CompressedSize(),
			Ratio:          result.Ratio(),
			BaseHits:       totalHits,
		},
	)
	return rows
}

// WriteReport writes the statistics for `result` to `output` in the given
// format.
func WriteReport(output io.Writer, result *Result, format ReportFormat, perSegment bool) error {
	switch format {
	case ReportText:
		if perSegment {
			for i, segment := range result.Segments {
				_, err := fmt.Fprintf(
					output,
					"Segment %d at %#x: %d bytes, %d words, compressed size: %d\n",
					i,
					segment.Address,
					segment.Size,
					segment.Words,
					segment.CompressedSize,
				)
				if err != nil {
					return err
				}
			}
		}
		_, err := fmt.Fprintf(
			output,
			"Original size: %d Compressed size: %d Compression ratio: %.2f\n",
			result.OriginalSize(),
			result.CompressedSize(),
			result.Ratio(),
		)
		return err
	case ReportCSV:
		return gocsv.Marshal(ReportRows(result, perSegment), output)
	default:
		return gbdi.ErrUsage.WithMessage(fmt.Sprintf("unknown report format %q", format))
	}
}
