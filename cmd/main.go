package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/dargueta/gbdi"
	"github.com/dargueta/gbdi/executable"
	"github.com/dargueta/gbdi/utilities/compression"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            "gbdi",
		Usage:           "Estimate how well the loadable segments of a 64-bit ELF file compress with GBDI",
		ArgsUsage:       "FILE",
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "max-bases",
				Value: gbdi.DefaultMaxBases,
				Usage: "maximum number of global bases to select",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(compression.ReportText),
				Usage:   "report format, `text` or `csv`",
			},
			&cli.BoolFlag{
				Name:  "segments",
				Usage: "report statistics for every loadable segment",
			},
			&cli.PathFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the compressed stream to `ARCHIVE`",
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "decode the compressed stream and check it against the input",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log what each stage is doing to stderr",
			},
		},
		Action: analyzeImage,
	}
}

func analyzeImage(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return gbdi.ErrUsage.WithMessage(
			fmt.Sprintf("Usage: %s FILE", context.App.Name))
	}

	format := compression.ReportFormat(context.String("format"))
	if format != compression.ReportText && format != compression.ReportCSV {
		return gbdi.ErrUsage.WithMessage(fmt.Sprintf("unknown report format %q", format))
	}

	logLevel := slog.LevelWarn
	if context.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewTextHandler(context.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))

	path := context.Args().First()
	image, err := executable.Open(path)
	if err != nil {
		return fmt.Errorf("can't read %s: %w", path, err)
	}
	logger.Debug(
		"read executable",
		"path", path,
		"machine", image.Machine.String(),
		"program_headers", image.ProgramHeaders,
		"loadable_segments", len(image.LoadableSegments()),
	)

	options := compression.DefaultOptions()
	options.MaxBases = context.Uint("max-bases")
	options.Verify = context.Bool("verify")
	options.Logger = logger

	result, err := compression.Compress(image.LoadableSegments(), options)
	if err != nil {
		return err
	}

	if outputPath := context.Path("output"); outputPath != "" {
		if err := writeArchiveFile(outputPath, result); err != nil {
			return err
		}
		logger.Debug("wrote archive", "path", outputPath)
	}

	return compression.WriteReport(
		context.App.Writer,
		result,
		format,
		context.Bool("segments"),
	)
}

func writeArchiveFile(path string, result *compression.Result) error {
	outFile, err := os.Create(path)
	if err != nil {
		return gbdi.ErrIOFailed.Wrap(err)
	}

	_, err = compression.WriteArchive(outFile, compression.NewArchive(result))
	closeErr := outFile.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return gbdi.ErrIOFailed.Wrap(closeErr)
	}
	return nil
}
