package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

func main() {
	outFile := flag.String("o", "", "Output file (default: input_lowered.s)")
	noHeader := flag.Bool("no-header", false, "Omit header comment")
	stats := flag.Bool("stats", false, "Print lowering statistics")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rvlower [options] input.s\n\nRewrites RISC-V assembly so it uses base instructions only.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rvlower program.s\n")
		fmt.Fprintf(os.Stderr, "  rvlower -o program_base.s program.s\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
		TimeFormat: time.TimeOnly,
	}).With().Timestamp().Logger()

	inputPath := flag.Arg(0)

	l := NewLowerer()
	l.noHeader = *noHeader

	output, err := l.LowerFileFromPath(inputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error reading input")
	}

	outputPath := *outFile
	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + "_lowered" + ext
	}

	if err := os.WriteFile(outputPath, []byte(output), 0644); err != nil {
		log.Fatal().Err(err).Msgf("error writing %s", outputPath)
	}

	if *stats {
		inputLines := strings.Count(string(mustReadFile(inputPath)), "\n") + 1
		outputLines := strings.Count(output, "\n") + 1
		fmt.Printf("Input:   %s (%d lines)\n", inputPath, inputLines)
		fmt.Printf("Output:  %s (%d lines)\n", outputPath, outputLines)
		fmt.Printf("Lowered: %d pseudo-instructions\n", l.lowered)
		if l.errors > 0 {
			fmt.Printf("Errors:  %d (search for '# ERROR:' in output)\n", l.errors)
		}
	}

	if l.errors > 0 {
		log.Error().Msgf("%d lowering error(s), search for '# ERROR:' in %s", l.errors, outputPath)
		os.Exit(1)
	}
}

func mustReadFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}
