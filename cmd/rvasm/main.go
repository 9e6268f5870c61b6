package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/rs/zerolog"
	"golang.design/x/clipboard"
	"golang.org/x/term"

	"github.com/argha-saha/RISC-V-assembler/assembler"
)

// buildResult describes one assembled program.
type buildResult struct {
	binPath  string
	hexPath  string
	code     []byte
	hexdump  string
	listing  []string
	warnings []string
}

// outputPath replaces the extension of the source path.
func outputPath(inputPath, ext string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ext
}

// build assembles inputPath and writes the .bin (and, if enabled, .hex)
// files next to it.
func build(inputPath string, cfg Config) (*buildResult, error) {
	asm := assembler.NewAssembler()
	asm.SetBaseAddress(uint32(cfg.BaseAddress))
	asm.SetListingMode(cfg.Listing)

	code, err := asm.AssembleFile(inputPath)
	if err != nil {
		return nil, err
	}

	res := &buildResult{
		binPath:  outputPath(inputPath, ".bin"),
		code:     code,
		hexdump:  assembler.HexdumpAt(code, uint32(cfg.BaseAddress)),
		listing:  asm.GetListing(),
		warnings: asm.GetWarnings(),
	}

	if err := os.WriteFile(res.binPath, code, 0644); err != nil {
		return nil, fmt.Errorf("error writing %s: %w", res.binPath, err)
	}
	if cfg.Hex {
		res.hexPath = outputPath(inputPath, ".hex")
		if err := os.WriteFile(res.hexPath, []byte(res.hexdump), 0644); err != nil {
			return nil, fmt.Errorf("error writing %s: %w", res.hexPath, err)
		}
	}
	return res, nil
}

func newLogger(w io.Writer, color bool) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(consoleWriter).With().Timestamp().Logger()
}

// describeError renders an assembly error with its hint and, when the
// error carries one, the offending source line.
func describeError(au *aurora.Aurora, err error) string {
	var sb strings.Builder
	sb.WriteString(au.Red(err.Error()).Bold().String())

	var lineErr *assembler.LineError
	if errors.As(err, &lineErr) && lineErr.Source != "" {
		fmt.Fprintf(&sb, "\n    %s", au.Yellow(lineErr.Source))
	}
	return sb.String()
}

func main() {
	listMode := flag.Bool("list", false, "Print assembly listing to stdout")
	var base Address
	flag.Var(&base, "base", "Address of the first instruction (default 0)")
	configPath := flag.String("config", "", "Config file (.lua, .yaml or .yml)")
	clip := flag.Bool("clip", false, "Copy the hex dump to the clipboard")
	noColor := flag.Bool("no-color", false, "Disable coloured output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rvasm [options] input.s\n\nAssembles RISC-V source into input.bin and input.hex.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rvasm program.s\n")
		fmt.Fprintf(os.Stderr, "  rvasm -list -base 0x80000000 program.s\n")
		fmt.Fprintf(os.Stderr, "  rvasm -config rvasm.lua program.s\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	color := !*noColor && term.IsTerminal(int(os.Stderr.Fd()))
	log := newLogger(os.Stderr, color)
	au := aurora.New(aurora.WithColors(color))

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = LoadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "list":
			cfg.Listing = *listMode
		case "base":
			cfg.BaseAddress = base
		case "clip":
			cfg.Clipboard = *clip
		}
	})

	res, err := build(inputPath, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(au, err))
		os.Exit(1)
	}

	for _, w := range res.warnings {
		log.Warn().Msg(w)
	}

	if cfg.Listing {
		for _, line := range res.listing {
			fmt.Println(line)
		}
	}

	if cfg.Clipboard {
		if err := clipboard.Init(); err != nil {
			log.Warn().Err(err).Msg("clipboard unavailable")
		} else {
			clipboard.Write(clipboard.FmtText, []byte(res.hexdump))
			log.Info().Msg("hex dump copied to clipboard")
		}
	}

	log.Info().
		Str("bin", res.binPath).
		Str("hex", res.hexPath).
		Int("bytes", len(res.code)).
		Msgf("assembled %s", inputPath)
}
