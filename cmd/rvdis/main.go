package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/argha-saha/RISC-V-assembler/assembler"
)

func parseBase(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	// $ is a hex prefix
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func main() {
	baseStr := flag.String("base", "0", "Address of the first word (decimal, 0x or $ hex)")
	noColor := flag.Bool("no-color", false, "Disable coloured output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "RISC-V Disassembler\n")
		fmt.Fprintf(os.Stderr, "Usage: rvdis [-base ADDR] file.bin\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	filename := flag.Arg(0)

	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    *noColor || !term.IsTerminal(int(os.Stderr.Fd())),
		TimeFormat: time.TimeOnly,
	}).With().Timestamp().Logger()

	baseAddr, err := parseBase(*baseStr)
	if err != nil {
		log.Fatal().Err(err).Msgf("invalid base address %q", *baseStr)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		log.Fatal().Err(err).Msgf("error reading %s", filename)
	}

	if len(data) == 0 {
		log.Warn().Msgf("empty file %s", filename)
		return
	}

	for _, line := range assembler.Disassemble(data, baseAddr) {
		fmt.Println(line)
	}
}
