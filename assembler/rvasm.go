// rvasm.go - Two-pass assembler for RISC-V (RV32I/RV64I + M + Zicsr)

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
rvasm.go - RISC-V Assembler

Source format, one instruction per line:

  label:  mnemonic op1, op2, op3   # comment

Labels end in ':' and may stand alone on a line. Operands are separated by
commas and/or whitespace. Registers use ABI names (a0, sp, ...), xN or $N.
Immediates are decimal, 0x hex, 0b binary or 0o octal, with optional '_'
separators and a leading '-'.

Pass 1 walks the source once to find the byte address of every label. It
never consults the symbol table: the number of words a line produces is a
function of its mnemonic, its operand count and (for li only) the literal
value. Pass 2 walks the source again, resolves branch and jump targets and
emits little-endian 32-bit words.
*/

package assembler

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

const instrSize = 4

// zeroOperand lists the mnemonics that may appear without operands.
var zeroOperand = map[string]bool{
	"nop":    true,
	"ret":    true,
	"ecall":  true,
	"ebreak": true,
}

// Assembler is a two-pass assembler for the RISC-V base instruction set.
type Assembler struct {
	labels      map[string]uint32
	labelLines  map[string]int
	baseAddr    uint32
	listingMode bool
	listing     []string
	warnings    []string
	// internal state for assembly
	pass   int
	lineNo int
}

// NewAssembler creates a new assembler instance. Code is placed at address 0
// unless SetBaseAddress is called.
func NewAssembler() *Assembler {
	return &Assembler{
		labels:     make(map[string]uint32),
		labelLines: make(map[string]int),
	}
}

// SetBaseAddress sets the address of the first emitted word.
func (a *Assembler) SetBaseAddress(addr uint32) {
	a.baseAddr = addr
}

// SetListingMode enables or disables listing output.
func (a *Assembler) SetListingMode(enabled bool) {
	a.listingMode = enabled
}

// GetListing returns the assembly listing lines.
func (a *Assembler) GetListing() []string {
	return a.listing
}

// GetWarnings returns any warnings generated during assembly.
func (a *Assembler) GetWarnings() []string {
	return a.warnings
}

// Symbols returns a copy of the symbol table built by the last assembly.
func (a *Assembler) Symbols() map[string]uint32 {
	out := make(map[string]uint32, len(a.labels))
	for name, addr := range a.labels {
		out[name] = addr
	}
	return out
}

func (a *Assembler) addWarning(format string, args ...interface{}) {
	a.warnings = append(a.warnings, fmt.Sprintf("line %d: ", a.lineNo)+fmt.Sprintf(format, args...))
}

func (a *Assembler) addListing(addr uint32, words []uint32, source string) {
	if !a.listingMode {
		return
	}
	if len(words) == 0 {
		a.listing = append(a.listing, fmt.Sprintf("                          %s", source))
		return
	}
	hex := make([]string, len(words))
	for i, w := range words {
		hex[i] = fmt.Sprintf("%08X", w)
	}
	a.listing = append(a.listing, fmt.Sprintf("%08X  %-24s %s", addr, strings.Join(hex, " "), source))
}

// addExpansionListing lists each word of a multi-word line on its own row
// with its disassembly.
func (a *Assembler) addExpansionListing(addr uint32, words []uint32) {
	if !a.listingMode || len(words) < 2 {
		return
	}
	for i, w := range words {
		pc := addr + uint32(i)*instrSize
		_, asm := FormatInstruction(Decode(w, pc))
		a.listing = append(a.listing, fmt.Sprintf("%08X  %08X                   ; %s", pc, w, asm))
	}
}

// ---------------------------------------------------------------------
// Source lines
// ---------------------------------------------------------------------

type sourceLine struct {
	text     string
	label    string
	hasLabel bool
	mnemonic string
	operands []string
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// parseSourceLine splits a raw line into an optional label, a mnemonic and
// its operand tokens.
func parseSourceLine(raw string) (sourceLine, error) {
	line := sourceLine{text: strings.TrimSpace(raw)}
	body := strings.TrimSpace(stripComment(raw))

	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		label := strings.TrimSpace(body[:idx])
		if label == "" {
			return line, newParseError("empty label")
		}
		if strings.ContainsFunc(label, func(r rune) bool { return r == ' ' || r == '\t' }) {
			return line, newParseError("invalid label: %q", label)
		}
		line.label = label
		line.hasLabel = true
		body = strings.TrimSpace(body[idx+1:])
	}

	if body == "" {
		return line, nil
	}

	fields := strings.Fields(body)
	line.mnemonic = fields[0]
	line.operands = splitOperands(strings.TrimSpace(body[len(fields[0]):]))
	return line, nil
}

// checkMnemonic rejects unknown mnemonics and missing operands.
func checkMnemonic(mnemonic string, operands []string) error {
	if _, ok := Lookup(mnemonic); !ok && !IsPseudo(mnemonic) {
		return InvalidInstructionError{Mnemonic: mnemonic, Suggestion: closestMnemonic(mnemonic)}
	}
	if len(operands) == 0 && !zeroOperand[mnemonic] {
		return newParseError("missing operands for %s", mnemonic)
	}
	return nil
}

// closestMnemonic finds the known mnemonic with the smallest edit distance
// from name, for the "did you mean" hint.
func closestMnemonic(name string) (closest string) {
	nameRunes := []rune(name)
	closestDistance := len(name)

	candidates := append(Mnemonics(), PseudoMnemonics()...)
	sort.Strings(candidates)

	for _, candidate := range candidates {
		distance := levenshtein.DistanceForStrings(
			nameRunes,
			[]rune(candidate),
			levenshtein.DefaultOptions,
		)
		if distance < closestDistance && distance < len(candidate) {
			closest = candidate
			closestDistance = distance
		}
	}
	return
}

// ---------------------------------------------------------------------
// Assemble
// ---------------------------------------------------------------------

// AssembleString assembles source text held in memory.
func (a *Assembler) AssembleString(source string) ([]byte, error) {
	return a.Assemble(strings.NewReader(source))
}

// AssembleFile assembles the source file at path.
func (a *Assembler) AssembleFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, IOError{Err: err}
	}
	defer f.Close()
	return a.Assemble(f)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, IOError{Err: err}
	}
	return lines, nil
}

// Assemble reads the whole source from r and returns the machine code. The
// first error aborts assembly; no partial output is returned.
func (a *Assembler) Assemble(r io.Reader) ([]byte, error) {
	a.labels = make(map[string]uint32)
	a.labelLines = make(map[string]int)
	a.warnings = nil
	a.listing = nil

	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	parsed := make([]sourceLine, len(lines))

	// Pass 1: label collection, address calculation
	a.pass = 1
	var offset uint32
	for idx, raw := range lines {
		a.lineNo = idx + 1
		line, err := parseSourceLine(raw)
		if err != nil {
			return nil, a.lineError(raw, err)
		}
		parsed[idx] = line

		if line.hasLabel {
			if prev, exists := a.labelLines[line.label]; exists {
				return nil, a.lineError(raw, newParseError("duplicate label %s (first defined on line %d)", line.label, prev))
			}
			a.labels[line.label] = a.baseAddr + offset
			a.labelLines[line.label] = a.lineNo
		}

		if line.mnemonic == "" {
			continue
		}
		width, err := lineWidth(line.mnemonic, line.operands)
		if err != nil {
			return nil, a.lineError(raw, err)
		}
		offset += width * instrSize
	}

	// Pass 2: code generation
	a.pass = 2
	program := make([]byte, 0, offset)
	offset = 0
	for idx, line := range parsed {
		a.lineNo = idx + 1
		addr := a.baseAddr + offset

		if line.mnemonic == "" {
			if line.text != "" && line.hasLabel {
				a.addListing(addr, nil, line.text)
			}
			continue
		}

		words, err := a.assembleLine(line, addr)
		if err != nil {
			return nil, a.lineError(lines[idx], err)
		}

		want, _ := lineWidth(line.mnemonic, line.operands)
		if uint32(len(words)) != want {
			return nil, a.lineError(lines[idx], fmt.Errorf("internal error: pass 1 sized %s at %d words, pass 2 emitted %d", line.mnemonic, want, len(words)))
		}

		a.addListing(addr, words, line.text)
		a.addExpansionListing(addr, words)

		for _, w := range words {
			program = binary.LittleEndian.AppendUint32(program, w)
		}
		offset += uint32(len(words)) * instrSize
	}

	return program, nil
}

func (a *Assembler) lineError(raw string, err error) error {
	return &LineError{Line: a.lineNo, Pass: a.pass, Source: strings.TrimSpace(raw), Err: err}
}

// lineWidth returns the number of words a line will emit (for pass 1
// address calculation). It never needs the symbol table.
func lineWidth(mnemonic string, operands []string) (uint32, error) {
	if err := checkMnemonic(mnemonic, operands); err != nil {
		return 0, err
	}
	if IsPseudo(mnemonic) {
		expansion, err := Expand(mnemonic, operands)
		if err != nil {
			return 0, err
		}
		return uint32(len(expansion)), nil
	}
	return 1, nil
}

// ---------------------------------------------------------------------
// assembleLine: pass 2 code generation for a single line
// ---------------------------------------------------------------------

func (a *Assembler) assembleLine(line sourceLine, addr uint32) ([]uint32, error) {
	if err := checkMnemonic(line.mnemonic, line.operands); err != nil {
		return nil, err
	}

	if !IsPseudo(line.mnemonic) {
		word, err := a.assembleInstruction(line.mnemonic, line.operands, addr)
		if err != nil {
			return nil, err
		}
		return []uint32{word}, nil
	}

	expansion, err := Expand(line.mnemonic, line.operands)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, 0, len(expansion))
	for idx, rec := range expansion {
		word, err := a.assembleInstruction(rec.Mnemonic, rec.Operands, addr+uint32(idx)*instrSize)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, nil
}

// assembleInstruction encodes one base instruction located at pc.
func (a *Assembler) assembleInstruction(mnemonic string, operands []string, pc uint32) (uint32, error) {
	f, ok := Lookup(mnemonic)
	if !ok {
		return 0, InvalidInstructionError{Mnemonic: mnemonic, Suggestion: closestMnemonic(mnemonic)}
	}

	switch f.Shape {
	case ShapeR:
		return a.asmR(mnemonic, f, operands)
	case ShapeI:
		switch {
		case f.IsSystemCall():
			return a.asmSystem(mnemonic, f, operands)
		case f.IsCSR():
			return a.asmCSR(mnemonic, f, operands)
		case f.ShamtBits > 0:
			return a.asmShift(mnemonic, f, operands)
		}
		return a.asmI(mnemonic, f, operands)
	case ShapeS:
		return a.asmS(mnemonic, f, operands)
	case ShapeB:
		return a.asmB(mnemonic, f, operands, pc)
	case ShapeU:
		return a.asmU(mnemonic, f, operands)
	case ShapeJ:
		return a.asmJ(mnemonic, f, operands, pc)
	}
	return 0, fmt.Errorf("%s: unhandled encoding shape %s", mnemonic, f.Shape)
}

// asmR handles: op rd, rs1, rs2
func (a *Assembler) asmR(mnemonic string, f Format, operands []string) (uint32, error) {
	if len(operands) != 3 {
		return 0, arityError(mnemonic, "3", len(operands))
	}
	rd, err := ParseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	rs1, err := ParseRegister(operands[1])
	if err != nil {
		return 0, err
	}
	rs2, err := ParseRegister(operands[2])
	if err != nil {
		return 0, err
	}
	return EncodeRType(f.Opcode, rd, f.Funct3, rs1, rs2, f.Funct7), nil
}

// asmI handles the load form op rd, imm(rs1) and the arithmetic form
// op rd, rs1, imm.
func (a *Assembler) asmI(mnemonic string, f Format, operands []string) (uint32, error) {
	switch len(operands) {
	case 2:
		rd, err := ParseRegister(operands[0])
		if err != nil {
			return 0, err
		}
		imm, rs1, err := ParseOffset(operands[1])
		if err != nil {
			return 0, err
		}
		a.checkImmediate(mnemonic, int64(imm), 12)
		return EncodeIType(f.Opcode, rd, f.Funct3, rs1, imm), nil
	case 3:
		rd, err := ParseRegister(operands[0])
		if err != nil {
			return 0, err
		}
		rs1, err := ParseRegister(operands[1])
		if err != nil {
			return 0, err
		}
		imm, err := ParseImmediate(operands[2])
		if err != nil {
			return 0, err
		}
		a.checkImmediate(mnemonic, int64(imm), 12)
		return EncodeIType(f.Opcode, rd, f.Funct3, rs1, imm), nil
	}
	return 0, arityError(mnemonic, "2 or 3", len(operands))
}

// asmShift handles: op rd, rs1, shamt
func (a *Assembler) asmShift(mnemonic string, f Format, operands []string) (uint32, error) {
	if len(operands) != 3 {
		return 0, arityError(mnemonic, "3", len(operands))
	}
	rd, err := ParseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	rs1, err := ParseRegister(operands[1])
	if err != nil {
		return 0, err
	}
	shamt, err := ParseImmediate(operands[2])
	if err != nil {
		return 0, err
	}
	if shamt < 0 || shamt >= 1<<f.ShamtBits {
		return 0, InvalidOperandError{Operand: operands[2], Reason: fmt.Sprintf("shift amount out of range 0..%d", 1<<f.ShamtBits-1)}
	}
	imm := int32(f.Funct7<<5) | shamt
	return EncodeIType(f.Opcode, rd, f.Funct3, rs1, imm), nil
}

// asmSystem handles ecall/ebreak. Operands are not parsed.
func (a *Assembler) asmSystem(mnemonic string, f Format, operands []string) (uint32, error) {
	if len(operands) != 0 {
		a.addWarning("%s takes no operands, ignoring %s", mnemonic, strings.Join(operands, ", "))
	}
	return EncodeIType(f.Opcode, 0, 0, 0, int32(f.Funct7)), nil
}

// asmCSR handles: op rd, csr, rs1 and op rd, csr, uimm
func (a *Assembler) asmCSR(mnemonic string, f Format, operands []string) (uint32, error) {
	if len(operands) != 3 {
		return 0, arityError(mnemonic, "3", len(operands))
	}
	rd, err := ParseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	csr, err := ParseCSR(operands[1])
	if err != nil {
		return 0, err
	}

	var src uint32
	if f.Funct3 >= 0b101 {
		uimm, err := ParseImmediate(operands[2])
		if err != nil {
			return 0, err
		}
		if uimm < 0 || uimm > mask5 {
			return 0, InvalidOperandError{Operand: operands[2], Reason: "CSR immediate out of range 0..31"}
		}
		src = uint32(uimm)
	} else {
		src, err = ParseRegister(operands[2])
		if err != nil {
			return 0, err
		}
	}
	return EncodeIType(f.Opcode, rd, f.Funct3, src, csr), nil
}

// asmS handles: op rs2, imm(rs1)
func (a *Assembler) asmS(mnemonic string, f Format, operands []string) (uint32, error) {
	if len(operands) != 2 {
		return 0, arityError(mnemonic, "2", len(operands))
	}
	rs2, err := ParseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	imm, rs1, err := ParseOffset(operands[1])
	if err != nil {
		return 0, err
	}
	a.checkImmediate(mnemonic, int64(imm), 12)
	return EncodeSType(f.Opcode, f.Funct3, rs1, rs2, imm), nil
}

// asmB handles: op rs1, rs2, target (imm = target - PC)
func (a *Assembler) asmB(mnemonic string, f Format, operands []string, pc uint32) (uint32, error) {
	if len(operands) != 3 {
		return 0, arityError(mnemonic, "3", len(operands))
	}
	rs1, err := ParseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	rs2, err := ParseRegister(operands[1])
	if err != nil {
		return 0, err
	}
	offset, err := a.resolveTarget(operands[2], pc)
	if err != nil {
		return 0, err
	}
	a.checkPCOffset(mnemonic, offset, 13)
	return EncodeBType(f.Opcode, f.Funct3, rs1, rs2, offset), nil
}

// asmU handles: op rd, value. A label operand yields the label's absolute
// address, not a PC-relative value.
func (a *Assembler) asmU(mnemonic string, f Format, operands []string) (uint32, error) {
	if len(operands) != 2 {
		return 0, arityError(mnemonic, "2", len(operands))
	}
	rd, err := ParseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	value, err := ParseImmediate(operands[1])
	if err != nil {
		addr, lerr := a.resolveLabel(operands[1])
		if lerr != nil {
			return 0, lerr
		}
		value = int32(addr)
	}
	a.checkImmediate(mnemonic, int64(value), 20)
	return EncodeUType(f.Opcode, rd, value), nil
}

// asmJ handles: op rd, target (imm = target - PC)
func (a *Assembler) asmJ(mnemonic string, f Format, operands []string, pc uint32) (uint32, error) {
	if len(operands) != 2 {
		return 0, arityError(mnemonic, "2", len(operands))
	}
	rd, err := ParseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	offset, err := a.resolveTarget(operands[1], pc)
	if err != nil {
		return 0, err
	}
	a.checkPCOffset(mnemonic, offset, 21)
	return EncodeJType(f.Opcode, rd, offset), nil
}

// resolveTarget returns a literal offset as written, or the PC-relative
// distance to a label.
func (a *Assembler) resolveTarget(tok string, pc uint32) (int32, error) {
	if imm, err := ParseImmediate(tok); err == nil {
		return imm, nil
	}
	target, err := a.resolveLabel(tok)
	if err != nil {
		return 0, err
	}
	return int32(target - pc), nil
}

func (a *Assembler) resolveLabel(name string) (uint32, error) {
	name = strings.TrimSpace(name)
	if addr, ok := a.labels[name]; ok {
		return addr, nil
	}
	return 0, UndefinedLabelError{Label: name}
}

// checkImmediate warns when imm does not fit an n-bit field and will be
// truncated by the encoder.
func (a *Assembler) checkImmediate(mnemonic string, imm int64, n uint) {
	if !fitsBits(imm, n) {
		a.addWarning("%s: immediate %d does not fit in %d bits, truncated", mnemonic, imm, n)
	}
}

// checkPCOffset warns about branch and jump offsets the encoding cannot
// represent.
func (a *Assembler) checkPCOffset(mnemonic string, offset int32, n uint) {
	if !fitsSigned(int64(offset), n) {
		a.addWarning("%s: offset %d out of range for %d-bit field, truncated", mnemonic, offset, n)
	}
	if offset&1 != 0 {
		a.addWarning("%s: offset %d is odd, bit 0 dropped", mnemonic, offset)
	}
}
