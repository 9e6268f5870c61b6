package main

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/argha-saha/RISC-V-assembler/assembler"
)

// LineType classifies a line of assembly source.
type LineType int

const (
	LineEmpty LineType = iota
	LineLabel
	LineInstruction
)

// Lowerer rewrites RISC-V assembly so that it uses base instructions only.
// Every pseudo-instruction is replaced by its expansion; everything else is
// passed through.
type Lowerer struct {
	noHeader bool
	errors   int
	lowered  int
}

// NewLowerer creates a Lowerer with default settings.
func NewLowerer() *Lowerer {
	return &Lowerer{}
}

// SplitComment splits a line into code and comment parts.
// The comment does NOT include the leading "#".
func SplitComment(line string) (code, comment string) {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
	}
	return strings.TrimSpace(line), ""
}

// SplitLabel separates a leading "label:" from the rest of the code.
func SplitLabel(code string) (label, rest string) {
	if idx := strings.IndexByte(code, ':'); idx >= 0 {
		return strings.TrimSpace(code[:idx+1]), strings.TrimSpace(code[idx+1:])
	}
	return "", code
}

// ClassifyLine determines the type of a comment-stripped line.
func ClassifyLine(code string) LineType {
	if code == "" {
		return LineEmpty
	}
	if _, rest := SplitLabel(code); rest == "" {
		return LineLabel
	}
	return LineInstruction
}

func leadingIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}

// LowerLine lowers a single line of source to one or more lines.
func (l *Lowerer) LowerLine(rawLine string) []string {
	trimmed := strings.TrimSpace(rawLine)

	// Empty line
	if trimmed == "" {
		return []string{""}
	}

	// Comment-only line - preserve verbatim
	if strings.HasPrefix(trimmed, "#") {
		return []string{rawLine}
	}

	indent := leadingIndent(rawLine)

	code, comment := SplitComment(trimmed)
	commentSuffix := ""
	if comment != "" {
		commentSuffix = "    # " + comment
	}

	switch ClassifyLine(code) {
	case LineEmpty:
		return []string{""}

	case LineLabel:
		return []string{indent + code + commentSuffix}
	}

	var out []string
	label, rest := SplitLabel(code)
	if label != "" {
		out = append(out, indent+label)
		if indent == "" {
			indent = "    "
		}
	}

	lines := l.lowerInstruction(rest, indent)
	// Attach comment to the first output line
	if comment != "" && len(lines) > 0 {
		lines[0] = lines[0] + commentSuffix
	}
	return append(out, lines...)
}

// lowerInstruction expands a pseudo-instruction or passes a base
// instruction through unchanged.
func (l *Lowerer) lowerInstruction(code string, indent string) []string {
	fields := strings.Fields(code)
	mnemonic := fields[0]
	operands := splitOperands(strings.TrimSpace(code[len(mnemonic):]))

	if !assembler.IsPseudo(mnemonic) {
		if _, ok := assembler.Lookup(mnemonic); !ok {
			return l.emitError(indent, code, "unknown instruction "+mnemonic)
		}
		return []string{indent + code}
	}

	expansion, err := assembler.Expand(mnemonic, operands)
	if err != nil {
		return l.emitError(indent, code, err.Error())
	}
	l.lowered++

	lines := make([]string, len(expansion))
	for i, rec := range expansion {
		lines[i] = indent + rec.Mnemonic + " " + strings.Join(rec.Operands, ", ")
	}
	return lines
}

// emitError emits an error comment and the original line commented out.
func (l *Lowerer) emitError(indent, code, msg string) []string {
	l.errors++
	return []string{
		indent + "# ERROR: " + msg,
		indent + "# " + code,
	}
}

// LowerFile lowers an entire source file held in memory.
func (l *Lowerer) LowerFile(name, input string) string {
	lines := strings.Split(input, "\n")
	var output []string

	if !l.noHeader {
		output = append(output, "# Lowered from "+filepath.Base(name)+" by rvlower")
		output = append(output, "")
	}

	for _, line := range lines {
		output = append(output, l.LowerLine(strings.TrimSuffix(line, "\r"))...)
	}

	return strings.Join(output, "\n")
}

// LowerFileFromPath reads a file and lowers it.
func (l *Lowerer) LowerFileFromPath(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return l.LowerFile(path, string(data)), nil
}

// splitOperands splits "a0, 8(sp)" into ["a0", "8(sp)"].
func splitOperands(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
