// rvasm_errors.go - Error kinds reported by the RISC-V assembler

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

package assembler

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

// ErrorKind classifies every error the assembler can return.
type ErrorKind uint8

const (
	KindParse ErrorKind = iota
	KindInvalidInstruction
	KindInvalidOperand
	KindUndefinedLabel
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindInvalidInstruction:
		return "InvalidInstruction"
	case KindInvalidOperand:
		return "InvalidOperand"
	case KindUndefinedLabel:
		return "UndefinedLabel"
	case KindIO:
		return "IOError"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// KindedError is implemented by all assembler error values.
type KindedError interface {
	error
	Kind() ErrorKind
}

// SecondaryError is implemented by errors that carry a hint for the user.
type SecondaryError interface {
	SecondaryError() string
}

// KindOf returns the kind of the first assembler error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var k KindedError
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return 0, false
}

// ParseError reports malformed line structure or a wrong operand count.
type ParseError struct {
	Msg string
}

func newParseError(format string, args ...any) ParseError {
	return ParseError{Msg: fmt.Sprintf(format, args...)}
}

func (e ParseError) Error() string { return e.Msg }
func (ParseError) Kind() ErrorKind { return KindParse }

// arityError is the ParseError returned when an instruction gets the wrong
// number of operands.
func arityError(mnemonic string, want string, got int) ParseError {
	return newParseError("expected %s operands for %s but received %d", want, mnemonic, got)
}

// InvalidInstructionError reports a mnemonic that is neither in the
// instruction catalog nor a pseudo-instruction.
type InvalidInstructionError struct {
	Mnemonic   string
	Suggestion string
}

func (e InvalidInstructionError) Error() string {
	return fmt.Sprintf("invalid instruction: %s", e.Mnemonic)
}

func (InvalidInstructionError) Kind() ErrorKind { return KindInvalidInstruction }

func (e InvalidInstructionError) SecondaryError() string {
	if e.Suggestion == "" {
		return ""
	}
	return fmt.Sprintf("did you mean `%s`?", e.Suggestion)
}

// InvalidOperandError reports a register, immediate, offset or CSR operand
// that cannot be decoded.
type InvalidOperandError struct {
	Operand string
	Reason  string
}

func (e InvalidOperandError) Error() string {
	if e.Operand == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Operand)
}

func (InvalidOperandError) Kind() ErrorKind { return KindInvalidOperand }

// UndefinedLabelError reports a branch, jump or upper-immediate target that
// is not in the symbol table after pass 1.
type UndefinedLabelError struct {
	Label string
}

func (e UndefinedLabelError) Error() string {
	return fmt.Sprintf("undefined label: %s", e.Label)
}

func (UndefinedLabelError) Kind() ErrorKind { return KindUndefinedLabel }

// IOError wraps a failure of the line source.
type IOError struct {
	Err error
}

func (e IOError) Error() string { return fmt.Sprintf("read error: %v", e.Err) }
func (IOError) Kind() ErrorKind { return KindIO }
func (e IOError) Unwrap() error { return e.Err }

// LineError attaches the source position to an error raised while
// assembling a line. Printing it with %+v includes the source text.
type LineError struct {
	Line   int
	Pass   int
	Source string
	Err    error
}

var _ xerrors.Formatter = (*LineError)(nil)

func (e *LineError) Error() string {
	msg := fmt.Sprintf("line %d: %v", e.Line, e.Err)
	var secondary SecondaryError
	if errors.As(e.Err, &secondary) {
		if hint := secondary.SecondaryError(); hint != "" {
			msg += " (" + hint + ")"
		}
	}
	return msg
}

func (e *LineError) Unwrap() error { return e.Err }

func (e *LineError) Format(s fmt.State, verb rune) { xerrors.FormatError(e, s, verb) }

func (e *LineError) FormatError(p xerrors.Printer) error {
	p.Printf("line %d", e.Line)
	if p.Detail() {
		p.Printf("pass %d: %s", e.Pass, e.Source)
	}
	return e.Err
}
