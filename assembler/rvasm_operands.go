// rvasm_operands.go - Operand parsing for the RISC-V assembler

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
	"strconv"
	"strings"
	"unicode"
)

// ParseRegister decodes a general-purpose register operand. It accepts ABI
// names (zero, ra, sp, gp, tp, t0-t6, s0-s11, a0-a7, fp), the RISC-V form
// x0-x31 and the MIPS-style form $0-$31, case-insensitively.
func ParseRegister(tok string) (uint32, error) {
	name := strings.ToLower(strings.TrimSpace(tok))

	if num, ok := abiRegisters.lookup(name); ok {
		return num, nil
	}

	var digits string
	switch {
	case strings.HasPrefix(name, "x"):
		digits = name[1:]
	case strings.HasPrefix(name, "$"):
		digits = name[1:]
	default:
		return 0, InvalidOperandError{Operand: tok, Reason: "invalid register"}
	}

	num, err := strconv.ParseUint(digits, 10, 32)
	if err != nil || num > 31 {
		return 0, InvalidOperandError{Operand: tok, Reason: "invalid register"}
	}
	return uint32(num), nil
}

// ParseImmediate decodes an integer literal. A leading '-' negates, the
// prefixes 0x, 0b and 0o select the radix (decimal otherwise) and '_' digit
// separators are ignored. Hex, binary and octal magnitudes are read as
// unsigned 32-bit values and reinterpreted, so 0xFFFFFFFF is -1. Decimal
// literals must fit in int32.
func ParseImmediate(tok string) (int32, error) {
	text := strings.ReplaceAll(strings.TrimSpace(tok), "_", "")

	negative := false
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}

	radix := 10
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			radix = 16
		case 'b', 'B':
			radix = 2
		case 'o', 'O':
			radix = 8
		}
		if radix != 10 {
			text = text[2:]
		}
	}

	if text == "" {
		return 0, InvalidOperandError{Operand: tok, Reason: "invalid immediate"}
	}

	mag, err := strconv.ParseUint(text, radix, 32)
	if err != nil {
		return 0, InvalidOperandError{Operand: tok, Reason: "invalid immediate"}
	}

	if radix == 10 {
		limit := uint64(1<<31 - 1)
		if negative {
			limit++
		}
		if mag > limit {
			return 0, InvalidOperandError{Operand: tok, Reason: "immediate out of range"}
		}
		v := int64(mag)
		if negative {
			v = -v
		}
		return int32(v), nil
	}

	v := int32(uint32(mag))
	if negative {
		v = -v
	}
	return v, nil
}

// ParseOffset decodes the imm(reg) form used by loads, stores and jalr.
// An empty immediate means 0. Register 0 is rejected as a base.
func ParseOffset(tok string) (int32, uint32, error) {
	text := strings.TrimSpace(tok)

	open := strings.IndexByte(text, '(')
	if open < 0 {
		return 0, 0, InvalidOperandError{Operand: tok, Reason: "expected imm(reg)"}
	}
	if strings.Count(text, "(") != 1 {
		return 0, 0, newParseError("invalid offset format: %s", tok)
	}
	if !strings.HasSuffix(text, ")") {
		return 0, 0, newParseError("invalid offset format: %s", tok)
	}

	immText := strings.TrimSpace(text[:open])
	regText := text[open+1 : len(text)-1]

	var imm int32
	if immText != "" {
		var err error
		imm, err = ParseImmediate(immText)
		if err != nil {
			return 0, 0, err
		}
	}

	rs1, err := ParseRegister(regText)
	if err != nil {
		return 0, 0, err
	}
	// x0 is hardwired to zero and cannot be used as a base here
	if rs1 == 0 {
		return 0, 0, InvalidOperandError{Operand: tok, Reason: "register 0 cannot be used as a base"}
	}
	return imm, rs1, nil
}

// ParseCSR decodes a control and status register operand, either as a
// number or as a CSR name.
func ParseCSR(tok string) (int32, error) {
	if v, err := ParseImmediate(tok); err == nil {
		if v < 0 || v > mask12 {
			return 0, InvalidOperandError{Operand: tok, Reason: "CSR address out of range"}
		}
		return v, nil
	}
	if addr, ok := csrAddresses.lookup(strings.ToLower(strings.TrimSpace(tok))); ok {
		return int32(addr), nil
	}
	return 0, InvalidOperandError{Operand: tok, Reason: "invalid CSR name or immediate"}
}

// splitOperands breaks the operand text of a line into tokens. Operands are
// separated by whitespace and/or commas, so trailing commas disappear.
func splitOperands(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
