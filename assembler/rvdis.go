// rvdis.go - RISC-V Disassembler

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
	"encoding/binary"
	"fmt"
	"strings"
)

func regName(r uint32) string {
	return abiNames[r&mask5]
}

// ---------------------------------------------------------------------
// DecodedInstruction holds the decoded fields of a single instruction
// ---------------------------------------------------------------------

type DecodedInstruction struct {
	PC       uint32
	Raw      uint32
	Mnemonic string // empty when the word matches no catalog entry
	Format   Format
	Rd       uint32
	Rs1      uint32
	Rs2      uint32
	Imm      int32 // sign-extended; for U-type the raw 20-bit field
}

// Valid reports whether the word was recognised.
func (d DecodedInstruction) Valid() bool {
	return d.Mnemonic != ""
}

// decodeIndex groups catalog entries by major opcode.
var decodeIndex = buildDecodeIndex(catalogEntries)

func buildDecodeIndex(entries []catalogEntry) map[uint32][]int {
	index := make(map[uint32][]int)
	for idx, e := range entries {
		index[e.format.Opcode] = append(index[e.format.Opcode], idx)
	}
	return index
}

// matches reports whether word carries the fixed fields of f.
func (f Format) matches(word uint32) bool {
	if word&mask7 != f.Opcode {
		return false
	}
	if f.Shape == ShapeU || f.Shape == ShapeJ {
		return true
	}
	if (word>>12)&mask3 != f.Funct3 {
		return false
	}
	switch {
	case f.Shape == ShapeR:
		return word>>25 == f.Funct7
	case f.IsSystemCall():
		return word>>20 == f.Funct7 && (word>>7)&0x1FFF == 0
	case f.ShamtBits > 0:
		hi := word >> 25
		if f.ShamtBits == 6 {
			hi &^= 1
		}
		return hi == f.Funct7
	}
	return true
}

// Decode decodes one 32-bit instruction word located at pc.
func Decode(word uint32, pc uint32) DecodedInstruction {
	d := DecodedInstruction{
		PC:  pc,
		Raw: word,
		Rd:  (word >> 7) & mask5,
		Rs1: (word >> 15) & mask5,
		Rs2: (word >> 20) & mask5,
	}

	for _, idx := range decodeIndex[word&mask7] {
		e := catalogEntries[idx]
		if e.format.matches(word) {
			d.Mnemonic = e.mnemonic
			d.Format = e.format
			break
		}
	}
	if !d.Valid() {
		return d
	}

	switch d.Format.Shape {
	case ShapeI:
		d.Imm = int32(word) >> 20
	case ShapeS:
		d.Imm = (int32(word)>>25)<<5 | int32((word>>7)&0x1F)
	case ShapeB:
		imm := (word>>31&1)<<12 | (word>>7&1)<<11 | (word>>25&0x3F)<<5 | (word>>8&0xF)<<1
		d.Imm = int32(imm<<19) >> 19
	case ShapeU:
		d.Imm = int32(word >> 12)
	case ShapeJ:
		imm := (word>>31&1)<<20 | (word>>12&0xFF)<<12 | (word>>20&1)<<11 | (word>>21&0x3FF)<<1
		d.Imm = int32(imm<<11) >> 11
	}
	return d
}

// ---------------------------------------------------------------------
// FormatInstruction formats a single decoded instruction as a string.
// It does NOT fuse multi-instruction pseudo-ops (li via lui + addi).
// Returns (hex word, mnemonic+operands).
// ---------------------------------------------------------------------

func FormatInstruction(d DecodedInstruction) (string, string) {
	hexWord := fmt.Sprintf("%08X", d.Raw)

	if !d.Valid() {
		return hexWord, fmt.Sprintf(".word 0x%08X  # unknown", d.Raw)
	}

	f := d.Format
	m := d.Mnemonic
	rd, rs1, rs2 := regName(d.Rd), regName(d.Rs1), regName(d.Rs2)

	switch f.Shape {
	case ShapeR:
		switch {
		case m == "sub" && d.Rs1 == 0:
			return hexWord, fmt.Sprintf("neg %s, %s", rd, rs2)
		case m == "subw" && d.Rs1 == 0:
			return hexWord, fmt.Sprintf("negw %s, %s", rd, rs2)
		case m == "sltu" && d.Rs1 == 0:
			return hexWord, fmt.Sprintf("snez %s, %s", rd, rs2)
		case m == "slt" && d.Rs2 == 0:
			return hexWord, fmt.Sprintf("sltz %s, %s", rd, rs1)
		case m == "slt" && d.Rs1 == 0:
			return hexWord, fmt.Sprintf("sgtz %s, %s", rd, rs2)
		}
		return hexWord, fmt.Sprintf("%s %s, %s, %s", m, rd, rs1, rs2)

	case ShapeI:
		return hexWord, formatIType(d, rd, rs1)

	case ShapeS:
		return hexWord, fmt.Sprintf("%s %s, %d(%s)", m, rs2, d.Imm, rs1)

	case ShapeB:
		target := d.PC + uint32(d.Imm)
		switch {
		case m == "beq" && d.Rs2 == 0:
			return hexWord, fmt.Sprintf("beqz %s, %d  # 0x%08X", rs1, d.Imm, target)
		case m == "bne" && d.Rs2 == 0:
			return hexWord, fmt.Sprintf("bnez %s, %d  # 0x%08X", rs1, d.Imm, target)
		case m == "bge" && d.Rs1 == 0:
			return hexWord, fmt.Sprintf("blez %s, %d  # 0x%08X", rs2, d.Imm, target)
		case m == "bge" && d.Rs2 == 0:
			return hexWord, fmt.Sprintf("bgez %s, %d  # 0x%08X", rs1, d.Imm, target)
		case m == "blt" && d.Rs2 == 0:
			return hexWord, fmt.Sprintf("bltz %s, %d  # 0x%08X", rs1, d.Imm, target)
		case m == "blt" && d.Rs1 == 0:
			return hexWord, fmt.Sprintf("bgtz %s, %d  # 0x%08X", rs2, d.Imm, target)
		}
		return hexWord, fmt.Sprintf("%s %s, %s, %d  # 0x%08X", m, rs1, rs2, d.Imm, target)

	case ShapeU:
		return hexWord, fmt.Sprintf("%s %s, 0x%X", m, rd, d.Imm)

	case ShapeJ:
		target := d.PC + uint32(d.Imm)
		if d.Rd == 0 {
			return hexWord, fmt.Sprintf("j %d  # 0x%08X", d.Imm, target)
		}
		return hexWord, fmt.Sprintf("%s %s, %d  # 0x%08X", m, rd, d.Imm, target)
	}
	return hexWord, fmt.Sprintf("%s ???", m)
}

func formatIType(d DecodedInstruction, rd, rs1 string) string {
	f := d.Format
	m := d.Mnemonic

	switch {
	case f.IsSystemCall():
		return m

	case f.IsCSR():
		return formatCSR(d, rd, rs1)

	case f.ShamtBits > 0:
		shamt := d.Imm & (1<<f.ShamtBits - 1)
		return fmt.Sprintf("%s %s, %s, %d", m, rd, rs1, shamt)

	case f.Opcode == OP_LOAD:
		return fmt.Sprintf("%s %s, %d(%s)", m, rd, d.Imm, rs1)

	case f.Opcode == OP_JALR:
		switch {
		case d.Rd == 0 && d.Rs1 == 1 && d.Imm == 0:
			return "ret"
		case d.Rd == 0 && d.Imm == 0:
			return fmt.Sprintf("jr %s", rs1)
		}
		return fmt.Sprintf("%s %s, %d(%s)", m, rd, d.Imm, rs1)
	}

	switch {
	case m == "addi" && d.Rd == 0 && d.Rs1 == 0 && d.Imm == 0:
		return "nop"
	case m == "addi" && d.Rs1 == 0:
		return fmt.Sprintf("li %s, %d", rd, d.Imm)
	case m == "addi" && d.Imm == 0:
		return fmt.Sprintf("mv %s, %s", rd, rs1)
	case m == "xori" && d.Imm == -1:
		return fmt.Sprintf("not %s, %s", rd, rs1)
	case m == "sltiu" && d.Imm == 1:
		return fmt.Sprintf("seqz %s, %s", rd, rs1)
	case m == "addiw" && d.Imm == 0:
		return fmt.Sprintf("sext.w %s, %s", rd, rs1)
	}
	return fmt.Sprintf("%s %s, %s, %d", m, rd, rs1, d.Imm)
}

func formatCSR(d DecodedInstruction, rd, rs1 string) string {
	addr := uint32(d.Imm) & mask12
	csr, ok := csrName(addr)
	if !ok {
		csr = fmt.Sprintf("0x%03X", addr)
	}

	immForm := d.Format.Funct3 >= 0b101
	src := rs1
	if immForm {
		src = fmt.Sprintf("%d", d.Rs1)
	}

	if d.Mnemonic == "csrrs" && d.Rs1 == 0 {
		return fmt.Sprintf("csrr %s, %s", rd, csr)
	}
	if d.Rd == 0 {
		short := map[string]string{
			"csrrw": "csrw", "csrrs": "csrs", "csrrc": "csrc",
			"csrrwi": "csrwi", "csrrsi": "csrsi", "csrrci": "csrci",
		}[d.Mnemonic]
		return fmt.Sprintf("%s %s, %s", short, csr, src)
	}
	return fmt.Sprintf("%s %s, %s, %s", d.Mnemonic, rd, csr, src)
}

// ---------------------------------------------------------------------
// Disassemble processes an entire binary and returns formatted lines.
// It recognizes lui + addi pairs on the same register as li.
// ---------------------------------------------------------------------

func Disassemble(data []byte, baseAddr uint32) []string {
	var lines []string
	offset := 0
	for offset+instrSize <= len(data) {
		pc := baseAddr + uint32(offset)
		d := Decode(binary.LittleEndian.Uint32(data[offset:]), pc)

		// li pseudo-op: lui rd, hi followed by addi rd, rd, lo
		if d.Mnemonic == "lui" && d.Rd != 0 && offset+2*instrSize <= len(data) {
			next := Decode(binary.LittleEndian.Uint32(data[offset+instrSize:]), pc+instrSize)
			if next.Mnemonic == "addi" && next.Rd == d.Rd && next.Rs1 == d.Rd {
				value := int32(uint32(d.Imm)<<12) + next.Imm

				lines = append(lines,
					fmt.Sprintf("%08X: %08X    li %s, %d", pc, d.Raw, regName(d.Rd), value))
				lines = append(lines,
					fmt.Sprintf("%08X: %08X     # (addi %s, %s, %d)", pc+instrSize, next.Raw, regName(next.Rd), regName(next.Rs1), next.Imm))
				offset += 2 * instrSize
				continue
			}
		}

		hexWord, asm := FormatInstruction(d)
		lines = append(lines, fmt.Sprintf("%08X: %s    %s", pc, hexWord, asm))
		offset += instrSize
	}

	// Handle trailing bytes that don't form a complete instruction
	if offset < len(data) {
		pc := baseAddr + uint32(offset)
		var hexParts []string
		for _, b := range data[offset:] {
			hexParts = append(hexParts, fmt.Sprintf("0x%02X", b))
		}
		lines = append(lines, fmt.Sprintf("%08X: %-8s    .byte %s  # trailing bytes",
			pc, "", strings.Join(hexParts, ", ")))
	}

	return lines
}
