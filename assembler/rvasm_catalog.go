// rvasm_catalog.go - RISC-V instruction catalog

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
	"fmt"
	"sort"

	"github.com/SaveTheRbtz/mph"
)

// Shape is one of the six RISC-V base encoding layouts.
type Shape uint8

const (
	ShapeR Shape = iota
	ShapeI
	ShapeS
	ShapeB
	ShapeU
	ShapeJ
)

func (s Shape) String() string {
	switch s {
	case ShapeR:
		return "R"
	case ShapeI:
		return "I"
	case ShapeS:
		return "S"
	case ShapeB:
		return "B"
	case ShapeU:
		return "U"
	case ShapeJ:
		return "J"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// Major opcodes
const (
	OP_LOAD   = 0b0000011
	OP_IMM    = 0b0010011
	OP_AUIPC  = 0b0010111
	OP_IMM_32 = 0b0011011
	OP_STORE  = 0b0100011
	OP_REG    = 0b0110011
	OP_LUI    = 0b0110111
	OP_REG_32 = 0b0111011
	OP_BRANCH = 0b1100011
	OP_JALR   = 0b1100111
	OP_JAL    = 0b1101111
	OP_SYSTEM = 0b1110011
)

// Format describes how a mnemonic is encoded. Funct3 and Funct7 are only
// meaningful when the matching Has flag is set; encoders treat absent fields
// as zero. ShamtBits is non-zero for shift-immediate instructions and gives
// the width of the shift amount.
type Format struct {
	Shape     Shape
	Opcode    uint32
	Funct3    uint32
	Funct7    uint32
	HasFunct3 bool
	HasFunct7 bool
	ShamtBits uint8
}

func rType(opcode, funct3, funct7 uint32) Format {
	return Format{Shape: ShapeR, Opcode: opcode, Funct3: funct3, Funct7: funct7, HasFunct3: true, HasFunct7: true}
}

func iType(opcode, funct3 uint32) Format {
	return Format{Shape: ShapeI, Opcode: opcode, Funct3: funct3, HasFunct3: true}
}

func shift(opcode, funct3, funct7 uint32, shamtBits uint8) Format {
	f := iType(opcode, funct3)
	f.Funct7 = funct7
	f.HasFunct7 = true
	f.ShamtBits = shamtBits
	return f
}

func system(funct7 uint32) Format {
	f := iType(OP_SYSTEM, 0)
	f.Funct7 = funct7
	f.HasFunct7 = true
	return f
}

func sType(funct3 uint32) Format {
	return Format{Shape: ShapeS, Opcode: OP_STORE, Funct3: funct3, HasFunct3: true}
}

func bType(funct3 uint32) Format {
	return Format{Shape: ShapeB, Opcode: OP_BRANCH, Funct3: funct3, HasFunct3: true}
}

func uType(opcode uint32) Format {
	return Format{Shape: ShapeU, Opcode: opcode}
}

func jType(opcode uint32) Format {
	return Format{Shape: ShapeJ, Opcode: opcode}
}

// IsSystemCall reports whether f is ecall/ebreak, which take no operands.
func (f Format) IsSystemCall() bool {
	return f.Opcode == OP_SYSTEM && f.Funct3 == 0
}

// IsCSR reports whether f is one of the Zicsr instructions.
func (f Format) IsCSR() bool {
	return f.Opcode == OP_SYSTEM && f.Funct3 != 0
}

type catalogEntry struct {
	mnemonic string
	format   Format
}

var catalogEntries = []catalogEntry{
	// RV32I register-register
	{"add", rType(OP_REG, 0b000, 0b0000000)},
	{"sub", rType(OP_REG, 0b000, 0b0100000)},
	{"sll", rType(OP_REG, 0b001, 0b0000000)},
	{"slt", rType(OP_REG, 0b010, 0b0000000)},
	{"sltu", rType(OP_REG, 0b011, 0b0000000)},
	{"xor", rType(OP_REG, 0b100, 0b0000000)},
	{"srl", rType(OP_REG, 0b101, 0b0000000)},
	{"sra", rType(OP_REG, 0b101, 0b0100000)},
	{"or", rType(OP_REG, 0b110, 0b0000000)},
	{"and", rType(OP_REG, 0b111, 0b0000000)},

	// RV64I register-register word ops
	{"addw", rType(OP_REG_32, 0b000, 0b0000000)},
	{"subw", rType(OP_REG_32, 0b000, 0b0100000)},
	{"sllw", rType(OP_REG_32, 0b001, 0b0000000)},
	{"srlw", rType(OP_REG_32, 0b101, 0b0000000)},
	{"sraw", rType(OP_REG_32, 0b101, 0b0100000)},

	// M extension
	{"mul", rType(OP_REG, 0b000, 0b0000001)},
	{"mulh", rType(OP_REG, 0b001, 0b0000001)},
	{"mulhsu", rType(OP_REG, 0b010, 0b0000001)},
	{"mulhu", rType(OP_REG, 0b011, 0b0000001)},
	{"div", rType(OP_REG, 0b100, 0b0000001)},
	{"divu", rType(OP_REG, 0b101, 0b0000001)},
	{"rem", rType(OP_REG, 0b110, 0b0000001)},
	{"remu", rType(OP_REG, 0b111, 0b0000001)},
	{"mulw", rType(OP_REG_32, 0b000, 0b0000001)},
	{"divw", rType(OP_REG_32, 0b100, 0b0000001)},
	{"divuw", rType(OP_REG_32, 0b101, 0b0000001)},
	{"remw", rType(OP_REG_32, 0b110, 0b0000001)},
	{"remuw", rType(OP_REG_32, 0b111, 0b0000001)},

	// Register-immediate
	{"addi", iType(OP_IMM, 0b000)},
	{"slti", iType(OP_IMM, 0b010)},
	{"sltiu", iType(OP_IMM, 0b011)},
	{"xori", iType(OP_IMM, 0b100)},
	{"ori", iType(OP_IMM, 0b110)},
	{"andi", iType(OP_IMM, 0b111)},
	{"slli", shift(OP_IMM, 0b001, 0b0000000, 6)},
	{"srli", shift(OP_IMM, 0b101, 0b0000000, 6)},
	{"srai", shift(OP_IMM, 0b101, 0b0100000, 6)},
	{"addiw", iType(OP_IMM_32, 0b000)},
	{"slliw", shift(OP_IMM_32, 0b001, 0b0000000, 5)},
	{"srliw", shift(OP_IMM_32, 0b101, 0b0000000, 5)},
	{"sraiw", shift(OP_IMM_32, 0b101, 0b0100000, 5)},

	// Loads
	{"lb", iType(OP_LOAD, 0b000)},
	{"lh", iType(OP_LOAD, 0b001)},
	{"lw", iType(OP_LOAD, 0b010)},
	{"ld", iType(OP_LOAD, 0b011)},
	{"lbu", iType(OP_LOAD, 0b100)},
	{"lhu", iType(OP_LOAD, 0b101)},
	{"lwu", iType(OP_LOAD, 0b110)},

	// Stores
	{"sb", sType(0b000)},
	{"sh", sType(0b001)},
	{"sw", sType(0b010)},
	{"sd", sType(0b011)},

	// Branches
	{"beq", bType(0b000)},
	{"bne", bType(0b001)},
	{"blt", bType(0b100)},
	{"bge", bType(0b101)},
	{"bltu", bType(0b110)},
	{"bgeu", bType(0b111)},

	// Upper immediates
	{"lui", uType(OP_LUI)},
	{"auipc", uType(OP_AUIPC)},

	// Jumps
	{"jal", jType(OP_JAL)},
	{"jalr", iType(OP_JALR, 0b000)},

	// System
	{"ecall", system(0)},
	{"ebreak", system(1)},

	// Zicsr
	{"csrrw", iType(OP_SYSTEM, 0b001)},
	{"csrrs", iType(OP_SYSTEM, 0b010)},
	{"csrrc", iType(OP_SYSTEM, 0b011)},
	{"csrrwi", iType(OP_SYSTEM, 0b101)},
	{"csrrsi", iType(OP_SYSTEM, 0b110)},
	{"csrrci", iType(OP_SYSTEM, 0b111)},
}

var catalogTable = buildCatalogTable(catalogEntries)

func buildCatalogTable(entries []catalogEntry) *mph.Table {
	names := make([]string, len(entries))
	seen := make(map[string]bool, len(entries))
	for idx, e := range entries {
		if seen[e.mnemonic] {
			panic("duplicate catalog mnemonic: " + e.mnemonic)
		}
		seen[e.mnemonic] = true
		names[idx] = e.mnemonic
	}
	return mph.Build(names)
}

// Lookup returns the encoding format of a base mnemonic. The match is exact
// and case-sensitive.
func Lookup(mnemonic string) (Format, bool) {
	idx, ok := catalogTable.Lookup(mnemonic)
	if !ok {
		return Format{}, false
	}
	return catalogEntries[idx].format, true
}

// Mnemonics returns every base mnemonic in the catalog, sorted.
func Mnemonics() []string {
	names := make([]string, len(catalogEntries))
	for idx, e := range catalogEntries {
		names[idx] = e.mnemonic
	}
	sort.Strings(names)
	return names
}
