// rvasm_encode.go - Bit packing for the six RISC-V instruction formats

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
RISC-V base instruction formats (32 bits, little-endian in memory):

   31        25 24   20 19   15 14  12 11        7 6      0
  |  funct7    |  rs2  |  rs1  |funct3|    rd     | opcode |  R
  |      imm[11:0]     |  rs1  |funct3|    rd     | opcode |  I
  | imm[11:5]  |  rs2  |  rs1  |funct3| imm[4:0]  | opcode |  S
  |imm[12|10:5]|  rs2  |  rs1  |funct3|imm[4:1|11]| opcode |  B
  |            imm[31:12]              |    rd     | opcode |  U
  |     imm[20|10:1|11|19:12]          |    rd     | opcode |  J

Every field is masked to its width before packing; immediates wrap
(two's complement truncation), they never saturate.
*/

package assembler

const (
	mask3  = 0x7
	mask5  = 0x1F
	mask7  = 0x7F
	mask12 = 0xFFF
	mask13 = 0x1FFF
	mask20 = 0xFFFFF
	mask21 = 0x1FFFFF
)

// EncodeRType packs funct7 | rs2 | rs1 | funct3 | rd | opcode.
func EncodeRType(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return (funct7&mask7)<<25 |
		(rs2&mask5)<<20 |
		(rs1&mask5)<<15 |
		(funct3&mask3)<<12 |
		(rd&mask5)<<7 |
		opcode&mask7
}

// EncodeIType packs imm[11:0] | rs1 | funct3 | rd | opcode.
func EncodeIType(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	immU := uint32(imm) & mask12
	return immU<<20 |
		(rs1&mask5)<<15 |
		(funct3&mask3)<<12 |
		(rd&mask5)<<7 |
		opcode&mask7
}

// EncodeSType packs imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode.
func EncodeSType(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	immU := uint32(imm) & mask12
	lo := immU & 0x1F
	hi := (immU >> 5) & 0x7F
	return hi<<25 |
		(rs2&mask5)<<20 |
		(rs1&mask5)<<15 |
		(funct3&mask3)<<12 |
		lo<<7 |
		opcode&mask7
}

// EncodeBType packs imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | opcode.
// imm is the byte offset; bit 0 is not encodable and is dropped.
func EncodeBType(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	immU := uint32(imm) & mask13
	bit11 := (immU >> 11) & 0x1
	bits4to1 := (immU >> 1) & 0xF
	bits10to5 := (immU >> 5) & 0x3F
	bit12 := (immU >> 12) & 0x1
	return bit12<<31 |
		bits10to5<<25 |
		(rs2&mask5)<<20 |
		(rs1&mask5)<<15 |
		(funct3&mask3)<<12 |
		bits4to1<<8 |
		bit11<<7 |
		opcode&mask7
}

// EncodeUType packs imm[31:12] | rd | opcode. imm is the 20-bit upper field
// value (as written in `lui rd, 0x12345`); the encoder shifts it into place.
func EncodeUType(opcode, rd uint32, imm int32) uint32 {
	immU := uint32(imm) & mask20
	return immU<<12 |
		(rd&mask5)<<7 |
		opcode&mask7
}

// EncodeJType packs imm[20|10:1|11|19:12] | rd | opcode.
// imm is the byte offset; bit 0 is not encodable and is dropped.
func EncodeJType(opcode, rd uint32, imm int32) uint32 {
	immU := uint32(imm) & mask21
	bits19to12 := (immU >> 12) & 0xFF
	bit11 := (immU >> 11) & 0x1
	bits10to1 := (immU >> 1) & 0x3FF
	bit20 := (immU >> 20) & 0x1
	return bit20<<31 |
		bits10to1<<21 |
		bit11<<20 |
		bits19to12<<12 |
		(rd&mask5)<<7 |
		opcode&mask7
}

// fitsBits reports whether v can be stored in an n-bit field without loss,
// read either as a signed or as an unsigned quantity.
func fitsBits(v int64, n uint) bool {
	lo := -(int64(1) << (n - 1))
	hi := int64(1)<<n - 1
	return v >= lo && v <= hi
}

// fitsSigned reports whether v is representable as an n-bit signed value.
func fitsSigned(v int64, n uint) bool {
	lo := -(int64(1) << (n - 1))
	hi := int64(1)<<(n-1) - 1
	return v >= lo && v <= hi
}
