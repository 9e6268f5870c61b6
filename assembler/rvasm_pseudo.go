// rvasm_pseudo.go - Pseudo-instruction expansion

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
Pseudo-instructions are rewritten into base instructions before encoding:

  nop                 -> addi x0, x0, 0
  li   rd, imm        -> addi rd, x0, imm                 (-2048 <= imm <= 2047)
                      -> lui rd, hi [+ addi rd, rd, lo]   (otherwise; addi omitted when lo == 0)
  mv   rd, rs         -> addi rd, rs, 0
  not  rd, rs         -> xori rd, rs, -1
  neg  rd, rs         -> sub rd, x0, rs
  negw rd, rs         -> subw rd, x0, rs
  sext.w rd, rs       -> addiw rd, rs, 0
  seqz rd, rs         -> sltiu rd, rs, 1
  snez rd, rs         -> sltu rd, x0, rs
  sltz rd, rs         -> slt rd, rs, x0
  sgtz rd, rs         -> slt rd, x0, rs
  sgt  rd, rs, rt     -> slt rd, rt, rs
  sgtu rd, rs, rt     -> sltu rd, rt, rs
  beqz rs, off        -> beq rs, x0, off
  bnez rs, off        -> bne rs, x0, off
  blez rs, off        -> bge x0, rs, off
  bgez rs, off        -> bge rs, x0, off
  bltz rs, off        -> blt rs, x0, off
  bgtz rs, off        -> blt x0, rs, off
  bgt  rs, rt, off    -> blt rt, rs, off
  ble  rs, rt, off    -> bge rt, rs, off
  bgtu rs, rt, off    -> bltu rt, rs, off
  bleu rs, rt, off    -> bgeu rt, rs, off
  j    off            -> jal x0, off
  jr   rs             -> jalr x0, rs, 0
  ret                 -> jalr x0, x1, 0
  csrr rd, csr        -> csrrs rd, csr, x0
  csrw csr, rs        -> csrrw x0, csr, rs
  csrs csr, rs        -> csrrs x0, csr, rs
  csrc csr, rs        -> csrrc x0, csr, rs
  csrwi csr, uimm     -> csrrwi x0, csr, uimm
  csrsi csr, uimm     -> csrrsi x0, csr, uimm
  csrci csr, uimm     -> csrrci x0, csr, uimm

The number of base instructions a rule produces never depends on labels:
it is fixed per rule, except for li where it depends only on the literal.
*/

package assembler

import (
	"strconv"

	"github.com/SaveTheRbtz/mph"
)

// Expansion is one base instruction produced by a pseudo-instruction.
type Expansion struct {
	Mnemonic string
	Operands []string
}

type pseudoRule struct {
	mnemonic string
	arity    int
	lower    func(ops []string) ([]Expansion, error)
}

func one(mnemonic string, operands ...string) []Expansion {
	return []Expansion{{Mnemonic: mnemonic, Operands: operands}}
}

// fixed builds a rule that always produces exactly one instruction.
func fixed(mnemonic string, arity int, lower func(ops []string) []Expansion) pseudoRule {
	return pseudoRule{
		mnemonic: mnemonic,
		arity:    arity,
		lower: func(ops []string) ([]Expansion, error) {
			return lower(ops), nil
		},
	}
}

var pseudoRules = []pseudoRule{
	fixed("nop", 0, func([]string) []Expansion { return one("addi", "x0", "x0", "0") }),
	{mnemonic: "li", arity: 2, lower: lowerLi},
	fixed("mv", 2, func(ops []string) []Expansion { return one("addi", ops[0], ops[1], "0") }),
	fixed("not", 2, func(ops []string) []Expansion { return one("xori", ops[0], ops[1], "-1") }),
	fixed("neg", 2, func(ops []string) []Expansion { return one("sub", ops[0], "x0", ops[1]) }),
	fixed("negw", 2, func(ops []string) []Expansion { return one("subw", ops[0], "x0", ops[1]) }),
	fixed("sext.w", 2, func(ops []string) []Expansion { return one("addiw", ops[0], ops[1], "0") }),
	fixed("seqz", 2, func(ops []string) []Expansion { return one("sltiu", ops[0], ops[1], "1") }),
	fixed("snez", 2, func(ops []string) []Expansion { return one("sltu", ops[0], "x0", ops[1]) }),
	fixed("sltz", 2, func(ops []string) []Expansion { return one("slt", ops[0], ops[1], "x0") }),
	fixed("sgtz", 2, func(ops []string) []Expansion { return one("slt", ops[0], "x0", ops[1]) }),
	fixed("sgt", 3, func(ops []string) []Expansion { return one("slt", ops[0], ops[2], ops[1]) }),
	fixed("sgtu", 3, func(ops []string) []Expansion { return one("sltu", ops[0], ops[2], ops[1]) }),

	// Branches against zero
	fixed("beqz", 2, func(ops []string) []Expansion { return one("beq", ops[0], "x0", ops[1]) }),
	fixed("bnez", 2, func(ops []string) []Expansion { return one("bne", ops[0], "x0", ops[1]) }),
	fixed("blez", 2, func(ops []string) []Expansion { return one("bge", "x0", ops[0], ops[1]) }),
	fixed("bgez", 2, func(ops []string) []Expansion { return one("bge", ops[0], "x0", ops[1]) }),
	fixed("bltz", 2, func(ops []string) []Expansion { return one("blt", ops[0], "x0", ops[1]) }),
	fixed("bgtz", 2, func(ops []string) []Expansion { return one("blt", "x0", ops[0], ops[1]) }),

	// Branches with swapped operands
	fixed("bgt", 3, func(ops []string) []Expansion { return one("blt", ops[1], ops[0], ops[2]) }),
	fixed("ble", 3, func(ops []string) []Expansion { return one("bge", ops[1], ops[0], ops[2]) }),
	fixed("bgtu", 3, func(ops []string) []Expansion { return one("bltu", ops[1], ops[0], ops[2]) }),
	fixed("bleu", 3, func(ops []string) []Expansion { return one("bgeu", ops[1], ops[0], ops[2]) }),

	// Jumps
	fixed("j", 1, func(ops []string) []Expansion { return one("jal", "x0", ops[0]) }),
	fixed("jr", 1, func(ops []string) []Expansion { return one("jalr", "x0", ops[0], "0") }),
	fixed("ret", 0, func([]string) []Expansion { return one("jalr", "x0", "x1", "0") }),

	// CSR access
	fixed("csrr", 2, func(ops []string) []Expansion { return one("csrrs", ops[0], ops[1], "x0") }),
	fixed("csrw", 2, func(ops []string) []Expansion { return one("csrrw", "x0", ops[0], ops[1]) }),
	fixed("csrs", 2, func(ops []string) []Expansion { return one("csrrs", "x0", ops[0], ops[1]) }),
	fixed("csrc", 2, func(ops []string) []Expansion { return one("csrrc", "x0", ops[0], ops[1]) }),
	fixed("csrwi", 2, func(ops []string) []Expansion { return one("csrrwi", "x0", ops[0], ops[1]) }),
	fixed("csrsi", 2, func(ops []string) []Expansion { return one("csrrsi", "x0", ops[0], ops[1]) }),
	fixed("csrci", 2, func(ops []string) []Expansion { return one("csrrci", "x0", ops[0], ops[1]) }),
}

var pseudoTable = buildPseudoTable(pseudoRules)

func buildPseudoTable(rules []pseudoRule) *mph.Table {
	names := make([]string, len(rules))
	for idx, rule := range rules {
		names[idx] = rule.mnemonic
	}
	return mph.Build(names)
}

// IsPseudo reports whether mnemonic is a pseudo-instruction.
func IsPseudo(mnemonic string) bool {
	_, ok := pseudoTable.Lookup(mnemonic)
	return ok
}

// PseudoMnemonics returns the names of all pseudo-instructions in table order.
func PseudoMnemonics() []string {
	names := make([]string, len(pseudoRules))
	for idx, rule := range pseudoRules {
		names[idx] = rule.mnemonic
	}
	return names
}

// Expand rewrites a pseudo-instruction into base instructions. It looks only
// at the mnemonic and the operand text; addresses and labels are resolved by
// the caller.
func Expand(mnemonic string, operands []string) ([]Expansion, error) {
	idx, ok := pseudoTable.Lookup(mnemonic)
	if !ok {
		return nil, InvalidInstructionError{Mnemonic: mnemonic}
	}
	rule := pseudoRules[idx]
	if len(operands) != rule.arity {
		return nil, arityError(mnemonic, strconv.Itoa(rule.arity), len(operands))
	}
	return rule.lower(operands)
}

// splitLi computes the lui/addi halves of a 32-bit constant. The low part is
// sign-extended by addi, so the upper part is rounded to compensate.
func splitLi(imm int32) (upper, lower int32) {
	v := int64(imm)
	hi := (v + 0x800) >> 12
	lo := v - hi<<12
	// hi can reach 0x80000 for values near MaxInt32; lui keeps only 20 bits
	return int32(hi), int32(lo)
}

func lowerLi(ops []string) ([]Expansion, error) {
	rd, immText := ops[0], ops[1]
	imm, err := ParseImmediate(immText)
	if err != nil {
		return nil, InvalidOperandError{Operand: immText, Reason: "li requires a numeric immediate"}
	}

	if imm >= -2048 && imm <= 2047 {
		return one("addi", rd, "x0", strconv.Itoa(int(imm))), nil
	}

	upper, lower := splitLi(imm)
	out := one("lui", rd, strconv.Itoa(int(upper)))
	if lower != 0 {
		out = append(out, Expansion{Mnemonic: "addi", Operands: []string{rd, rd, strconv.Itoa(int(lower))}})
	}
	return out, nil
}
