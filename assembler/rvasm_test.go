// rvasm_test.go

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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// assembleString is a test helper that assembles a string and returns the
// binary output.
func assembleString(t *testing.T, src string) []byte {
	t.Helper()
	asm := NewAssembler()
	result, err := asm.AssembleString(src)
	require.NoError(t, err, "assembly failed")
	return result
}

// assembleExpectError is a test helper that expects assembly to fail.
func assembleExpectError(t *testing.T, src string) error {
	t.Helper()
	asm := NewAssembler()
	result, err := asm.AssembleString(src)
	require.Error(t, err, "expected assembly error, got nil")
	require.Nil(t, result, "no partial output on error")
	return err
}

// words splits machine code into little-endian 32-bit words.
func words(t *testing.T, code []byte) []uint32 {
	t.Helper()
	require.Zero(t, len(code)%4, "code length %d is not a multiple of 4", len(code))
	out := make([]uint32, len(code)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return out
}

func assertWords(t *testing.T, src string, want ...uint32) {
	t.Helper()
	got := words(t, assembleString(t, src))
	require.Equal(t, hexWords(want), hexWords(got), "source:\n%s", src)
}

func hexWords(ws []uint32) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = fmt.Sprintf("0x%08X", w)
	}
	return out
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	kind, ok := KindOf(err)
	require.True(t, ok, "error %v carries no kind", err)
	assert.Equal(t, want, kind, "error: %v", err)
}

// ---------------------------------------------------------------------------
// Base instructions
// ---------------------------------------------------------------------------

func TestRVAsm_RType(t *testing.T) {
	assertWords(t, "add x4, x5, x6", 0x00628233)
	assertWords(t, "sub a0, a1, a2", 0x40C58533)
	assertWords(t, "mul a0, a1, a2", 0x02C58533)
}

func TestRVAsm_ITypeArithmetic(t *testing.T) {
	asm := NewAssembler()
	code, err := asm.AssembleString("addi x4, x5, 0xACE")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xACE28213}, words(t, code))
	assert.Empty(t, asm.GetWarnings())
}

func TestRVAsm_Loads(t *testing.T) {
	assertWords(t, "lw a0, 8(sp)", 0x00812503)
	assertWords(t, "ld a0, -16(s0)", 0xFF043503)
	assertWords(t, "ld a0, -16(fp)", 0xFF043503)
}

func TestRVAsm_Stores(t *testing.T) {
	assertWords(t, "sw a0, 8(sp)", 0x00A12423)
	assertWords(t, "sd ra, -8(sp)", 0xFE113C23)
}

func TestRVAsm_UpperImmediates(t *testing.T) {
	assertWords(t, "lui x1, 0x12345", 0x123450B7)
	assertWords(t, "auipc t0, 1", 0x00001297)
}

func TestRVAsm_JumpsAndBranchesLiteral(t *testing.T) {
	assertWords(t, "jal ra, 8", 0x008000EF)
	assertWords(t, "jal x0, -4", 0xFFDFF06F)
	assertWords(t, "bne a0, a1, -8", 0xFEB51CE3)
	assertWords(t, "jalr ra, 0(t0)", 0x000280E7)
}

func TestRVAsm_EcallEbreak(t *testing.T) {
	assertWords(t, "ecall\nebreak", 0x00000073, 0x00100073)
}

func TestRVAsm_Shifts(t *testing.T) {
	assertWords(t, "slli a0, a0, 3", 0x00351513)
	assertWords(t, "srai a0, a0, 63", 0x43F55513)
	assertWords(t, "sraiw a0, a0, 31", 0x41F5551B)

	err := assembleExpectError(t, "slliw a0, a0, 32")
	assertKind(t, err, KindInvalidOperand)
	err = assembleExpectError(t, "slli a0, a0, -1")
	assertKind(t, err, KindInvalidOperand)
}

func TestRVAsm_CSR(t *testing.T) {
	assertWords(t, "csrrw t0, mstatus, t1", 0x300312F3)
	assertWords(t, "csrrwi x0, mtvec, 5", 0x3052D073)
	assertWords(t, "csrrs a0, MHARTID, x0", 0xF1402573)
	assertWords(t, "csrrs a0, 0xF14, zero", 0xF1402573)

	err := assembleExpectError(t, "csrrwi x0, mtvec, 32")
	assertKind(t, err, KindInvalidOperand)
	err = assembleExpectError(t, "csrrw t0, nosuchcsr, t1")
	assertKind(t, err, KindInvalidOperand)
}

// ---------------------------------------------------------------------------
// Source format
// ---------------------------------------------------------------------------

func TestRVAsm_CommentsAndBlankLines(t *testing.T) {
	src := `
# full line comment

    add x4, x5, x6   # trailing comment
`
	assertWords(t, src, 0x00628233)
}

func TestRVAsm_OperandSeparators(t *testing.T) {
	assertWords(t, "add x4,x5,x6", 0x00628233)
	assertWords(t, "add x4 x5 x6", 0x00628233)
	assertWords(t, "add x4, x5, x6,", 0x00628233)
	assertWords(t, "add\tx4,\tx5,\tx6", 0x00628233)
}

func TestRVAsm_RegisterForms(t *testing.T) {
	assertWords(t, "add $4, $5, $6", 0x00628233)
	assertWords(t, "add tp, t0, t1", 0x00628233)
	assertWords(t, "add X4, X5, X6", 0x00628233)
}

func TestRVAsm_MnemonicsCaseSensitive(t *testing.T) {
	err := assembleExpectError(t, "ADD x4, x5, x6")
	assertKind(t, err, KindInvalidInstruction)
}

func TestRVAsm_EmptySource(t *testing.T) {
	asm := NewAssembler()
	code, err := asm.AssembleString("")
	require.NoError(t, err)
	assert.Empty(t, code)

	code, err = asm.AssembleString("only:\n# nothing\n")
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Equal(t, map[string]uint32{"only": 0}, asm.Symbols())
}

// ---------------------------------------------------------------------------
// Labels and the two passes
// ---------------------------------------------------------------------------

func TestRVAsm_Labels(t *testing.T) {
	src := `
start:
    addi a0, zero, 1
loop: addi a0, a0, -1
    bnez a0, loop
    j start
`
	asm := NewAssembler()
	code, err := asm.AssembleString(src)
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{"start": 0, "loop": 4}, asm.Symbols())

	got := words(t, code)
	require.Len(t, got, 4)
	// bnez at 8 branches back to 4
	assert.Equal(t, EncodeBType(OP_BRANCH, 0b001, 10, 0, -4), got[2])
	// j at 12 jumps back to 0
	assert.Equal(t, EncodeJType(OP_JAL, 0, -12), got[3])
}

func TestRVAsm_LabelsCaseSensitive(t *testing.T) {
	err := assembleExpectError(t, "Target: nop\nj target")
	assertKind(t, err, KindUndefinedLabel)
}

func TestRVAsm_ForwardBranchAcrossLi(t *testing.T) {
	// li with a large constant takes two words, so end is at 12
	src := `
    beq x0, x0, end
    li a0, 0x12345678
end:
    nop
`
	asm := NewAssembler()
	code, err := asm.AssembleString(src)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), asm.Symbols()["end"])
	assert.Equal(t, hexWords([]uint32{0x00000663, 0x12345537, 0x67850513, 0x00000013}), hexWords(words(t, code)))
}

func TestRVAsm_ExpansionAddresses(t *testing.T) {
	// each word of a multi-word expansion gets its own address; the branch
	// after the li is at 8, so the back-branch offset is -8
	src := `
top:
    li t0, 0x7FFFFFFF
    bnez t0, top
`
	got := words(t, assembleString(t, src))
	require.Len(t, got, 3)
	assert.Equal(t, uint32(0x800002B7), got[0])
	assert.Equal(t, EncodeBType(OP_BRANCH, 0b001, 5, 0, -8), got[2])
}

func TestRVAsm_UTypeLabelIsAbsolute(t *testing.T) {
	// a label operand of lui/auipc is the label's absolute address, placed
	// unshifted into the 20-bit field
	src := `
    nop
    lui a0, target
target:
    nop
`
	got := words(t, assembleString(t, src))
	assert.Equal(t, uint32(0x00008537), got[1])

	asm := NewAssembler()
	asm.SetBaseAddress(0x100)
	code, err := asm.AssembleString(src)
	require.NoError(t, err)
	assert.Equal(t, EncodeUType(OP_LUI, 10, 0x108), words(t, code)[1])
}

func TestRVAsm_BaseAddress(t *testing.T) {
	src := `
entry:
    jal ra, func
    ecall
func:
    ret
`
	asm := NewAssembler()
	asm.SetBaseAddress(0x80000000)
	code, err := asm.AssembleString(src)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80000000), asm.Symbols()["entry"])
	assert.Equal(t, uint32(0x80000008), asm.Symbols()["func"])
	// PC-relative offsets do not depend on the base
	assert.Equal(t, EncodeJType(OP_JAL, 1, 8), words(t, code)[0])
}

func TestRVAsm_DuplicateLabel(t *testing.T) {
	err := assembleExpectError(t, "a: nop\nb: nop\na: nop")
	assertKind(t, err, KindParse)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "first defined on line 1")
}

func TestRVAsm_InvalidLabel(t *testing.T) {
	assertKind(t, assembleExpectError(t, ": nop"), KindParse)
	assertKind(t, assembleExpectError(t, "two words: nop"), KindParse)
}

func TestRVAsm_RerunResetsState(t *testing.T) {
	asm := NewAssembler()
	_, err := asm.AssembleString("first: nop")
	require.NoError(t, err)
	_, err = asm.AssembleString("second: nop")
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{"second": 0}, asm.Symbols())
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestRVAsm_UndefinedLabel(t *testing.T) {
	for _, src := range []string{
		"beq a0, a1, nowhere",
		"jal ra, nowhere",
		"j nowhere",
		"lui a0, nowhere",
		"beqz a0, nowhere",
	} {
		t.Run(src, func(t *testing.T) {
			err := assembleExpectError(t, src)
			assertKind(t, err, KindUndefinedLabel)

			var undef UndefinedLabelError
			require.True(t, errors.As(err, &undef))
			assert.Equal(t, "nowhere", undef.Label)
		})
	}
}

func TestRVAsm_InvalidInstruction(t *testing.T) {
	err := assembleExpectError(t, "addd a0, a1, a2")
	assertKind(t, err, KindInvalidInstruction)

	var inv InvalidInstructionError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "addd", inv.Mnemonic)
	assert.Equal(t, "add", inv.Suggestion)
	assert.Contains(t, err.Error(), "did you mean `add`?")
}

func TestRVAsm_UnknownMnemonicBeforeMissingOperands(t *testing.T) {
	assertKind(t, assembleExpectError(t, "frobnicate"), KindInvalidInstruction)
}

func TestRVAsm_MissingOperands(t *testing.T) {
	for _, src := range []string{"add", "lw", "li", "j", "label: mv"} {
		assertKind(t, assembleExpectError(t, src), KindParse)
	}
}

func TestRVAsm_WrongArity(t *testing.T) {
	for _, src := range []string{
		"add a0, a1",
		"sw a0",
		"beq a0, a1",
		"lui a0",
		"jal ra",
		"addi a0",
		"mv a0",
		"bgt a0, a1",
	} {
		t.Run(src, func(t *testing.T) {
			err := assembleExpectError(t, src)
			assertKind(t, err, KindParse)
			assert.Contains(t, err.Error(), "expected")
		})
	}
}

func TestRVAsm_RegisterZeroAsBase(t *testing.T) {
	for _, src := range []string{"lw a0, 0(x0)", "sw a0, 4(zero)", "jalr ra, 0($0)"} {
		assertKind(t, assembleExpectError(t, src), KindInvalidOperand)
	}
}

func TestRVAsm_InvalidOperands(t *testing.T) {
	for _, src := range []string{
		"add a0, a1, x32",
		"addi a0, a1, 0xZZ",
		"lw a0, 8",
		"li a0, somewhere",
	} {
		assertKind(t, assembleExpectError(t, src), KindInvalidOperand)
	}
	assertKind(t, assembleExpectError(t, "lw a0, 8(sp"), KindParse)
}

func TestRVAsm_FailFast(t *testing.T) {
	err := assembleExpectError(t, "nop\nbogus a0\nalsobogus a1")
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 2, lineErr.Line)
	assert.Equal(t, 1, lineErr.Pass)
	assert.Equal(t, "bogus a0", lineErr.Source)
}

func TestRVAsm_LineErrorDetail(t *testing.T) {
	err := assembleExpectError(t, "nop\n  j missing  # go")
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 2, lineErr.Pass)

	assert.Equal(t, "line 2: undefined label: missing", err.Error())
	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "j missing  # go")
	assert.Contains(t, detailed, "pass 2")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestRVAsm_IOError(t *testing.T) {
	asm := NewAssembler()
	_, err := asm.Assemble(failingReader{})
	require.Error(t, err)
	assertKind(t, err, KindIO)
	assert.Contains(t, err.Error(), "disk on fire")

	_, err = asm.AssembleFile(filepath.Join(t.TempDir(), "missing.s"))
	assertKind(t, err, KindIO)
}

// ---------------------------------------------------------------------------
// Warnings, listing, files
// ---------------------------------------------------------------------------

func TestRVAsm_TruncationWarning(t *testing.T) {
	asm := NewAssembler()
	code, err := asm.AssembleString("nop\naddi a0, a1, 4096")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00058513), words(t, code)[1])

	warnings := asm.GetWarnings()
	require.Len(t, warnings, 1)
	assert.True(t, strings.HasPrefix(warnings[0], "line 2: addi"), warnings[0])
}

func TestRVAsm_OddBranchWarning(t *testing.T) {
	asm := NewAssembler()
	_, err := asm.AssembleString("beq a0, a1, 3")
	require.NoError(t, err)
	require.Len(t, asm.GetWarnings(), 1)
	assert.Contains(t, asm.GetWarnings()[0], "odd")
}

func TestRVAsm_ListingMode(t *testing.T) {
	src := `start:
    li a0, 0x12345678
    ret`
	asm := NewAssembler()
	asm.SetListingMode(true)
	_, err := asm.AssembleString(src)
	require.NoError(t, err)

	listing := asm.GetListing()
	require.Len(t, listing, 5)
	assert.Contains(t, listing[0], "start:")
	assert.True(t, strings.HasPrefix(listing[1], "00000000  12345537 67850513"), listing[1])
	assert.Contains(t, listing[1], "li a0, 0x12345678")
	assert.Contains(t, listing[2], "; lui a0, 0x12345")
	assert.Contains(t, listing[3], "; addi a0, a0, 1656")
	assert.True(t, strings.HasPrefix(listing[4], "00000008  00008067"), listing[4])
}

func TestRVAsm_ListingOff(t *testing.T) {
	asm := NewAssembler()
	_, err := asm.AssembleString("nop")
	require.NoError(t, err)
	assert.Empty(t, asm.GetListing())
}

func TestRVAsm_AssembleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.s")
	require.NoError(t, os.WriteFile(path, []byte("addi a0, zero, 8\naddi a1, zero, 8\n"), 0o644))

	code, err := NewAssembler().AssembleFile(path)
	require.NoError(t, err)
	assert.Equal(t, "00000000: 00800513\n00000004: 00800593\n", Hexdump(code))
}

func TestRVAsm_CRLFLineEndings(t *testing.T) {
	assertWords(t, "loop:\r\n  j loop\r\n", 0x0000006F)
}
