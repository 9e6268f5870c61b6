package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argha-saha/RISC-V-assembler/assembler"
)

// ============================================================================
// Line splitting
// ============================================================================

func TestSplitComment(t *testing.T) {
	code, comment := SplitComment("li a0, 5  # load five")
	if code != "li a0, 5" {
		t.Errorf("code = %q", code)
	}
	if comment != "load five" {
		t.Errorf("comment = %q", comment)
	}
}

func TestSplitComment_NoComment(t *testing.T) {
	code, comment := SplitComment("add a0, a1, a2")
	if code != "add a0, a1, a2" || comment != "" {
		t.Errorf("got (%q, %q)", code, comment)
	}
}

func TestSplitLabel(t *testing.T) {
	label, rest := SplitLabel("loop: addi a0, a0, -1")
	assert.Equal(t, "loop:", label)
	assert.Equal(t, "addi a0, a0, -1", rest)

	label, rest = SplitLabel("ret")
	assert.Equal(t, "", label)
	assert.Equal(t, "ret", rest)
}

func TestClassifyLine(t *testing.T) {
	assert.Equal(t, LineEmpty, ClassifyLine(""))
	assert.Equal(t, LineLabel, ClassifyLine("start:"))
	assert.Equal(t, LineInstruction, ClassifyLine("start: nop"))
	assert.Equal(t, LineInstruction, ClassifyLine("nop"))
}

// ============================================================================
// Line lowering
// ============================================================================

func TestLowerLine_PassThrough(t *testing.T) {
	l := NewLowerer()
	assert.Equal(t, []string{"    add a0, a1, a2"}, l.LowerLine("    add a0, a1, a2"))
	assert.Equal(t, []string{"# just a comment"}, l.LowerLine("# just a comment"))
	assert.Equal(t, []string{""}, l.LowerLine("   "))
	assert.Equal(t, []string{"loop:    # top"}, l.LowerLine("loop: # top"))
	assert.Zero(t, l.lowered)
}

func TestLowerLine_Pseudo(t *testing.T) {
	l := NewLowerer()
	assert.Equal(t, []string{"    addi a0, a1, 0"}, l.LowerLine("    mv a0, a1"))
	assert.Equal(t, []string{"\tjalr x0, x1, 0    # done"}, l.LowerLine("\tret  # done"))
	assert.Equal(t,
		[]string{"    lui t0, 74565", "    addi t0, t0, 1656"},
		l.LowerLine("    li t0, 0x12345678"))
	assert.Equal(t, 3, l.lowered)
	assert.Zero(t, l.errors)
}

func TestLowerLine_LabelAndInstruction(t *testing.T) {
	l := NewLowerer()
	assert.Equal(t, []string{"loop:", "    bne a0, x0, loop"}, l.LowerLine("loop: bnez a0, loop"))
}

func TestLowerLine_Errors(t *testing.T) {
	l := NewLowerer()
	out := l.LowerLine("    frob a0")
	require.Len(t, out, 2)
	assert.Equal(t, "    # ERROR: unknown instruction frob", out[0])
	assert.Equal(t, "    # frob a0", out[1])

	out = l.LowerLine("    li a0, somewhere")
	require.Len(t, out, 2)
	assert.True(t, strings.HasPrefix(out[0], "    # ERROR: "), out[0])

	out = l.LowerLine("    mv a0")
	assert.Contains(t, out[0], "expected 2 operands")
	assert.Equal(t, 3, l.errors)
}

// ============================================================================
// Whole files
// ============================================================================

const program = `# count down
start:
    li a0, 100000
loop: addi a0, a0, -1
    bnez a0, loop
    csrr t0, mcycle
    j start
`

func TestLowerFile_Header(t *testing.T) {
	l := NewLowerer()
	out := l.LowerFile("dir/count.s", "nop")
	assert.Equal(t, "# Lowered from count.s by rvlower\n\naddi x0, x0, 0", out)

	l = NewLowerer()
	l.noHeader = true
	assert.Equal(t, "addi x0, x0, 0", l.LowerFile("count.s", "nop"))
}

// Lowered source assembles to the same machine code as the original.
func TestLowerFile_SameMachineCode(t *testing.T) {
	l := NewLowerer()
	lowered := l.LowerFile("count.s", program)
	require.Zero(t, l.errors, lowered)
	assert.Equal(t, 4, l.lowered)

	for _, line := range strings.Split(lowered, "\n") {
		code, _ := SplitComment(line)
		_, rest := SplitLabel(code)
		if rest == "" {
			continue
		}
		mnemonic := strings.Fields(rest)[0]
		assert.False(t, assembler.IsPseudo(mnemonic), "pseudo left in output: %q", line)
	}

	want, err := assembler.NewAssembler().AssembleString(program)
	require.NoError(t, err)
	got, err := assembler.NewAssembler().AssembleString(lowered)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLowerFileFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.s")
	require.NoError(t, os.WriteFile(path, []byte("ret\r\n"), 0644))

	l := NewLowerer()
	l.noHeader = true
	out, err := l.LowerFileFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "jalr x0, x1, 0\n", out)

	_, err = l.LowerFileFromPath(filepath.Join(t.TempDir(), "missing.s"))
	assert.Error(t, err)
}
