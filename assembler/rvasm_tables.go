// rvasm_tables.go - Register ABI names and CSR addresses

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

import "github.com/SaveTheRbtz/mph"

type namedValue struct {
	name  string
	value uint32
}

// staticTable is an immutable name -> value map backed by a minimal perfect
// hash. It is built once during package initialisation.
type staticTable struct {
	entries []namedValue
	table   *mph.Table
}

func newStaticTable(entries []namedValue) staticTable {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return staticTable{entries: entries, table: mph.Build(names)}
}

func (t staticTable) lookup(name string) (uint32, bool) {
	idx, ok := t.table.Lookup(name)
	if !ok {
		return 0, false
	}
	return t.entries[idx].value, true
}

var abiRegisters = newStaticTable([]namedValue{
	{"zero", 0}, // hardwired zero
	{"ra", 1},   // return address
	{"sp", 2},   // stack pointer
	{"gp", 3},   // global pointer
	{"tp", 4},   // thread pointer
	{"t0", 5},
	{"t1", 6},
	{"t2", 7},
	{"fp", 8}, // frame pointer, alias of s0
	{"s0", 8},
	{"s1", 9},
	{"a0", 10}, // argument / return value
	{"a1", 11},
	{"a2", 12},
	{"a3", 13},
	{"a4", 14},
	{"a5", 15},
	{"a6", 16},
	{"a7", 17},
	{"s2", 18},
	{"s3", 19},
	{"s4", 20},
	{"s5", 21},
	{"s6", 22},
	{"s7", 23},
	{"s8", 24},
	{"s9", 25},
	{"s10", 26},
	{"s11", 27},
	{"t3", 28},
	{"t4", 29},
	{"t5", 30},
	{"t6", 31},
})

// abiNames is the canonical ABI name of each register, used by the
// disassembler and listings. fp is never printed; s0 wins.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var csrAddresses = newStaticTable([]namedValue{
	// Unprivileged floating point
	{"fflags", 0x001},
	{"frm", 0x002},
	{"fcsr", 0x003},

	// Unprivileged counters
	{"cycle", 0xC00},
	{"time", 0xC01},
	{"instret", 0xC02},
	{"cycleh", 0xC80},
	{"timeh", 0xC81},
	{"instreth", 0xC82},

	// Supervisor
	{"sstatus", 0x100},
	{"sie", 0x104},
	{"stvec", 0x105},
	{"scounteren", 0x106},
	{"sscratch", 0x140},
	{"sepc", 0x141},
	{"scause", 0x142},
	{"stval", 0x143},
	{"sip", 0x144},
	{"satp", 0x180},

	// Machine information
	{"mvendorid", 0xF11},
	{"marchid", 0xF12},
	{"mimpid", 0xF13},
	{"mhartid", 0xF14},

	// Machine trap setup
	{"mstatus", 0x300},
	{"misa", 0x301},
	{"medeleg", 0x302},
	{"mideleg", 0x303},
	{"mie", 0x304},
	{"mtvec", 0x305},
	{"mcounteren", 0x306},
	{"mtvt", 0x307}, // CLIC vector table base
	{"mstatush", 0x310},

	// Machine trap handling
	{"mscratch", 0x340},
	{"mepc", 0x341},
	{"mcause", 0x342},
	{"mtval", 0x343},
	{"mip", 0x344},

	// Machine counters
	{"mcycle", 0xB00},
	{"minstret", 0xB02},
	{"mcycleh", 0xB80},
	{"minstreth", 0xB82},
})

// csrName returns the symbolic name of a CSR address, if it has one.
func csrName(addr uint32) (string, bool) {
	for _, e := range csrAddresses.entries {
		if e.value == addr {
			return e.name, true
		}
	}
	return "", false
}
