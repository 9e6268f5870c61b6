package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Lua(t *testing.T) {
	path := writeFile(t, "rvasm.lua", `
-- rvasm settings
base_address = 0x80000000
listing = true
hex = false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Address(0x80000000), cfg.BaseAddress)
	assert.True(t, cfg.Listing)
	assert.False(t, cfg.Hex)
	assert.False(t, cfg.Clipboard)
}

func TestLoadConfig_LuaStringAddress(t *testing.T) {
	path := writeFile(t, "rvasm.lua", `base_address = "0x1000"`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Address(0x1000), cfg.BaseAddress)
	assert.True(t, cfg.Hex)
}

func TestLoadConfig_LuaComputed(t *testing.T) {
	path := writeFile(t, "rvasm.lua", `
local rom = 0x20000000
base_address = rom + 0x400
listing = base_address > rom
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Address(0x20000400), cfg.BaseAddress)
	assert.True(t, cfg.Listing)
}

func TestLoadConfig_LuaErrors(t *testing.T) {
	for name, src := range map[string]string{
		"syntax":       `base_address = `,
		"bad type":     `listing = "yes"`,
		"bad address":  `base_address = {}`,
		"out of range": `base_address = 0x100000000`,
		"no os access": `os.exit(1)`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "rvasm.lua", src))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "rvasm.yaml", `
base_address: 0x1000
listing: true
clipboard: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Address(0x1000), cfg.BaseAddress)
	assert.True(t, cfg.Listing)
	assert.True(t, cfg.Hex)
	assert.True(t, cfg.Clipboard)
}

func TestLoadConfig_YAMLQuotedAddress(t *testing.T) {
	path := writeFile(t, "rvasm.yml", `base_address: "4096"`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Address(4096), cfg.BaseAddress)
}

func TestLoadConfig_YAMLBadAddress(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "rvasm.yaml", `base_address: nowhere`))
	assert.Error(t, err)
}

func TestLoadConfig_Unsupported(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "rvasm.toml", `listing = true`))
	assert.Error(t, err)
}

func TestAddressFlag(t *testing.T) {
	var a Address
	require.NoError(t, a.Set("0x8000_0000"))
	assert.Equal(t, Address(0x80000000), a)
	assert.Equal(t, "0x80000000", a.String())

	require.NoError(t, a.Set("256"))
	assert.Equal(t, Address(256), a)

	assert.Error(t, a.Set("0x1_0000_0000"))
	assert.Error(t, a.Set("sp"))
}
