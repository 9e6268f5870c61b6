package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	lua "github.com/yuin/gopher-lua"
)

// Config holds the settings rvasm reads from a config file. Flags given on
// the command line override them.
type Config struct {
	BaseAddress Address `yaml:"base_address"`
	Listing     bool    `yaml:"listing"`
	Hex         bool    `yaml:"hex"`
	Clipboard   bool    `yaml:"clipboard"`
}

func defaultConfig() Config {
	return Config{Hex: true}
}

// Address is a 32-bit address written in decimal, 0x hex, 0o octal or
// 0b binary.
type Address uint32

func parseAddress(s string) (Address, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return Address(v), nil
}

func (a Address) String() string {
	return fmt.Sprintf("0x%08X", uint32(a))
}

// Set implements flag.Value.
func (a *Address) Set(s string) error {
	v, err := parseAddress(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// UnmarshalYAML accepts both numbers and quoted strings.
func (a *Address) UnmarshalYAML(b []byte) error {
	return a.Set(strings.Trim(strings.TrimSpace(string(b)), `"'`))
}

// LoadConfig reads a config file. The format is chosen by extension: .lua
// files are executed and their globals read, .yaml/.yml files are parsed.
func LoadConfig(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		return loadLuaConfig(path)
	case ".yaml", ".yml":
		return loadYAMLConfig(path)
	}
	return Config{}, fmt.Errorf("unsupported config format: %s", path)
}

func loadYAMLConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// loadLuaConfig runs the script and reads the globals base_address,
// listing, hex and clipboard. Unset globals keep their defaults.
func loadLuaConfig(path string) (Config, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// base library only: no io or os access from config scripts
	lua.OpenBase(L)

	if err := L.DoFile(path); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	cfg := defaultConfig()

	switch v := L.GetGlobal("base_address").(type) {
	case lua.LNumber:
		if v < 0 || v > 0xFFFFFFFF {
			return Config{}, fmt.Errorf("%s: base_address out of range", path)
		}
		cfg.BaseAddress = Address(uint32(v))
	case lua.LString:
		addr, err := parseAddress(string(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		cfg.BaseAddress = addr
	case *lua.LNilType:
	default:
		return Config{}, fmt.Errorf("%s: base_address must be a number or string", path)
	}

	for name, dst := range map[string]*bool{
		"listing":   &cfg.Listing,
		"hex":       &cfg.Hex,
		"clipboard": &cfg.Clipboard,
	} {
		switch v := L.GetGlobal(name).(type) {
		case lua.LBool:
			*dst = bool(v)
		case *lua.LNilType:
		default:
			return Config{}, fmt.Errorf("%s: %s must be a boolean", path, name)
		}
	}
	return cfg, nil
}
