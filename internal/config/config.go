// Package config handles stackvm.toml run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stackvm/pkg/vm"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad
const FileName = "stackvm.toml"

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the run configuration. Command line flags override it.
type Config struct {
	Entry  string `toml:"entry"`
	Trace  Trace  `toml:"trace"`
	Output Output `toml:"output"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Trace configures step tracing
type Trace struct {
	Enabled bool   `toml:"enabled"`
	Format  string `toml:"format"` // text or json
	File    string `toml:"file"`   // json only; stderr when empty
}

// Output configures what the CLI writes besides the result
type Output struct {
	NoColor     bool   `toml:"no-color"`
	Image       string `toml:"image"`
	Disassemble bool   `toml:"disassemble"`
}

// Default returns the configuration used when no file is found
func Default() Config {
	return Config{
		Entry: vm.DefaultEntry,
		Trace: Trace{Format: FormatText},
	}
}

// Load parses the configuration file at path on top of the defaults
func Load(path string) (Config, error) {
	c := Default()

	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return c, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}

	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir looking for stackvm.toml. Without a
// file it returns the defaults.
func FindAndLoad(startDir string) (Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Default(), fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks values the TOML decoder cannot
func (c Config) Validate() error {
	if c.Entry == "" {
		return fmt.Errorf("%w: entry must not be empty", ErrInvalidConfig)
	}

	switch c.Trace.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: unknown trace format %q", ErrInvalidConfig, c.Trace.Format)
	}

	if c.Trace.File != "" && c.Trace.Format != FormatJSON {
		return fmt.Errorf("%w: trace file requires the %s format", ErrInvalidConfig, FormatJSON)
	}

	return nil
}
