// Package config loads ecmacore.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"ecmacore/internal/trace"
)

// FileName is the configuration file searched for.
const FileName = "ecmacore.toml"

// ErrNotFound reports that no ecmacore.toml exists up to the filesystem root.
var ErrNotFound = errors.New("config: " + FileName + " not found")

type Heap struct {
	InitialCapacity int `toml:"initial_capacity"`
}

type GC struct {
	// allocations between automatic collections; 0 disables them
	Threshold uint64 `toml:"threshold"`
}

type Trace struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
	// RingSize is the event capacity of ring mode.
	RingSize int `toml:"ring_size"`
}

type Scan struct {
	// 0 means GOMAXPROCS
	Jobs           int `toml:"jobs"`
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// Config is the decoded file. Path is empty for defaults.
type Config struct {
	Heap  Heap  `toml:"heap"`
	GC    GC    `toml:"gc"`
	Trace Trace `toml:"trace"`
	Scan  Scan  `toml:"scan"`

	Path string `toml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Heap:  Heap{InitialCapacity: 128},
		GC:    GC{Threshold: 1024},
		Trace: Trace{Level: "off", Mode: "stream", Output: "-", RingSize: 4096},
		Scan:  Scan{Jobs: 0, MaxDiagnostics: 100},
	}
}

// Find walks up from startDir looking for ecmacore.toml.
func Find(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("config: resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config: stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load decodes path over the defaults, so keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("scan", "max_diagnostics") && cfg.Scan.MaxDiagnostics <= 0 {
		return Config{}, fmt.Errorf("%s: scan.max_diagnostics must be positive", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover finds and loads the nearest ecmacore.toml above startDir, or
// returns Default when there is none.
func Discover(startDir string) (Config, error) {
	path, err := Find(startDir)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return Load(path)
}

// Validate checks value ranges and enum spellings.
func (c Config) Validate() error {
	if c.Heap.InitialCapacity < 0 {
		return fmt.Errorf("heap.initial_capacity must not be negative")
	}
	if c.Scan.Jobs < 0 {
		return fmt.Errorf("scan.jobs must not be negative")
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("trace.level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("trace.mode: %w", err)
	}
	return nil
}

// TraceConfig converts the [trace] table into a tracer configuration.
func (c Config) TraceConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: c.Trace.Output,
		RingSize:   c.Trace.RingSize,
	}, nil
}
