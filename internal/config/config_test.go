package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecmacore/internal/trace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[gc]\nthreshold = 10\n\n[trace]\nlevel = \"detail\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GC.Threshold != 10 || cfg.Trace.Level != "detail" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	def := Default()
	if cfg.Heap != def.Heap || cfg.Scan != def.Scan || cfg.Trace.Mode != def.Trace.Mode {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q", cfg.Path)
	}

	tc, err := cfg.TraceConfig()
	if err != nil {
		t.Fatalf("TraceConfig: %v", err)
	}
	if tc.Level != trace.LevelDetail || tc.Mode != trace.ModeStream {
		t.Fatalf("unexpected trace config %+v", tc)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[gc\n", "failed to parse TOML"},
		{"unknown key", "[gc]\nthresh = 1\n", "unknown key"},
		{"bad level", "[trace]\nlevel = \"loud\"\n", "trace.level"},
		{"bad mode", "[trace]\nmode = \"disk\"\n", "trace.mode"},
		{"zero diagnostics", "[scan]\nmax_diagnostics = 0\n", "max_diagnostics"},
		{"negative jobs", "[scan]\njobs = -2\n", "scan.jobs"},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), FileName)
		writeFile(t, path, tt.content)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, FileName)
	writeFile(t, path, "")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := Find(deep)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != path {
		t.Fatalf("Find = %q, want %q", got, path)
	}

	cfg, err := Discover(deep)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != path || cfg.GC != Default().GC {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestDiscoverWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	if _, err := Find(dir); !errors.Is(err, ErrNotFound) && err != nil {
		t.Fatalf("Find: %v", err)
	}
	cfg, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	// a stray ecmacore.toml above the temp dir would be picked up
	if cfg.Path == "" && cfg.GC != Default().GC {
		t.Fatalf("defaults not used: %+v", cfg)
	}
}
