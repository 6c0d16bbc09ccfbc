package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/core"
)

type fakeFS struct {
	files map[string][]byte
}

func (f *fakeFS) ReadFile(name string) ([]byte, error) {
	data, ok := f.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (f *fakeFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	f.files[name] = data
	return nil
}

func (f *fakeFS) Stat(name string) (os.FileInfo, error) {
	return nil, os.ErrNotExist
}

var _ core.FileSystem = (*fakeFS)(nil)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	fs := &fakeFS{files: map[string][]byte{}}
	cfg, err := Load(fs, DefaultPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TagFormat != DefaultTagFormat {
		t.Errorf("TagFormat = %q, want %q", cfg.TagFormat, DefaultTagFormat)
	}
	if len(cfg.Branches) != 0 {
		t.Errorf("expected no branches, got %v", cfg.Branches)
	}
}

func TestLoadParsesBranches(t *testing.T) {
	doc := []byte(`
tagFormat: "v${version}"
branches:
  - name: master
  - name: next
    channel: next
`)
	fs := &fakeFS{files: map[string][]byte{DefaultPath: doc}}
	cfg, err := Load(fs, DefaultPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(cfg.Branches))
	}
	if cfg.Branches[0].Name != "master" {
		t.Errorf("Branches[0].Name = %q, want %q", cfg.Branches[0].Name, "master")
	}
	if cfg.Branches[1].Channel != "next" {
		t.Errorf("Branches[1].Channel = %q, want %q", cfg.Branches[1].Channel, "next")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	doc := []byte("bogusField: true\nbranches:\n  - name: master\n")
	fs := &fakeFS{files: map[string][]byte{DefaultPath: doc}}
	if _, err := Load(fs, DefaultPath); err == nil {
		t.Fatal("expected an error for an unknown top-level field under yaml.Strict()")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RELGATE_CONFIG", "custom.yaml")
	fs := &fakeFS{files: map[string][]byte{
		"custom.yaml": []byte("branches:\n  - name: master\n"),
	}}
	cfg, err := Load(fs, DefaultPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Branches) != 1 {
		t.Fatalf("expected the env-overridden path to be read, got %d branches", len(cfg.Branches))
	}
}

func TestPluginDefaults(t *testing.T) {
	cfg := &Config{}
	if !cfg.CommitAnalyzerEnabled() {
		t.Error("CommitAnalyzerEnabled() should default to true")
	}
	if !cfg.NotesEnabled() {
		t.Error("NotesEnabled() should default to true")
	}

	disabled := false
	cfg.Plugins = &PluginConfig{CommitAnalyzer: &disabled, Notes: &disabled}
	if cfg.CommitAnalyzerEnabled() {
		t.Error("CommitAnalyzerEnabled() should respect an explicit false")
	}
	if cfg.NotesEnabled() {
		t.Error("NotesEnabled() should respect an explicit false")
	}
}

// TestSaverRoundTrip exercises the production Saver (real os file I/O,
// scoped to a test temp directory) round-tripped through the production
// os-backed FileSystem.
func TestSaverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	saver := NewSaver(nil, nil, nil)
	cfg := &Config{TagFormat: "v${version}", Branches: []branch.BranchSpec{{Name: "master"}}}
	if err := saver.SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	roundTripped, err := Load(core.NewOSFileSystem(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(roundTripped.Branches) != 1 || roundTripped.Branches[0].Name != "master" {
		t.Errorf("round-tripped config = %+v", roundTripped)
	}
}
