// Package config loads relgate's branch configuration: the `.relgate.yaml`
// file naming the repository's release/maintenance/prerelease branches and
// the tag format they publish under. Config-file discovery and config
// inheritance are a loader concern; relgate resolves exactly one path:
// env override first, then the explicit file, then defaults. Saving goes
// through injectable Marshaler/FileOpener/FileWriter seams so tests
// never touch the real disk.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/core"
)

// DefaultTagFormat is used when a config omits tagFormat.
const DefaultTagFormat = "v${version}"

// DefaultPath is the config file relgate reads absent a CLI override or
// RELGATE_CONFIG environment variable.
const DefaultPath = ".relgate.yaml"

// PluginConfig toggles the reference plugins shipped in internal/plugin.
// Real publication/notification plugins remain out of scope and are not
// configurable here.
type PluginConfig struct {
	// CommitAnalyzer enables plugin.ConventionalCommitAnalyzer as the
	// analyzeCommits step. Default true.
	CommitAnalyzer *bool `yaml:"commitAnalyzer,omitempty"`
	// Notes enables plugin.PlainTextNotes as the generateNotes step.
	// Default true.
	Notes *bool `yaml:"notes,omitempty"`
}

func (p *PluginConfig) commitAnalyzerEnabled() bool {
	return p == nil || p.CommitAnalyzer == nil || *p.CommitAnalyzer
}

func (p *PluginConfig) notesEnabled() bool {
	return p == nil || p.Notes == nil || *p.Notes
}

// CommitAnalyzerEnabled reports whether the reference commit analyzer should
// be wired into the pipeline.
func (c *Config) CommitAnalyzerEnabled() bool { return c.Plugins.commitAnalyzerEnabled() }

// NotesEnabled reports whether the reference notes generator should be wired
// into the pipeline.
func (c *Config) NotesEnabled() bool { return c.Plugins.notesEnabled() }

// Config is relgate's branch configuration.
type Config struct {
	// RepoPath is the filesystem path to the git repository relgate
	// operates on. Not persisted to YAML; set from the CLI --repo flag or
	// defaulted to the working directory.
	RepoPath string `yaml:"-"`

	TagFormat string              `yaml:"tagFormat,omitempty"`
	Branches  []branch.BranchSpec `yaml:"branches"`
	Plugins   *PluginConfig       `yaml:"plugins,omitempty"`

	// RepositoryURL is the configured remote relgate pushes tags to.
	// Empty means "read it from the repository's origin remote at run time".
	RepositoryURL string `yaml:"repositoryUrl,omitempty"`
}

// FileOpener abstracts file opening for testability.
type FileOpener interface {
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
}

// FileWriter abstracts file writing for testability.
type FileWriter interface {
	WriteFile(file *os.File, data []byte) (int, error)
}

type osFileOpener struct{}

func (osFileOpener) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

type osFileWriter struct{}

func (osFileWriter) WriteFile(file *os.File, data []byte) (int, error) {
	return file.Write(data)
}

type yamlMarshaler struct{}

func (yamlMarshaler) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

// Saver writes a Config back to disk with injectable dependencies.
type Saver struct {
	marshaler core.Marshaler
	opener    FileOpener
	writer    FileWriter
}

// NewSaver builds a Saver; a nil dependency falls back to its production
// default.
func NewSaver(marshaler core.Marshaler, opener FileOpener, writer FileWriter) *Saver {
	if marshaler == nil {
		marshaler = yamlMarshaler{}
	}
	if opener == nil {
		opener = osFileOpener{}
	}
	if writer == nil {
		writer = osFileWriter{}
	}
	return &Saver{marshaler: marshaler, opener: opener, writer: writer}
}

// Save writes cfg to DefaultPath.
func (s *Saver) Save(cfg *Config) error {
	return s.SaveTo(cfg, DefaultPath)
}

// SaveTo writes cfg to the given path.
func (s *Saver) SaveTo(cfg *Config, path string) error {
	file, err := s.opener.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, core.PermOwnerRW)
	if err != nil {
		return fmt.Errorf("opening config file %q: %w", path, err)
	}
	defer file.Close()

	data, err := s.marshaler.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if _, err := s.writer.WriteFile(file, data); err != nil {
		return fmt.Errorf("writing config file %q: %w", path, err)
	}
	return nil
}

// Load reads and decodes the branch configuration. Priority, highest first:
// the RELGATE_CONFIG environment variable, then path, then DefaultPath. A
// missing file at the resolved location is not an error; Load returns
// zero-value defaults so a repo with no config still gets a usable Config
// (an empty branch list, which BranchClassifier will then reject with
// ERELEASEBRANCHES, surfacing the real problem to the user).
func Load(fs core.FileSystem, path string) (*Config, error) {
	resolved := path
	if env := os.Getenv("RELGATE_CONFIG"); env != "" {
		resolved = env
	}
	if resolved == "" {
		resolved = DefaultPath
	}

	data, err := fs.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{TagFormat: DefaultTagFormat}, nil
		}
		return nil, fmt.Errorf("reading config file %q: %w", resolved, err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", resolved, err)
	}

	if cfg.TagFormat == "" {
		cfg.TagFormat = DefaultTagFormat
	}
	return &cfg, nil
}
