// Package core holds the small shared contracts (filesystem access,
// marshaling, timeouts, file permissions) that the rest of relgate's
// packages depend on instead of touching os/yaml directly.
package core

import (
	"os"
	"time"
)

// FileSystem abstracts file access so callers can substitute an in-memory
// implementation in tests without touching the real disk.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (os.FileInfo, error)
}

// Marshaler abstracts serialisation of a config value to bytes.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

// osFileSystem is the production FileSystem backed by the real disk.
type osFileSystem struct{}

// NewOSFileSystem returns a FileSystem backed by the operating system.
func NewOSFileSystem() FileSystem {
	return osFileSystem{}
}

func (osFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (osFileSystem) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// File permission constants for the files relgate writes (the config file).
const (
	PermOwnerRW = 0o600
	PermOwnerRX = 0o700
)

// Timeouts bound the external processes relgate shells out to. They are
// generous because CI runners and large histories can be slow, but they
// exist so a hung git process never hangs the whole pipeline.
const (
	TimeoutGit    = 30 * time.Second
	TimeoutFetch  = 2 * time.Minute
	TimeoutVerify = 15 * time.Second
)
