package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"
)

// pathEnv carries the environment overrides for on-disk locations.
type pathEnv struct {
	DataDir string `env:"MANICEMU_DATA_DIR"`
}

// Paths resolves every on-disk location under one data directory.
type Paths struct {
	DataDir string
}

// ResolvePaths determines the data directory: the MANICEMU_DATA_DIR
// environment variable wins, otherwise a per-user default is used.
func ResolvePaths() (Paths, error) {
	var pe pathEnv
	if err := env.Parse(&pe); err != nil {
		return Paths{}, fmt.Errorf("parse environment: %w", err)
	}
	if pe.DataDir != "" {
		return Paths{DataDir: pe.DataDir}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve home dir: %w", err)
	}
	return Paths{DataDir: filepath.Join(home, ".manicemu")}, nil
}

// DBPath is the location of the record database.
func (p Paths) DBPath() string { return filepath.Join(p.DataDir, "manicemu.db") }

// ConfigPath is the location of the application config file.
func (p Paths) ConfigPath() string { return filepath.Join(p.DataDir, "config.json") }

// StateDir holds save-state blobs for one game.
func (p Paths) StateDir(gameID string) string {
	return filepath.Join(p.DataDir, "states", gameID)
}

// PreviewDir holds save-state preview images for one game.
func (p Paths) PreviewDir(gameID string) string {
	return filepath.Join(p.DataDir, "previews", gameID)
}

// CoreDir holds downloaded libretro cores.
func (p Paths) CoreDir() string { return filepath.Join(p.DataDir, "cores") }

// BIOSDir holds user-provided BIOS files.
func (p Paths) BIOSDir() string { return filepath.Join(p.DataDir, "bios") }

// Ensure creates the directory tree through fs.
func (p Paths) Ensure(fs afero.Fs) error {
	for _, dir := range []string{
		p.DataDir,
		filepath.Join(p.DataDir, "states"),
		filepath.Join(p.DataDir, "previews"),
		p.CoreDir(),
		p.BIOSDir(),
	} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
