package storage

import (
	"errors"
	"os"

	"github.com/spf13/afero"
)

// configVersion bumps when the config layout changes; Load migrates
// older files forward.
const configVersion = 2

// Config holds application-level settings, as opposed to the per-game
// RuntimeConfig records in the database.
type Config struct {
	Version int `json:"version"`

	// AutoSaveCap is the retention count for automatic save states per
	// game. Oldest entries are evicted first when exceeded.
	AutoSaveCap int `json:"auto_save_cap"`

	// AutoSaveInterval is the background auto-save period in seconds.
	AutoSaveInterval int `json:"auto_save_interval"`

	// PreviewCacheSize bounds the in-memory preview image cache.
	PreviewCacheSize int `json:"preview_cache_size"`

	// HardcoreMode disables save states and cheats globally.
	HardcoreMode bool `json:"hardcore_mode"`
}

// DefaultConfig returns the settings used on first run.
func DefaultConfig() Config {
	return Config{
		Version:          configVersion,
		AutoSaveCap:      5,
		AutoSaveInterval: 60,
		PreviewCacheSize: 32,
	}
}

// LoadConfig reads the config file, applying defaults and forward
// migration. A missing file yields the defaults without error.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	var cfg Config
	if err := ReadJSON(fs, path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	migrate(&cfg)
	return cfg, nil
}

// SaveConfig writes the config file atomically.
func SaveConfig(fs afero.Fs, path string, cfg Config) error {
	cfg.Version = configVersion
	return AtomicWriteJSON(fs, path, cfg)
}

// migrate fills in fields added after the file was written.
func migrate(cfg *Config) {
	if cfg.AutoSaveCap <= 0 {
		cfg.AutoSaveCap = 5
	}
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = 60
	}
	if cfg.Version < 2 && cfg.PreviewCacheSize == 0 {
		cfg.PreviewCacheSize = 32
	}
	cfg.Version = configVersion
}
