package storage

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg, err := LoadConfig(fs, "/data/config.json")
	require.NoError(t, err)
	require.Equal(t, 5, cfg.AutoSaveCap)
	require.Equal(t, 60, cfg.AutoSaveInterval)
}

func TestConfigRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.AutoSaveCap = 10
	cfg.HardcoreMode = true

	require.NoError(t, SaveConfig(fs, "/data/config.json", cfg))

	got, err := LoadConfig(fs, "/data/config.json")
	require.NoError(t, err)
	require.Equal(t, 10, got.AutoSaveCap)
	require.True(t, got.HardcoreMode)

	if exists, _ := afero.Exists(fs, "/data/config.json.tmp"); exists {
		t.Error("temp file left behind")
	}
}

func TestConfigMigratesOldVersion(t *testing.T) {
	fs := afero.NewMemMapFs()
	old := []byte(`{"version":1,"auto_save_cap":3,"auto_save_interval":30}`)
	require.NoError(t, afero.WriteFile(fs, "/data/config.json", old, 0o644))

	cfg, err := LoadConfig(fs, "/data/config.json")
	require.NoError(t, err)
	require.Equal(t, 3, cfg.AutoSaveCap)
	require.Equal(t, 30, cfg.AutoSaveInterval)
	require.Equal(t, configVersion, cfg.Version)
	require.Equal(t, 32, cfg.PreviewCacheSize)
}

func TestPathsEnvOverride(t *testing.T) {
	t.Setenv("MANICEMU_DATA_DIR", "/custom/data")

	p, err := ResolvePaths()
	require.NoError(t, err)
	require.Equal(t, "/custom/data", p.DataDir)
	require.Equal(t, "/custom/data/manicemu.db", p.DBPath())
	require.Equal(t, "/custom/data/states/g1", p.StateDir("g1"))
}

func TestPathsEnsure(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := Paths{DataDir: "/data"}
	require.NoError(t, p.Ensure(fs))

	for _, dir := range []string{"/data/states", "/data/previews", "/data/cores", "/data/bios"} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		require.True(t, ok, dir)
	}
}
