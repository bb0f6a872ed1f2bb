package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Host: "http://localhost:3000", Output: "table"},
			"staging": {Host: "https://console.staging.example", Output: "json"},
		},
	}

	assert.Equal(t, "http://localhost:3000", cfg.ActiveProfile("").Host)
	assert.Equal(t, "https://console.staging.example", cfg.ActiveProfile("staging").Host)
	assert.Equal(t, Profile{}, cfg.ActiveProfile("nonexistent"))
}

func TestUserConfig_SaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &UserConfig{
		CurrentProfile: "staging",
		Profiles: map[string]Profile{
			"staging": {Host: "https://console.staging.example", Output: "json"},
		},
	}
	require.NoError(t, SaveUserConfig(cfg))

	info, err := os.Stat(ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", loaded.CurrentProfile)
	assert.Equal(t, cfg.Profiles["staging"], loaded.Profiles["staging"])
}

func TestLoadUserConfig_MissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadUserConfig()
	require.Error(t, err)
}

func TestConfigPath_UnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".uhe", "config.yaml"), ConfigPath())
}
