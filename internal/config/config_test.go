package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	err := Validate(nil)
	require.Error(t, err)

	// Empty config gets defaults.
	cfg := new(Config)

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, DefaultServerURL, cfg.ServerURL)

	// Bad listen address.
	cfg = &Config{
		ListenAddress: "bad:address",
	}

	err = Validate(cfg)
	require.Error(t, err)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ListenAddress: "127.0.0.1:3000",
		LogLevel:      "debug",
		Notifier: NotifierConfig{
			From: "+15550100000",
			To:   "+15550100001",
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ListenAddress, loaded.ListenAddress)
	require.Equal(t, cfg.LogLevel, loaded.LogLevel)
	require.Equal(t, cfg.Notifier.From, loaded.Notifier.From)
	require.Equal(t, cfg.Notifier.To, loaded.Notifier.To)
}

// TestLoadMissingFileUsesDefaults ensures a missing settings file is not fatal.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
}

// TestEnvironmentOverrides verifies SAFE_NOTIFIER_* variables win over the file.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvNotifierAccountSID, "AC_from_env")
	t.Setenv(EnvNotifierTo, "+15550109999")

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, Save(path, &Config{
		Notifier: NotifierConfig{
			AccountSID: "AC_from_file",
			To:         "+15550100001",
		},
	}))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "AC_from_env", cfg.Notifier.AccountSID)
	require.Equal(t, "+15550109999", cfg.Notifier.To)
}
