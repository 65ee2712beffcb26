package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWithArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse(args))
	return Load(flags)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadWithArgs(t)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5001", cfg.BackendURL)
	assert.False(t, cfg.Dev)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.False(t, cfg.Stub.Enabled)
	assert.Equal(t, "localhost:5001", cfg.Stub.Addr)
	assert.Equal(t, []string{"pdf"}, cfg.Stub.AllowedExtensions)
	assert.Equal(t, int64(32<<20), cfg.Stub.MaxUploadBytes)
}

func TestStubPointsClientAtItself(t *testing.T) {
	cfg, err := loadWithArgs(t, "--stub", "--stub-addr", "127.0.0.1:9999")
	require.NoError(t, err)

	assert.True(t, cfg.Stub.Enabled)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.BackendURL)
}

func TestExplicitBackendWinsOverStub(t *testing.T) {
	cfg, err := loadWithArgs(t, "--stub", "--backend", "http://qa.internal:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://qa.internal:8080", cfg.BackendURL)
}

func TestEnvironmentOverridesFileAndFlagsOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend_url: http://from-file:1
poll_interval: 3s
stub:
  async: true
`), 0o600))

	t.Setenv("AITOOL_POLL_INTERVAL", "2s")
	t.Setenv("AITOOL_BACKEND_URL", "http://from-env:2")

	cfg, err := loadWithArgs(t, "--config", path, "--backend", "http://from-flag:3")
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag:3", cfg.BackendURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.True(t, cfg.Stub.Async)
}

func TestMissingConfigFileIsAnError(t *testing.T) {
	_, err := loadWithArgs(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestInvalidPollInterval(t *testing.T) {
	_, err := loadWithArgs(t, "--poll-interval", "0s")
	assert.Error(t, err)
}
