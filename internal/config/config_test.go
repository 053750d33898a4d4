package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := New()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, filepath.Join(home, ".ryan", "memory.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, ".ryan", "app.log"), cfg.LogFile)
	assert.Equal(t, "default_user", cfg.UserID)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, ":8000", cfg.GetHTTPAddr())
	assert.Equal(t, 30*time.Second, cfg.ExecTimeout)
	assert.Equal(t, 5*time.Second, cfg.ExecGrace)
	assert.Equal(t, "python3", cfg.PythonBin)
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	t.Setenv("RYAN_HTTP_PORT", "9090")
	t.Setenv("RYAN_DB_PATH", "/tmp/custom.db")
	t.Setenv("RYAN_EXEC_TIMEOUT", "2s")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, 2*time.Second, cfg.ExecTimeout)
}

func TestConfigLoad_UnprefixedAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "plain-key")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "plain-key", cfg.GoogleAPIKey)
	assert.True(t, cfg.HasModel())

	t.Setenv("RYAN_GOOGLE_API_KEY", "prefixed-key")
	cfg, err = New()
	require.NoError(t, err)
	assert.Equal(t, "prefixed-key", cfg.GoogleAPIKey)
}

func TestConfigLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("RYAN_ENVIRONMENT", "staging")
	_, err := New()
	require.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RYAN_USER_ID=file_user\n"), 0o600))
	t.Setenv("RYAN_USER_ID", "")
	os.Unsetenv("RYAN_USER_ID")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file_user", cfg.UserID)
}

func TestLoadMissingNamedFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("")
	require.NoError(t, err)
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())
}
