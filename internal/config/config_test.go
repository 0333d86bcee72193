package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/auth"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "STORAGE_BACKEND", "AUTO_BACKUP_DELAY", "GEMINI_API_KEY", "API_KEY", "USERS_FILE", "SEED_SAMPLE_DATA"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, "imobcontrol_data", cfg.StorageKey)
	assert.Equal(t, 5*time.Second, cfg.AutoBackupDelay)
	assert.True(t, cfg.SeedSampleData)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, auth.DefaultUsers(), cfg.Users)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("NAMESPACE_PER_USER", "true")
	t.Setenv("AUTO_BACKUP_DELAY", "250ms")
	t.Setenv("JOB_WORKERS", "not-a-number")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("USERS_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.PersistenceOptions().Backend)
	assert.True(t, cfg.NamespacePerUser)
	assert.Equal(t, 250*time.Millisecond, cfg.AutoBackupDelay)
	assert.Equal(t, 5, cfg.JobWorkers)
	assert.Equal(t, "legacy-key", cfg.GeminiAPIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv never overrides variables that are already set
	t.Setenv("LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("LOG_FORMAT"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_FORMAT=json\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadUsers(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	good := write("good.yaml", "users:\n  - username: ana\n    password: s3cret\n    name: Ana\n")
	users, err := LoadUsers(good)
	require.NoError(t, err)
	assert.Equal(t, []auth.User{{Username: "ana", Password: "s3cret", Name: "Ana"}}, users)

	_, err = LoadUsers(write("empty.yaml", "users: []\n"))
	assert.Error(t, err)
	_, err = LoadUsers(write("nopass.yaml", "users:\n  - username: ana\n"))
	assert.Error(t, err)
	_, err = LoadUsers(write("broken.yaml", "users: [\n"))
	assert.Error(t, err)
	_, err = LoadUsers(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
