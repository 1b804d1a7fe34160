package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORTAL_AUTH_JWTSECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, "data/portal.db", cfg.Database.Path)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, "profile-pics", cfg.Storage.KeyPrefix)
	assert.Empty(t, cfg.Storage.Bucket)
	assert.Equal(t, time.Hour, cfg.ProfilePicURLTTL())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "*", cfg.CORS.AllowOrigin)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORTAL_AUTH_JWTSECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "jwt secret")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORTAL_AUTH_JWTSECRET", "s3cret")
	t.Setenv("PORTAL_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("PORTAL_AUTH_ACCESSTTLMINUTES", "5")
	t.Setenv("PORTAL_STORAGE_BUCKET", "avatars")
	t.Setenv("PORTAL_CORS_ALLOWORIGIN", "https://portal.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL())
	assert.Equal(t, "avatars", cfg.Storage.Bucket)
	assert.Equal(t, "https://portal.example.com", cfg.CORS.AllowOrigin)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dotenv := "PORTAL_AUTH_JWTSECRET=from-dotenv\nPORTAL_LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600))

	t.Setenv("PORTAL_LOG_LEVEL", "warn")
	// godotenv sets variables process-wide; t.Setenv restores them afterwards.
	t.Setenv("PORTAL_AUTH_JWTSECRET", "")
	require.NoError(t, os.Unsetenv("PORTAL_AUTH_JWTSECRET"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORTAL_AUTH_JWTSECRET", "s3cret")
	yaml := "database:\n  path: /tmp/other.db\nstorage:\n  keyprefix: avatars\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "avatars", cfg.Storage.KeyPrefix)
}

func TestReadSkipsValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORTAL_DATABASE_PATH", "/tmp/seed.db")

	cfg, err := Read()
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, "/tmp/seed.db", cfg.Database.Path)
}

func TestLoadMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORTAL_AUTH_JWTSECRET", "s3cret")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("!!! not a variable\n"), 0o600))

	_, err := Load()
	assert.ErrorContains(t, err, "load .env")
}
