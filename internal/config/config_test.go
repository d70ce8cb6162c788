package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
jwt:
  secret: file-secret
feed:
  pool_cap: 50
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 50, cfg.Feed.PoolCap)
	assert.Equal(t, 2, cfg.Feed.SponsorSlot)
	assert.Equal(t, 20, cfg.Match.CandidateCap)
	assert.Equal(t, "local", cfg.Match.LockBackend)
	assert.Equal(t, 7*24*time.Hour, cfg.FeedWindow())
	assert.Equal(t, time.Minute, cfg.FeedCacheTTL())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
jwt:
  secret: file-secret
`)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("MATCH_LOCK_BACKEND", "redis")
	t.Setenv("REDIS_PORT", "not-a-number")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "redis", cfg.Match.LockBackend)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "only-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "only-env", cfg.JWT.Secret)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "server:\n  port: 1\n")

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [oops")

	_, err := Load(path)

	assert.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 3306, User: "u", Password: "p", DBName: "pawmatch"}
	assert.Equal(t, "u:p@tcp(db:3306)/pawmatch?charset=utf8mb4&parseTime=True&loc=UTC", d.GetDSN())
}
