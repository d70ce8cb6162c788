package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pawmatch/pawmatch-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config 애플리케이션 전체 설정
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
	Feed     FeedConfig     `yaml:"feed"`
	Match    MatchConfig    `yaml:"match"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // development, production
}

// DatabaseConfig MySQL settings
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// GetDSN builds the MySQL DSN
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig token settings (seconds)
type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"`
	RefreshIn int    `yaml:"refresh_in"`
}

// CORSConfig comma separated origins
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// FeedConfig feed assembly tunables
type FeedConfig struct {
	WindowHours     int `yaml:"window_hours"`
	PoolCap         int `yaml:"pool_cap"`
	SponsorSlot     int `yaml:"sponsor_slot"`
	StoryCap        int `yaml:"story_cap"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// MatchConfig swipe reconciler tunables
type MatchConfig struct {
	CandidateCap   int    `yaml:"candidate_cap"`
	MaxAttempts    int    `yaml:"max_attempts"`
	LockBackend    string `yaml:"lock_backend"` // local, redis
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// JobsConfig periodic job settings
type JobsConfig struct {
	StoryCleanupMinutes int `yaml:"story_cleanup_minutes"`
}

// Load reads the yaml file at path, applies env overrides and defaults.
// A missing file is not an error: env vars and defaults still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config 파싱 실패 (%s): %w", path, err)
		}
	case os.IsNotExist(err):
		logger.GetLogger().Warn().Str("path", path).Msg("config file not found, using env and defaults")
	default:
		return nil, fmt.Errorf("config 읽기 실패 (%s): %w", path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "" || c.Server.Mode == "development" || c.Server.Mode == "dev"
}

// FeedWindow returns the candidate retrieval window
func (c *Config) FeedWindow() time.Duration {
	return time.Duration(c.Feed.WindowHours) * time.Hour
}

// FeedCacheTTL returns how long assembled feed pages are cached
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.Feed.CacheTTLSeconds) * time.Second
}

// LogResolved prints the effective configuration without secrets
func LogResolved(cfg *Config) {
	logger.GetLogger().Info().
		Int("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Str("db_host", cfg.Database.Host).
		Str("db_name", cfg.Database.DBName).
		Str("redis", fmt.Sprintf("%s:%d/%d", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)).
		Int("feed_window_hours", cfg.Feed.WindowHours).
		Int("feed_pool_cap", cfg.Feed.PoolCap).
		Int("swipe_candidate_cap", cfg.Match.CandidateCap).
		Str("lock_backend", cfg.Match.LockBackend).
		Msg("config resolved")
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Mode, "APP_MODE")
	setInt(&cfg.Server.Port, "SERVER_PORT")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
	setString(&cfg.Match.LockBackend, "MATCH_LOCK_BACKEND")
}

func applyDefaults(cfg *Config) {
	defaultInt(&cfg.Server.Port, 8080)
	defaultInt(&cfg.Database.Port, 3306)
	defaultInt(&cfg.Database.MaxIdleConns, 10)
	defaultInt(&cfg.Database.MaxOpenConns, 50)
	defaultInt(&cfg.Database.ConnMaxLifetime, 3600)
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	defaultInt(&cfg.Redis.Port, 6379)
	defaultInt(&cfg.Redis.PoolSize, 20)
	defaultInt(&cfg.JWT.ExpiresIn, 900)
	defaultInt(&cfg.JWT.RefreshIn, 604800)

	defaultInt(&cfg.Feed.WindowHours, 7*24)
	defaultInt(&cfg.Feed.PoolCap, 200)
	defaultInt(&cfg.Feed.SponsorSlot, 2)
	defaultInt(&cfg.Feed.StoryCap, 20)
	defaultInt(&cfg.Feed.DefaultPageSize, 20)
	defaultInt(&cfg.Feed.MaxPageSize, 100)
	defaultInt(&cfg.Feed.CacheTTLSeconds, 60)

	defaultInt(&cfg.Match.CandidateCap, 20)
	defaultInt(&cfg.Match.MaxAttempts, 3)
	defaultInt(&cfg.Match.LockTTLSeconds, 5)
	if cfg.Match.LockBackend == "" {
		cfg.Match.LockBackend = "local"
	}

	defaultInt(&cfg.Jobs.StoryCleanupMinutes, 10)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger.GetLogger().Warn().Str("key", key).Str("value", v).Msg("ignoring non-numeric env override")
		return
	}
	*dst = n
}

func defaultInt(dst *int, def int) {
	if *dst <= 0 {
		*dst = def
	}
}
