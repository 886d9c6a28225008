// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends understood by the kv package.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	TMDB    TMDBConfig
	Session SessionConfig
	Server  ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
	File  string // Optional rotated log file
}

// StorageConfig selects and configures the persistent key-value store.
type StorageConfig struct {
	Backend    string
	DataPath   string
	QuotaBytes int // Per-value size limit; 0 disables the limit
	Redis      RedisConfig
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TMDBConfig holds metadata API configuration.
type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Region       string
	Timeout      time.Duration
	RPS          float64
	Burst        int
	CacheTTL     time.Duration
	CacheSize    int
}

// SessionConfig holds the timings and seeds of the application session.
type SessionConfig struct {
	SearchDebounce        time.Duration
	FavoritesSaveDebounce time.Duration
	LoginLatency          time.Duration
	ProfileLatency        time.Duration
	// PreferredColorScheme seeds the theme when nothing is stored ("dark" or "light").
	PreferredColorScheme string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 0, event stream is long-lived)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string
	RPS          float64 // Inbound requests per second per client
	Burst        int
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("cinewave", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "Optional rotated log file")

	backend := fs.String("storage", "", "Storage backend (badger, sqlite, redis, file, memory)")
	dataPath := fs.String("data-path", "", "Directory for persisted state")
	quota := fs.String("storage-quota", "", "Per-value storage quota in bytes (default: 5242880)")
	redisAddr := fs.String("redis-addr", "", "Redis address for the redis backend")

	tmdbKey := fs.String("tmdb-api-key", "", "TMDB API key")
	tmdbLanguage := fs.String("tmdb-language", "", "TMDB response language (default: pt-BR)")
	tmdbRegion := fs.String("tmdb-region", "", "TMDB region (default: BR)")

	colorScheme := fs.String("color-scheme", "", "Preferred color scheme seed (dark, light)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv never overrides variables already present in the environment.
	// A missing file is normal outside development.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			File:  getConfigValue(*logFile, "LOG_FILE", ""),
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(getConfigValue(*backend, "STORAGE_BACKEND", BackendBadger)),
			DataPath:   getConfigValue(*dataPath, "DATA_PATH", ""),
			QuotaBytes: getIntConfigValue(*quota, "STORAGE_QUOTA_BYTES", 5*1024*1024),
			Redis: RedisConfig{
				Addr:     getConfigValue(*redisAddr, "REDIS_ADDR", "localhost:6379"),
				Password: getConfigValue("", "REDIS_PASSWORD", ""),
				DB:       getIntConfigValue("", "REDIS_DB", 0),
			},
		},
		TMDB: TMDBConfig{
			APIKey:       getConfigValue(*tmdbKey, "TMDB_API_KEY", ""),
			BaseURL:      getConfigValue("", "TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: getConfigValue("", "TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
			Language:     getConfigValue(*tmdbLanguage, "TMDB_LANGUAGE", "pt-BR"),
			Region:       getConfigValue(*tmdbRegion, "TMDB_REGION", "BR"),
			RPS:          getFloatConfigValue("", "TMDB_RPS", 20),
			Burst:        getIntConfigValue("", "TMDB_BURST", 10),
			CacheSize:    getIntConfigValue("", "TMDB_CACHE_SIZE", 256),
		},
		Session: SessionConfig{
			PreferredColorScheme: strings.ToLower(getConfigValue(*colorScheme, "PREFERRED_COLOR_SCHEME", "dark")),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue("", "CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
			RPS:         getFloatConfigValue("", "API_RPS", 50),
			Burst:       getIntConfigValue("", "API_BURST", 100),
		},
	}

	durations := []struct {
		dst    *time.Duration
		envKey string
		def    string
	}{
		{&cfg.TMDB.Timeout, "TMDB_TIMEOUT", "10s"},
		{&cfg.TMDB.CacheTTL, "TMDB_CACHE_TTL", "5m"},
		{&cfg.Session.SearchDebounce, "SEARCH_DEBOUNCE", "500ms"},
		{&cfg.Session.FavoritesSaveDebounce, "FAVORITES_SAVE_DEBOUNCE", "500ms"},
		{&cfg.Session.LoginLatency, "LOGIN_LATENCY", "1s"},
		{&cfg.Session.ProfileLatency, "PROFILE_LATENCY", "500ms"},
		{&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT", "0s"},
		{&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
	}
	for _, d := range durations {
		raw := getConfigValue("", d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite, BackendFile:
		if c.Storage.DataPath == "" {
			return errors.New("data path cannot be empty for a disk-backed store")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.QuotaBytes < 0 {
		return errors.New("storage quota cannot be negative")
	}

	if c.TMDB.APIKey == "" && c.App.Environment == "production" {
		return errors.New("TMDB_API_KEY is required in production")
	}
	if c.TMDB.BaseURL == "" {
		return errors.New("TMDB_BASE_URL cannot be empty")
	}
	if c.TMDB.Timeout <= 0 {
		return errors.New("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.RPS <= 0 || c.TMDB.Burst <= 0 {
		return errors.New("TMDB rate limit must be positive")
	}

	if c.Session.PreferredColorScheme != "dark" && c.Session.PreferredColorScheme != "light" {
		return fmt.Errorf("invalid color scheme: %s (must be dark or light)", c.Session.PreferredColorScheme)
	}
	if c.Session.SearchDebounce < 0 || c.Session.FavoritesSaveDebounce < 0 {
		return errors.New("debounce delays cannot be negative")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data directory to ~/CineWave/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "CineWave", "data"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
