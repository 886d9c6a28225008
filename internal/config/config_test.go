package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{Backend: BackendBadger, DataPath: "/data", QuotaBytes: 1024},
		TMDB: TMDBConfig{
			BaseURL: "https://api.themoviedb.org/3",
			Timeout: 10 * time.Second,
			RPS:     20,
			Burst:   10,
		},
		Session: SessionConfig{PreferredColorScheme: "dark"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", false}, // API key missing
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_ProductionWithAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "production"
	cfg.TMDB.APIKey = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_StorageBackends(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "memory without path", mutate: func(c *Config) { c.Storage.Backend = BackendMemory; c.Storage.DataPath = "" }},
		{name: "badger without path", mutate: func(c *Config) { c.Storage.DataPath = "" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Backend = BackendRedis }, wantErr: true},
		{name: "redis with addr", mutate: func(c *Config) { c.Storage.Backend = BackendRedis; c.Storage.Redis.Addr = "localhost:6379" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "etcd" }, wantErr: true},
		{name: "negative quota", mutate: func(c *Config) { c.Storage.QuotaBytes = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ColorScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Session.PreferredColorScheme = "sepia"
	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.Equal(t, 5*1024*1024, cfg.Storage.QuotaBytes)
	assert.Equal(t, "pt-BR", cfg.TMDB.Language)
	assert.Equal(t, "BR", cfg.TMDB.Region)
	assert.Equal(t, 10*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.SearchDebounce)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.FavoritesSaveDebounce)
	assert.Equal(t, time.Second, cfg.Session.LoginLatency)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.ProfileLatency)
	assert.Equal(t, "dark", cfg.Session.PreferredColorScheme)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TMDB_REGION=PT\nTMDB_LANGUAGE=pt-PT\nSERVER_PORT=9000\n"), 0o600))

	t.Setenv("DATA_PATH", dir)
	t.Setenv("TMDB_LANGUAGE", "en-US")

	cfg, err := Load([]string{"-env-file", envFile, "-port", "7000"})
	require.NoError(t, err)

	assert.Equal(t, "PT", cfg.TMDB.Region, ".env applies when nothing else is set")
	assert.Equal(t, "en-US", cfg.TMDB.Language, "environment beats .env")
	assert.Equal(t, "7000", cfg.Server.Port, "flag beats everything")
}

func TestLoad_UnreadableEnvFile(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	// A directory exists but cannot be parsed as an env file.
	envDir := t.TempDir()
	_, err := Load([]string{"-env-file", envDir})
	require.Error(t, err)
	assert.ErrorContains(t, err, "load env file")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("SEARCH_DEBOUNCE", "soon")

	_, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	assert.ErrorContains(t, err, "SEARCH_DEBOUNCE")
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/cinewave", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "cinewave"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "env-value")

	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default"))
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "TEST_MISSING_KEY", "default"))
}

func TestGetNumericConfigValues(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty")
	t.Setenv("TEST_FLOAT", "2.5")

	assert.Equal(t, 42, getIntConfigValue("", "TEST_INT", 1))
	assert.Equal(t, 1, getIntConfigValue("", "TEST_BAD_INT", 1))
	assert.InDelta(t, 2.5, getFloatConfigValue("", "TEST_FLOAT", 1), 0.0001)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
