package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busdash.astana.transit/internal/routeapi"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, routeapi.DefaultBaseURL, cfg.RouteAPI.BaseURL)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busdash.yml")
	content := `
port: 8080
env: production
routeAPI:
  baseURL: http://routes.internal:8000
  timeout: 5s
map:
  zoom: 12
  fallbackCenter: [43.2389, 76.8897]
logFile:
  path: /var/log/busdash.log
  maxSizeMB: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := DefaultConfig()
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "http://routes.internal:8000", cfg.RouteAPI.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.RouteAPI.Timeout)
	assert.Equal(t, 12, cfg.Map.Zoom)
	assert.Equal(t, 43.2389, cfg.Map.FallbackCenter.Lat())
	assert.Equal(t, "/var/log/busdash.log", cfg.LogFile.Path)
	assert.NotEmpty(t, cfg.Map.TileURL, "keys missing from the file keep their defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, LoadConfigFile(filepath.Join(t.TempDir(), "missing.yml"), &cfg))

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: [1, 2"), 0o600))
	assert.Error(t, LoadConfigFile(path, &cfg))
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()

	err := ApplyEnv(&cfg, envMap(map[string]string{
		"BUSDASH_PORT":            "9000",
		"BUSDASH_ENV":             "staging",
		"BUSDASH_API_URL":         "http://10.0.0.5:8000",
		"BUSDASH_API_TIMEOUT":     "2s",
		"BUSDASH_RATE_LIMIT":      "0",
		"BUSDASH_ALLOWED_ORIGINS": "https://a.kz, https://b.kz,",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.RouteAPI.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.RouteAPI.Timeout)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, []string{"https://a.kz", "https://b.kz"}, cfg.AllowedOrigins)
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, ApplyEnv(&cfg, envMap(map[string]string{"BUSDASH_PORT": "eighty"})))
	assert.Error(t, ApplyEnv(&cfg, envMap(map[string]string{"BUSDASH_API_TIMEOUT": "soon"})))
	assert.Error(t, ApplyEnv(&cfg, envMap(map[string]string{"BUSDASH_RATE_LIMIT": "lots"})))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"bad env", func(c *Config) { c.Env = "qa" }},
		{"bad api url", func(c *Config) { c.RouteAPI.BaseURL = "not a url" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"no origins", func(c *Config) { c.AllowedOrigins = nil }},
		{"bad map", func(c *Config) { c.Map.TileURL = "" }},
		{"no upload size", func(c *Config) { c.MaxUploadMB = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewApplication(t *testing.T) {
	application, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	assert.NotNil(t, application.Routes)
	assert.NotNil(t, application.Maps)
}

func TestLoadConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busdash.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 8080\nenv: staging\nlogLevel: debug\n"), 0o600))

	env := envMap(map[string]string{
		"BUSDASH_CONFIG":  path,
		"BUSDASH_PORT":    "9000",
		"BUSDASH_API_URL": "http://env.internal:8000",
	})

	cfg, err := LoadConfig([]string{"-api-url", "http://flag.internal:8000"}, env)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Env, "file overrides defaults")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Port, "environment overrides the file")
	assert.Equal(t, "http://flag.internal:8000", cfg.RouteAPI.BaseURL, "flags override the environment")
}

func TestLoadConfigUnsetFlagsKeepLowerLayers(t *testing.T) {
	cfg, err := LoadConfig(nil, envMap(map[string]string{"BUSDASH_PORT": "9000"}))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
}

func TestLoadConfigErrors(t *testing.T) {
	noEnv := envMap(nil)

	_, err := LoadConfig([]string{"-port", "not-a-number"}, noEnv)
	assert.Error(t, err)

	_, err = LoadConfig([]string{"-config", filepath.Join(t.TempDir(), "missing.yml")}, noEnv)
	assert.Error(t, err)

	_, err = LoadConfig([]string{"-env", "qa"}, noEnv)
	assert.ErrorContains(t, err, "invalid configuration")
}
