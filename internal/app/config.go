package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"busdash.astana.transit/internal/logging"
	"busdash.astana.transit/internal/mapview"
	"busdash.astana.transit/internal/routeapi"
)

// envPrefix namespaces the environment variables read by ApplyEnv.
const envPrefix = "BUSDASH_"

// Config holds all the configuration settings for the dashboard. Values are
// layered: defaults, then an optional YAML file, then the environment (and .env),
// then command-line flags.
//
// RateLimit is the number of mutating requests a client may make per second.
// Zero disables limiting.
type Config struct {
	Port           int                `yaml:"port" validate:"gt=0,lte=65535"`
	Env            string             `yaml:"env" validate:"oneof=development staging production test"`
	LogLevel       string             `yaml:"logLevel" validate:"omitempty,oneof=debug info warn warning error"`
	LogFile        logging.FileConfig `yaml:"logFile"`
	RouteAPI       routeapi.Config    `yaml:"routeAPI"`
	Map            mapview.Config     `yaml:"map"`
	RateLimit      int                `yaml:"rateLimit" validate:"gte=0"`
	MaxUploadMB    int                `yaml:"maxUploadMB" validate:"gt=0"`
	AllowedOrigins []string           `yaml:"allowedOrigins"`
}

func DefaultConfig() Config {
	return Config{
		Port:     3000,
		Env:      "development",
		LogLevel: "info",
		RouteAPI: routeapi.Config{
			BaseURL: routeapi.DefaultBaseURL,
			Timeout: routeapi.DefaultTimeout,
		},
		Map:            mapview.DefaultConfig(),
		RateLimit:      10,
		MaxUploadMB:    32,
		AllowedOrigins: []string{"*"},
	}
}

// LoadConfigFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays BUSDASH_* variables onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", envPrefix, err)
		}
		cfg.Port = port
	}
	if v, ok := lookup(envPrefix + "ENV"); ok {
		cfg.Env = v
	}
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(envPrefix + "LOG_FILE"); ok {
		cfg.LogFile.Path = v
	}
	if v, ok := lookup(envPrefix + "API_URL"); ok {
		cfg.RouteAPI.BaseURL = v
	}
	if v, ok := lookup(envPrefix + "API_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sAPI_TIMEOUT: %w", envPrefix, err)
		}
		cfg.RouteAPI.Timeout = timeout
	}
	if v, ok := lookup(envPrefix + "TILE_URL"); ok {
		cfg.Map.TileURL = v
	}
	if v, ok := lookup(envPrefix + "RATE_LIMIT"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err)
		}
		cfg.RateLimit = limit
	}
	if v, ok := lookup(envPrefix + "ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}
	return nil
}

// LoadConfig builds the configuration from its layers. args are the command-line
// arguments without the program name; lookup reads the environment.
func LoadConfig(args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	flags := flag.NewFlagSet("busdash", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to a YAML configuration file")
	port := flags.Int("port", cfg.Port, "HTTP server port")
	env := flags.String("env", cfg.Env, "Environment (development|staging|production|test)")
	apiURL := flags.String("api-url", cfg.RouteAPI.BaseURL, "Base URL of the route service")
	logLevel := flags.String("log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	path := *configPath
	if path == "" {
		path, _ = lookup(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := LoadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "env":
			cfg.Env = *env
		case "api-url":
			cfg.RouteAPI.BaseURL = *apiURL
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if err := c.Map.Validate(); err != nil {
		return fmt.Errorf("map: %w", err)
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("allowedOrigins must not be empty")
	}
	return nil
}

// MaxUploadBytes is the largest accepted upload request body.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
