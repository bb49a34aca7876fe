package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvAccessToken   = "ACCESS_TOKEN"
	EnvChannelSecret = "CHANNEL_SECRET"
	EnvPort          = "PORT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvRedisURL      = "SESSION_REDIS_URL"
	EnvSessionDir    = "SESSION_DIR"

	DefaultPort = 5000
)

// ErrMissingSetting is returned when a required setting is empty
var ErrMissingSetting = errors.New("missing required setting")

// Config holds everything the server needs
type Config struct {
	AccessToken   string
	ChannelSecret string
	Port          int
	LogLevel      string
	RedisURL      string
	SessionDir    string
	Scraper       ScraperConfig
}

// ScraperConfig overrides scraper defaults. Zero values keep the default.
type ScraperConfig struct {
	BaseURL    string        `yaml:"base_url"`
	SiteOrigin string        `yaml:"site_origin"`
	UserAgent  string        `yaml:"user_agent"`
	RadiusKM   int           `yaml:"radius_km"`
	MaxResults int           `yaml:"max_results"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Options says where to look for optional files
type Options struct {
	// EnvFile is loaded if it exists; its values override the environment.
	EnvFile string
	// ScraperFile is a YAML file of ScraperConfig. Empty skips it.
	ScraperFile string
}

// Load reads the configuration and validates required settings
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := loadEnvFile(opts.EnvFile); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		AccessToken:   strings.TrimSpace(os.Getenv(EnvAccessToken)),
		ChannelSecret: strings.TrimSpace(os.Getenv(EnvChannelSecret)),
		Port:          DefaultPort,
		LogLevel:      os.Getenv(EnvLogLevel),
		RedisURL:      strings.TrimSpace(os.Getenv(EnvRedisURL)),
		SessionDir:    strings.TrimSpace(os.Getenv(EnvSessionDir)),
	}

	if raw := strings.TrimSpace(os.Getenv(EnvPort)); raw != "" {
		port, err := parsePort(raw)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	}

	if opts.ScraperFile != "" {
		sc, err := LoadScraperFile(opts.ScraperFile)
		if err != nil {
			return nil, err
		}
		cfg.Scraper = *sc
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required secrets are present
func (c *Config) Validate() error {
	var missing []string
	if c.AccessToken == "" {
		missing = append(missing, EnvAccessToken)
	}
	if c.ChannelSecret == "" {
		missing = append(missing, EnvChannelSecret)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// LoadScraperFile parses a YAML scraper override file
func LoadScraperFile(path string) (*ScraperConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scraper config: %w", err)
	}

	var sc ScraperConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scraper config: %w", err)
	}

	if sc.RadiusKM < 0 || sc.MaxResults < 0 || sc.Timeout < 0 {
		return nil, fmt.Errorf("parsing scraper config: negative values are not allowed")
	}
	return &sc, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking env file: %w", err)
	}
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", EnvPort, raw, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid %s %d: out of range", EnvPort, port)
	}
	return port, nil
}
