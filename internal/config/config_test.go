package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAccessToken, "token")
	t.Setenv(EnvChannelSecret, "secret")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvSessionDir, "")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AccessToken != "token" || cfg.ChannelSecret != "secret" {
		t.Errorf("secrets = (%q, %q)", cfg.AccessToken, cfg.ChannelSecret)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoad_MissingSecrets(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		secret      string
		wantMissing []string
	}{
		{"both missing", "", "", []string{EnvAccessToken, EnvChannelSecret}},
		{"token missing", "", "secret", []string{EnvAccessToken}},
		{"secret missing", "token", "  ", []string{EnvChannelSecret}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAccessToken, tt.token)
			t.Setenv(EnvChannelSecret, tt.secret)

			_, err := Load(Options{})
			if !errors.Is(err, ErrMissingSetting) {
				t.Fatalf("Load() error = %v, want ErrMissingSetting", err)
			}
			for _, name := range tt.wantMissing {
				if !strings.Contains(err.Error(), name) {
					t.Errorf("error %q should name %s", err, name)
				}
			}
		})
	}
}

func TestLoad_Port(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"8080", 8080, false},
		{" 3000 ", 3000, false},
		{"abc", 0, true},
		{"0", 0, true},
		{"70000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			setRequired(t)
			t.Setenv(EnvPort, tt.raw)

			cfg, err := Load(Options{})
			if tt.wantErr {
				if err == nil {
					t.Error("Load() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Port != tt.want {
				t.Errorf("Port = %d, want %d", cfg.Port, tt.want)
			}
		})
	}
}

func TestLoad_EnvFileOverrides(t *testing.T) {
	setRequired(t)
	path := writeFile(t, ".env", "ACCESS_TOKEN=from-file\nPORT=9000\nSESSION_REDIS_URL=redis://localhost:6379/1\nSESSION_DIR=/var/lib/walker\n")

	cfg, err := Load(Options{EnvFile: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AccessToken != "from-file" {
		t.Errorf("AccessToken = %q, want value from .env", cfg.AccessToken)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.SessionDir != "/var/lib/walker" {
		t.Errorf("SessionDir = %q", cfg.SessionDir)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	setRequired(t)

	if _, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")}); err != nil {
		t.Errorf("Load() error = %v, want missing .env to be ignored", err)
	}
}

func TestLoadScraperFile(t *testing.T) {
	path := writeFile(t, "scraper.yaml", `
base_url: https://staging.example.com/event/
site_origin: https://staging.example.com
radius_km: 5
max_results: 3
timeout: 4s
`)

	sc, err := LoadScraperFile(path)
	if err != nil {
		t.Fatalf("LoadScraperFile() error = %v", err)
	}

	want := ScraperConfig{
		BaseURL:    "https://staging.example.com/event/",
		SiteOrigin: "https://staging.example.com",
		RadiusKM:   5,
		MaxResults: 3,
		Timeout:    4 * time.Second,
	}
	if *sc != want {
		t.Errorf("LoadScraperFile() = %+v, want %+v", *sc, want)
	}
}

func TestLoadScraperFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "radius_km: [1, 2"},
		{"negative radius", "radius_km: -1"},
		{"bad duration", "timeout: soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "scraper.yaml", tt.content)
			if _, err := LoadScraperFile(path); err == nil {
				t.Error("LoadScraperFile() expected error")
			}
		})
	}

	if _, err := LoadScraperFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadScraperFile() expected error for missing file")
	}
}

func TestLoad_WithScraperFile(t *testing.T) {
	setRequired(t)
	path := writeFile(t, "scraper.yaml", "max_results: 2\n")

	cfg, err := Load(Options{ScraperFile: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scraper.MaxResults != 2 {
		t.Errorf("Scraper.MaxResults = %d, want 2", cfg.Scraper.MaxResults)
	}
}
