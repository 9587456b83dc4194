package config

import (
	"testing"
	"time"
)

func TestParseDurationOr(t *testing.T) {
	tests := []struct {
		input    string
		fallback time.Duration
		want     time.Duration
	}{
		{"6m", time.Minute, 6 * time.Minute},
		{"1500ms", time.Second, 1500 * time.Millisecond},
		{"", 3 * time.Second, 3 * time.Second},
		{"not-a-duration", 3 * time.Second, 3 * time.Second},
	}

	for _, tt := range tests {
		if got := ParseDurationOr(tt.input, tt.fallback); got != tt.want {
			t.Errorf("ParseDurationOr(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	valid := &Config{
		Server:  Server{Port: 8080},
		Storage: Storage{Backend: "sqlite"},
		TTS:     TTS{DefaultSpeed: 1.0},
	}
	if err := validateConfig(valid); err != nil {
		t.Errorf("validateConfig(valid) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad speed", func(c *Config) { c.TTS.DefaultSpeed = 3.0 }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "postgres" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			if err := validateConfig(&cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Research.Timeout != "6m" {
		t.Errorf("research.timeout = %q, want 6m", cfg.Research.Timeout)
	}
	if cfg.Research.QueryStagger != "1s" {
		t.Errorf("research.query_stagger = %q, want 1s", cfg.Research.QueryStagger)
	}
	if cfg.Research.MaxCategories != 5 {
		t.Errorf("research.max_categories = %d, want 5", cfg.Research.MaxCategories)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
}
