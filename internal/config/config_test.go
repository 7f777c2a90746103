package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.DBPath != "./data/tripsplit.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.TokenTTL)
	}
	if cfg.RatesCacheTTL != 30*time.Minute {
		t.Errorf("RatesCacheTTL = %s, want 30m", cfg.RatesCacheTTL)
	}
	if cfg.BaseCurrency != "CNY" {
		t.Errorf("BaseCurrency = %q, want CNY", cfg.BaseCurrency)
	}
	if cfg.LogFormat != "text" || cfg.LogLevel != "info" {
		t.Errorf("logging = %q/%q, want text/info", cfg.LogFormat, cfg.LogLevel)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("BASE_CURRENCY", "EUR")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.TokenTTL != time.Hour || cfg.LogFormat != "json" || cfg.BaseCurrency != "EUR" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"JWT_SECRET": ""},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "bad port",
			env:     map[string]string{"JWT_SECRET": "s", "PORT": "70000"},
			wantErr: "PORT",
		},
		{
			name:    "unparseable duration",
			env:     map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "soon"},
			wantErr: "parse env",
		},
		{
			name:    "negative ttl",
			env:     map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "-1h"},
			wantErr: "TOKEN_TTL",
		},
		{
			name:    "unknown log format",
			env:     map[string]string{"JWT_SECRET": "s", "LOG_FORMAT": "xml"},
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want to contain %q", err, tt.wantErr)
			}
		})
	}
}
