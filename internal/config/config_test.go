package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "HOST", "PORT", "ALPHA", "FREQUENCY_PREVIEW", "INPUT_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.DSN != "trial.db" {
		t.Errorf("Expected default DSN trial.db, got %q", cfg.Database.DSN)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected default host 127.0.0.1, got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != "8050" {
		t.Errorf("Expected default port 8050, got %q", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "127.0.0.1:8050" {
		t.Errorf("Expected addr 127.0.0.1:8050, got %q", cfg.Server.Addr())
	}
	if cfg.Analysis.Alpha != 0.05 {
		t.Errorf("Expected default alpha 0.05, got %v", cfg.Analysis.Alpha)
	}
	if cfg.Analysis.FrequencyPreview != 15 {
		t.Errorf("Expected default preview 15, got %d", cfg.Analysis.FrequencyPreview)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/trial")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("ALPHA", "0.01")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.DSN != "postgres://localhost/trial" {
		t.Errorf("Expected overridden DSN, got %q", cfg.Database.DSN)
	}
	if cfg.Server.Addr() != "0.0.0.0:9000" {
		t.Errorf("Expected addr 0.0.0.0:9000, got %q", cfg.Server.Addr())
	}
	if cfg.Analysis.Alpha != 0.01 {
		t.Errorf("Expected alpha 0.01, got %v", cfg.Analysis.Alpha)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Non-numeric port", "PORT", "http"},
		{"Alpha above one", "ALPHA", "1.5"},
		{"Alpha zero", "ALPHA", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s, got nil", tt.key, tt.value)
			}
		})
	}
}
