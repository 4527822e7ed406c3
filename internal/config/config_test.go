package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				Port:            "8080",
				DBPath:          filepath.Join(t.TempDir(), "test.db"),
				JWTSecret:       "0123456789abcdef",
				TokenDuration:   24 * time.Hour,
				EventBufferSize: 100,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:            "abc",
				DBPath:          "./test.db",
				JWTSecret:       "secret-secret",
				TokenDuration:   time.Hour,
				EventBufferSize: 10,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:            "70000",
				DBPath:          "./test.db",
				JWTSecret:       "secret-secret",
				TokenDuration:   time.Hour,
				EventBufferSize: 10,
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "missing jwt secret",
			config: Config{
				Port:            "8080",
				DBPath:          "./test.db",
				TokenDuration:   time.Hour,
				EventBufferSize: 10,
			},
			wantErr:     true,
			errorString: "JWT_SECRET must be set",
		},
		{
			name: "multiple problems collected",
			config: Config{
				Port:   "abc",
				DBPath: "",
			},
			wantErr:     true,
			errorString: "DB_PATH cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "TOKEN_DURATION", "EVENT_BUFFER_SIZE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Errorf("TokenDuration = %s, want 24h", cfg.TokenDuration)
	}
	if cfg.EventBufferSize != 100 {
		t.Errorf("EventBufferSize = %d, want 100", cfg.EventBufferSize)
	}
}
