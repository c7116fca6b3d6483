package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/forPelevin/transub/internal/ports/adapters/whispercpp"
)

func validConfig() Config {
	return Config{
		APIKey:    "key",
		ChunkSec:  55,
		BatchSize: 20,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid hosted",
			mutate: func(*Config) {},
		},
		{
			name: "valid local",
			mutate: func(c *Config) {
				c.APIKey = ""
				c.LocalASR = true
				c.WhisperBin = "/usr/local/bin/whisper-cli"
				c.WhisperModel = "/models/ggml-base.bin"
			},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.APIKey = "" },
			wantErr: "GEMINI_API_KEY",
		},
		{
			name: "local without model",
			mutate: func(c *Config) {
				c.LocalASR = true
				c.WhisperBin = "/usr/local/bin/whisper-cli"
			},
			wantErr: "whisper",
		},
		{
			name:    "zero chunk",
			mutate:  func(c *Config) { c.ChunkSec = 0 },
			wantErr: "chunk duration",
		},
		{
			name:    "zero batch",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: "batch size",
		},
		{
			name:    "http base url",
			mutate:  func(c *Config) { c.BaseURL = "http://example.com" },
			wantErr: "https",
		},
		{
			name:    "disallowed host",
			mutate:  func(c *Config) { c.BaseURL = "https://evil.example.com" },
			wantErr: "GEMINI_ALLOWED_HOSTS",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestProgressLogger(t *testing.T) {
	var lines []string
	logf := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	report := progressLogger(logf, "translation")
	report(1, 3)
	report(2, 3)
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "translation progress") {
		t.Fatalf("unexpected log line: %s", lines[0])
	}
}

func TestTranscriberSelection(t *testing.T) {
	cfg := validConfig()
	if _, ok := cfg.transcriber().(*whispercpp.Adapter); ok {
		t.Fatal("hosted config must not select the local transcriber")
	}
	cfg.LocalASR = true
	cfg.WhisperBin = "/bin/whisper-cli"
	cfg.WhisperModel = "/models/ggml-base.bin"
	if _, ok := cfg.transcriber().(*whispercpp.Adapter); !ok {
		t.Fatal("local config must select the whisper transcriber")
	}
}
