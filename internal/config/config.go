// Package config holds tunable defaults, optionally overlaid from a YAML
// file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and the
// user home directory, in that order.
const FileName = ".transub.yaml"

type Config struct {
	TranscribeModel string `yaml:"transcribe_model"`
	TranslateModel  string `yaml:"translate_model"`
	SpeechModel     string `yaml:"speech_model"`
	LiveModel       string `yaml:"live_model"`

	BaseURL      string   `yaml:"base_url"`
	AllowedHosts []string `yaml:"allowed_hosts"`

	ChunkSec  float64 `yaml:"chunk_sec"`
	BatchSize int     `yaml:"batch_size"`

	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	WhisperBin   string `yaml:"whisper_bin"`
	WhisperModel string `yaml:"whisper_model"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ChunkSec:    55,
		BatchSize:   20,
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
	}
}

// Load returns defaults overlaid with the config file at path. An empty
// path searches the standard locations; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findFile()
		if path == "" {
			return cfg, nil
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.ChunkSec <= 0 {
		return nil, fmt.Errorf("config %s: chunk_sec must be positive", path)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("config %s: batch_size must be positive", path)
	}
	return cfg, nil
}

func findFile() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
