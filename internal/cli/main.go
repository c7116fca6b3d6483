// Package cli implements the transub command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/transub/internal/config"
	"github.com/forPelevin/transub/internal/pipeline"
)

var (
	verbose    bool
	quiet      bool
	configPath string
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "transub",
		Short:        "Transcribe, translate and voice audio with Gemini",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.FileName+" in cwd or home)")

	root.AddCommand(newTranscribeCmd(), newLiveCmd(), newTranslateCmd(), newSpeakCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// logf adapts the pipeline's printf-style log hook onto slog.
func logf(format string, args ...any) {
	slog.Info(fmt.Sprintf(format, args...))
}

// buildConfig loads file defaults and overlays environment values.
func buildConfig() (pipeline.Config, error) {
	fc, err := config.Load(configPath)
	if err != nil {
		return pipeline.Config{}, err
	}

	allowed := fc.AllowedHosts
	if env := os.Getenv("GEMINI_ALLOWED_HOSTS"); env != "" {
		allowed = nil
		for _, h := range strings.Split(env, ",") {
			if h = strings.TrimSpace(h); h != "" {
				allowed = append(allowed, h)
			}
		}
	}

	return pipeline.Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),

		TranscribeModel: getenvDefault("TRANSUB_TRANSCRIBE_MODEL", fc.TranscribeModel),
		TranslateModel:  getenvDefault("TRANSUB_TRANSLATE_MODEL", fc.TranslateModel),
		SpeechModel:     getenvDefault("TRANSUB_SPEECH_MODEL", fc.SpeechModel),
		LiveModel:       getenvDefault("TRANSUB_LIVE_MODEL", fc.LiveModel),

		BaseURL:      getenvDefault("GEMINI_BASE_URL", fc.BaseURL),
		AllowedHosts: allowed,

		ChunkSec:  fc.ChunkSec,
		BatchSize: fc.BatchSize,

		FFmpegPath:  fc.FFmpegPath,
		FFprobePath: fc.FFprobePath,

		WhisperBin:   fc.WhisperBin,
		WhisperModel: fc.WhisperModel,

		Logf: logf,
	}, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// writeOutput writes content to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("output written", "path", path)
	return nil
}
