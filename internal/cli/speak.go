package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/transub/internal/pipeline"
)

func newSpeakCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "speak <text>...",
		Short: "Synthesize speech into a WAV file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("nothing to say")
			}

			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			audio, err := pipeline.Speak(cmd.Context(), cfg, text)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, audio, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			slog.Info("speech written", "path", outPath, "bytes", len(audio))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "speech.wav", "Output .wav path")
	return cmd
}
