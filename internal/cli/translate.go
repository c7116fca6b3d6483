package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/transub/internal/pipeline"
)

const maxSubtitleBytes = 5 << 20

func newTranslateCmd() *cobra.Command {
	var (
		targetLang string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "translate <file.srt>",
		Short: "Translate subtitle text while preserving timing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if !strings.EqualFold(filepath.Ext(input), ".srt") {
				return fmt.Errorf("%s is not an .srt file", input)
			}
			info, err := os.Stat(input)
			if err != nil {
				return err
			}
			if info.Size() > maxSubtitleBytes {
				return fmt.Errorf("%s is %d bytes, above the %d byte limit", input, info.Size(), maxSubtitleBytes)
			}

			doc, err := os.ReadFile(input)
			if err != nil {
				return err
			}

			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			out, err := pipeline.TranslateSubtitle(cmd.Context(), cfg, string(doc), targetLang)
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, out)
		},
	}

	cmd.Flags().StringVar(&targetLang, "to", "", "Target language (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output .srt path (default stdout)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
