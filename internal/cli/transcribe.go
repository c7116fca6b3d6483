package cli

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/forPelevin/transub/internal/domain/srt"
	"github.com/forPelevin/transub/internal/pipeline"
)

const maxAudioBytes = 100 << 20

func newTranscribeCmd() *cobra.Command {
	var (
		chunkSec  float64
		outPath   string
		translate string
		copyText  bool
		local     bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio>",
		Short: "Transcribe an audio file into SRT subtitles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := checkAudioFile(input); err != nil {
				return err
			}

			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			if chunkSec > 0 {
				cfg.ChunkSec = chunkSec
			}
			cfg.LocalASR = local
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			tr, err := pipeline.TranscribeFile(cmd.Context(), cfg, input, translate)
			if err != nil {
				return err
			}

			if copyText {
				if err := clipboard.WriteAll(tr.JoinedText()); err != nil {
					slog.Warn("clipboard copy failed", "err", err)
				} else {
					slog.Info("transcript copied to clipboard")
				}
			}
			return writeOutput(cmd, outPath, srt.Render(tr))
		},
	}

	cmd.Flags().Float64Var(&chunkSec, "chunk-sec", 0, "Chunk duration in seconds (0 uses the configured default)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output .srt path (default stdout)")
	cmd.Flags().StringVar(&translate, "translate", "", "Translate segments to this language")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the joined transcript text to the clipboard")
	cmd.Flags().BoolVar(&local, "local", false, "Transcribe locally with whisper.cpp instead of the API")

	return cmd
}

// checkAudioFile rejects oversized or non-audio inputs before any work
// starts.
func checkAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxAudioBytes {
		return fmt.Errorf("%s is %d bytes, above the %d byte limit", path, info.Size(), maxAudioBytes)
	}
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mt, "audio/") && !strings.HasPrefix(mt, "video/") {
		return fmt.Errorf("%s does not look like an audio file", path)
	}
	return nil
}
