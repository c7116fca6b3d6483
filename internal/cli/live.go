package cli

import (
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/forPelevin/transub/internal/domain/srt"
	"github.com/forPelevin/transub/internal/pipeline"
)

func newLiveCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Transcribe the microphone in real time until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			slog.Info("listening, press Ctrl-C to stop")
			tr, err := pipeline.Live(ctx, cfg)
			if err != nil {
				// the finalized transcript survives a session failure
				if len(tr.Segments) == 0 {
					return err
				}
				slog.Warn("session ended early", "err", err)
			}
			if len(tr.Segments) == 0 {
				slog.Info("no speech captured")
				return nil
			}
			return writeOutput(cmd, outPath, srt.Render(tr))
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output .srt path (default stdout)")
	return cmd
}
