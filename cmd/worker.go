package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the pipeline stage worker",
	Long:  "Consumes stage jobs from the queue and runs transcription, extraction, entity resolution, draft generation, and insight application.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		w := queue.NewWorker(e.Queue)
		e.Pipeline.RegisterStages(w)

		zap.L().Info("worker started")
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		zap.L().Info("worker stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
