package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pitchside/voicenotes/internal/migrate"
)

var (
	migrateDryRun    bool
	migrateBatchSize int
	migrateOrgID     string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Replay one batch of legacy voice notes into the pipeline schema",
	Long:  "Backfills historical flat-form voice notes as artifacts, transcripts, and claims. Idempotent: already-migrated records are skipped, so re-invoke until skipped equals processed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stats, err := migrate.NewReplayer(cfg, st).Run(ctx, migrate.Options{
			OrganizationID: migrateOrgID,
			DryRun:         migrateDryRun,
			BatchSize:      migrateBatchSize,
		})
		if err != nil {
			return err
		}

		fmt.Printf("processed=%d artifacts=%d transcripts=%d claims=%d errors=%d skipped=%d\n",
			stats.Processed, stats.Artifacts, stats.Transcripts, stats.Claims, stats.Errors, stats.Skipped)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "count what would be migrated without writing")
	migrateCmd.Flags().IntVar(&migrateBatchSize, "batch-size", 0, "records per batch, 1-200 (default from config)")
	migrateCmd.Flags().StringVar(&migrateOrgID, "org", "", "restrict to one organization")
	rootCmd.AddCommand(migrateCmd)
}
