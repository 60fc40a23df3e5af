package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rjavier441/rjs2/config"
	"github.com/rjavier441/rjs2/database"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old manifest snapshots",
	Long: `Delete stored manifest snapshots, keeping only the newest ones.

Every serve run with manifest storage enabled records a snapshot. Run this
periodically to keep the history bounded.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

var pruneKeep int

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 10, "number of newest snapshots to keep")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	if !cfg.Manifest.Enabled {
		return errManifestDisabled
	}

	db, err := database.Open(ctx, cfg.Manifest.Config)
	if err != nil {
		return fmt.Errorf("open manifest store: %w", err)
	}
	defer func() { _ = db.Close() }()

	slog.Info("pruning snapshots", "keep", pruneKeep)

	removed, err := db.GetRepo().Prune(ctx, pruneKeep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	slog.Info("prune complete", "removed", removed)
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshot(s)\n", removed)
	return nil
}
