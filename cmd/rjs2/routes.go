package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/config"
	"github.com/rjavier441/rjs2/database"
	"github.com/rjavier441/rjs2/report"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	Long: `Load the content root without serving it and print the routes that
would be installed, in mount order.

With --history, print the snapshots stored by previous serve runs instead.`,
	Args: cobra.NoArgs,
	RunE: runRoutes,
}

var (
	routesJSON    bool
	routesQuiet   bool
	routesHistory int
	routesKind    string
)

func init() {
	routesCmd.Flags().BoolVar(&routesJSON, "json", false, "output as JSON")
	routesCmd.Flags().BoolVarP(&routesQuiet, "quiet", "q", false, "omit header and summary")
	routesCmd.Flags().IntVar(&routesHistory, "history", 0, "list the N newest stored snapshots")
	routesCmd.Flags().StringVar(&routesKind, "kind", "", "only list routes of this kind (static, app)")

	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	formatter := report.NewFormatter(routesJSON, routesQuiet)
	out := cmd.OutOrStdout()

	var kind rjs2.Kind
	if routesKind != "" {
		if kind, err = rjs2.ParseKind(routesKind); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("history") {
		return printHistory(cmd, cfg, formatter, out)
	}

	// the load logs every mount at debug level; keep stdout for the table
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	_, manifest, err := buildHandler(cfg, logger)
	if err != nil {
		_ = formatter.FormatError(cmd.ErrOrStderr(), err)
		return err
	}

	if kind != "" {
		manifest = manifest.OfKind(kind)
	}

	return formatter.FormatRoutes(out, manifest)
}

func printHistory(cmd *cobra.Command, cfg *config.Config, formatter report.Formatter, out io.Writer) error {
	if !cfg.Manifest.Enabled {
		return errManifestDisabled
	}

	db, err := database.Open(cmd.Context(), cfg.Manifest.Config)
	if err != nil {
		return fmt.Errorf("open manifest store: %w", err)
	}
	defer func() { _ = db.Close() }()

	snapshots, err := db.GetRepo().List(cmd.Context(), routesHistory)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	return formatter.FormatHistory(out, snapshots)
}
