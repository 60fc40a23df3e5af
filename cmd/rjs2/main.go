package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rjavier441/rjs2/config"
)

var version = "dev"

var (
	configFiles []string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "rjs2",
	Short:   "File-system driven web server",
	Long: `rjs2 serves a content directory by mirroring its layout as URL routes.

Each directory may carry an _alconfig.json that aliases, filters or delegates
its children and attaches request pipelines to individual files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg, verbose)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().String("root", "", "content root directory (default: ./public, env: RJS2_CONTENT_ROOT)")
	rootCmd.PersistentFlags().String("templates", "", "error page template directory (env: RJS2_CONTENT_TEMPLATES)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
