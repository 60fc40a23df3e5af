package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rjavier441/rjs2/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Mount the content root and start serving it.

TLS is used unless --insecure is given, in which case plain HTTP is served.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (env: RJS2_SERVER_HOST)")
	serveCmd.Flags().Int("port", 443, "listen port (env: RJS2_SERVER_PORT)")
	serveCmd.Flags().BoolP("insecure", "i", false, "serve plain HTTP instead of TLS")
	serveCmd.Flags().Bool("manifest", false, "persist the route manifest on startup (env: RJS2_MANIFEST_ENABLED)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if !cfg.Server.Insecure && (cfg.Server.TLS.Cert == "" || cfg.Server.TLS.Key == "") {
		return errors.New("server.tls.cert and server.tls.key are required unless --insecure is set")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	handler, manifest, err := buildHandler(cfg, logger)
	if err != nil {
		return fmt.Errorf("load routes: %w", err)
	}
	logger.Info("routes mounted", "root", manifest.Root, "routes", len(manifest.Routes))

	if err = saveSnapshot(ctx, cfg, manifest, logger); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr, "tls", !cfg.Server.Insecure)
		if cfg.Server.Insecure {
			errCh <- server.ListenAndServe()
		} else {
			errCh <- server.ListenAndServeTLS(cfg.Server.TLS.Cert, cfg.Server.TLS.Key)
		}
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
