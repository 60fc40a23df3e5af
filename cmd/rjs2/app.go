package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/apps"
	"github.com/rjavier441/rjs2/autoload"
	"github.com/rjavier441/rjs2/config"
	"github.com/rjavier441/rjs2/database"
	"github.com/rjavier441/rjs2/filesystem"
	rjshttp "github.com/rjavier441/rjs2/http"
	"github.com/rjavier441/rjs2/keybackend"
	"github.com/rjavier441/rjs2/pipeline"
)

// buildHandler mounts the configured content root on a fresh router.
func buildHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, rjs2.Manifest, error) {
	info, err := os.Stat(cfg.Content.Root)
	if err != nil {
		return nil, rjs2.Manifest{}, fmt.Errorf("content root: %w", err)
	}
	if !info.IsDir() {
		return nil, rjs2.Manifest{}, fmt.Errorf("content root %s: not a directory: %w", cfg.Content.Root, rjs2.ErrInvalidConfig)
	}

	key, generated, err := keybackend.LoadKey(cfg.CSRF.KeyConfig())
	if err != nil {
		return nil, rjs2.Manifest{}, fmt.Errorf("load csrf key: %w", err)
	}
	if generated {
		logger.Warn("no csrf key configured, using a random key; tokens will not survive a restart")
	}

	secure := cfg.CSRF.Secure
	if cfg.Server.Insecure && secure {
		logger.Warn("serving plain http, csrf cookie will not be marked secure")
		secure = false
	}

	csrfProvider := pipeline.NewGorillaCSRF(pipeline.CSRFConfig{
		Key:            key,
		CookieName:     cfg.CSRF.CookieName,
		MaxAge:         cfg.CSRF.MaxAge,
		Secure:         secure,
		Plaintext:      cfg.Server.Insecure,
		TrustedOrigins: cfg.CSRF.TrustedOrigins,
	})

	var templates billy.Filesystem
	if cfg.Content.Templates != "" {
		templates = osfs.New(cfg.Content.Templates, osfs.WithBoundOS())
	}

	source := filesystem.NewOSSource(cfg.Content.Root)
	r := rjshttp.NewRouter(rjshttp.RouterConfig{CORS: cfg.CORS, Logger: logger})

	loader := autoload.NewLoader(autoload.Deps{
		Source:         source,
		Logger:         logger,
		ErrorPages:     rjshttp.NewErrorPages(templates),
		CSRF:           csrfProvider,
		Apps:           apps.NewLoader(source, logger),
		Meta:           cfg.Meta.Pipeline(),
		ConfigFileName: cfg.Content.ConfigFile,
	})

	manifest, err := loader.LoadRootFrom(r, "/")
	if err != nil {
		return nil, rjs2.Manifest{}, err
	}

	return r, manifest, nil
}

// saveSnapshot persists the manifest when manifest storage is enabled.
var errManifestDisabled = errors.New("manifest storage is disabled; set manifest.enabled to record snapshots")

func saveSnapshot(ctx context.Context, cfg *config.Config, m rjs2.Manifest, logger *slog.Logger) error {
	if !cfg.Manifest.Enabled {
		return nil
	}

	db, err := database.Open(ctx, cfg.Manifest.Config)
	if err != nil {
		return fmt.Errorf("open manifest store: %w", err)
	}
	defer func() { _ = db.Close() }()

	snap := rjs2.NewSnapshot(m)
	if err := db.GetRepo().Save(ctx, snap); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	logger.Info("manifest saved", "id", snap.ID, "routes", len(snap.Routes), "type", cfg.Manifest.Type)
	return nil
}
