package autoload

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/filesystem"
	rjshttp "github.com/rjavier441/rjs2/http"
	"github.com/rjavier441/rjs2/pipeline"
)

// Deps are the collaborators of a load.
type Deps struct {
	Source *filesystem.Source
	Logger *slog.Logger
	// ErrorPages renders the HTML body of 403 and 404 responses. Nil sends a
	// minimal built-in page.
	ErrorPages rjshttp.ErrorPageRenderer
	// CSRF backs the csrfProtection and ejsLoadCsrfToken actions. Nil
	// disables them.
	CSRF pipeline.CSRFProvider
	// Apps loads the applications named in apps entries.
	Apps AppLoader
	// Meta seeds the template variables of every request.
	Meta pipeline.Meta
	// ConfigFileName defaults to rjs2.DefaultConfigFileName.
	ConfigFileName string
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Loader mounts a whole content tree.
type Loader struct {
	deps Deps
}

func NewLoader(deps Deps) *Loader {
	return &Loader{deps: deps}
}

// LoadRootFrom mounts the contents of root at "/" on r, then installs the
// CSRF failure and not-found handlers. It returns the routes installed.
func (l *Loader) LoadRootFrom(r chi.Router, root string) (rjs2.Manifest, error) {
	logger := l.deps.logger()
	if l.deps.Source == nil {
		return rjs2.Manifest{}, fmt.Errorf("load %s: no content source: %w", root, rjs2.ErrInvalidConfig)
	}

	resolver := NewResolver(l.deps.Source, l.deps.ConfigFileName)
	mounter := NewMounter(l.deps)
	traverser := NewTraverser(l.deps.Source, resolver, mounter, logger)

	logger.Debug("loading content", "src", "Autoloader.loadRootFrom", "root", l.deps.Source.Abs(root))

	if err := traverser.Traverse(r, "/", root); err != nil {
		logger.Error("failed to load content", "src", "Autoloader.loadRootFrom", "root", root, "error", err)
		return rjs2.Manifest{}, fmt.Errorf("load %s: %w", root, err)
	}

	mounter.MountCSRFError()
	mounter.MountNotFound(r)

	manifest := rjs2.Manifest{Root: l.deps.Source.Abs(root), Routes: mounter.Routes()}
	logger.Info("content loaded", "src", "Autoloader.loadRootFrom", "root", manifest.Root, "routes", len(manifest.Routes))
	return manifest, nil
}
