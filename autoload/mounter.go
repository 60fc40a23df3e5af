package autoload

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/filesystem"
	rjshttp "github.com/rjavier441/rjs2/http"
	"github.com/rjavier441/rjs2/pipeline"
)

const (
	notFoundTitle   = "Not Found   ◉_◉"
	notFoundMessage = "Uh Oh! Looks like we couldn't find what you were looking for..."
	forbiddenTitle  = "Forbidden"
	sendFailure     = "Failed to send content"
)

// Methods a pre stage also guards on a static route. Requests that get
// through fall back to the not-found handler.
var unsafeMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// AppLoader loads the application a directory delegates a child to.
type AppLoader interface {
	Load(modulePath string) (http.Handler, error)
}

// Mounter binds mount decisions to a router and records what it installed.
type Mounter struct {
	source  *filesystem.Source
	logger  *slog.Logger
	pages   rjshttp.ErrorPageRenderer
	csrf    pipeline.CSRFProvider
	apps    AppLoader
	factory *pipeline.Factory

	routes  []rjs2.Route
	mounted map[string]string
}

// NewMounter creates a mounter from deps.
func NewMounter(deps Deps) *Mounter {
	logger := deps.logger()
	return &Mounter{
		source:  deps.Source,
		logger:  logger,
		pages:   deps.ErrorPages,
		csrf:    deps.CSRF,
		apps:    deps.Apps,
		factory: pipeline.NewFactory(deps.Source, deps.CSRF, deps.Meta, logger),
		mounted: make(map[string]string),
	}
}

// Routes returns the routes installed so far, in installation order.
func (m *Mounter) Routes() []rjs2.Route {
	routes := make([]rjs2.Route, len(m.routes))
	copy(routes, m.routes)
	return routes
}

// MountStatic installs a GET route at mountPath for the file at filePath.
// The pipeline built from mc replaces the default file send when it has req
// stages and wraps the route when it has pre stages. Requests to
// mountPath/. and mountPath/.. are always answered with 403.
func (m *Mounter) MountStatic(r chi.Router, mountPath, filePath string, mc *rjs2.MountConfig) (err error) {
	const op = "mountStatic"
	defer m.recoverMount(op, mountPath, filePath, &err)

	if err := m.claim(mountPath, filePath); err != nil {
		return m.fail(op, mountPath, filePath, err)
	}

	p, err := m.factory.Build(mc, filePath)
	if err != nil {
		return m.fail(op, mountPath, filePath, err)
	}

	r.Method(http.MethodGet, mountPath, p.Handler(m.sendFile(mountPath, filePath)))
	if len(p.Pre) > 0 {
		guarded := p.Wrap(http.HandlerFunc(m.notFound))
		for _, method := range unsafeMethods {
			r.Method(method, mountPath, guarded)
		}
	}

	forbidden := http.HandlerFunc(m.forbidden)
	r.Method(http.MethodGet, rjs2.JoinMountPath(mountPath, "."), forbidden)
	r.Method(http.MethodGet, rjs2.JoinMountPath(mountPath, ".."), forbidden)

	m.routes = append(m.routes, rjs2.Route{
		Kind:       rjs2.KindStaticLeaf,
		MountPath:  mountPath,
		SourcePath: filePath,
		Pre:        pipeline.ActionIDs(p.PreActions),
		Req:        pipeline.ActionIDs(p.ReqActions),
	})
	m.logger.Info("mounted static content", "src", "Autoloader.mountStaticContent", "source", filePath, "mount", mountPath)
	return nil
}

// MountMiddleware delegates every request under mountPath to the application
// at modulePath. The application sees paths relative to mountPath.
func (m *Mounter) MountMiddleware(r chi.Router, mountPath, modulePath string) (err error) {
	const op = "mountMiddleware"
	defer m.recoverMount(op, mountPath, modulePath, &err)

	if m.apps == nil {
		return m.fail(op, mountPath, modulePath, fmt.Errorf("no application loader: %w", rjs2.ErrUnsupportedModule))
	}
	if err := m.claim(mountPath, modulePath); err != nil {
		return m.fail(op, mountPath, modulePath, err)
	}

	h, err := m.apps.Load(modulePath)
	if err != nil {
		return m.fail(op, mountPath, modulePath, err)
	}

	r.Mount(mountPath, rjshttp.StripMountPrefix(mountPath, h))

	m.routes = append(m.routes, rjs2.Route{
		Kind:       rjs2.KindMiddlewareApp,
		MountPath:  mountPath,
		SourcePath: modulePath,
	})
	m.logger.Info("mounted middleware", "src", "Autoloader.mountMiddleware", "source", modulePath, "mount", mountPath)
	return nil
}

// MountNotFound answers every unmatched request, and every request with an
// unregistered method, with 404.
func (m *Mounter) MountNotFound(r chi.Router) {
	r.NotFound(m.notFound)
	r.MethodNotAllowed(m.notFound)
	m.logger.Debug("mounted not found handler", "src", "Autoloader.mountNotFound")
}

// MountCSRFError makes requests failing CSRF validation get a 403 error
// page. CSRF stages built earlier use it as well.
func (m *Mounter) MountCSRFError() {
	if m.csrf == nil {
		return
	}
	m.csrf.OnFailure(http.HandlerFunc(m.csrfFailure))
	m.logger.Debug("mounted CSRF error handler", "src", "Autoloader.mountCsrfError")
}

func (m *Mounter) sendFile(mountPath, filePath string) http.HandlerFunc {
	hidden := rjs2.HasDotSegment(filePath)
	contentType := filesystem.DetectContentType(filePath)

	return func(w http.ResponseWriter, r *http.Request) {
		if hidden {
			m.forbidden(w, r)
			return
		}

		f, info, err := m.source.Open(r.Context(), filePath)
		if err != nil {
			m.logger.Error("failed to send content", "src", "Autoloader.mountStaticContent", "source", filePath, "mount", mountPath, "remote", r.RemoteAddr, "error", err)
			rjshttp.WriteError(w, http.StatusInternalServerError, sendFailure)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		w.Header().Set("X-Sent", "true")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)

		m.logger.Debug("sent content", "src", "Autoloader.mountStaticContent", "source", filePath, "remote", r.RemoteAddr)
	}
}

func (m *Mounter) notFound(w http.ResponseWriter, r *http.Request) {
	rjshttp.WriteProblem(w, r, m.pages, rjshttp.Problem{
		Code:    http.StatusNotFound,
		Title:   notFoundTitle,
		Message: notFoundMessage,
	})
}

func (m *Mounter) forbidden(w http.ResponseWriter, r *http.Request) {
	m.logger.Warn("forbidden", "src", "Autoloader.mountStaticContent", "remote", r.RemoteAddr, "path", r.URL.Path)
	rjshttp.WriteProblem(w, r, m.pages, rjshttp.Problem{
		Code:     http.StatusForbidden,
		Title:    forbiddenTitle,
		Template: "403",
	})
}

func (m *Mounter) csrfFailure(w http.ResponseWriter, r *http.Request) {
	m.logger.Warn("CSRF validation failed", "src", "Autoloader.mountCsrfError", "remote", r.RemoteAddr, "path", r.URL.Path, "reason", pipeline.FailureReason(r))
	rjshttp.WriteProblem(w, r, m.pages, rjshttp.Problem{
		Code:     http.StatusForbidden,
		Title:    forbiddenTitle,
		Message:  "Invalid CSRF token",
		Template: "403",
	})
}

// claim reserves mountPath, and rejects names the router cannot express.
func (m *Mounter) claim(mountPath, source string) error {
	if strings.ContainsAny(mountPath, "{}*") {
		return fmt.Errorf("mount path contains a route pattern character: %w", rjs2.ErrInvalidInput)
	}
	if prev, ok := m.mounted[mountPath]; ok {
		return fmt.Errorf("mount path already used by %s: %w", prev, rjs2.ErrInvalidInput)
	}
	m.mounted[mountPath] = source
	return nil
}

func (m *Mounter) fail(op, mountPath, sourcePath string, err error) error {
	mountErr := &rjs2.MountError{Op: op, MountPath: mountPath, SourcePath: sourcePath, Err: err}
	m.logger.Error("failed to mount", "src", "Autoloader."+op, "source", sourcePath, "mount", mountPath, "error", err)
	return mountErr
}

// recoverMount turns a router panic into a MountError.
func (m *Mounter) recoverMount(op, mountPath, sourcePath string, err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	cause, ok := rec.(error)
	if !ok {
		cause = fmt.Errorf("%v", rec)
	}
	*err = m.fail(op, mountPath, sourcePath, errors.Join(rjs2.ErrInvalidInput, cause))
}
