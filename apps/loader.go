package apps

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"sync"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/filesystem"
)

// Env is what a kind needs to build its handler.
type Env struct {
	Source *filesystem.Source
	// Dir is the directory holding the descriptor.
	Dir    string
	Logger *slog.Logger
}

// KindFunc builds the handler of an application kind.
type KindFunc func(d *Descriptor, env Env) (http.Handler, error)

// Loader resolves module paths to handlers.
type Loader struct {
	source *filesystem.Source
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]http.Handler
	kinds    map[string]KindFunc
}

// NewLoader creates a loader reading descriptors from source, with the
// built-in webdav and proxy kinds registered.
func NewLoader(source *filesystem.Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		source:   source,
		logger:   logger.With("src", "apps.Loader"),
		handlers: make(map[string]http.Handler),
		kinds:    make(map[string]KindFunc),
	}
	l.RegisterKind("webdav", WebDAV)
	l.RegisterKind("proxy", Proxy)
	return l
}

// Handle registers h as the application for modulePath.
func (l *Loader) Handle(modulePath string, h http.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[clean(modulePath)] = h
}

// RegisterKind makes descriptors with the given kind build their handler
// with fn. Registering an existing kind replaces it.
func (l *Loader) RegisterKind(kind string, fn KindFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.kinds[kind] = fn
}

// Load returns the handler for modulePath: a registered handler if there is
// one, else the application declared by the descriptor file at modulePath.
// Returns rjs2.ErrUnsupportedModule if modulePath is neither.
func (l *Loader) Load(modulePath string) (http.Handler, error) {
	name := clean(modulePath)

	l.mu.RLock()
	h, ok := l.handlers[name]
	l.mu.RUnlock()
	if ok {
		l.logger.Debug("using registered application", "module", name)
		return h, nil
	}

	if !IsDescriptor(name) || l.source == nil {
		return nil, fmt.Errorf("load %s: %w", modulePath, rjs2.ErrUnsupportedModule)
	}

	data, err := l.source.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", modulePath, err)
	}

	d, err := ParseDescriptor(name, data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", modulePath, errors.Join(rjs2.ErrInvalidConfig, err))
	}

	l.mu.RLock()
	build, ok := l.kinds[d.Kind]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("load %s: unknown kind %q: %w", modulePath, d.Kind, rjs2.ErrUnsupportedModule)
	}

	h, err = build(d, Env{Source: l.source, Dir: path.Dir(name), Logger: l.logger})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", modulePath, err)
	}

	if len(d.Users) > 0 {
		h, err = BasicAuth(d.Realm, d.Users, h)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", modulePath, err)
		}
	}

	l.logger.Debug("loaded application", "module", name, "kind", d.Kind, "users", len(d.Users))
	return h, nil
}

func clean(name string) string {
	return path.Clean("/" + name)
}
