package rjs2

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// DefaultConfigFileName is the name of the per-directory configuration file.
const DefaultConfigFileName = "_alconfig.json"

// DirectoryConfig is the optional configuration co-located with a directory's
// contents. Every field is optional.
type DirectoryConfig struct {
	// Alias maps a child entity name to the mount path segment used instead of it.
	Alias map[string]string `json:"alias"`
	// Include, when present, is the exhaustive list of children considered.
	// Only the keys matter.
	Include map[string]any `json:"include"`
	// Exclude lists children to skip. Ignored when Include is present.
	Exclude map[string]any `json:"exclude"`
	// Apps maps a child name to an application module path relative to the
	// directory. The child is delegated to the application and not traversed.
	Apps map[string]string `json:"apps"`
	// MountConfig maps a child file name to the pipeline attached to it.
	MountConfig map[string]MountConfig `json:"mountConfig"`
}

// MountConfig lists the pipeline actions attached to a mounted file.
type MountConfig struct {
	Pre []string `json:"pre"`
	Req []string `json:"req"`
}

// IncludeNames returns the include keys in sorted order.
func (c *DirectoryConfig) IncludeNames() []string {
	names := make([]string, 0, len(c.Include))
	for name := range c.Include {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AliasFor returns the configured alias for name. The second result is false
// when no usable alias is configured.
func (c *DirectoryConfig) AliasFor(name string) (string, bool) {
	if c == nil || c.Alias == nil {
		return "", false
	}
	alias, ok := c.Alias[name]
	if !ok || alias == "" {
		return "", false
	}
	return TrimSlashes(alias), true
}

// AppFor returns the application module configured for name, if any.
func (c *DirectoryConfig) AppFor(name string) (string, bool) {
	if c == nil || c.Apps == nil {
		return "", false
	}
	module, ok := c.Apps[name]
	if !ok || module == "" {
		return "", false
	}
	return module, true
}

// MountConfigFor returns the pipeline configuration for a file, or nil.
func (c *DirectoryConfig) MountConfigFor(name string) *MountConfig {
	if c == nil || c.MountConfig == nil {
		return nil
	}
	mc, ok := c.MountConfig[name]
	if !ok {
		return nil
	}
	return &mc
}

// Kind tells what a traversal decided to do with an entity.
type Kind string

const (
	KindDirectory     Kind = "directory"
	KindMiddlewareApp Kind = "app"
	KindStaticLeaf    Kind = "static"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindDirectory, KindMiddlewareApp, KindStaticLeaf:
		return true
	default:
		return false
	}
}

func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid mount kind: %s (valid kinds: directory, app, static)", s)
	}
	return kind, nil
}

// MountDecision is the outcome of classifying one filesystem entity.
type MountDecision struct {
	Kind Kind
	// SourcePath is the slash separated path of the entity inside the content source.
	SourcePath string
	// MountPath is the absolute URL path the entity is bound to.
	MountPath string
	// ModulePath is the application module path (KindMiddlewareApp only).
	ModulePath string
	// MountConfig is the optional pipeline configuration (KindStaticLeaf only).
	MountConfig *MountConfig
}

// Route describes one installed route.
type Route struct {
	Kind       Kind     `json:"kind"`
	MountPath  string   `json:"mount_path"`
	SourcePath string   `json:"source_path"`
	Pre        []string `json:"pre,omitempty"`
	Req        []string `json:"req,omitempty"`
}

// Manifest is the ordered list of routes installed by one load.
type Manifest struct {
	Root   string  `json:"root"`
	Routes []Route `json:"routes"`
}

// OfKind returns a manifest holding only the routes of the given kind, in
// the same order.
func (m Manifest) OfKind(kind Kind) Manifest {
	routes := make([]Route, 0, len(m.Routes))
	for _, r := range m.Routes {
		if r.Kind == kind {
			routes = append(routes, r)
		}
	}
	return Manifest{Root: m.Root, Routes: routes}
}

// Snapshot is a persisted manifest.
type Snapshot struct {
	ID       uuid.UUID `json:"id"`
	Root     string    `json:"root"`
	LoadedAt time.Time `json:"loaded_at"`
	Routes   []Route   `json:"routes"`
}

// NewSnapshot stamps a manifest with a fresh id and the current time at
// microsecond precision, the finest both backends store.
func NewSnapshot(m Manifest) Snapshot {
	return Snapshot{
		ID:       uuid.New(),
		Root:     m.Root,
		LoadedAt: time.Now().UTC().Truncate(time.Microsecond),
		Routes:   m.Routes,
	}
}

// SnapshotSummary is a snapshot without its routes.
type SnapshotSummary struct {
	ID         uuid.UUID `json:"id"`
	Root       string    `json:"root"`
	LoadedAt   time.Time `json:"loaded_at"`
	RouteCount int       `json:"route_count"`
}

// Tables holds configurable table names for manifest storage.
type Tables struct {
	Routes string `mapstructure:"routes"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Routes == "" {
		return errors.New("validate tables: routes table name cannot be empty")
	}

	if !IsValidTableName(t.Routes) {
		return fmt.Errorf("validate tables: invalid routes table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Routes)
	}

	return nil
}
