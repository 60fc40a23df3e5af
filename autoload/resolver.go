package autoload

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/filesystem"
)

// Resolver reads the configuration file of a directory and filters its
// listing accordingly.
type Resolver struct {
	source   *filesystem.Source
	fileName string
}

// NewResolver creates a resolver for configuration files named fileName,
// rjs2.DefaultConfigFileName if empty.
func NewResolver(source *filesystem.Source, fileName string) *Resolver {
	if fileName == "" {
		fileName = rjs2.DefaultConfigFileName
	}
	return &Resolver{source: source, fileName: fileName}
}

// Resolve returns the configuration of dir and the children left to
// consider. Without a configuration file in listing it returns nil and the
// listing unchanged. The returned listing never aliases the given one.
// Returns an error wrapping rjs2.ErrInvalidConfig if the file cannot be
// decoded.
func (r *Resolver) Resolve(dir string, listing []string) (*rjs2.DirectoryConfig, []string, error) {
	if !slices.Contains(listing, r.fileName) {
		return nil, slices.Clone(listing), nil
	}

	file := rjs2.JoinSourcePath(dir, r.fileName)
	data, err := r.source.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", file, err)
	}

	var cfg rjs2.DirectoryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", file, errors.Join(rjs2.ErrInvalidConfig, err))
	}

	for name := range cfg.Include {
		if !rjs2.IsEntityName(name) {
			return nil, nil, fmt.Errorf("resolve %s: include %q does not name a child: %w", file, name, rjs2.ErrInvalidConfig)
		}
	}

	return &cfg, r.filter(&cfg, listing), nil
}

func (r *Resolver) filter(cfg *rjs2.DirectoryConfig, listing []string) []string {
	if cfg.Include != nil {
		// The configuration file is never a child, even when included.
		return slices.DeleteFunc(cfg.IncludeNames(), func(name string) bool {
			return rjs2.TrimSlashes(name) == r.fileName
		})
	}

	filtered := make([]string, 0, len(listing))
	for _, name := range listing {
		if name == r.fileName {
			continue
		}
		if _, excluded := cfg.Exclude[name]; excluded {
			continue
		}
		filtered = append(filtered, name)
	}
	return filtered
}
