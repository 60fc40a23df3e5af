// Package filesystem provides the read-only content source the route loader
// walks and serves files from. It wraps a billy.Filesystem so the same code
// runs against the operating system (osfs) and in-memory trees (memfs).
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/rjavier441/rjs2"
)

// Source provides read access to a content tree. Paths are slash separated
// and relative to the source root; a leading slash is allowed.
type Source struct {
	fs billy.Filesystem
}

// NewSource wraps the given filesystem.
func NewSource(fs billy.Filesystem) *Source {
	return &Source{fs: fs}
}

// NewOSSource creates a Source rooted at the given operating system directory.
// Symbolic links are resolved inside root and never lead out of it.
func NewOSSource(root string) *Source {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return NewSource(osfs.New(root, osfs.WithBoundOS()))
}

// Root returns the root of the underlying filesystem.
func (s *Source) Root() string {
	return s.fs.Root()
}

// Abs returns the location of name as seen from outside the source, for logs.
func (s *Source) Abs(name string) string {
	return filepath.Join(s.fs.Root(), filepath.FromSlash(name))
}

// ReadDir returns the names of the entries of dir, sorted lexically.
// Returns rjs2.ErrNotFound if dir does not exist.
func (s *Source) ReadDir(dir string) ([]string, error) {
	infos, err := s.fs.ReadDir(clean(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read dir %s: %w", dir, rjs2.ErrNotFound)
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	slices.Sort(names)

	return names, nil
}

// Lstat describes name without following symbolic links.
// Returns rjs2.ErrNotFound if name does not exist.
func (s *Source) Lstat(name string) (os.FileInfo, error) {
	info, err := s.fs.Lstat(clean(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("lstat %s: %w", name, rjs2.ErrNotFound)
		}
		return nil, fmt.Errorf("lstat %s: %w", name, err)
	}
	return info, nil
}

// ReadFile reads a whole file. Returns rjs2.ErrNotFound if it does not exist.
func (s *Source) ReadFile(name string) ([]byte, error) {
	data, err := util.ReadFile(s.fs, clean(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read file %s: %w", name, rjs2.ErrNotFound)
		}
		return nil, fmt.Errorf("read file %s: %w", name, err)
	}
	return data, nil
}

// Open opens a file for reading together with its description.
// Returns rjs2.ErrNotFound if the file does not exist.
func (s *Source) Open(ctx context.Context, name string) (billy.File, os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	name = clean(name)
	info, err := s.fs.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, rjs2.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("open %s: is a directory: %w", name, rjs2.ErrInvalidInput)
	}

	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, rjs2.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info, nil
}

// Chroot returns a filesystem rooted at dir inside the source. A source bound
// to an operating system directory stays bound in the result.
func (s *Source) Chroot(dir string) (billy.Filesystem, error) {
	fs, err := s.fs.Chroot(clean(dir))
	if err != nil {
		return nil, fmt.Errorf("chroot %s: %w", dir, err)
	}
	// BoundOS.Chroot hands back an unbound filesystem.
	if _, bound := s.fs.(*osfs.BoundOS); bound {
		return osfs.New(fs.Root(), osfs.WithBoundOS()), nil
	}
	return fs, nil
}

// DetectContentType returns the content type for a file name based on its
// extension.
func DetectContentType(name string) string {
	contentType := mime.TypeByExtension(path.Ext(name))

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

// clean turns name into a path relative to the source root. Bound
// filesystems read a leading slash as a host path.
func clean(name string) string {
	rel := strings.TrimPrefix(path.Clean("/"+name), "/")
	if rel == "" {
		return "."
	}
	return rel
}
