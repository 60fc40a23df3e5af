package apps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/net/webdav"

	"github.com/rjavier441/rjs2"
	rjshttp "github.com/rjavier441/rjs2/http"
)

var davMethods = []string{"PROPFIND", "PROPPATCH", "MKCOL", "COPY", "MOVE", "LOCK", "UNLOCK"}

func init() {
	// chi answers methods it does not know with 405 before reaching a mount.
	for _, m := range davMethods {
		chi.RegisterMethod(m)
	}
}

// WebDAV serves the descriptor's root directory over WebDAV.
func WebDAV(d *Descriptor, env Env) (http.Handler, error) {
	root := path.Join(env.Dir, d.Root)

	info, err := env.Source.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("webdav root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("webdav root %s is not a directory: %w", root, rjs2.ErrInvalidInput)
	}

	chroot, err := env.Source.Chroot(root)
	if err != nil {
		return nil, err
	}

	davfs := NewFileSystem(chroot)
	locks := webdav.NewMemLS()
	logger := env.Logger

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Put the mount prefix back so hrefs and Destination headers resolve.
		prefix := rjshttp.MountPrefix(r.Context())
		if prefix != "" {
			r = r.Clone(r.Context())
			r.URL.Path = prefix + r.URL.Path
			r.URL.RawPath = ""
		}

		dav := &webdav.Handler{
			Prefix:     prefix,
			FileSystem: davfs,
			LockSystem: locks,
			Logger: func(r *http.Request, err error) {
				if err != nil && logger != nil {
					logger.Debug("webdav request failed", "method", r.Method, "path", r.URL.Path, "error", err)
				}
			},
		}
		dav.ServeHTTP(w, r)
	})

	if d.ReadOnly {
		h = readOnly(h)
	}
	return h, nil
}

func readOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, "PROPFIND":
			next.ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET, HEAD, OPTIONS, PROPFIND")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// FileSystem adapts a billy.Filesystem to webdav.FileSystem.
type FileSystem struct {
	fs billy.Filesystem
}

func NewFileSystem(fs billy.Filesystem) *FileSystem {
	return &FileSystem{fs: fs}
}

func (f *FileSystem) Mkdir(ctx context.Context, name string, perm os.FileMode) error {
	name = clean(name)
	if _, err := f.fs.Stat(name); err == nil {
		return os.ErrExist
	}
	parent, err := f.fs.Stat(path.Dir(name))
	if err != nil {
		return err
	}
	if !parent.IsDir() {
		return os.ErrNotExist
	}
	return f.fs.MkdirAll(name, perm)
}

func (f *FileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (webdav.File, error) {
	name = clean(name)

	if info, err := f.fs.Stat(name); err == nil && info.IsDir() {
		if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, &os.PathError{Op: "open", Path: name, Err: errIsDir}
		}
		return &dir{fs: f.fs, name: name, info: info}, nil
	}

	file, err := f.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &regularFile{File: file, fs: f.fs, name: name}, nil
}

func (f *FileSystem) RemoveAll(ctx context.Context, name string) error {
	name = clean(name)
	if name == "/" {
		return os.ErrInvalid
	}
	return util.RemoveAll(f.fs, name)
}

func (f *FileSystem) Rename(ctx context.Context, oldName, newName string) error {
	oldName, newName = clean(oldName), clean(newName)
	if oldName == "/" || newName == "/" {
		return os.ErrInvalid
	}
	return f.fs.Rename(oldName, newName)
}

func (f *FileSystem) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	return f.fs.Stat(clean(name))
}

var (
	errIsDir  = errors.New("is a directory")
	errNotDir = errors.New("not a directory")
)

type regularFile struct {
	billy.File
	fs   billy.Filesystem
	name string
}

func (f *regularFile) Readdir(int) ([]fs.FileInfo, error) {
	return nil, &os.PathError{Op: "readdir", Path: f.name, Err: errNotDir}
}

func (f *regularFile) Stat() (fs.FileInfo, error) {
	return f.fs.Stat(f.name)
}

type dir struct {
	fs      billy.Filesystem
	name    string
	info    os.FileInfo
	entries []os.FileInfo
	loaded  bool
}

func (d *dir) Close() error { return nil }

func (d *dir) Read([]byte) (int, error) {
	return 0, &os.PathError{Op: "read", Path: d.name, Err: errIsDir}
}

func (d *dir) Write([]byte) (int, error) {
	return 0, &os.PathError{Op: "write", Path: d.name, Err: errIsDir}
}

func (d *dir) Seek(int64, int) (int64, error) {
	return 0, nil
}

func (d *dir) Stat() (fs.FileInfo, error) {
	return d.info, nil
}

func (d *dir) Readdir(count int) ([]fs.FileInfo, error) {
	if !d.loaded {
		entries, err := d.fs.ReadDir(d.name)
		if err != nil {
			return nil, err
		}
		d.entries = entries
		d.loaded = true
	}

	if count <= 0 {
		rest := d.entries
		d.entries = nil
		return rest, nil
	}
	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	n := min(count, len(d.entries))
	batch := d.entries[:n]
	d.entries = d.entries[n:]
	return batch, nil
}
