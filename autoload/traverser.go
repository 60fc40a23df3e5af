package autoload

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/filesystem"
)

// Traverser walks a content source and mounts what it finds.
type Traverser struct {
	source   *filesystem.Source
	resolver *Resolver
	mounter  *Mounter
	logger   *slog.Logger
}

// NewTraverser creates a traverser.
func NewTraverser(source *filesystem.Source, resolver *Resolver, mounter *Mounter, logger *slog.Logger) *Traverser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Traverser{source: source, resolver: resolver, mounter: mounter, logger: logger}
}

// Traverse mounts the contents of dir under mountPath, depth first. Symbolic
// links are not followed. The first error aborts the walk.
func (t *Traverser) Traverse(r chi.Router, mountPath, dir string) error {
	listing, err := t.source.ReadDir(dir)
	if err != nil {
		return &rjs2.MountError{Op: "traverse", MountPath: mountPath, SourcePath: dir, Err: err}
	}

	cfg, entities, err := t.resolver.Resolve(dir, listing)
	if err != nil {
		return &rjs2.MountError{Op: "traverse", MountPath: mountPath, SourcePath: dir, Err: err}
	}

	for _, entity := range entities {
		decision, ok, err := t.Decide(cfg, mountPath, dir, entity)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		switch decision.Kind {
		case rjs2.KindMiddlewareApp:
			err = t.mounter.MountMiddleware(r, decision.MountPath, decision.ModulePath)
		case rjs2.KindDirectory:
			err = t.Traverse(r, decision.MountPath, decision.SourcePath)
		case rjs2.KindStaticLeaf:
			err = t.mounter.MountStatic(r, decision.MountPath, decision.SourcePath, decision.MountConfig)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Decide classifies one child of dir. The second result is false for
// entities that are skipped: symbolic links and anything that is neither a
// directory nor a regular file.
func (t *Traverser) Decide(cfg *rjs2.DirectoryConfig, mountPath, dir, entity string) (rjs2.MountDecision, bool, error) {
	name := rjs2.TrimSlashes(entity)
	if !rjs2.IsEntityName(name) {
		return rjs2.MountDecision{}, false, &rjs2.MountError{
			Op: "traverse", MountPath: mountPath, SourcePath: dir,
			Err: fmt.Errorf("%q does not name a child: %w", entity, rjs2.ErrInvalidConfig),
		}
	}
	segment := name
	if alias, ok := cfg.AliasFor(name); ok {
		segment = alias
	}

	entityPath := rjs2.JoinSourcePath(dir, name)
	entityMount := rjs2.JoinMountPath(mountPath, segment)

	if module, ok := cfg.AppFor(name); ok {
		return rjs2.MountDecision{
			Kind:       rjs2.KindMiddlewareApp,
			SourcePath: entityPath,
			MountPath:  entityMount,
			ModulePath: rjs2.JoinSourcePath(dir, module),
		}, true, nil
	}

	info, err := t.source.Lstat(entityPath)
	if err != nil {
		return rjs2.MountDecision{}, false, &rjs2.MountError{Op: "traverse", MountPath: entityMount, SourcePath: entityPath, Err: err}
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		t.logger.Debug("skipping symbolic link", "src", "Autoloader.traverse", "source", entityPath)
		return rjs2.MountDecision{}, false, nil
	case mode.IsDir():
		return rjs2.MountDecision{Kind: rjs2.KindDirectory, SourcePath: entityPath, MountPath: entityMount}, true, nil
	case mode.IsRegular():
		return rjs2.MountDecision{
			Kind:        rjs2.KindStaticLeaf,
			SourcePath:  entityPath,
			MountPath:   entityMount,
			MountConfig: cfg.MountConfigFor(name),
		}, true, nil
	default:
		t.logger.Debug("skipping special file", "src", "Autoloader.traverse", "source", entityPath, "mode", fmt.Sprint(mode))
		return rjs2.MountDecision{}, false, nil
	}
}
