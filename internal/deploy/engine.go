package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"

	"github.com/cooklabs/cookdrive/internal/config"
	"github.com/cooklabs/cookdrive/internal/gitrev"
)

// RevisionSource is what the engine needs from version control.
type RevisionSource interface {
	Head() (gitrev.Revision, error)
	Diff(ctx context.Context, from, to gitrev.Revision) ([]gitrev.Change, error)
}

// Engine orchestrates a deploy run. Exactly one of two modes runs: a full
// recursive sync when no marker is present, or an incremental diff-driven
// sync against the recorded revision. Execution is fully sequential; one
// remote call is outstanding at a time.
type Engine struct {
	cfg    *config.Config
	revs   RevisionSource
	fs     billy.Filesystem
	nav    *Navigator
	marker *StateMarker
	wl     Whitelist
	skip   *skipRules
}

// NewEngine builds an engine over a local filesystem rooted at the repo dir.
func NewEngine(cfg *config.Config, revs RevisionSource, fsys billy.Filesystem) *Engine {
	retry := DefaultRetryPolicy()
	return &Engine{
		cfg:    cfg,
		revs:   revs,
		fs:     fsys,
		nav:    NewNavigator(retry),
		marker: NewStateMarker(cfg.MarkerFile, retry),
		wl:     NewWhitelist(cfg.Whitelist),
		skip:   defaultSkipRules(),
	}
}

// Run executes one deploy against the drive root. Marker read failure aborts
// before any mutation; per-path remote failures are logged and the run moves
// on; the marker is rewritten only after the run finishes without a fatal
// error.
func (e *Engine) Run(ctx context.Context, driveRoot TreeStore) error {
	head, err := e.revs.Head()
	if err != nil {
		return fmt.Errorf("current revision: %w", err)
	}
	slog.Info("starting deploy", "revision", head, "remoteFolder", e.cfg.RemoteFolder)

	// the sync root is created once, lazily, before anything else
	root, err := e.nav.GetOrCreateFolder(ctx, driveRoot, e.cfg.RemoteFolder)
	if err != nil {
		return fmt.Errorf("sync root %q: %w", e.cfg.RemoteFolder, err)
	}

	last, ok, err := e.marker.Read(ctx, root)
	if err != nil {
		// deploying with broken state tracking would desync marker and tree
		return fmt.Errorf("read state marker: %w", err)
	}

	if !ok {
		slog.Info("no previous deployment found, running full sync")
		if err := e.runFullSync(ctx, root); err != nil {
			return err
		}
	} else {
		slog.Info("previous deployment found", "lastDeployed", last)
		if err := e.runIncrementalSync(ctx, root, last, head); err != nil {
			return err
		}
	}

	if err := e.marker.Write(ctx, root, head); err != nil {
		return fmt.Errorf("write state marker: %w", err)
	}
	slog.Info("deploy complete", "revision", head)
	return nil
}

// runIncrementalSync applies the revision diff, filtered to the whitelist,
// in the order the diff emits it. Deletes remove remote nodes; everything
// else (added, modified, renamed) upserts at the changed path.
func (e *Engine) runIncrementalSync(ctx context.Context, root TreeStore, from, to gitrev.Revision) error {
	changes, err := e.revs.Diff(ctx, from, to)
	if err != nil {
		// local failure, never retried
		return fmt.Errorf("revision diff: %w", err)
	}
	if len(changes) == 0 {
		slog.Info("no changes since last deploy", "from", from, "to", to)
		return nil
	}
	slog.Info("applying incremental changes", "count", len(changes))

	var applied, skipped, failed int
	for _, ch := range changes {
		if !e.wl.InScope(ch.Path) {
			skipped++
			continue
		}

		switch ch.Status {
		case gitrev.StatusDeleted:
			if err := e.nav.DeleteIfExists(ctx, root, ch.Path); err != nil {
				slog.Error("remote delete failed", "path", ch.Path, "error", err)
				failed++
				continue
			}
			slog.Info("deleted", "path", ch.Path)
			applied++

		default: // added, modified, renamed
			if _, err := e.fs.Stat(ch.Path); os.IsNotExist(err) {
				// changed in history but gone from the worktree; an
				// expected race, not a defect
				slog.Warn("changed file missing locally, skipping", "path", ch.Path, "status", ch.Status)
				skipped++
				continue
			} else if err != nil {
				slog.Error("stat failed", "path", ch.Path, "error", err)
				failed++
				continue
			}

			folder, err := e.nav.ResolveFolder(ctx, root, path.Dir(ch.Path))
			if err != nil {
				slog.Error("resolve folder failed", "path", ch.Path, "error", err)
				failed++
				continue
			}
			if err := e.uploadFile(ctx, folder, ch.Path); err != nil {
				slog.Error("upload failed", "path", ch.Path, "error", err)
				failed++
				continue
			}
			applied++
		}
	}

	slog.Info("incremental sync done", "changes", len(changes), "applied", applied, "skipped", skipped, "failed", failed)
	return nil
}

func (e *Engine) uploadFile(ctx context.Context, folder TreeStore, relPath string) error {
	name := path.Base(relPath)
	err := e.nav.UpsertFile(ctx, folder, name, func() (io.ReadCloser, int64, error) {
		info, err := e.fs.Stat(relPath)
		if err != nil {
			return nil, 0, err
		}
		f, err := e.fs.Open(relPath)
		if err != nil {
			return nil, 0, err
		}
		return f, info.Size(), nil
	})
	if err != nil {
		return err
	}

	if info, serr := e.fs.Stat(relPath); serr == nil {
		slog.Info("uploaded", "path", relPath, "size", humanSize(info.Size()))
	} else {
		slog.Info("uploaded", "path", relPath)
	}
	return nil
}
