package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/cooklabs/cookdrive/internal/drivesdk"
)

// OpenFunc hands the navigator a fresh reader for an upload attempt. Each
// retry re-opens, so a half-consumed reader never gets re-sent.
type OpenFunc func() (io.ReadCloser, int64, error)

// Navigator resolves slash-separated relative paths against a remote root,
// creating intermediate folders lazily. Resolved folders are cached so each
// distinct path sees at most one create per run.
type Navigator struct {
	retry   RetryPolicy
	folders map[string]TreeStore
}

func NewNavigator(retry RetryPolicy) *Navigator {
	return &Navigator{
		retry:   retry,
		folders: make(map[string]TreeStore),
	}
}

// GetOrCreateFolder looks up a child folder by name and creates it on a
// miss. Resolution moves through three states: unresolved (lookup), created
// (create call issued), verified (a usable node in hand). The create
// response is not trusted blindly: when it yields no handle, the parent
// listing is refreshed and the child resolved by name, once.
func (nav *Navigator) GetOrCreateFolder(ctx context.Context, parent TreeStore, name string) (TreeStore, error) {
	child, err := parent.Child(ctx, name)
	if err == nil {
		return child, nil
	}
	if !errors.Is(err, drivesdk.ErrNodeNotFound) {
		return nil, err
	}

	slog.Info("creating remote folder", "name", name)
	var created TreeStore
	err = nav.retry.Do("create folder "+name, func() error {
		var cerr error
		created, cerr = parent.CreateFolder(ctx, name)
		return cerr
	})
	if err != nil {
		return nil, err
	}
	if created != nil {
		return created, nil
	}

	// creation response had no usable handle; refresh and re-resolve
	slog.Warn("create response unusable, refreshing listing", "name", name)
	if err := parent.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("refresh after create %q: %w", name, err)
	}
	child, err = parent.Child(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("folder %q not present after create: %w", name, err)
	}
	return child, nil
}

// ResolveFolder walks dir segment by segment from root, creating missing
// intermediate folders, and returns the final folder node. dir "." or ""
// resolves to root itself.
func (nav *Navigator) ResolveFolder(ctx context.Context, root TreeStore, dir string) (TreeStore, error) {
	dir = path.Clean(dir)
	if dir == "." || dir == "" || dir == "/" {
		return root, nil
	}

	node := root
	walked := ""
	for _, seg := range strings.Split(dir, "/") {
		walked = path.Join(walked, seg)
		if cached, ok := nav.folders[walked]; ok {
			node = cached
			continue
		}

		next, err := nav.GetOrCreateFolder(ctx, node, seg)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", walked, err)
		}
		nav.folders[walked] = next
		node = next
	}
	return node, nil
}

// Resolve returns the node at relPath under root, creating intermediate
// folders on the way. A missing final segment propagates
// drivesdk.ErrNodeNotFound; the caller decides what a miss means.
func (nav *Navigator) Resolve(ctx context.Context, root TreeStore, relPath string) (TreeStore, error) {
	folder, err := nav.ResolveFolder(ctx, root, path.Dir(relPath))
	if err != nil {
		return nil, err
	}
	return folder.Child(ctx, path.Base(relPath))
}

// UpsertFile creates or overwrites the file `name` inside folder. The
// service does not guarantee overwrite-on-upload, so an existing node is
// deleted first.
func (nav *Navigator) UpsertFile(ctx context.Context, folder TreeStore, name string, open OpenFunc) error {
	existing, err := folder.Child(ctx, name)
	switch {
	case err == nil:
		if derr := nav.retry.Do("delete "+name, func() error { return existing.Delete(ctx) }); derr != nil {
			return fmt.Errorf("replace %q: %w", name, derr)
		}
	case errors.Is(err, drivesdk.ErrNodeNotFound):
		// fresh upload
	default:
		return err
	}

	return nav.retry.Do("upload "+name, func() error {
		r, size, err := open()
		if err != nil {
			return err
		}
		defer r.Close()
		return folder.Upload(ctx, name, r, size)
	})
}

// DeleteIfExists resolves relPath under root and deletes the node if it is
// there. Any lookup miss along the way means the path is already absent,
// which is success: delete is idempotent.
func (nav *Navigator) DeleteIfExists(ctx context.Context, root TreeStore, relPath string) error {
	relPath = path.Clean(strings.ReplaceAll(relPath, "\\", "/"))

	node := root
	for _, seg := range strings.Split(relPath, "/") {
		next, err := node.Child(ctx, seg)
		if errors.Is(err, drivesdk.ErrNodeNotFound) {
			slog.Debug("already absent remotely", "path", relPath)
			return nil
		}
		if err != nil {
			return err
		}
		node = next
	}

	if err := nav.retry.Do("delete "+relPath, func() error { return node.Delete(ctx) }); err != nil {
		return err
	}

	// drop any cached folders at or under the deleted path
	for cached := range nav.folders {
		if cached == relPath || strings.HasPrefix(cached, relPath+"/") {
			delete(nav.folders, cached)
		}
	}
	return nil
}
