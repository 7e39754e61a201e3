// Package deploy is the incremental deployment engine: it tracks the last
// pushed revision in a marker file on the remote tree, applies the file-level
// diff since then, and falls back to a full recursive sync when no prior
// state exists.
package deploy

import (
	"context"
	"io"

	"github.com/cooklabs/cookdrive/internal/drivesdk"
)

// TreeStore is the surface the engine needs from a remote tree node. Lookup
// is name-indexed and fails with drivesdk.ErrNodeNotFound on a miss.
// CreateFolder may return (nil, nil) when the service accepted the create
// but the response did not yield a usable handle; callers recover by
// Refresh-ing the parent and resolving by name.
type TreeStore interface {
	Name() string
	IsFolder() bool
	Child(ctx context.Context, name string) (TreeStore, error)
	CreateFolder(ctx context.Context, name string) (TreeStore, error)
	Refresh(ctx context.Context) error
	Upload(ctx context.Context, name string, r io.Reader, size int64) error
	Delete(ctx context.Context) error
	Download(ctx context.Context, w io.Writer) error
}

// driveNode adapts a drivesdk.Node to TreeStore, wrapping children as they
// are resolved.
type driveNode struct {
	*drivesdk.Node
}

// WrapNode exposes a drive node as a TreeStore.
func WrapNode(n *drivesdk.Node) TreeStore {
	return driveNode{n}
}

func (d driveNode) Child(ctx context.Context, name string) (TreeStore, error) {
	child, err := d.Node.Child(ctx, name)
	if err != nil {
		return nil, err
	}
	return driveNode{child}, nil
}

func (d driveNode) CreateFolder(ctx context.Context, name string) (TreeStore, error) {
	child, err := d.Node.CreateFolder(ctx, name)
	if err != nil || child == nil {
		// keep the nil untyped so callers can compare against it
		return nil, err
	}
	return driveNode{child}, nil
}
