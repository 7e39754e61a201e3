package deploy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cooklabs/cookdrive/internal/drivesdk"
)

// fakeStats counts remote mutations across a whole fake tree.
type fakeStats struct {
	creates   int
	uploads   int
	deletes   int
	refreshes int
}

// fakeNode is an in-memory TreeStore with failure injection.
type fakeNode struct {
	name   string
	folder bool
	data   []byte

	parent   *fakeNode
	children map[string]*fakeNode
	// created but invisible until the parent is refreshed
	hidden map[string]*fakeNode

	stats *fakeStats

	createUnusable bool
	createVanishes bool
	createFailures int
	uploadFailures int
	deleteFailures int
	childErr       error
	downloadErr    error
}

func errTransient() error {
	return &drivesdk.APIError{Status: 503, Message: "try again"}
}

func errPermanent() error {
	return &drivesdk.APIError{Status: 400, Code: "BAD_REQUEST", Message: "nope"}
}

func newFakeRoot(stats *fakeStats) *fakeNode {
	return &fakeNode{
		name:     "root",
		folder:   true,
		children: map[string]*fakeNode{},
		hidden:   map[string]*fakeNode{},
		stats:    stats,
	}
}

func (n *fakeNode) addFolder(name string) *fakeNode {
	child := &fakeNode{
		name:     name,
		folder:   true,
		parent:   n,
		children: map[string]*fakeNode{},
		hidden:   map[string]*fakeNode{},
		stats:    n.stats,
	}
	n.children[name] = child
	return child
}

func (n *fakeNode) addFile(name, content string) *fakeNode {
	child := &fakeNode{
		name:   name,
		parent: n,
		data:   []byte(content),
		stats:  n.stats,
	}
	n.children[name] = child
	return child
}

// find walks a slash-separated path from n, returning nil on any miss.
func (n *fakeNode) find(relPath string) *fakeNode {
	node := n
	for _, seg := range strings.Split(relPath, "/") {
		next, ok := node.children[seg]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

func (n *fakeNode) Name() string   { return n.name }
func (n *fakeNode) IsFolder() bool { return n.folder }

func (n *fakeNode) Child(ctx context.Context, name string) (TreeStore, error) {
	if n.childErr != nil {
		return nil, n.childErr
	}
	child, ok := n.children[name]
	if !ok {
		return nil, fmt.Errorf("%q in %q: %w", name, n.name, drivesdk.ErrNodeNotFound)
	}
	return child, nil
}

func (n *fakeNode) CreateFolder(ctx context.Context, name string) (TreeStore, error) {
	if n.createFailures > 0 {
		n.createFailures--
		return nil, errTransient()
	}
	n.stats.creates++

	if n.createVanishes {
		return nil, nil
	}

	child := &fakeNode{
		name:     name,
		folder:   true,
		parent:   n,
		children: map[string]*fakeNode{},
		hidden:   map[string]*fakeNode{},
		stats:    n.stats,
	}
	if n.createUnusable {
		n.hidden[name] = child
		return nil, nil
	}
	n.children[name] = child
	return child, nil
}

func (n *fakeNode) Refresh(ctx context.Context) error {
	n.stats.refreshes++
	for name, child := range n.hidden {
		n.children[name] = child
		delete(n.hidden, name)
	}
	return nil
}

func (n *fakeNode) Upload(ctx context.Context, name string, r io.Reader, size int64) error {
	if n.uploadFailures > 0 {
		n.uploadFailures--
		return errTransient()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	n.stats.uploads++
	n.children[name] = &fakeNode{name: name, parent: n, data: data, stats: n.stats}
	return nil
}

func (n *fakeNode) Delete(ctx context.Context) error {
	if n.deleteFailures > 0 {
		n.deleteFailures--
		return errTransient()
	}
	n.stats.deletes++
	if n.parent != nil {
		delete(n.parent.children, n.name)
	}
	return nil
}

func (n *fakeNode) Download(ctx context.Context, w io.Writer) error {
	if n.downloadErr != nil {
		return n.downloadErr
	}
	_, err := io.Copy(w, bytes.NewReader(n.data))
	return err
}
