// Package gitrev answers the two questions the deployer has for version
// control: what is the current revision, and which files changed between two
// revisions.
package gitrev

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

var (
	ErrRepoNotFound = errors.New("gitrev: not a git repository")
)

// Revision is an opaque identifier for a point in the local history.
type Revision string

func (r Revision) String() string { return string(r) }

// Status classifies a single changed path. Values match git's name-status
// letters; rename variants (R75, R100, ...) all collapse to StatusRenamed.
type Status byte

const (
	StatusAdded    Status = 'A'
	StatusModified Status = 'M'
	StatusDeleted  Status = 'D'
	StatusRenamed  Status = 'R'
)

func (s Status) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	default:
		return fmt.Sprintf("status(%c)", byte(s))
	}
}

// Change is one changed path between two revisions. Path is relative to the
// repository root and slash-separated, as git reports it. For a rename it is
// the new path.
type Change struct {
	Status Status
	Path   string
}

// Repo wraps an opened git repository.
type Repo struct {
	repo *git.Repository
}

// Open opens the repository containing dir, walking up to find .git.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, dir)
		}
		return nil, fmt.Errorf("gitrev: open %s: %w", dir, err)
	}
	return &Repo{repo: repo}, nil
}

// Head returns the revision at the head of the current history.
func (r *Repo) Head() (Revision, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("gitrev: head: %w", err)
	}
	return Revision(ref.Hash().String()), nil
}

// Diff returns the file-level changes between two revisions, renames
// detected. The result is empty when the trees are identical. Failures here
// are local, never transient; callers must not retry them.
func (r *Repo) Diff(ctx context.Context, from, to Revision) ([]Change, error) {
	fromTree, err := r.treeAt(from)
	if err != nil {
		return nil, err
	}
	toTree, err := r.treeAt(to)
	if err != nil {
		return nil, err
	}

	diff, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("gitrev: diff %s..%s: %w", from, to, err)
	}

	changes := make([]Change, 0, len(diff))
	for _, ch := range diff {
		action, err := ch.Action()
		if err != nil {
			return nil, fmt.Errorf("gitrev: diff %s..%s: %w", from, to, err)
		}

		switch action {
		case merkletrie.Insert:
			changes = append(changes, Change{Status: StatusAdded, Path: ch.To.Name})
		case merkletrie.Delete:
			changes = append(changes, Change{Status: StatusDeleted, Path: ch.From.Name})
		case merkletrie.Modify:
			if ch.From.Name != ch.To.Name {
				// A detected rename carries the new path only; the old
				// remote node is left alone, matching the deployer's
				// incremental semantics.
				changes = append(changes, Change{Status: StatusRenamed, Path: ch.To.Name})
			} else {
				changes = append(changes, Change{Status: StatusModified, Path: ch.To.Name})
			}
		}
	}

	return changes, nil
}

func (r *Repo) treeAt(rev Revision) (*object.Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("gitrev: resolve %q: %w", rev, err)
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("gitrev: commit %s: %w", hash, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("gitrev: tree %s: %w", hash, err)
	}

	return tree, nil
}
