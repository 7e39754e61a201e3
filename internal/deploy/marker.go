package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cooklabs/cookdrive/internal/drivesdk"
	"github.com/cooklabs/cookdrive/internal/gitrev"
)

// StateMarker persists the last successfully deployed revision as a small
// file at the remote sync root. Absence of the file means "no prior
// deployment".
type StateMarker struct {
	fileName string
	retry    RetryPolicy
}

func NewStateMarker(fileName string, retry RetryPolicy) *StateMarker {
	return &StateMarker{fileName: fileName, retry: retry}
}

// Read fetches the marker from the remote root. Returns ok=false when no
// marker exists; that is not an error. The content travels through a local
// scratch file which is removed on every exit path.
func (m *StateMarker) Read(ctx context.Context, root TreeStore) (rev gitrev.Revision, ok bool, err error) {
	node, err := root.Child(ctx, m.fileName)
	if errors.Is(err, drivesdk.ErrNodeNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup marker %q: %w", m.fileName, err)
	}

	scratch, err := os.CreateTemp("", "cookdrive-marker-*")
	if err != nil {
		return "", false, fmt.Errorf("marker scratch file: %w", err)
	}
	defer func() {
		scratch.Close()
		os.Remove(scratch.Name())
	}()

	if err := node.Download(ctx, scratch); err != nil {
		return "", false, fmt.Errorf("download marker %q: %w", m.fileName, err)
	}
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}
	data, err := io.ReadAll(scratch)
	if err != nil {
		return "", false, err
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		slog.Warn("state marker is empty, treating as no prior deployment", "marker", m.fileName)
		return "", false, nil
	}
	return gitrev.Revision(content), true, nil
}

// Write records rev as the last deployed revision. The content is staged in
// a scratch file, any pre-existing marker node is deleted (a miss is fine),
// and the scratch file is uploaded under the marker name via the retry
// policy. Scratch files are always removed afterwards.
func (m *StateMarker) Write(ctx context.Context, root TreeStore, rev gitrev.Revision) error {
	scratch, err := os.CreateTemp("", "cookdrive-marker-*")
	if err != nil {
		return fmt.Errorf("marker scratch file: %w", err)
	}
	scratchPath := scratch.Name()
	defer os.Remove(scratchPath)

	_, werr := scratch.WriteString(rev.String())
	cerr := scratch.Close()
	if werr != nil || cerr != nil {
		return fmt.Errorf("stage marker content: %w", errors.Join(werr, cerr))
	}

	existing, err := root.Child(ctx, m.fileName)
	switch {
	case err == nil:
		derr := m.retry.Do("delete marker", func() error { return existing.Delete(ctx) })
		if derr != nil && !errors.Is(derr, drivesdk.ErrNodeNotFound) {
			return fmt.Errorf("delete old marker: %w", derr)
		}
	case errors.Is(err, drivesdk.ErrNodeNotFound):
		// first deploy
	default:
		return fmt.Errorf("lookup marker %q: %w", m.fileName, err)
	}

	err = m.retry.Do("upload marker", func() error {
		f, err := os.Open(scratchPath)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}
		return root.Upload(ctx, m.fileName, f, info.Size())
	})
	if err != nil {
		return fmt.Errorf("upload marker: %w", err)
	}

	slog.Info("state marker updated", "revision", rev)
	return nil
}
