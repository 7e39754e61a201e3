package deploy

import (
	"context"
	"log/slog"
	"os"
	"path"
	"sort"

	"github.com/dustin/go-humanize"
	gitignore "github.com/sabhiram/go-gitignore"
)

// skipRules excludes entries from the full-sync walk regardless of the
// whitelist: hidden files and known build droppings never deploy.
type skipRules struct {
	ignore *gitignore.GitIgnore
}

var defaultSkipLines = []string{
	".*",
	"__pycache__/",
	"__pycache__",
	"*.pyc",
	"node_modules/",
}

func defaultSkipRules() *skipRules {
	return &skipRules{ignore: gitignore.CompileIgnoreLines(defaultSkipLines...)}
}

func (s *skipRules) Skip(name string) bool {
	return s.ignore.MatchesPath(name)
}

// syncUnit pairs a local directory with its resolved remote folder.
type syncUnit struct {
	dir    string
	folder TreeStore
}

// runFullSync walks the whitelisted top-level directories with an explicit
// worklist and uploads every file it finds, creating remote folders as it
// descends. Per-entry failures are logged and the walk continues.
func (e *Engine) runFullSync(ctx context.Context, root TreeStore) error {
	var work []syncUnit

	for _, name := range e.wl.Names() {
		info, err := e.fs.Stat(name)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			slog.Error("stat failed", "dir", name, "error", err)
			continue
		}
		if !info.IsDir() {
			continue
		}

		folder, err := e.nav.GetOrCreateFolder(ctx, root, name)
		if err != nil {
			slog.Error("create remote folder failed, skipping subtree", "dir", name, "error", err)
			continue
		}
		work = append(work, syncUnit{dir: name, folder: folder})
	}

	var files, dirs int
	for len(work) > 0 {
		unit := work[len(work)-1]
		work = work[:len(work)-1]

		entries, err := e.fs.ReadDir(unit.dir)
		if err != nil {
			slog.Error("read dir failed", "dir", unit.dir, "error", err)
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			if e.skip.Skip(entry.Name()) {
				continue
			}
			rel := path.Join(unit.dir, entry.Name())

			if entry.IsDir() {
				sub, err := e.nav.GetOrCreateFolder(ctx, unit.folder, entry.Name())
				if err != nil {
					slog.Error("create remote folder failed, skipping subtree", "dir", rel, "error", err)
					continue
				}
				work = append(work, syncUnit{dir: rel, folder: sub})
				dirs++
				continue
			}

			if err := e.uploadFile(ctx, unit.folder, rel); err != nil {
				slog.Error("upload failed", "path", rel, "error", err)
			} else {
				files++
			}
		}
	}

	slog.Info("full sync done", "files", files, "dirs", dirs)
	return nil
}

func humanSize(n int64) string {
	return humanize.Bytes(uint64(n))
}
