package deploy

import (
	"path"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Whitelist is the fixed set of top-level directory names eligible for
// synchronization. A path is in scope iff it is exactly a whitelisted name
// or sits beneath one.
type Whitelist struct {
	names mapset.Set[string]
}

func NewWhitelist(names []string) Whitelist {
	return Whitelist{names: mapset.NewSet(names...)}
}

// Contains reports whether name itself is whitelisted.
func (w Whitelist) Contains(name string) bool {
	return w.names.Contains(name)
}

// InScope reports whether the slash-separated relative path falls under a
// whitelisted top-level directory.
func (w Whitelist) InScope(relPath string) bool {
	relPath = path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	if w.names.Contains(relPath) {
		return true
	}
	top, _, found := strings.Cut(relPath, "/")
	return found && w.names.Contains(top)
}

// Names returns the whitelisted names in sorted order, for deterministic
// traversal.
func (w Whitelist) Names() []string {
	names := w.names.ToSlice()
	sort.Strings(names)
	return names
}
