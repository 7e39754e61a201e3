// Package tagindex builds the repository-wide tag index from recipe front
// matter and renders it as markdown.
package tagindex

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cooklabs/cookdrive/internal/cooklang"
)

const recipeGlob = "**/*.cook"

// TagCount is one row of the index.
type TagCount struct {
	Tag   string
	Count int
}

// Index is the aggregated tag census over a recipe tree.
type Index struct {
	counts  map[string]int
	Recipes int
}

// Build scans every .cook file under fsys and counts front-matter tags.
// Unparseable front matter is counted as a recipe with no tags.
func Build(fsys fs.FS) (*Index, error) {
	matches, err := doublestar.Glob(fsys, recipeGlob)
	if err != nil {
		return nil, fmt.Errorf("glob recipes: %w", err)
	}
	sort.Strings(matches)

	idx := &Index{counts: make(map[string]int)}
	for _, match := range matches {
		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", match, err)
		}
		idx.Recipes++

		front, _ := cooklang.SplitFrontMatter(string(data))
		tags, err := cooklang.Tags(front)
		if err != nil {
			continue
		}
		for _, tag := range tags {
			idx.counts[tag]++
		}
	}
	return idx, nil
}

// Top returns up to n tags ordered by count descending, name ascending.
func (idx *Index) Top(n int) []TagCount {
	all := make([]TagCount, 0, len(idx.counts))
	for tag, count := range idx.counts {
		all = append(all, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Tag < all[j].Tag
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Render produces the tags-index.md content.
func (idx *Index) Render(now time.Time) []byte {
	var b strings.Builder
	b.WriteString("# Tag Index\n\n")
	fmt.Fprintf(&b, "Generated on %s by `cookdrive tags index`\n\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "%d recipes, %d distinct tags.\n\n", idx.Recipes, len(idx.counts))
	b.WriteString("| Tag | Count |\n")
	b.WriteString("| --- | --- |\n")
	for _, tc := range idx.Top(0) {
		fmt.Fprintf(&b, "| %s | %d |\n", tc.Tag, tc.Count)
	}
	return []byte(b.String())
}

// Summary renders the top tags as a one-line prompt fragment, e.g.
// "dinner (12), thai (5)".
func (idx *Index) Summary(limit int) string {
	top := idx.Top(limit)
	parts := make([]string, 0, len(top))
	for _, tc := range top {
		parts = append(parts, fmt.Sprintf("%s (%d)", tc.Tag, tc.Count))
	}
	return strings.Join(parts, ", ")
}
