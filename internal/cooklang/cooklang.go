// Package cooklang extracts the bits of a .cook recipe the tooling cares
// about: YAML front matter tags and ingredient references. It is not a full
// Cooklang parser.
package cooklang

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterFence = "---"

// SplitFrontMatter separates the leading YAML front matter (without its
// fences) from the recipe body. Recipes without front matter return an empty
// front string and the full text as body.
func SplitFrontMatter(text string) (front, body string) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterFence {
		return "", text
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterFence {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	// unterminated fence, treat the whole thing as body
	return "", text
}

type frontMatter struct {
	Tags any `yaml:"tags"`
}

// Tags parses the front matter and returns its tags. Both YAML lists and
// comma-separated scalars are accepted.
func Tags(front string) ([]string, error) {
	if strings.TrimSpace(front) == "" {
		return nil, nil
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(front), &fm); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	switch v := fm.Tags.(type) {
	case nil:
		return nil, nil
	case string:
		var tags []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		return tags, nil
	case []any:
		var tags []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					tags = append(tags, s)
				}
			}
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("parse front matter: tags has unexpected type %T", v)
	}
}

// NormalizeTag lowercases a tag and keeps only letters and single spaces.
func NormalizeTag(tag string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(tag)) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' && !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

var (
	// @two word ingredient{1%cup} — braces terminate the name
	bracedIngredient = regexp.MustCompile(`@([^@#~{}\n]+)\{[^}]*\}`)
	// @word — a single-word ingredient without braces
	bareIngredient = regexp.MustCompile(`@([\p{L}\p{N}_-]+)`)
)

// Ingredients returns the ingredient names referenced in a recipe body, in
// order of first appearance, deduplicated case-insensitively.
func Ingredients(body string) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}

	stripped := bracedIngredient.ReplaceAllStringFunc(body, func(m string) string {
		sub := bracedIngredient.FindStringSubmatch(m)
		add(sub[1])
		return ""
	})
	for _, m := range bareIngredient.FindAllStringSubmatch(stripped, -1) {
		add(m[1])
	}
	return out
}
