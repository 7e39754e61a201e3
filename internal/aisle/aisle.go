// Package aisle models the Cooklang shopping-aisle config (aisle.conf):
// bracketed category headers followed by pipe-separated item/synonym lines.
package aisle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrItemNotFound = errors.New("aisle: item not found")

// Item is a canonical ingredient plus its accepted synonyms.
type Item struct {
	Name     string
	Synonyms []string
}

// Category is one aisle section, e.g. [produce].
type Category struct {
	Name  string
	Items []*Item
}

// Conf is a parsed aisle.conf. Category and item order is preserved so a
// rewrite only appends.
type Conf struct {
	Categories []*Category
}

// Parse reads an aisle.conf. Lines outside any category are rejected.
func Parse(r io.Reader) (*Conf, error) {
	conf := &Conf{}
	var current *Category

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = &Category{Name: strings.TrimSpace(line[1 : len(line)-1])}
			conf.Categories = append(conf.Categories, current)
			continue
		}

		if current == nil {
			return nil, fmt.Errorf("aisle: line %d: item %q outside any category", lineNo, line)
		}

		parts := strings.Split(line, "|")
		item := &Item{Name: strings.TrimSpace(parts[0])}
		for _, syn := range parts[1:] {
			if syn = strings.TrimSpace(syn); syn != "" {
				item.Synonyms = append(item.Synonyms, syn)
			}
		}
		current.Items = append(current.Items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("aisle: read: %w", err)
	}
	return conf, nil
}

// KnownNames returns every item name and synonym, lowercased.
func (c *Conf) KnownNames() []string {
	var out []string
	for _, cat := range c.Categories {
		for _, item := range cat.Items {
			out = append(out, strings.ToLower(item.Name))
			for _, syn := range item.Synonyms {
				out = append(out, strings.ToLower(syn))
			}
		}
	}
	return out
}

// CategoryNames returns the category names in file order.
func (c *Conf) CategoryNames() []string {
	out := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, cat.Name)
	}
	return out
}

// Knows reports whether name matches an item or synonym, case-insensitively.
func (c *Conf) Knows(name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, cat := range c.Categories {
		for _, item := range cat.Items {
			if strings.ToLower(item.Name) == needle {
				return true
			}
			for _, syn := range item.Synonyms {
				if strings.ToLower(syn) == needle {
					return true
				}
			}
		}
	}
	return false
}

// AddSynonym appends a synonym to the named canonical item.
func (c *Conf) AddSynonym(canonical, synonym string) error {
	needle := strings.ToLower(strings.TrimSpace(canonical))
	for _, cat := range c.Categories {
		for _, item := range cat.Items {
			if strings.ToLower(item.Name) != needle {
				continue
			}
			for _, syn := range item.Synonyms {
				if strings.EqualFold(syn, synonym) {
					return nil
				}
			}
			item.Synonyms = append(item.Synonyms, strings.TrimSpace(synonym))
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrItemNotFound, canonical)
}

// AddItem inserts a new item into the named category, creating the category
// at the end of the file if it does not exist yet.
func (c *Conf) AddItem(category, name string) {
	needle := strings.ToLower(strings.TrimSpace(category))
	for _, cat := range c.Categories {
		if strings.ToLower(cat.Name) == needle {
			cat.Items = append(cat.Items, &Item{Name: strings.TrimSpace(name)})
			return
		}
	}
	c.Categories = append(c.Categories, &Category{
		Name:  strings.TrimSpace(category),
		Items: []*Item{{Name: strings.TrimSpace(name)}},
	})
}

// Render writes the config back out in its file format.
func (c *Conf) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, cat := range c.Categories {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "[%s]\n", cat.Name)
		for _, item := range cat.Items {
			line := item.Name
			if len(item.Synonyms) > 0 {
				line += "|" + strings.Join(item.Synonyms, "|")
			}
			fmt.Fprintln(bw, line)
		}
	}
	return bw.Flush()
}
