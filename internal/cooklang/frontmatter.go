package cooklang

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// WithTags returns the recipe text with its front-matter tags replaced by
// the given list. Other front-matter keys and their order are preserved;
// recipes without front matter gain one.
func WithTags(text string, tags []string) (string, error) {
	front, body := SplitFrontMatter(text)

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	if strings.TrimSpace(front) != "" {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(front), &doc); err != nil {
			return "", fmt.Errorf("parse front matter: %w", err)
		}
		if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
			mapping = doc.Content[0]
		}
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, tag := range tags {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: tag})
	}

	replaced := false
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if strings.EqualFold(mapping.Content[i].Value, "tags") {
			mapping.Content[i+1] = seq
			replaced = true
			break
		}
	}
	if !replaced {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "tags"}, seq)
	}

	rendered, err := yaml.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("render front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontMatterFence + "\n")
	b.Write(rendered)
	b.WriteString(frontMatterFence + "\n")
	if front == "" {
		// SplitFrontMatter returned the full text as body
		b.WriteString(strings.TrimPrefix(body, "\n"))
	} else {
		b.WriteString(body)
	}
	return b.String(), nil
}
