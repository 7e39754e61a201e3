package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitelistInScope(t *testing.T) {
	wl := NewWhitelist([]string{"entrees", "bread"})

	tests := []struct {
		path string
		want bool
	}{
		{"entrees", true},
		{"entrees/pasta.cook", true},
		{"entrees/sub/deep.cook", true},
		{"bread/sourdough.cook", true},
		{"desserts/cake.cook", false},
		{"README.md", false},
		{"entrees-extra/x.cook", false},
		{"entrees\\windows.cook", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wl.InScope(tt.path), "path %q", tt.path)
	}
}

func TestWhitelistNamesSorted(t *testing.T) {
	wl := NewWhitelist([]string{"soup", "bread", "entrees"})
	assert.Equal(t, []string{"bread", "entrees", "soup"}, wl.Names())
}
