package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStrings(t *testing.T) {
	assert.NotEmpty(t, AppName)
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)
}

func TestDetailed(t *testing.T) {
	detailed := Detailed()
	assert.Contains(t, detailed, Version)
	assert.Contains(t, detailed, Revision)
	assert.Contains(t, detailed, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, detailed, runtime.Version())
}
