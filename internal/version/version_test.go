package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	assert.Equal(t, "v1.0.0", Info{Version: "v1.0.0", Commit: "abcdef123"}.Short())
	assert.Equal(t, "dev-abcdef1", Info{Version: "dev", Commit: "abcdef123456"}.Short())
	assert.Equal(t, "dev", Info{Version: "dev", Commit: "unknown"}.Short())
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.Version)
}
