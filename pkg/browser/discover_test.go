package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutablePaths_PerPlatform(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		paths := executablePaths(goos)
		assert.NotEmpty(t, paths, goos)
	}

	// Unknown platforms fall back to the Linux list
	assert.Equal(t, executablePaths("linux"), executablePaths("freebsd"))
}

func TestExecutableNames(t *testing.T) {
	names := executableNames()
	assert.Contains(t, names, "google-chrome")
	assert.Contains(t, names, "chromium")
}
