package fixtures

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// ArtifactPath returns the path of a compiled contract artifact fixture.
func ArtifactPath(t *testing.T, filename string) string {
	t.Helper()
	path := filepath.Join(fixturesDir(), "artifacts", filename)
	_, err := os.Stat(path)
	require.NoError(t, err, "missing fixture artifact: %s", filename)
	return path
}

// LoadArtifact loads a compiled contract artifact fixture.
func LoadArtifact(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(ArtifactPath(t, filename))
	require.NoError(t, err, "failed to load fixture artifact: %s", filename)
	return data
}

// SourcePath returns the path of a Solidity source fixture.
func SourcePath(t *testing.T, filename string) string {
	t.Helper()
	path := filepath.Join(fixturesDir(), "contracts", filename)
	_, err := os.Stat(path)
	require.NoError(t, err, "missing fixture contract: %s", filename)
	return path
}
