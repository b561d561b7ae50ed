// Package testutil provides common test utilities for the marginalia project.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEnv is a temporary directory for one test. Every path handed to it is
// resolved inside the directory; a path escaping it fails the test.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv creates a sandbox that is removed when the test completes.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{t: t, rootDir: t.TempDir()}
}

// RootDir returns the root directory of the test environment.
func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path joins elem under the sandbox root.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	p := filepath.Clean(filepath.Join(e.rootDir, filepath.Join(elem...)))
	root := filepath.Clean(e.rootDir)
	if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {
		e.t.Fatalf("path %q escapes test sandbox %q", p, e.rootDir)
	}
	return p
}

// WriteFileString writes content to path, creating parent directories.
func (e *TestEnv) WriteFileString(path, content string) {
	e.t.Helper()

	abs := e.Path(path)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(e.t, os.WriteFile(abs, []byte(content), 0o644))
}

// ReadFileString returns the content of path.
func (e *TestEnv) ReadFileString(path string) string {
	e.t.Helper()

	data, err := os.ReadFile(e.Path(path))
	require.NoError(e.t, err)
	return string(data)
}

// MkdirAll creates a directory and all necessary parents.
func (e *TestEnv) MkdirAll(path string) {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(e.Path(path), 0o755))
}

// FileExists reports whether path exists.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()
	_, err := os.Stat(e.Path(path))
	return err == nil
}

// RequireFileExists fails the test unless path exists.
func (e *TestEnv) RequireFileExists(path string) {
	e.t.Helper()
	require.FileExists(e.t, e.Path(path))
}

// RequireFileNotExists fails the test if path exists.
func (e *TestEnv) RequireFileNotExists(path string) {
	e.t.Helper()
	require.NoFileExists(e.t, e.Path(path))
}

// ListFiles returns the entry names of a directory.
func (e *TestEnv) ListFiles(path string) []string {
	e.t.Helper()

	entries, err := os.ReadDir(e.Path(path))
	require.NoError(e.t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// AssertFileContains checks that path contains expected.
func (e *TestEnv) AssertFileContains(path, expected string) {
	e.t.Helper()
	if content := e.ReadFileString(path); !strings.Contains(content, expected) {
		e.t.Errorf("file %q does not contain expected string %q", path, expected)
	}
}

func (e *TestEnv) String() string {
	return fmt.Sprintf("TestEnv{rootDir: %q}", e.rootDir)
}
