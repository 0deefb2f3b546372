package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dispatch/internal/generator"
)

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod": "module example.com/demo\n",
		"app/controllers.go": `package app

//dispatch::controller
type HomeController struct{}

//dispatch::route /
func (c *HomeController) Index() string { return "home" }
`,
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCLI("-help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Usage:")
	assert.Contains(t, stderr, "Dispatch Code Generator")
	assert.Contains(t, stderr, "-package")
	assert.Contains(t, stderr, "-module")
}

func TestRun_MissingPackage(t *testing.T) {
	code, _, stderr := runCLI("-root", t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "-package is required")
}

func TestRun_UnknownFlag(t *testing.T) {
	code, _, _ := runCLI("-frobnicate")
	assert.Equal(t, 2, code)
}

func TestRun_Generate(t *testing.T) {
	root := setupProject(t)

	code, stdout, stderr := runCLI("-root", root, "-package", "app")
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Generation Complete!")
	assert.Contains(t, stdout, "Controllers found: 1")
	assert.Contains(t, stdout, "Routes found: 1")
	assert.FileExists(t, filepath.Join(root, "app", generator.OutputFile))
}

func TestRun_GenerateFailure(t *testing.T) {
	root := setupProject(t)

	code, _, stderr := runCLI("-quiet", "-root", root, "-package", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Generation failed")
}

func TestRun_Clean(t *testing.T) {
	root := setupProject(t)
	code, _, stderr := runCLI("-quiet", "-root", root, "-package", "app")
	require.Equal(t, 0, code, stderr)

	generated := filepath.Join(root, "app", generator.OutputFile)
	require.FileExists(t, generated)

	code, stdout, _ := runCLI("-clean", "-root", root)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Removed 1 generated file(s)")
	assert.NoFileExists(t, generated)
	assert.FileExists(t, filepath.Join(root, "app", "controllers.go"))
}
