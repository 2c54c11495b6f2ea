package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree creates a small directory tree with a hidden and an empty directory.
func tree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"top.txt", "a/x.txt", "a/b/y.txt", "c/z.txt", ".hidden/h.txt"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d"), 0o755))
	return dir
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestWalkGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	dir := tree(t)

	tests := map[string][]string{
		"walk_sorted":    {"walk", dir, "--workers", "4"},
		"walk_hidden":    {"walk", dir, "--hidden"},
		"walk_max_depth": {"walk", dir, "--max-depth", "1"},
		"walk_json":      {"walk", dir, "--format", "json", "-j", "2"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, args...)
			require.NoError(t, err)
			g.Assert(t, name, []byte(out))
		})
	}
}

func TestWalkArrival(t *testing.T) {
	out, err := execute(t, "walk", tree(t), "--order", "arrival", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   WalkResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "arrival", resp.Data.Order)

	var paths []string
	for _, d := range resp.Data.Dirs {
		paths = append(paths, d.Path)
	}
	assert.ElementsMatch(t, []string{".", "a", "a/b", "c", "d"}, paths)
}

func TestWalkConfigFile(t *testing.T) {
	dir := tree(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".treewalk.yml"), []byte("format: json\nmaxDepth: 1\n"), 0o644))

	out, err := execute(t, "walk", dir)
	require.NoError(t, err)
	var resp struct {
		Data WalkResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Dirs, 4)
	assert.Equal(t, "d", resp.Data.Dirs[3].Path)

	// Flags take precedence over the file.
	out, err = execute(t, "walk", dir, "--format", "text", "--max-depth", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "0.0.0 a/b\n")
}

func TestWalkExplicitConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "walk.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("hidden: true\n"), 0o644))

	out, err := execute(t, "walk", tree(t), "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "0.0 .hidden\n")
}

func TestWalkErrors(t *testing.T) {
	dir := tree(t)
	badConfig := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(badConfig, []byte("order: random\n"), 0o644))

	tests := map[string][]string{
		"missing dir":    {"walk", filepath.Join(dir, "nope")},
		"file as dir":    {"walk", filepath.Join(dir, "top.txt")},
		"missing config": {"walk", dir, "--config", filepath.Join(dir, "nope.yml")},
		"invalid config": {"walk", dir, "--config", badConfig},
		"invalid order":  {"walk", dir, "--order", "random"},
		"negative depth": {"walk", dir, "--max-depth", "-1"},
		"invalid format": {"walk", dir, "--format", "xml"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestWalkUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := tree(t)
	locked := filepath.Join(dir, "a")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	out, err := execute(t, "walk", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "0.0 a: ")
	assert.Contains(t, out, "0.1 c\n")
	assert.NotContains(t, out, "a/b")
}

// errorResponse decodes a JSON error envelope of the walk command.
func errorResponse(t *testing.T, out string) (CLIError, WalkResult) {
	t.Helper()
	var resp struct {
		Status string     `json:"status"`
		Data   WalkResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	return *resp.Error, resp.Data
}

func TestWalkErrorsJSON(t *testing.T) {
	dir := tree(t)
	out, err := execute(t, "walk", filepath.Join(dir, "nope"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))

	cliErr, _ := errorResponse(t, out)
	assert.Equal(t, ExitCommandError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "cannot walk")
}

func TestWalkErrorsUseConfiguredFormat(t *testing.T) {
	dir := tree(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".treewalk.yml"), []byte("format: json\n"), 0o644))

	out, err := execute(t, "walk", dir, "--order", "random")
	require.Error(t, err)
	assert.True(t, IsReported(err))
	cliErr, _ := errorResponse(t, out)
	assert.Equal(t, ExitCommandError, cliErr.Code)

	// Text errors are left to the caller of the command.
	out, err = execute(t, "walk", filepath.Join(dir, "nope"))
	require.Error(t, err)
	assert.False(t, IsReported(err))
	assert.Empty(t, out)
}

func TestWalkUnreadableDirectoryJSON(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := tree(t)
	locked := filepath.Join(dir, "a")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	out, err := execute(t, "walk", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))

	cliErr, data := errorResponse(t, out)
	assert.Equal(t, ExitFailure, cliErr.Code)
	assert.Equal(t, "1 directories could not be read", cliErr.Message)
	require.Len(t, data.Dirs, 4)
	assert.Equal(t, "a", data.Dirs[1].Path)
	assert.NotEmpty(t, data.Dirs[1].Error)
}
