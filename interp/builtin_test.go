package interp

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	env := NewBuiltinEnv([]string{"GLUE_HOME=/opt/glue", "EMPTY="}).
		Child().
		Set("dir", dir).
		Set("file_path", file)

	tests := []struct {
		tmpl string
		want string
	}{
		{`{env("GLUE_HOME")}`, "/opt/glue"},
		{`[{env("EMPTY")}]`, "[]"},
		{`[{env("UNSET")}]`, "[]"},
		{"{platform.OS}/{platform.Arch}", runtime.GOOS + "/" + runtime.GOARCH},
		{"{file.exists(file_path)}", "true"},
		{`{file.exists(path.cat(dir, "nope"))}`, "false"},
		{"{file.isDir(dir)}", "true"},
		{"{file.isRegular(file_path)}", "true"},
		{"{file.isSymlink(file_path)}", "false"},
		{`{path.rel(dir, file_path)}`, "f.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := Render(t.Context(), tt.tmpl, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltinEnv_CallerShadowsBuiltin(t *testing.T) {
	env := NewBuiltinEnv(nil).Child().Set("hostname", "override")

	got, err := Render(t.Context(), "{hostname}", env)
	require.NoError(t, err)
	assert.Equal(t, "override", got)
}

func TestBuiltinEnv_Mung(t *testing.T) {
	sep := string(os.PathListSeparator)
	env := NewBuiltinEnv(nil).Child().Set("list", strings.Join([]string{"/b", "/c"}, sep))

	got, err := Render(t.Context(), `{mung.prefix(list, "/a")}`, env)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "/a"+sep), "got %q", got)
	assert.Contains(t, got, "/c")
}

func TestProcessEnvMap(t *testing.T) {
	m := processEnvMap([]string{"A=1", "B=x=y", "malformed"})

	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, m)
}
