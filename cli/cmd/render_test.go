package cmd

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/glue/interp"
	"github.com/ardnew/glue/pkg"
)

func TestRender(t *testing.T) {
	vars := writeFile(t, "vars.yaml", "name: glue\nlist: [1, 2]\n")

	tests := []struct {
		name string
		in   string
		args []string
		want string
	}{
		{
			name: "var",
			args: []string{"--no-builtins", "-v", "x=5", "{x + 1}"},
			want: "6\n",
		},
		{
			name: "words_joined",
			args: []string{"--no-builtins", "-v", "name=bob", "Hello", "{name}"},
			want: "Hello bob\n",
		},
		{
			name: "stdin",
			in:   "Hi {x}\n",
			args: []string{"--no-builtins", "-v", "x=1"},
			want: "Hi 1\n",
		},
		{
			name: "vars_file",
			args: []string{"--no-builtins", "--vars", vars, "--sep", "+", "{name}{list}"},
			want: "glue1+2\n",
		},
		{
			name: "var_shadows_vars_file",
			args: []string{"--no-builtins", "--vars", vars, "-v", "name=cli", "{name}"},
			want: "cli\n",
		},
		{
			name: "recycle",
			args: []string{"--no-builtins", "--mode", "recycle", "{1..3}:{'a'}"},
			want: "1:a\n2:a\n3:a\n",
		},
		{
			name: "collapse",
			args: []string{"--no-builtins", "--collapse", "--collapse-last", " and ", "{['a', 'b', 'c']*}"},
			want: "a, b and c\n",
		},
		{
			name: "sprintf",
			args: []string{"--no-builtins", "--sprintf", "{3.14159:.2f}"},
			want: "3.14\n",
		},
		{
			name: "sprintf_inside_collapse",
			args: []string{"--no-builtins", "--sprintf", "--collapse", "{[1.5, 2.26]:.1f*}"},
			want: "1.5, 2.3\n",
		},
		{
			name: "safe_value",
			args: []string{"--no-builtins", "--safe", "--fallback", "?", "{nope}"},
			want: "?\n",
		},
		{
			name: "safe_na",
			args: []string{"--no-builtins", "--safe", "--na=-", "{nope}"},
			want: "-\n",
		},
		{
			name: "safe_expr",
			args: []string{"--no-builtins", "--safe", "--fallback-expr", "'<' + code + '>'", "{nope}"},
			want: "<nope>\n",
		},
		{
			name: "delimiters",
			args: []string{"--no-builtins", "--open", "<<", "--close", ">>", "{<<1 + 1>>}"},
			want: "{2}\n",
		},
		{
			name: "builtins",
			args: []string{"{platform.OS}"},
			want: runtime.GOOS + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, tt.in, append([]string{"render"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderFile(t *testing.T) {
	path := writeFile(t, "t.txt", "  a={a}\n  b={b}\n")

	out, err := runCommand(t, "", "render", "--no-builtins", "--trim",
		"-v", "a=1", "-v", "b=2", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "a=1\nb=2\n", out)
}

func TestRenderErrors(t *testing.T) {
	_, err := runCommand(t, "", "render", "--no-builtins", "{nope}")
	require.ErrorIs(t, err, ErrRender)

	var rerr *interp.RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, interp.Span{Start: 0, End: 6}, rerr.Span)

	_, err = runCommand(t, "", "render", "--no-builtins", "--mode", "recycle",
		"--recycle", "strict", "{[1, 2]}{[1, 2, 3]}")
	assert.ErrorIs(t, err, interp.ErrLengthMismatch)

	bad := writeFile(t, "bad.yaml", "a: [")
	_, err = runCommand(t, "", "render", "--vars", bad, "x")
	assert.ErrorIs(t, err, ErrReadVars)

	_, err = runCommand(t, "", "render", "--mode", "sideways", "x")
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	out, err := runCommand(t, "", "scan", "-o", "json", "a{b}")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"kind": "literal", "text": "a", "span": {"start": 0, "end": 1}},
		{"kind": "expression", "text": "b", "span": {"start": 1, "end": 4}}
	]`, out)

	out, err = runCommand(t, "a<%b%>", "scan", "--open", "<%", "--close", "%>")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: literal")
	assert.Contains(t, out, "kind: expression")
	assert.Contains(t, out, "text: b")

	_, err = runCommand(t, "", "scan", "{oops")
	require.ErrorIs(t, err, ErrScan)

	var serr *interp.ScanError
	assert.True(t, errors.As(err, &serr))
}

func TestVersion(t *testing.T) {
	out, err := runCommand(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, pkg.Name+" version "+pkg.Version+"\n", out)
}
