package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/glue/interp"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "bar.baz", 7, "baz", 4, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"in_ternary", "x ? fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"inside_block", "Hi {us", 6, "us", 4, 6},
		{"before_close", "{us}", 3, "us", 1, 3},
		{"after_assign", "{x <-y", 6, "y", 5, 6},
		{"in_string", `{"ab`, 4, "ab", 2, 4},
		{"empty_after_dot", "config.", 7, "", 7, 7},
		{"cursor_clamped", "foo", 10, "foo", 0, 3},
		{"multibyte", "{héllo", 7, "héllo", 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"after_operator", "foo + bar.baz.", 14, "bar.baz"},
		{"after_paren", "(bar.baz.", 9, "bar.baz"},
		{"after_open", "Hi {platform.", 13, "platform"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

type server struct {
	Host    string
	Port    int
	private bool
}

func TestChildCandidates(t *testing.T) {
	env := interp.EnvOf(map[string]any{
		"cfg": map[string]any{
			"http": server{Host: "localhost", Port: 80},
			"name": "demo",
		},
		"ptr": &server{},
		"n":   1,
	})

	tests := []struct {
		name   string
		parent string
		want   []string
	}{
		{"map_keys", "cfg", []string{"http", "name"}},
		{"struct_fields", "cfg.http", []string{"Host", "Port"}},
		{"pointer_fields", "ptr", []string{"Host", "Port"}},
		{"scalar", "n", nil},
		{"unknown", "nope", nil},
		{"unknown_member", "cfg.nope", nil},
		{"unexported_member", "ptr.private", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := childCandidates(env, tt.parent)
			if !slices.Equal(got, tt.want) {
				t.Errorf("childCandidates(%q) = %v, want %v", tt.parent, got, tt.want)
			}
		})
	}
}

func TestChildCandidatesTopLevel(t *testing.T) {
	env := interp.EnvOf(map[string]any{"alpha": 1}).Child().Set("beta", 2)

	got := childCandidates(env, "")

	for _, want := range []string{"alpha", "beta", "len", "upper"} {
		if !slices.Contains(got, want) {
			t.Errorf("top-level candidates missing %q", want)
		}
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzyAll("one", "two", "three", "four", "five", "six")

	if got := renderCandidateBar(nil, 0, 80); got != "" {
		t.Errorf("empty matches rendered %q", got)
	}

	if got := renderCandidateBar(matches, 0, 0); got != "" {
		t.Errorf("zero width rendered %q", got)
	}

	wide := stripANSI(renderCandidateBar(matches, -1, 200))
	if wide != "one  two  three  four  five  six" {
		t.Errorf("wide bar = %q", wide)
	}

	narrow := stripANSI(renderCandidateBar(matches, -1, 16))
	if narrow != "one  two  ..." {
		t.Errorf("narrow bar = %q", narrow)
	}
}
