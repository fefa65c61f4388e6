package interp

import (
	"errors"
	"slices"
	"strconv"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]any
		opts     []Option
		want     string
	}{
		{
			name:     "arithmetic",
			template: "{x + 1}",
			vars:     map[string]any{"x": 5},
			want:     "6",
		},
		{
			name:     "no blocks",
			template: "just text",
			want:     "just text",
		},
		{
			name:     "empty template",
			template: "",
			want:     "",
		},
		{
			name:     "escaped braces",
			template: "{{literal}} {x}",
			vars:     map[string]any{"x": "v"},
			want:     "{literal} v",
		},
		{
			name:     "assignment visible later",
			template: "{x<-1}{x}",
			want:     "11",
		},
		{
			name:     "nil renders NA",
			template: "[{nil}]",
			want:     "[NA]",
		},
		{
			name:     "custom NA",
			template: "[{nil}]",
			opts:     []Option{WithNA("-")},
			want:     "[-]",
		},
		{
			name:     "join without separator",
			template: "<{items}>",
			vars:     map[string]any{"items": []string{"a", "b"}},
			want:     "<ab>",
		},
		{
			name:     "join with separator",
			template: "<{items}>",
			vars:     map[string]any{"items": []string{"a", "b"}},
			opts:     []Option{WithSeparator(", ")},
			want:     "<a, b>",
		},
		{
			name:     "range",
			template: "{1..3}",
			opts:     []Option{WithSeparator(" ")},
			want:     "1 2 3",
		},
		{
			name:     "empty result",
			template: "a{items}b",
			vars:     map[string]any{"items": []int{}},
			want:     "ab",
		},
		{
			name:     "custom delimiters",
			template: "${x} and {x}",
			vars:     map[string]any{"x": 5},
			opts:     []Option{WithDelimiters("${", "}")},
			want:     "5 and {x}",
		},
		{
			name:     "nested blocks",
			template: `{ len({"k": x}) }`,
			vars:     map[string]any{"x": 1},
			opts:     []Option{WithNesting(true)},
			want:     "1",
		},
		{
			name:     "trim",
			template: "\n  Hello {name}\n  bye\n",
			vars:     map[string]any{"name": "bob"},
			opts:     []Option{WithTrim(true)},
			want:     "Hello bob\nbye",
		},
		{
			name:     "untrimmed",
			template: "\n  Hello {name}\n",
			vars:     map[string]any{"name": "bob"},
			want:     "\n  Hello bob\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(t.Context(), tt.template, EnvOf(tt.vars), tt.opts...)
			if err != nil {
				t.Fatalf("Render(%q) error: %v", tt.template, err)
			}

			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestRender_IdentityWithoutExpressions(t *testing.T) {
	e := New()

	for _, tmpl := range []string{"", "a", "multi\nline\ttext", "unicode ✓", "close } only"} {
		got, err := e.Render(t.Context(), tmpl, nil)
		if err != nil {
			t.Fatalf("Render(%q) error: %v", tmpl, err)
		}

		if got != tmpl {
			t.Errorf("Render(%q) = %q", tmpl, got)
		}
	}
}

func TestRender_AssignmentMutatesCallerEnv(t *testing.T) {
	env := NewEnv(nil)

	if _, err := Render(t.Context(), "{total <- 2 * 21}", env); err != nil {
		t.Fatal(err)
	}

	if v, ok := env.Get("total"); !ok || v != 42 {
		t.Errorf("total = %v, %v; want 42", v, ok)
	}
}

func TestRender_Errors(t *testing.T) {
	t.Run("scan error runs no code", func(t *testing.T) {
		var calls int

		e := New(WithTransformer(TransformerFunc(func(string, *Env) (any, error) {
			calls++

			return "", nil
		})))

		got, err := e.Render(t.Context(), "{a} {b", nil)
		if !errors.Is(err, ErrUnmatchedDelimiter) {
			t.Fatalf("error = %v, want ErrUnmatchedDelimiter", err)
		}

		if got != "" || calls != 0 {
			t.Errorf("got %q after %d transforms, want no output and no calls", got, calls)
		}
	})

	t.Run("evaluation error carries span", func(t *testing.T) {
		const tmpl = "ab {undefined_var} cd"

		got, err := Render(t.Context(), tmpl, NewEnv(nil))
		if got != "" {
			t.Errorf("partial output %q", got)
		}

		var re *RenderError
		if !errors.As(err, &re) {
			t.Fatalf("error %T is not *RenderError", err)
		}

		if re.Span != (Span{3, 18}) || re.Code != "undefined_var" {
			t.Errorf("RenderError = %+v", re)
		}

		if tmpl[re.Span.Start:re.Span.End] != "{undefined_var}" {
			t.Errorf("span covers %q", tmpl[re.Span.Start:re.Span.End])
		}

		if !errors.Is(err, ErrEvaluation) {
			t.Errorf("error %v does not match ErrEvaluation", err)
		}
	})

	t.Run("transformer error is unwrapped unchanged", func(t *testing.T) {
		sentinel := errors.New("custom")

		_, err := Render(t.Context(), "{x}", nil,
			WithTransformer(TransformerFunc(func(string, *Env) (any, error) {
				return nil, sentinel
			})),
		)

		if !errors.Is(err, sentinel) {
			t.Errorf("error = %v, want wrapped sentinel", err)
		}
	})

	t.Run("empty block", func(t *testing.T) {
		_, err := Render(t.Context(), "a{ }b", nil)
		if !errors.Is(err, ErrEmptyExpression) {
			t.Errorf("error = %v, want ErrEmptyExpression", err)
		}
	})
}

func TestRender_TransformersRunInOrder(t *testing.T) {
	var seen []string

	_, err := Render(t.Context(), "{a} {b}{c}", nil,
		WithTransformer(TransformerFunc(func(code string, _ *Env) (any, error) {
			seen = append(seen, code)

			return code, nil
		})),
	)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(seen, []string{"a", "b", "c"}) {
		t.Errorf("transform order = %v", seen)
	}
}

func TestRenderLines_Recycle(t *testing.T) {
	tests := []struct {
		name   string
		vars   map[string]any
		policy RecyclePolicy
		want   []string
	}{
		{
			name: "scalar repeats",
			vars: map[string]any{"x": []int{1, 2, 3}, "y": "a"},
			want: []string{"1-a;", "2-a;", "3-a;"},
		},
		{
			name: "cycle shorter column",
			vars: map[string]any{"x": []int{1, 2, 3, 4}, "y": []string{"a", "b"}},
			want: []string{"1-a;", "2-b;", "3-a;", "4-b;"},
		},
		{
			name:   "strict equal lengths",
			vars:   map[string]any{"x": []int{1, 2}, "y": []string{"a", "b"}},
			policy: RecycleStrict,
			want:   []string{"1-a;", "2-b;"},
		},
		{
			name: "zero length",
			vars: map[string]any{"x": []int{}, "y": "a"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithMode(ModeRecycle), WithRecycle(tt.policy))

			got, err := e.RenderLines(t.Context(), "{x}-{y};", EnvOf(tt.vars))
			if err != nil {
				t.Fatalf("RenderLines error: %v", err)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("RenderLines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_RecycleStrictMismatch(t *testing.T) {
	e := New(WithMode(ModeRecycle), WithRecycle(RecycleStrict))

	_, err := e.Render(t.Context(), "{x}{y}", EnvOf(map[string]any{
		"x": []int{1, 2, 3},
		"y": []int{1, 2},
	}))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("error = %v, want ErrLengthMismatch", err)
	}
}

func TestRender_RecycleJoinsLines(t *testing.T) {
	got, err := Render(t.Context(), "n={x}", EnvOf(map[string]any{"x": []int{1, 2}}),
		WithMode(ModeRecycle),
		WithSeparator("\n"),
	)
	if err != nil {
		t.Fatal(err)
	}

	if got != "n=1\nn=2" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderLines_JoinModeIsOneLine(t *testing.T) {
	got, err := New().RenderLines(t.Context(), "a\nb", nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 || got[0] != "a\nb" {
		t.Errorf("RenderLines = %q", got)
	}
}

func TestEngine_ConcurrentRenders(t *testing.T) {
	e := New()
	errs := make(chan error, 8)

	for i := range 8 {
		go func() {
			env := EnvOf(map[string]any{"i": i})

			got, err := e.Render(t.Context(), "{i * 2}", env)
			if err == nil && got != strconv.Itoa(i*2) {
				err = errors.New("unexpected output " + got)
			}

			errs <- err
		}()
	}

	for range 8 {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("Recycle") != ModeRecycle || ParseMode("join") != ModeJoin ||
		ParseMode("bogus") != ModeJoin {
		t.Error("ParseMode mismatch")
	}

	if ParseRecyclePolicy("STRICT") != RecycleStrict ||
		ParseRecyclePolicy("") != RecycleCycle {
		t.Error("ParseRecyclePolicy mismatch")
	}

	if ModeRecycle.String() != "recycle" || RecycleStrict.String() != "strict" {
		t.Error("mode names mismatch")
	}
}

func TestTrimLiteral(t *testing.T) {
	tests := []struct {
		in          string
		first, last bool
		want        string
	}{
		{"  a  ", false, false, "  a  "},
		{"  a  ", true, false, "a  "},
		{"  a  ", false, true, "  a"},
		{"\n  a\n  ", true, true, "a"},
		{" x \n  y \n z", false, false, " x\ny\nz"},
	}

	for _, tt := range tests {
		if got := trimLiteral(tt.in, tt.first, tt.last); got != tt.want {
			t.Errorf("trimLiteral(%q, %v, %v) = %q, want %q",
				tt.in, tt.first, tt.last, got, tt.want)
		}
	}
}
