package interp

import (
	"errors"
	"testing"

	"github.com/expr-lang/expr"
)

func cacheLen(ev *ExprEvaluator) int {
	var n int

	ev.cache.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

func TestExprEvaluator_Evaluate(t *testing.T) {
	env := EnvOf(map[string]any{
		"x":     5,
		"name":  "glue",
		"items": []string{"a", "b"},
	})

	tests := []struct {
		code string
		want any
	}{
		{"x + 1", 6},
		{" x * 2 ", 10},
		{`upper(name)`, "GLUE"},
		{"len(items)", 2},
		{"x < -1", false},
		{"nil", nil},
	}

	ev := NewExprEvaluator()

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ev.Evaluate(tt.code, env)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.code, err)
			}

			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v (%T), want %v (%T)",
					tt.code, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestExprEvaluator_Assignment(t *testing.T) {
	ev := NewExprEvaluator()
	root := NewEnv(nil).Set("x", 1)
	child := root.Child()

	got, err := ev.Evaluate("x <- x + 41", child)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if got != 42 {
		t.Errorf("assignment returned %v, want 42", got)
	}

	if v, _ := root.Get("x"); v != 42 {
		t.Errorf("x = %v in defining scope, want 42", v)
	}

	if _, err := ev.Evaluate("y<-1", nil); !errors.Is(err, ErrUnboundEnv) {
		t.Errorf("assignment without env error = %v, want ErrUnboundEnv", err)
	}
}

func TestExprEvaluator_Errors(t *testing.T) {
	ev := NewExprEvaluator()
	env := EnvOf(map[string]any{"x": 1})

	tests := []struct {
		name string
		code string
		is   error
	}{
		{"undefined variable", "undefined_var", ErrEvaluation},
		{"syntax error", "x +", ErrEvaluation},
		{"conversion error", `int("abc")`, ErrEvaluation},
		{"empty", "   ", ErrEmptyExpression},
		{"empty assignment", "z <- ", ErrEmptyExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ev.Evaluate(tt.code, env)
			if !errors.Is(err, tt.is) {
				t.Fatalf("Evaluate(%q) error = %v, want %v", tt.code, err, tt.is)
			}

			var ee *EvalError
			if !errors.As(err, &ee) {
				t.Fatalf("error %T is not *EvalError", err)
			}

			if !errors.Is(err, ErrEvaluation) {
				t.Errorf("EvalError does not match ErrEvaluation")
			}
		})
	}
}

func TestExprEvaluator_CachesByReferencedTypes(t *testing.T) {
	ev := NewExprEvaluator()

	for range 3 {
		if _, err := ev.Evaluate("x + 1", EnvOf(map[string]any{"x": 1, "unused": "a"})); err != nil {
			t.Fatal(err)
		}
	}

	if n := cacheLen(ev); n != 1 {
		t.Fatalf("cache holds %d programs, want 1", n)
	}

	if _, err := ev.Evaluate("x + 1", EnvOf(map[string]any{"x": 1, "unused": 2})); err != nil {
		t.Fatal(err)
	}

	if n := cacheLen(ev); n != 1 {
		t.Errorf("unreferenced binding changed the cache key: %d programs", n)
	}

	got, err := ev.Evaluate("x + 1", EnvOf(map[string]any{"x": 1.5}))
	if err != nil {
		t.Fatal(err)
	}

	if got != 2.5 {
		t.Errorf("Evaluate with float x = %v, want 2.5", got)
	}

	if n := cacheLen(ev); n != 2 {
		t.Errorf("cache holds %d programs, want 2", n)
	}
}

func TestExprEvaluator_WithExprOptions(t *testing.T) {
	ev := NewExprEvaluator(WithExprOptions(
		expr.Function("double", func(params ...any) (any, error) {
			return params[0].(int) * 2, nil
		}, new(func(int) int)),
	))

	got, err := ev.Evaluate("double(21)", NewEnv(nil))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if got != 42 {
		t.Errorf("double(21) = %v, want 42", got)
	}
}

func TestEvaluatorFunc(t *testing.T) {
	var ev Evaluator = EvaluatorFunc(func(code string, _ *Env) (any, error) {
		return "<" + code + ">", nil
	})

	got, _ := ev.Evaluate("x", nil)
	if got != "<x>" {
		t.Errorf("Evaluate = %v", got)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"0x10", int64(16)},
		{"1.5", 1.5},
		{"1e3", 1000.0},
		{"true", true},
		{"FALSE", false},
		{"1", int64(1)},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ParseValue(tt.in); got != tt.want {
			t.Errorf("ParseValue(%q) = %v (%T), want %v (%T)",
				tt.in, got, got, tt.want, tt.want)
		}
	}
}
