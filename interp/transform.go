package interp

import (
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"

	"github.com/ardnew/glue/log"
)

// Transformer receives the code of each expression block and the render
// environment and returns the value to substitute.
//
// Transformers run serially in document order. They may close over their
// own configuration but must not depend on the order in which the engine
// calls them beyond that.
type Transformer interface {
	Transform(code string, env *Env) (any, error)
}

// TransformerFunc adapts an ordinary function to the [Transformer]
// interface.
type TransformerFunc func(code string, env *Env) (any, error)

// Transform calls f(code, env).
func (f TransformerFunc) Transform(code string, env *Env) (any, error) {
	return f(code, env)
}

// Direct returns the identity transformer: code is evaluated with ev and
// the result returned unchanged.
func Direct(ev Evaluator) Transformer {
	return TransformerFunc(ev.Evaluate)
}

// DefaultCollapsePattern marks code whose result should be collapsed.
var DefaultCollapsePattern = regexp.MustCompile(`[*]$`)

// CollapseConfig configures a transformer that joins multi-valued results
// into one token.
type CollapseConfig struct {
	// Pattern selects the code to collapse; the match is removed before
	// evaluation. Nil means [DefaultCollapsePattern].
	Pattern *regexp.Regexp

	// Separator is placed between tokens.
	Separator string

	// Last, if non-empty, replaces Separator between the final two tokens.
	Last string

	// NA is the text of nil elements. Empty means [DefaultNA].
	NA string
}

// DefaultCollapseConfig collapses code ending in "*" with ", ".
func DefaultCollapseConfig() CollapseConfig {
	return CollapseConfig{
		Pattern:   DefaultCollapsePattern,
		Separator: ", ",
		NA:        DefaultNA,
	}
}

// Transformer returns a transformer that collapses the results of matching
// code and delegates everything else to next unchanged.
func (c CollapseConfig) Transformer(next Transformer) Transformer {
	pattern := c.Pattern
	if pattern == nil {
		pattern = DefaultCollapsePattern
	}

	na := c.NA
	if na == "" {
		na = DefaultNA
	}

	return TransformerFunc(func(code string, env *Env) (any, error) {
		loc := pattern.FindStringIndex(code)
		if loc == nil {
			return next.Transform(code, env)
		}

		value, err := next.Transform(code[:loc[0]]+code[loc[1]:], env)
		if err != nil {
			return nil, err
		}

		return collapse(Tokens(value, na), c.Separator, c.Last), nil
	})
}

func collapse(tokens []string, sep, last string) string {
	n := len(tokens)
	if n < 2 || last == "" {
		return strings.Join(tokens, sep)
	}

	return strings.Join(tokens[:n-1], sep) + last + tokens[n-1]
}

type fallbackKind int

const (
	fallbackValue fallbackKind = iota
	fallbackComputation
)

// Fallback is the value a safe transformer substitutes for a failed
// expression. It is either a constant ([FallbackValue]) or code evaluated
// when the failure occurs ([FallbackComputation]). The zero Fallback is the
// constant nil, which renders as the NA text.
type Fallback struct {
	kind  fallbackKind
	value any
	code  string
}

// FallbackValue returns a Fallback that substitutes v.
func FallbackValue(v any) Fallback {
	return Fallback{kind: fallbackValue, value: v}
}

// FallbackComputation returns a Fallback that evaluates code in a child
// scope of the render environment. The scope binds "code" to the source of
// the failed expression and "err" to its error message.
func FallbackComputation(code string) Fallback {
	return Fallback{kind: fallbackComputation, code: code}
}

// IsComputation reports whether f is evaluated on failure.
func (f Fallback) IsComputation() bool { return f.kind == fallbackComputation }

func (f Fallback) resolve(
	next Transformer,
	code string,
	env *Env,
	cause error,
) (any, error) {
	if f.kind == fallbackValue {
		return f.value, nil
	}

	scope := env.Child().
		Set("code", code).
		Set("err", cause.Error())

	return next.Transform(f.code, scope)
}

// SafelyConfig configures a transformer that recovers from failures.
type SafelyConfig struct {
	Fallback Fallback
	Logger   log.Logger
}

// Transformer returns a transformer that delegates to next and replaces any
// error with the configured fallback. An error raised while computing a
// [FallbackComputation] is returned as is.
func (c SafelyConfig) Transformer(next Transformer) Transformer {
	return TransformerFunc(func(code string, env *Env) (any, error) {
		value, err := next.Transform(code, env)
		if err == nil {
			return value, nil
		}

		c.Logger.Debug("recovered expression",
			slog.String("code", code),
			slog.Any("error", err),
			slog.Bool("computed", c.Fallback.IsComputation()),
		)

		return c.Fallback.resolve(next, code, env, err)
	})
}

// DefaultSprintfPattern matches a trailing format spec such as ":.2f" or
// ":08d". The first submatch is the spec without the colon.
var DefaultSprintfPattern = regexp.MustCompile(
	`:([-+#0]*[0-9]*(?:\.[0-9]+)?[vtbcdoOqxXUeEfFgGsp])$`,
)

// SprintfConfig configures a transformer that formats results with
// [fmt.Sprintf] verbs given at the end of the code.
type SprintfConfig struct {
	// Pattern locates the spec; its first submatch is the verb without the
	// "%". Nil means [DefaultSprintfPattern].
	Pattern *regexp.Regexp
}

// Transformer returns a transformer that strips the spec from matching
// code, evaluates the rest with next, and formats each element of the
// result. Code without a spec is delegated to next unchanged.
func (c SprintfConfig) Transformer(next Transformer) Transformer {
	pattern := c.Pattern
	if pattern == nil {
		pattern = DefaultSprintfPattern
	}

	return TransformerFunc(func(code string, env *Env) (any, error) {
		m := pattern.FindStringSubmatchIndex(code)
		if m == nil || len(m) < 4 || m[2] < 0 {
			return next.Transform(code, env)
		}

		format := "%" + code[m[2]:m[3]]

		value, err := next.Transform(code[:m[0]], env)
		if err != nil {
			return nil, err
		}

		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			if _, isBytes := value.([]byte); !isBytes {
				out := make([]any, rv.Len())
				for i := range out {
					out[i] = sprintf(format, rv.Index(i).Interface())
				}

				return out, nil
			}
		}

		return sprintf(format, value), nil
	})
}

// sprintf formats value with format. Missing values stay nil so they render
// as the NA text.
func sprintf(format string, value any) any {
	if value == nil || isNilPointer(value) {
		return nil
	}

	return fmt.Sprintf(format, value)
}
