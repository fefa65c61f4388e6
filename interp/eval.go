package interp

import (
	"log/slog"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/glue/log"
)

// Evaluator evaluates the code of an expression block against an
// environment. Failures are reported as *EvalError.
type Evaluator interface {
	Evaluate(code string, env *Env) (any, error)
}

// EvaluatorFunc adapts an ordinary function to the [Evaluator] interface.
type EvaluatorFunc func(code string, env *Env) (any, error)

// Evaluate calls f(code, env).
func (f EvaluatorFunc) Evaluate(code string, env *Env) (any, error) {
	return f(code, env)
}

// assignPattern matches "name <- expr". The arrow must be written without
// inner whitespace, so "x < -1" remains a comparison.
var assignPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*<-([\s\S]*)$`)

// ExprEvaluator evaluates code as an expr-lang expression.
//
// Compilation is strict: a name that is not bound in the environment is a
// compile error. Compiled programs are cached by the code and the types of
// the names it references, so an ExprEvaluator may be shared by concurrent
// renders as long as they do not share an *Env.
type ExprEvaluator struct {
	cache   sync.Map // uint64 → *vm.Program
	options []expr.Option
	logger  log.Logger
}

// EvalOption configures an [ExprEvaluator].
type EvalOption func(*ExprEvaluator)

// WithExprOptions appends expr-lang compile options, for example
// expr.Function or expr.Operator.
func WithExprOptions(opts ...expr.Option) EvalOption {
	return func(ev *ExprEvaluator) {
		ev.options = append(ev.options, opts...)
	}
}

// WithEvalLogger sets the logger used for compile and run tracing.
func WithEvalLogger(logger log.Logger) EvalOption {
	return func(ev *ExprEvaluator) {
		ev.logger = logger
	}
}

// NewExprEvaluator returns an evaluator backed by expr-lang.
func NewExprEvaluator(opts ...EvalOption) *ExprEvaluator {
	ev := &ExprEvaluator{}

	for _, opt := range opts {
		opt(ev)
	}

	return ev
}

// Evaluate compiles and runs code with the bindings visible in env.
//
// The form "name <- expr" evaluates expr, assigns the result to name with
// [Env.Assign], and returns it.
func (ev *ExprEvaluator) Evaluate(code string, env *Env) (any, error) {
	if m := assignPattern.FindStringSubmatch(code); m != nil {
		if env == nil {
			return nil, &EvalError{Code: code, Err: ErrUnboundEnv}
		}

		value, err := ev.Evaluate(m[2], env)
		if err != nil {
			return nil, err
		}

		env.Assign(m[1], value)

		ev.logger.Trace("assign",
			slog.String("name", m[1]),
			slog.String("type", typeName(value)),
		)

		return value, nil
	}

	if strings.TrimSpace(code) == "" {
		return nil, &EvalError{Code: code, Err: ErrEmptyExpression}
	}

	vars := env.Map()

	program, err := ev.compile(code, vars)
	if err != nil {
		return nil, &EvalError{Code: code, Err: err}
	}

	result, err := vm.Run(program, vars)
	if err != nil {
		return nil, &EvalError{Code: code, Err: err}
	}

	ev.logger.Trace("evaluate",
		slog.String("code", code),
		slog.String("type", typeName(result)),
	)

	return result, nil
}

func (ev *ExprEvaluator) compile(
	code string,
	vars map[string]any,
) (*vm.Program, error) {
	tree, err := parser.Parse(code)
	if err != nil {
		return nil, err
	}

	key := programKey(code, referencedNames(tree), vars)

	if cached, ok := ev.cache.Load(key); ok {
		if program, ok := cached.(*vm.Program); ok {
			ev.logger.Trace("compile",
				slog.String("code", code),
				slog.Bool("cache_hit", true),
			)

			return program, nil
		}
	}

	opts := make([]expr.Option, 0, len(ev.options)+1)
	opts = append(opts, expr.Env(vars))
	opts = append(opts, ev.options...)

	program, err := expr.Compile(code, opts...)
	if err != nil {
		return nil, err
	}

	ev.cache.Store(key, program)

	ev.logger.Trace("compile",
		slog.String("code", code),
		slog.Bool("cache_hit", false),
	)

	return program, nil
}

// identCollector gathers the identifiers referenced by an expression.
type identCollector struct {
	names map[string]struct{}
}

// Visit implements ast.Visitor.
func (c *identCollector) Visit(node *ast.Node) {
	if ident, ok := (*node).(*ast.IdentifierNode); ok {
		c.names[ident.Value] = struct{}{}
	}
}

// referencedNames returns the sorted identifiers referenced by tree.
func referencedNames(tree *parser.Tree) []string {
	c := identCollector{names: make(map[string]struct{})}

	ast.Walk(&tree.Node, &c)

	names := make([]string, 0, len(c.names))
	for name := range c.names {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// programKey hashes code with the types bound to the names it references.
// Two environments binding those names to the same types share a program.
func programKey(code string, names []string, vars map[string]any) uint64 {
	var b strings.Builder

	b.WriteString(code)

	for _, name := range names {
		b.WriteByte(0)
		b.WriteString(name)
		b.WriteByte(':')

		if v, ok := vars[name]; ok {
			b.WriteString(typeName(v))
		} else {
			b.WriteString("-")
		}
	}

	return xxh3.HashString(b.String())
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}

// ParseValue converts a command-line style argument into an int64, float64,
// bool ("true" or "false" in any case), or string, in that order of
// preference.
func ParseValue(s string) any {
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	switch {
	case strings.EqualFold(s, "true"):
		return true
	case strings.EqualFold(s, "false"):
		return false
	}

	return s
}
