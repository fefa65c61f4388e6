package interp

import (
	"context"
	"log/slog"
	"strings"
)

// Engine renders templates. It is immutable after [New] and safe for
// concurrent use, provided concurrent renders do not share an *Env.
type Engine struct {
	cfg         Config
	transformer Transformer
}

// New returns an Engine configured by opts applied over [DefaultConfig].
func New(opts ...Option) *Engine {
	cfg := DefaultConfig()

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Evaluator == nil {
		cfg.Evaluator = NewExprEvaluator(WithEvalLogger(cfg.Logger))
	}

	t := cfg.Transformer
	if t == nil {
		t = Direct(cfg.Evaluator)
	}

	return &Engine{cfg: cfg, transformer: t}
}

// Render interpolates template against env with a new Engine configured by
// opts.
func Render(
	ctx context.Context,
	template string,
	env *Env,
	opts ...Option,
) (string, error) {
	return New(opts...).Render(ctx, template, env)
}

// Evaluator returns the evaluator behind the default transformer. Callers
// compose transformer factories on top of it.
func (e *Engine) Evaluator() Evaluator { return e.cfg.Evaluator }

// Config returns a copy of the engine's settings.
func (e *Engine) Config() Config { return e.cfg }

// Scanner returns a scanner using the engine's delimiters and nesting mode.
func (e *Engine) Scanner() Scanner {
	return Scanner{Open: e.cfg.Open, Close: e.cfg.Close, Nested: e.cfg.Nested}
}

// Scan splits template into segments using the engine's scanner.
func (e *Engine) Scan(template string) ([]Segment, error) {
	return e.Scanner().Scan(template)
}

// Render interpolates template against env and returns the result.
//
// In [ModeRecycle] the output lines are joined with the separator.
func (e *Engine) Render(
	ctx context.Context,
	template string,
	env *Env,
) (string, error) {
	if e.cfg.Mode == ModeRecycle {
		lines, err := e.RenderLines(ctx, template, env)
		if err != nil {
			return "", err
		}

		return strings.Join(lines, e.cfg.Separator), nil
	}

	cols, err := e.columns(ctx, template, env)
	if err != nil {
		return "", err
	}

	var out strings.Builder

	for _, col := range cols {
		out.WriteString(strings.Join(col, e.cfg.Separator))
	}

	return out.String(), nil
}

// RenderLines interpolates template against env and returns the output
// lines. In [ModeJoin] the result is always a single line.
func (e *Engine) RenderLines(
	ctx context.Context,
	template string,
	env *Env,
) ([]string, error) {
	if e.cfg.Mode != ModeRecycle {
		s, err := e.Render(ctx, template, env)
		if err != nil {
			return nil, err
		}

		return []string{s}, nil
	}

	cols, err := e.columns(ctx, template, env)
	if err != nil {
		return nil, err
	}

	return recycle(cols, e.cfg.Recycle)
}

// columns scans the whole template, then transforms every expression in
// document order. Each literal contributes a column of one token.
func (e *Engine) columns(
	ctx context.Context,
	template string,
	env *Env,
) ([][]string, error) {
	segs, err := e.Scan(template)
	if err != nil {
		e.cfg.Logger.DebugContext(ctx, "scan failed", slog.Any("error", err))

		return nil, err
	}

	e.cfg.Logger.TraceContext(ctx, "scanned",
		slog.Int("template_bytes", len(template)),
		slog.Int("segments", len(segs)),
	)

	cols := make([][]string, 0, len(segs))

	for i, seg := range segs {
		if seg.Kind == KindLiteral {
			text := seg.Text
			if e.cfg.Trim {
				text = trimLiteral(text, i == 0, i == len(segs)-1)
			}

			cols = append(cols, []string{text})

			continue
		}

		value, err := e.transformer.Transform(seg.Text, env)
		if err != nil {
			rerr := &RenderError{Span: seg.Span, Code: seg.Text, Err: err}

			e.cfg.Logger.DebugContext(ctx, "transform failed", slog.Any("error", rerr))

			return nil, rerr
		}

		tokens := Tokens(value, e.cfg.NA)

		e.cfg.Logger.TraceContext(ctx, "transformed",
			slog.String("span", seg.Span.String()),
			slog.Int("tokens", len(tokens)),
		)

		cols = append(cols, tokens)
	}

	return cols, nil
}

// recycle pairs the columns positionally into lines. A column of length one
// is repeated on every line; an empty column produces no lines.
func recycle(cols [][]string, policy RecyclePolicy) ([]string, error) {
	n := 1

	for _, col := range cols {
		switch {
		case len(col) == 0:
			return []string{}, nil
		case len(col) > n:
			n = len(col)
		}
	}

	if policy == RecycleStrict {
		for _, col := range cols {
			if len(col) != 1 && len(col) != n {
				return nil, ErrLengthMismatch.With(
					slog.Int("length", len(col)),
					slog.Int("expected", n),
				)
			}
		}
	}

	lines := make([]string, n)

	var line strings.Builder

	for i := range lines {
		line.Reset()

		for _, col := range cols {
			line.WriteString(col[i%len(col)])
		}

		lines[i] = line.String()
	}

	return lines, nil
}

// trimLiteral removes indentation and trailing blanks around the newlines of
// a literal. The first literal of a template also loses its leading blanks
// and one leading newline; the last loses its trailing blanks and one
// trailing newline.
func trimLiteral(s string, first, last bool) string {
	const blanks = " \t"

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		if i > 0 || first {
			line = strings.TrimLeft(line, blanks)
		}

		if i < len(lines)-1 || last {
			line = strings.TrimRight(line, blanks)
		}

		lines[i] = line
	}

	if first && len(lines) > 1 && lines[0] == "" {
		lines = lines[1:]
	}

	if last && len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}
