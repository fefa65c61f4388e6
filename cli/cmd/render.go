package cmd

import (
	"bufio"
	"context"
	"log/slog"

	"github.com/ardnew/glue/log"
)

// Render interpolates a template and prints the result.
type Render struct {
	EngineConfig `embed:""`

	Template []string `arg:"" help:"Template text; words are joined by spaces"      optional:""`
	File     string   `       help:"Template file or '-' for stdin when no text is given" default:"-" short:"f"`
}

// Run executes the render command. Each output line is followed by a
// newline; join mode produces exactly one line.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.With(slog.String("command", "render"))

	template, err := readTemplate(ctx, r.Template, r.File)
	if err != nil {
		return err
	}

	env, err := r.env(logger)
	if err != nil {
		return err
	}

	lines, err := r.engine(logger).RenderLines(ctx, template, env)
	if err != nil {
		return ErrRender.Wrap(err)
	}

	w := bufio.NewWriter(streamsFrom(ctx).out)

	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	logger.DebugContext(ctx, "rendered",
		slog.Int("template_bytes", len(template)),
		slog.Int("lines", len(lines)),
	)

	return w.Flush()
}
