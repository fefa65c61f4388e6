package cmd

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/glue/interp"
	"github.com/ardnew/glue/log"
)

// Scan prints the segments of a template without evaluating any code.
type Scan struct {
	Template []string `arg:"" help:"Template text; words are joined by spaces"          optional:""`
	File     string   `       help:"Template file or '-' for stdin when no text is given" default:"-"            short:"f"`
	Open     string   `       help:"Opening marker of expression blocks"                   default:"${openDelim}"`
	Close    string   `       help:"Closing marker of expression blocks"                   default:"${closeDelim}"`
	Nested   bool     `       help:"Allow expression blocks inside expression blocks"`
	Format   string   `       help:"Output format"                                         default:"yaml"         enum:"yaml,json" short:"o"`
}

// Run executes the scan command.
func (s *Scan) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.With(slog.String("command", "scan"))

	template, err := readTemplate(ctx, s.Template, s.File)
	if err != nil {
		return err
	}

	segs, err := interp.Scanner{Open: s.Open, Close: s.Close, Nested: s.Nested}.
		Scan(template)
	if err != nil {
		return ErrScan.Wrap(err)
	}

	logger.DebugContext(ctx, "scanned", slog.Int("segments", len(segs)))

	out := streamsFrom(ctx).out

	if s.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(segs); err != nil {
			return ErrMarshal.With(slog.String("format", s.Format)).Wrap(err)
		}

		return nil
	}

	data, err := yaml.Marshal(segs)
	if err != nil {
		return ErrMarshal.With(slog.String("format", s.Format)).Wrap(err)
	}

	_, err = out.Write(data)

	return err
}
