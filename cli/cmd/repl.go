package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/glue/cli/cmd/repl"
	"github.com/ardnew/glue/log"
)

// Repl renders templates interactively.
type Repl struct {
	EngineConfig `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	logger := log.With(slog.String("command", "repl"))

	env, err := r.env(logger)
	if err != nil {
		return err
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, r.engine(logger), env, cacheDir, logger)
}
