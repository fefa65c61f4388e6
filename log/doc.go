// Package log provides a structured logger built on [log/slog] with an
// additional trace level and colorized output.
//
// A [Logger] is an immutable value configured once with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//	)
//	logger.Info("rendered", slog.Int("bytes", n))
//
// [Logger.Wrap] derives a logger with changed options and [Logger.With] one
// that adds attributes to every message. The zero Logger discards
// everything, so it is a valid default for optional logging fields.
//
// The package-level functions ([Info], [Debug], ...) write through a default
// logger that [Config] reconfigures.
//
// Each level has a context-aware variant. Variants without a context use
// [DefaultContextProvider].
package log
