// Package cli contains the command line interface for glue.
//
// # Usage
//
// Rendering is the default command, so a template can follow the program
// name directly:
//
//	glue 'Hello {user}, you are on {platform.OS}'
//	glue -v n=3 '{1..n}' --sep ' '
//	glue render --mode recycle -f report.tmpl --vars data.yaml
//
// The scan command prints the segments of a template without running any
// code, and repl starts an interactive session.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (see [pkg.ConfigDir]). Keys name flags; nested mappings join
// with "-" and "_" may stand in for "-". The init command writes the
// current global flag values there.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o glue .
//
// It adds --pprof-mode and --pprof-dir (default: a pprof directory in the
// user cache directory).
package cli
