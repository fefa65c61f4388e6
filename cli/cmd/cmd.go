package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type streamsKey struct{}

type streams struct {
	in  io.Reader
	out io.Writer
}

// WithStreams returns a new context.Context in which commands read standard
// input from in and write results to out.
func WithStreams(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, streams{in: in, out: out})
}

// streamsFrom returns the streams stored by [WithStreams], defaulting to
// os.Stdin and os.Stdout.
func streamsFrom(ctx context.Context) streams {
	s, _ := ctx.Value(streamsKey{}).(streams)

	if s.in == nil {
		s.in = os.Stdin
	}

	if s.out == nil {
		s.out = os.Stdout
	}

	return s
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readTemplate returns the words given on the command line joined by
// spaces, or else the contents of path with one trailing line ending
// removed.
func readTemplate(ctx context.Context, args []string, path string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	var r io.Reader

	if path == stdinSource || path == "" {
		path = stdinSource
		r = streamsFrom(ctx).in
	} else {
		file, err := os.Open(path)
		if err != nil {
			return "", ErrReadTemplate.With(fileAttr(path)).Wrap(err)
		}
		defer file.Close()

		r = file
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadTemplate.With(fileAttr(path)).Wrap(err)
	}

	s := strings.TrimSuffix(string(data), "\n")

	return strings.TrimSuffix(s, "\r"), nil
}
