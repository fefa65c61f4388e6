package interp

import (
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Default delimiters of an expression block.
const (
	DefaultOpen  = "{"
	DefaultClose = "}"
)

// Kind identifies the type of a [Segment].
type Kind int

const (
	// KindLiteral is template text copied to the output.
	KindLiteral Kind = iota

	// KindExpression is the code of a delimited expression block.
	KindExpression
)

// String returns a string representation of the segment kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Span is a half-open range of byte offsets into a template.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// String formats the span as "[start:end]".
func (s Span) String() string {
	return "[" + strconv.Itoa(s.Start) + ":" + strconv.Itoa(s.End) + "]"
}

// Segment is one piece of a scanned template.
//
// For literals, Text has doubled delimiters collapsed to single ones. For
// expressions, Text is the code between the markers, untrimmed, with
// escaped delimiters restored. Span always covers the raw source of the
// segment, including the markers of an expression block.
type Segment struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`
	Span Span   `json:"span" yaml:"span"`
}

// Source returns the raw text of the segment in template.
func (s Segment) Source(template string) string {
	return template[s.Span.Start:s.Span.End]
}

// Scanner splits templates into segments. The zero value is not usable;
// Open and Close must be non-empty.
//
// A Scanner holds configuration only. Each call to [Scanner.Segments] keeps
// its own cursor, so one Scanner may be used reentrantly.
type Scanner struct {
	Open   string
	Close  string
	Nested bool
}

// Scan splits template using the given delimiters without nesting support.
func Scan(template, open, close string) ([]Segment, error) {
	return Scanner{Open: open, Close: close}.Scan(template)
}

// Scan collects all segments of template. It returns the first error and
// no segments if the template is malformed.
func (s Scanner) Scan(template string) ([]Segment, error) {
	var segs []Segment

	for seg, err := range s.Segments(template) {
		if err != nil {
			return nil, err
		}

		segs = append(segs, seg)
	}

	return segs, nil
}

// Segments returns a lazy sequence of the segments of template in document
// order. The sequence stops after yielding the first error.
func (s Scanner) Segments(template string) iter.Seq2[Segment, error] {
	return func(yield func(Segment, error) bool) {
		if s.Open == "" || s.Close == "" {
			yield(Segment{}, ErrInvalidDelimiter.With(
				slog.String("open", s.Open),
				slog.String("close", s.Close),
			))

			return
		}

		c := cursor{Scanner: s, src: template}

		var lit strings.Builder

		start := 0

		flush := func() bool {
			if c.pos == start {
				return true
			}

			seg := Segment{
				Kind: KindLiteral,
				Text: lit.String(),
				Span: Span{Start: start, End: c.pos},
			}

			lit.Reset()

			return yield(seg, nil)
		}

		for c.pos < len(c.src) {
			switch {
			case c.doubled(s.Open):
				lit.WriteString(s.Open)
				c.pos += 2 * len(s.Open)

			case c.doubled(s.Close):
				lit.WriteString(s.Close)
				c.pos += 2 * len(s.Close)

			case c.at(s.Open):
				if !flush() {
					return
				}

				seg, err := c.block()
				if err != nil {
					yield(Segment{}, err)

					return
				}

				if !yield(seg, nil) {
					return
				}

				start = c.pos

			default:
				lit.WriteString(c.next())
			}
		}

		flush()
	}
}

// cursor is the per-call scanning state.
type cursor struct {
	Scanner

	src string
	pos int
}

func (c *cursor) at(marker string) bool {
	return strings.HasPrefix(c.src[c.pos:], marker)
}

func (c *cursor) doubled(marker string) bool {
	rest := c.src[c.pos:]

	return strings.HasPrefix(rest, marker) &&
		strings.HasPrefix(rest[len(marker):], marker)
}

// next consumes and returns the rune at the cursor.
func (c *cursor) next() string {
	_, size := utf8.DecodeRuneInString(c.src[c.pos:])
	s := c.src[c.pos : c.pos+size]
	c.pos += size

	return s
}

// block scans an expression block starting at the open marker under the
// cursor and leaves the cursor just past its close marker.
func (c *cursor) block() (Segment, error) {
	start := c.pos
	c.pos += len(c.Open)

	var (
		code  strings.Builder
		depth int
	)

	for c.pos < len(c.src) {
		switch {
		case !c.Nested && c.doubled(c.Close):
			code.WriteString(c.Close)
			c.pos += 2 * len(c.Close)

		case c.at(c.Close):
			c.pos += len(c.Close)

			if depth == 0 {
				return Segment{
					Kind: KindExpression,
					Text: code.String(),
					Span: Span{Start: start, End: c.pos},
				}, nil
			}

			depth--

			code.WriteString(c.Close)

		case !c.Nested && c.doubled(c.Open):
			code.WriteString(c.Open)
			c.pos += 2 * len(c.Open)

		case c.at(c.Open):
			if !c.Nested {
				return Segment{}, newScanError(ErrNesting, c.src, c.pos)
			}

			depth++

			code.WriteString(c.Open)
			c.pos += len(c.Open)

		case c.Nested && isQuote(c.src[c.pos]):
			code.WriteString(c.quoted())

		default:
			code.WriteString(c.next())
		}
	}

	return Segment{}, newScanError(ErrUnmatchedDelimiter, c.src, start)
}

func isQuote(b byte) bool { return b == '"' || b == '\'' || b == '`' }

// quoted consumes a string literal starting at the cursor. Backslash escapes
// apply inside double and single quotes. An unterminated literal consumes
// the rest of the input.
func (c *cursor) quoted() string {
	start := c.pos
	quote := c.src[c.pos]
	c.pos++

	for c.pos < len(c.src) {
		switch b := c.src[c.pos]; {
		case b == '\\' && quote != '`':
			c.pos = min(c.pos+2, len(c.src))

		case b == quote:
			c.pos++

			return c.src[start:c.pos]

		default:
			c.pos++
		}
	}

	return c.src[start:]
}
