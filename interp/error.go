package interp

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrUnmatchedDelimiter = NewError("unmatched delimiter")
	ErrNesting            = NewError("nested expression block not supported")
	ErrInvalidDelimiter   = NewError("invalid delimiter")
	ErrEvaluation         = NewError("expression evaluation failed")
	ErrEmptyExpression    = NewError("empty expression")
	ErrUnboundEnv         = NewError("no environment to assign into")
	ErrLengthMismatch     = NewError("incompatible expression lengths")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] still
// match that sentinel with [errors.Is].
type Error struct {
	kind  *Error
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e == t || (e.kind != nil && e.kind == t.kind)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ScanError reports a malformed template. Err is [ErrUnmatchedDelimiter] or
// [ErrNesting]; Pos is the byte offset of the offending marker.
type ScanError struct {
	Err      *Error
	Template string
	Pos      int
	Line     int
	Column   int
}

func newScanError(kind *Error, template string, pos int) *ScanError {
	line, col := lineColumn(template, pos)

	return &ScanError{
		Err:      kind,
		Template: template,
		Pos:      pos,
		Line:     line,
		Column:   col,
	}
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	var buf strings.Builder

	buf.WriteString(e.Err.Error())
	buf.WriteString(" at line ")
	buf.WriteString(strconv.Itoa(e.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Column))

	return buf.String()
}

// Unwrap returns the sentinel describing the kind of scan failure.
func (e *ScanError) Unwrap() error { return e.Err }

// Snippet returns the offending template line followed by a caret marking
// the error column.
func (e *ScanError) Snippet() string {
	lines := strings.Split(e.Template, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	prefix := "  " + strconv.Itoa(e.Line) + " | "

	var src strings.Builder

	src.WriteString(prefix)
	src.WriteString(lines[e.Line-1])
	src.WriteRune('\n')
	src.WriteString(strings.Repeat(" ", len(prefix)+max(e.Column-1, 0)))
	src.WriteString("^\n")

	return src.String()
}

// LogValue implements slog.LogValuer.
func (e *ScanError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Err.Error()),
		slog.Int("offset", e.Pos),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
	)
}

// lineColumn converts a byte offset into 1-based line and column numbers.
// Columns count runes.
func lineColumn(s string, pos int) (line, col int) {
	line, col = 1, 1

	for i, r := range s {
		if i >= pos {
			break
		}

		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return line, col
}

// EvalError is returned by an [Evaluator] when code fails to compile or run.
// It matches [ErrEvaluation] with [errors.Is].
type EvalError struct {
	Code string
	Err  error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return ErrEvaluation.Error() + ": " + strconv.Quote(e.Code) + ": " +
		e.Err.Error()
}

// Unwrap returns the underlying compile or runtime failure.
func (e *EvalError) Unwrap() error { return e.Err }

// Is reports whether target is [ErrEvaluation].
func (e *EvalError) Is(target error) bool { return target == ErrEvaluation }

// LogValue implements slog.LogValuer.
func (e *EvalError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrEvaluation.Error()),
		slog.String("code", e.Code),
		slog.String("cause", e.Err.Error()),
	)
}

// RenderError tags a transformer failure with the span of the expression
// block that produced it. The original error is available via Unwrap.
type RenderError struct {
	Span Span
	Code string
	Err  error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return "render " + e.Span.String() + ": " + e.Err.Error()
}

// Unwrap returns the transformer's error unchanged.
func (e *RenderError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *RenderError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("start", e.Span.Start),
		slog.Int("end", e.Span.End),
		slog.String("code", e.Code),
		slog.Any("cause", e.Err),
	)
}
