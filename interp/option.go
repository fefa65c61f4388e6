package interp

import (
	"strings"

	"github.com/ardnew/glue/log"
)

// Mode selects how multi-valued expression results are rendered.
type Mode int

const (
	// ModeJoin joins the tokens of each expression in place with the
	// configured separator, producing a single output string.
	ModeJoin Mode = iota

	// ModeRecycle renders one output line per token index, pairing the
	// tokens of every expression positionally.
	ModeRecycle
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeJoin:
		return "join"
	case ModeRecycle:
		return "recycle"
	default:
		return "unknown"
	}
}

// ParseMode parses "join" or "recycle", defaulting to [ModeJoin].
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "recycle") {
		return ModeRecycle
	}

	return ModeJoin
}

// RecyclePolicy decides how [ModeRecycle] pairs expressions whose results
// have different lengths, neither of which is one.
type RecyclePolicy int

const (
	// RecycleCycle repeats shorter results cyclically to the longest length.
	RecycleCycle RecyclePolicy = iota

	// RecycleStrict fails the render with [ErrLengthMismatch].
	RecycleStrict
)

// String returns the name of the policy.
func (p RecyclePolicy) String() string {
	switch p {
	case RecycleCycle:
		return "cycle"
	case RecycleStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseRecyclePolicy parses "cycle" or "strict", defaulting to
// [RecycleCycle].
func ParseRecyclePolicy(s string) RecyclePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return RecycleStrict
	}

	return RecycleCycle
}

// Config holds the settings of an [Engine].
type Config struct {
	Open        string
	Close       string
	Evaluator   Evaluator
	Transformer Transformer // nil means evaluate the code directly
	Separator   string
	NA          string
	Trim        bool
	Nested      bool
	Mode        Mode
	Recycle     RecyclePolicy
	Logger      log.Logger
}

// DefaultConfig returns the settings used by [New] before options apply.
// A nil Evaluator is replaced by a new [ExprEvaluator] sharing the
// engine's logger.
func DefaultConfig() Config {
	return Config{
		Open:    DefaultOpen,
		Close:   DefaultClose,
		NA:      DefaultNA,
		Mode:    ModeJoin,
		Recycle: RecycleCycle,
	}
}

// Option configures an [Engine].
type Option func(*Config)

// WithDelimiters sets the open and close markers of expression blocks.
func WithDelimiters(open, close string) Option {
	return func(c *Config) {
		c.Open, c.Close = open, close
	}
}

// WithEvaluator sets the evaluator used by the default transformer.
func WithEvaluator(ev Evaluator) Option {
	return func(c *Config) {
		c.Evaluator = ev
	}
}

// WithTransformer sets the transformer applied to each expression block.
func WithTransformer(t Transformer) Option {
	return func(c *Config) {
		c.Transformer = t
	}
}

// WithSeparator sets the text placed between tokens of a multi-valued
// result in [ModeJoin], or between output lines in [ModeRecycle].
func WithSeparator(sep string) Option {
	return func(c *Config) {
		c.Separator = sep
	}
}

// WithNA sets the text rendered for nil results.
func WithNA(na string) Option {
	return func(c *Config) {
		c.NA = na
	}
}

// WithTrim enables line-wise trimming of literal text.
func WithTrim(trim bool) Option {
	return func(c *Config) {
		c.Trim = trim
	}
}

// WithNesting enables nested expression blocks.
func WithNesting(nested bool) Option {
	return func(c *Config) {
		c.Nested = nested
	}
}

// WithMode sets how multi-valued results are rendered.
func WithMode(m Mode) Option {
	return func(c *Config) {
		c.Mode = m
	}
}

// WithRecycle sets the length mismatch policy of [ModeRecycle].
func WithRecycle(p RecyclePolicy) Option {
	return func(c *Config) {
		c.Recycle = p
	}
}

// WithLogger sets the logger used for render tracing.
func WithLogger(logger log.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
