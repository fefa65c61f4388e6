package cmd

import (
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/glue/interp"
	"github.com/ardnew/glue/log"
)

// EngineConfig holds the flags that configure template rendering. It is
// embedded by every command that renders.
type EngineConfig struct {
	Open    string `default:"${openDelim}"  help:"Opening marker of expression blocks"`
	Close   string `default:"${closeDelim}" help:"Closing marker of expression blocks"`
	Sep     string `default:""              help:"Text between the tokens of a multi-valued result, or between output lines in recycle mode"`
	NA      string `default:"${na}"         help:"Text rendered for missing values"                                                      name:"na"`
	Trim    bool   `                        help:"Trim indentation and blank edges of literal text"`
	Nested  bool   `                        help:"Allow expression blocks inside expression blocks"`
	Mode    string `default:"join"          help:"How multi-valued results are rendered"                                                 enum:"join,recycle"`
	Recycle string `default:"cycle"         help:"How recycle mode pairs results of unequal length"                                      enum:"cycle,strict"`

	Collapse     bool   `help:"Collapse results of code ending in '*' into one token"`
	CollapseSep  string `default:", " help:"Separator used by --collapse"`
	CollapseLast string `             help:"Separator between the final two tokens used by --collapse"`
	Sprintf      bool   `help:"Format results with a trailing verb such as ':.2f'"`

	Safe         bool   `help:"Substitute a fallback for failed expressions"`
	Fallback     string `help:"Constant substituted by --safe (default: the NA text)"`
	FallbackExpr string `help:"Expression evaluated by --safe; binds 'code' and 'err'"`

	Var        map[string]string `help:"Bind a variable (name=value)"         short:"v"`
	Vars       []string          `help:"YAML file of variables to bind"        type:"existingfile"`
	NoBuiltins bool              `help:"Do not bind the built-in variables"`
}

// Vars returns the kong variables referenced by the [EngineConfig] flags.
func Vars() kong.Vars {
	return kong.Vars{
		"openDelim":  interp.DefaultOpen,
		"closeDelim": interp.DefaultClose,
		"na":         interp.DefaultNA,
	}
}

// engine returns an engine configured by the flags. Transformers compose
// innermost first: sprintf, then collapse, then safe.
func (c *EngineConfig) engine(logger log.Logger) *interp.Engine {
	ev := interp.NewExprEvaluator(interp.WithEvalLogger(logger))

	t := interp.Direct(ev)

	if c.Sprintf {
		t = interp.SprintfConfig{}.Transformer(t)
	}

	if c.Collapse {
		t = interp.CollapseConfig{
			Separator: c.CollapseSep,
			Last:      c.CollapseLast,
			NA:        c.NA,
		}.Transformer(t)
	}

	if c.Safe {
		t = interp.SafelyConfig{
			Fallback: c.fallback(),
			Logger:   logger,
		}.Transformer(t)
	}

	return interp.New(
		interp.WithDelimiters(c.Open, c.Close),
		interp.WithEvaluator(ev),
		interp.WithTransformer(t),
		interp.WithSeparator(c.Sep),
		interp.WithNA(c.NA),
		interp.WithTrim(c.Trim),
		interp.WithNesting(c.Nested),
		interp.WithMode(interp.ParseMode(c.Mode)),
		interp.WithRecycle(interp.ParseRecyclePolicy(c.Recycle)),
		interp.WithLogger(logger),
	)
}

func (c *EngineConfig) fallback() interp.Fallback {
	switch {
	case c.FallbackExpr != "":
		return interp.FallbackComputation(c.FallbackExpr)
	case c.Fallback != "":
		return interp.FallbackValue(c.Fallback)
	default:
		return interp.FallbackValue(nil)
	}
}

// env returns the render environment: the built-in variables, enclosing a
// scope with the contents of each variables file in order, then each --var
// in name order. Later bindings shadow earlier ones.
func (c *EngineConfig) env(logger log.Logger) (*interp.Env, error) {
	var root *interp.Env
	if c.NoBuiltins {
		root = interp.NewEnv(nil)
	} else {
		root = interp.NewBuiltinEnv(os.Environ())
	}

	env := root.Child()

	for _, path := range c.Vars {
		vars, err := readVars(path)
		if err != nil {
			return nil, err
		}

		for _, name := range slices.Sorted(maps.Keys(vars)) {
			env.Set(name, vars[name])
		}

		logger.Debug("loaded variables",
			fileAttr(path),
			slog.Int("count", len(vars)),
		)
	}

	for _, name := range slices.Sorted(maps.Keys(c.Var)) {
		env.Set(name, interp.ParseValue(c.Var[name]))
	}

	return env, nil
}

func readVars(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadVars.With(fileAttr(path)).Wrap(err)
	}

	var vars map[string]any
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, ErrReadVars.With(fileAttr(path)).Wrap(err)
	}

	return vars, nil
}
