// Package interp interpolates expression blocks into text templates.
//
// A template is plain text containing blocks of code between an open and a
// close marker, "{" and "}" by default. Doubling a marker escapes it:
//
//	Hello {name}, you have {len(items)} items and {{braces}}.
//
// Rendering happens in two steps. The whole template is first split into
// literal and expression [Segment] values by a [Scanner]; a malformed
// template fails here before any code runs. Each expression is then handed,
// in document order, to a [Transformer] together with the render [Env], and
// the returned value is converted to text with [Tokens].
//
// # Evaluation
//
// The default transformer evaluates the code with an [Evaluator]. The
// bundled [ExprEvaluator] compiles the code as an expr-lang expression
// against the variables visible in the environment and adds one statement
// form, assignment:
//
//	{total <- price * qty}{total > 100 ? "bulk" : "retail"}
//
// Assignments are visible to every later block of the same render.
//
// # Transformers
//
// Transformers intercept the code before evaluation or the value after it.
// Three factories compose over any other transformer:
//
//	ev := interp.NewExprEvaluator()
//	t := interp.CollapseConfig{Separator: ", ", Last: " and "}.
//		Transformer(interp.Direct(ev))
//	e := interp.New(interp.WithTransformer(t))
//	s, _ := e.Render(ctx, "{names*}", env) // "ann, bob and cy"
//
// [SafelyConfig] recovers from failures with a [Fallback], and
// [SprintfConfig] applies a trailing fmt verb such as "{pi:.2f}".
//
// # Multi-valued results
//
// In [ModeJoin] the tokens of a multi-valued result are joined in place
// with the configured separator. In [ModeRecycle] every expression is a
// column and the output holds one line per row, repeating shorter columns
// according to the [RecyclePolicy].
package interp
