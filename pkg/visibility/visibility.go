package visibility

// Evaluator determines whether a field should be visible based on a rule
// string and the current form values.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// DependencyResolver reports which value paths a rule reads. Fields named by
// any rule are "watched": changing them may change what the form shows.
type DependencyResolver interface {
	Dependencies(rule string) ([]string, error)
}

// Context provides inputs to an Evaluator. Values holds the current form
// values while Extras carries page props such as imported data.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}
