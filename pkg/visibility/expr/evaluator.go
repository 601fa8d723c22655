// Package expr implements the rule language used by Field.VisibleWhen,
// ResetRule.When and conditional validation.
//
// Supported forms:
//   - truthy checks: `hasDriversLicenseOrStateId`
//   - comparisons: `kind == "formik"`, `count != 3`, `flag == true`, `x == null`
//   - composition: `a && b`, `a || b`, `!a`, parentheses
//
// Values are read from visibility.Context.Values using dot paths (flattened
// dotted keys win over nested lookups) and from visibility.Context.Extras via
// the `extras.` prefix.
package expr

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formpages/pkg/visibility"
)

// Rule is a compiled rule. A zero Rule (empty source) always evaluates true.
type Rule struct {
	source string
	root   node
}

// Compile parses rule into a reusable Rule.
func Compile(rule string) (*Rule, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return &Rule{}, nil
	}
	tokens, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return &Rule{source: trimmed}, nil
	}
	root, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	return &Rule{source: trimmed, root: root}, nil
}

// String returns the normalised rule source.
func (r *Rule) String() string { return r.source }

// Eval evaluates the rule against ctx.
func (r *Rule) Eval(ctx visibility.Context) (bool, error) {
	if r == nil || r.root == nil {
		return true, nil
	}
	return r.root.eval(ctx)
}

// Dependencies returns the sorted, de-duplicated value paths read by the
// rule. Paths under `extras.` are page props, not fields, and are omitted.
func (r *Rule) Dependencies() []string {
	if r == nil || r.root == nil {
		return nil
	}
	raw := r.root.deps(nil)
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, path := range raw {
		if strings.HasPrefix(strings.ToLower(path), "extras.") {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Evaluator compiles rules on first use and caches them. It is safe for
// concurrent use.
type Evaluator struct {
	cache sync.Map // rule source -> *Rule
}

var (
	_ visibility.Evaluator          = (*Evaluator)(nil)
	_ visibility.DependencyResolver = (*Evaluator)(nil)
)

func New() *Evaluator { return &Evaluator{} }

func (e *Evaluator) compiled(rule string) (*Rule, error) {
	if cached, ok := e.cache.Load(rule); ok {
		return cached.(*Rule), nil
	}
	compiled, err := Compile(rule)
	if err != nil {
		return nil, err
	}
	actual, _ := e.cache.LoadOrStore(rule, compiled)
	return actual.(*Rule), nil
}

// Eval implements visibility.Evaluator. fieldPath is unused by the rule
// language but kept for interface parity with custom evaluators.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	compiled, err := e.compiled(rule)
	if err != nil {
		return false, err
	}
	return compiled.Eval(ctx)
}

// Dependencies implements visibility.DependencyResolver.
func (e *Evaluator) Dependencies(rule string) ([]string, error) {
	compiled, err := e.compiled(rule)
	if err != nil {
		return nil, err
	}
	return compiled.Dependencies(), nil
}
