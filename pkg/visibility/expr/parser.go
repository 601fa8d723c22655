package expr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-formpages/pkg/visibility"
)

// node is a compiled rule fragment.
type node interface {
	eval(ctx visibility.Context) (bool, error)
	// deps appends the value paths the node reads.
	deps(out []string) []string
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

func (n orNode) deps(out []string) []string { return n.right.deps(n.left.deps(out)) }

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

func (n andNode) deps(out []string) []string { return n.right.deps(n.left.deps(out)) }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n notNode) deps(out []string) []string { return n.inner.deps(out) }

// truthyNode is a bare identifier: visible when the value is set and non-empty.
type truthyNode struct{ path string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.path)
	if !ok {
		return false, nil
	}
	return truthy(value), nil
}

func (n truthyNode) deps(out []string) []string { return append(out, n.path) }

type compareNode struct {
	path   string
	negate bool
	lit    token
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.path)

	var equal bool
	switch n.lit.kind {
	case tokNull:
		equal = value == nil
	case tokBool:
		got, _ := coerceBool(value)
		equal = value != nil && got == (n.lit.text == "true")
	case tokNumber:
		want, err := strconv.ParseFloat(n.lit.text, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number literal %q", n.lit.text)
		}
		got, ok := coerceNumber(value)
		equal = ok && got == want
	default:
		equal = value != nil && coerceString(value) == n.lit.text
	}

	if n.negate {
		return !equal, nil
	}
	return equal, nil
}

func (n compareNode) deps(out []string) []string { return append(out, n.path) }

type parser struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", p.tokens[p.pos].text)
	}
	return root, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kind tokenKind) bool {
	if tok, ok := p.peek(); ok && tok.kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.accept(tokNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.accept(tokLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	tok, ok := p.peek()
	if !ok {
		return nil, errors.New("visibility/expr: empty expression")
	}
	if tok.kind != tokIdent {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", tok.text)
	}
	p.pos++

	switch {
	case p.accept(tokEq):
		lit, err := p.literal()
		return compareNode{path: tok.text, lit: lit}, err
	case p.accept(tokNeq):
		lit, err := p.literal()
		return compareNode{path: tok.text, negate: true, lit: lit}, err
	default:
		return truthyNode{path: tok.text}, nil
	}
}

func (p *parser) literal() (token, error) {
	tok, ok := p.peek()
	if !ok {
		return token{}, errors.New("visibility/expr: missing literal")
	}
	p.pos++
	switch tok.kind {
	case tokString, tokNumber, tokBool, tokNull:
		return tok, nil
	case tokIdent:
		// Bare words compare as strings: `kind == formik`.
		return token{kind: tokString, text: tok.text}, nil
	default:
		return token{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.text)
	}
}
