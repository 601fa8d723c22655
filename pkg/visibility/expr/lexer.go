package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

// operators lists the two-character operators; '!' alone is negation.
var operators = map[string]tokenKind{
	"==": tokEq,
	"!=": tokNeq,
	"&&": tokAnd,
	"||": tokOr,
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	return isSpace(ch) || strings.IndexByte("()!=&|", ch) >= 0
}

func lex(input string) ([]token, error) {
	var out []token
	for pos := 0; pos < len(input); {
		ch := input[pos]
		switch {
		case isSpace(ch):
			pos++
		case ch == '(':
			out = append(out, token{kind: tokLParen, text: "("})
			pos++
		case ch == ')':
			out = append(out, token{kind: tokRParen, text: ")"})
			pos++
		case ch == '!' || ch == '=' || ch == '&' || ch == '|':
			if pos+1 < len(input) {
				if kind, ok := operators[input[pos:pos+2]]; ok {
					out = append(out, token{kind: kind, text: input[pos : pos+2]})
					pos += 2
					continue
				}
			}
			if ch != '!' {
				return nil, fmt.Errorf("visibility/expr: unexpected %q at offset %d", ch, pos)
			}
			out = append(out, token{kind: tokNot, text: "!"})
			pos++
		case ch == '"' || ch == '\'':
			value, next, err := lexString(input, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, token{kind: tokString, text: value})
			pos = next
		default:
			start := pos
			for pos < len(input) && !isDelimiter(input[pos]) {
				pos++
			}
			out = append(out, classifyWord(input[start:pos]))
		}
	}
	return out, nil
}

// lexString reads a quoted literal starting at input[start] and returns the
// unquoted value together with the offset just past the closing quote.
func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	escaped := false
	for pos := start + 1; pos < len(input); pos++ {
		ch := input[pos]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == quote:
			body := input[start+1 : pos]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return "", 0, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			return value, pos + 1, nil
		}
	}
	return "", 0, errors.New("visibility/expr: unterminated string literal")
}

func classifyWord(word string) token {
	switch strings.ToLower(word) {
	case "true", "false":
		return token{kind: tokBool, text: strings.ToLower(word)}
	case "null", "nil", "undefined":
		return token{kind: tokNull, text: "null"}
	}
	if first := word[0]; (first >= '0' && first <= '9') || first == '-' || first == '+' {
		return token{kind: tokNumber, text: word}
	}
	return token{kind: tokIdent, text: word}
}
