package expr

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokNumber
	tokIdent   // bare name: single letter, constant or known function
	tokCommand // backslash command, text without the backslash
	tokOp      // + - * / ^
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

// bareNames are multi-letter names recognised in plain text, longest first so
// that "sinh" wins over "sin" and "exp" over "e".
var bareNames = []string{
	"arcsin", "arccos", "arctan",
	"floor",
	"asin", "acos", "atan", "sinh", "cosh", "tanh", "sqrt", "cbrt", "ceil", "sign",
	"sin", "cos", "tan", "exp", "log", "abs", "sec", "csc", "cot",
	"ln", "pi",
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r >= '0' && r <= '9' || r == '.':
			start := i
			dots := 0
			for i < len(rs) && (rs[i] >= '0' && rs[i] <= '9' || rs[i] == '.') {
				if rs[i] == '.' {
					dots++
				}
				i++
			}
			text := string(rs[start:i])
			if dots > 1 || text == "." {
				return nil, syntaxErr(start, "malformed number %q", text)
			}
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, syntaxErr(start, "malformed number %q", text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: v, pos: start})

		case r == '\\':
			start := i
			i++
			j := i
			for j < len(rs) && isLetter(rs[j]) {
				j++
			}
			if j == i {
				return nil, syntaxErr(start, "dangling backslash")
			}
			toks = append(toks, token{kind: tokCommand, text: string(rs[i:j]), pos: start})
			i = j

		case isLetter(r):
			start := i
			for i < len(rs) && isLetter(rs[i]) {
				i++
			}
			toks = append(toks, splitLetters(rs[start:i], start)...)

		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^':
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '{':
			toks = append(toks, token{kind: tokLBrace, text: "{", pos: i})
			i++
		case r == '}':
			toks = append(toks, token{kind: tokRBrace, text: "}", pos: i})
			i++

		default:
			return nil, syntaxErr(i, "unexpected character %q", r)
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

// splitLetters breaks a run of letters into known names and single-letter
// symbols, so "xsinx" reads as x, sin, x.
func splitLetters(rs []rune, offset int) []token {
	var out []token
	for i := 0; i < len(rs); {
		matched := ""
		for _, name := range bareNames {
			if hasPrefixRunes(rs[i:], name) {
				matched = name
				break
			}
		}
		if matched == "" {
			matched = string(rs[i])
		}
		out = append(out, token{kind: tokIdent, text: matched, pos: offset + i})
		i += len([]rune(matched))
	}
	return out
}

func hasPrefixRunes(rs []rune, prefix string) bool {
	p := []rune(prefix)
	if len(rs) < len(p) {
		return false
	}
	for i := range p {
		if rs[i] != p[i] {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func syntaxErr(pos int, format string, args ...any) error {
	return fmt.Errorf("at %d: %s: %w", pos, fmt.Sprintf(format, args...), errSyntax)
}
