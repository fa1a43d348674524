package expr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Variable is the only free symbol a compiled function may use.
const Variable = "x"

var acceptedChars = regexp.MustCompile(`^[a-zA-Z0-9+\-*/()^.\s{}\\]+$`)

// allowedFuncs is the closed set of function heads that may reach evaluation.
var allowedFuncs = map[string]bool{
	"sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true,
	"exp": true, "log": true, "ln": true,
	"sqrt": true, "cbrt": true,
}

// AllowedFunctions lists the accepted function heads.
func AllowedFunctions() []string {
	return []string{"sin", "cos", "tan", "asin", "acos", "atan", "exp", "log", "ln", "sqrt", "cbrt"}
}

func reject(sentinel error, format string, args ...any) error {
	return &domain.OpError{
		Op:   "expr.compile",
		Kind: domain.KindInputRejected,
		Err:  fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel),
	}
}

// checkText applies the character filter before any parsing happens.
func checkText(src string) error {
	if strings.TrimSpace(src) == "" {
		return reject(domain.ErrSyntaxRejected, "empty expression")
	}
	if !acceptedChars.MatchString(src) {
		return reject(domain.ErrSyntaxRejected, "expression contains characters outside [a-zA-Z0-9+-*/()^.{}\\ ]")
	}
	return nil
}

// checkFunction enforces, in order: a function (not a relation), exactly one
// free symbol, that symbol being x, and only allow-listed constructs.
func checkFunction(root *Node) error {
	relation := false
	root.Walk(func(n *Node) {
		if n.Kind == KindRelation {
			relation = true
		}
	})
	if relation {
		return reject(domain.ErrNotAFunction, "expression is a relation")
	}

	syms := root.Symbols()
	if len(syms) != 1 {
		return reject(domain.ErrWrongArity, "found %d variables %v", len(syms), syms)
	}
	if syms[0] != Variable {
		return reject(domain.ErrWrongSymbol, "found variable %q", syms[0])
	}
	return checkAllowed(root)
}

// checkAllowed walks the whole tree and rejects the first construct outside
// the allow-list.
func checkAllowed(root *Node) error {
	var bad *Node
	root.Walk(func(n *Node) {
		if bad != nil {
			return
		}
		switch n.Kind {
		case KindNumber, KindConst, KindSymbol, KindAdd, KindMul, KindPow, KindAbs:
		case KindFunc:
			if !allowedFuncs[n.Name] {
				bad = n
			}
		default:
			bad = n
		}
	})
	if bad == nil {
		return nil
	}
	if bad.Kind == KindFunc {
		return reject(domain.ErrDisallowedConstruct, "function %q is not allowed", bad.Name)
	}
	return reject(domain.ErrDisallowedConstruct, "%s is not allowed", bad.Kind)
}
