// Package expr compiles a restricted mathematical notation into safely
// evaluable univariate functions.
//
// Input is accepted only if it uses a small character set, parses into an
// expression tree built from an allow-listed set of node kinds, and depends on
// exactly one variable named x. Nothing is ever evaluated by a general-purpose
// interpreter: the tree is turned into a closure with an exhaustive switch.
package expr

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	KindNumber Kind = iota
	KindConst
	KindSymbol
	KindAdd
	KindMul
	KindPow
	KindAbs
	KindFunc
	KindRelation
	KindInfinity
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindConst:
		return "const"
	case KindSymbol:
		return "symbol"
	case KindAdd:
		return "add"
	case KindMul:
		return "mul"
	case KindPow:
		return "pow"
	case KindAbs:
		return "abs"
	case KindFunc:
		return "func"
	case KindRelation:
		return "relation"
	case KindInfinity:
		return "infinity"
	}
	return "unknown"
}

// Node is an immutable expression tree node.
//
//	Number, Const: Value (Const also carries Name "e" or "pi")
//	Symbol:        Name
//	Add, Mul:      Args (n-ary)
//	Pow:           Args[0]^Args[1]
//	Abs, Func:     Args[0] (Func carries the head in Name)
//	Relation:      Args[0] Name Args[1]
type Node struct {
	Kind  Kind
	Value float64
	Name  string
	Args  []*Node
}

func Num(v float64) *Node { return &Node{Kind: KindNumber, Value: v} }

func Sym(name string) *Node { return &Node{Kind: KindSymbol, Name: name} }

// Const returns Euler's number for "e" and π for "pi".
func Const(name string) *Node {
	switch name {
	case "e":
		return &Node{Kind: KindConst, Name: "e", Value: math.E}
	case "pi":
		return &Node{Kind: KindConst, Name: "pi", Value: math.Pi}
	}
	return Sym(name)
}

func Add(terms ...*Node) *Node { return &Node{Kind: KindAdd, Args: terms} }

func Mul(factors ...*Node) *Node { return &Node{Kind: KindMul, Args: factors} }

func Pow(base, exp *Node) *Node { return &Node{Kind: KindPow, Args: []*Node{base, exp}} }

func Abs(arg *Node) *Node { return &Node{Kind: KindAbs, Args: []*Node{arg}} }

// Call applies the named function to arg.
func Call(name string, arg *Node) *Node {
	return &Node{Kind: KindFunc, Name: name, Args: []*Node{arg}}
}

func Relation(op string, left, right *Node) *Node {
	return &Node{Kind: KindRelation, Name: op, Args: []*Node{left, right}}
}

func Infinity() *Node { return &Node{Kind: KindInfinity} }

func neg(n *Node) *Node { return Mul(Num(-1), n) }

func (n *Node) isNumber(v float64) bool {
	return n.Kind == KindNumber && n.Value == v
}

// Walk visits n and every descendant in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, a := range n.Args {
		a.Walk(fn)
	}
}

// Symbols returns the distinct free symbol names in order of appearance.
func (n *Node) Symbols() []string {
	var out []string
	seen := map[string]bool{}
	n.Walk(func(c *Node) {
		if c.Kind == KindSymbol && !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c.Name)
		}
	})
	return out
}

// String renders n in the accepted input notation; Compile(n.String())
// yields an equivalent function.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case KindNumber:
		s := strconv.FormatFloat(n.Value, 'f', -1, 64)
		if n.Value < 0 {
			b.WriteString("(" + s + ")")
			return
		}
		b.WriteString(s)
	case KindConst, KindSymbol:
		b.WriteString(n.Name)
	case KindAdd:
		for i, t := range n.Args {
			if i > 0 {
				if m, ok := negated(t); ok {
					b.WriteString(" - ")
					m.writeFactor(b, KindMul)
					continue
				}
				b.WriteString(" + ")
			}
			t.writeFactor(b, KindAdd)
		}
	case KindMul:
		if m, ok := negated(n); ok {
			b.WriteString("-")
			m.writeFactor(b, KindMul)
			return
		}
		for i, f := range n.Args {
			if i > 0 {
				if f.Kind == KindPow && f.Args[1].isNumber(-1) {
					b.WriteString("/")
					f.Args[0].writeFactor(b, KindPow)
					continue
				}
				b.WriteString("*")
			}
			f.writeFactor(b, KindMul)
		}
	case KindPow:
		n.Args[0].writeFactor(b, KindPow)
		b.WriteString("^")
		n.Args[1].writeFactor(b, KindPow)
	case KindAbs:
		b.WriteString("abs(")
		n.Args[0].write(b)
		b.WriteString(")")
	case KindFunc:
		b.WriteString(n.Name)
		b.WriteString("(")
		n.Args[0].write(b)
		b.WriteString(")")
	case KindRelation:
		n.Args[0].write(b)
		b.WriteString(" \\" + n.Name + " ")
		n.Args[1].write(b)
	case KindInfinity:
		b.WriteString("\\infty")
	}
}

// writeFactor parenthesises n when it binds looser than its parent.
func (n *Node) writeFactor(b *strings.Builder, parent Kind) {
	wrap := false
	switch n.Kind {
	case KindAdd, KindRelation:
		wrap = parent != KindAdd || n.Kind == KindRelation
	case KindMul:
		wrap = parent == KindPow
		if parent == KindMul {
			_, wrap = negated(n)
		}
	case KindPow:
		wrap = parent == KindPow
	}
	if wrap {
		b.WriteString("(")
		n.write(b)
		b.WriteString(")")
		return
	}
	n.write(b)
}

// negated reports whether n is -1*m and returns m.
func negated(n *Node) (*Node, bool) {
	if n.Kind != KindMul || len(n.Args) < 2 || !n.Args[0].isNumber(-1) {
		return nil, false
	}
	if len(n.Args) == 2 {
		return n.Args[1], true
	}
	return Mul(n.Args[1:]...), true
}
