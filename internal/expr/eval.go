package expr

import "math"

var funcTable = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"exp":  math.Exp,
	"log":  math.Log,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
	"cbrt": math.Cbrt,
}

// closure turns a validated tree into a plain Go function. Unvalidated kinds
// evaluate to NaN; checkAllowed keeps them from getting here.
func closure(n *Node) func(float64) float64 {
	switch n.Kind {
	case KindNumber, KindConst:
		v := n.Value
		return func(float64) float64 { return v }

	case KindSymbol:
		return func(x float64) float64 { return x }

	case KindAdd:
		fs := closures(n.Args)
		return func(x float64) float64 {
			s := 0.0
			for _, f := range fs {
				s += f(x)
			}
			return s
		}

	case KindMul:
		fs := closures(n.Args)
		return func(x float64) float64 {
			p := 1.0
			for _, f := range fs {
				p *= f(x)
			}
			return p
		}

	case KindPow:
		base := closure(n.Args[0])
		if e := n.Args[1]; e.Kind == KindNumber {
			ev := e.Value
			switch ev {
			case 2:
				return func(x float64) float64 { b := base(x); return b * b }
			case -1:
				return func(x float64) float64 { return 1 / base(x) }
			}
			return func(x float64) float64 { return math.Pow(base(x), ev) }
		}
		exp := closure(n.Args[1])
		return func(x float64) float64 { return math.Pow(base(x), exp(x)) }

	case KindAbs:
		arg := closure(n.Args[0])
		return func(x float64) float64 { return math.Abs(arg(x)) }

	case KindFunc:
		fn, ok := funcTable[n.Name]
		if !ok {
			break
		}
		arg := closure(n.Args[0])
		return func(x float64) float64 { return fn(arg(x)) }

	case KindRelation, KindInfinity:
	}
	return func(float64) float64 { return math.NaN() }
}

func closures(ns []*Node) []func(float64) float64 {
	out := make([]func(float64) float64, len(ns))
	for i, n := range ns {
		out[i] = closure(n)
	}
	return out
}
