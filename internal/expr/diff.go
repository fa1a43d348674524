package expr

import (
	"math"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Diff returns d(n)/d(v), simplified. Only allow-listed heads can be
// differentiated.
func Diff(n *Node, v string) (*Node, error) {
	d, err := diff(n, v)
	if err != nil {
		return nil, err
	}
	return Simplify(d), nil
}

func diff(n *Node, v string) (*Node, error) {
	switch n.Kind {
	case KindNumber, KindConst:
		return Num(0), nil

	case KindSymbol:
		if n.Name == v {
			return Num(1), nil
		}
		return Num(0), nil

	case KindAdd:
		terms := make([]*Node, 0, len(n.Args))
		for _, t := range n.Args {
			dt, err := diff(t, v)
			if err != nil {
				return nil, err
			}
			terms = append(terms, dt)
		}
		return Add(terms...), nil

	case KindMul:
		terms := make([]*Node, 0, len(n.Args))
		for i, fi := range n.Args {
			if !depends(fi, v) {
				continue
			}
			dfi, err := diff(fi, v)
			if err != nil {
				return nil, err
			}
			factors := make([]*Node, 0, len(n.Args))
			for j, fj := range n.Args {
				if j == i {
					factors = append(factors, dfi)
				} else {
					factors = append(factors, fj)
				}
			}
			terms = append(terms, Mul(factors...))
		}
		if len(terms) == 0 {
			return Num(0), nil
		}
		return Add(terms...), nil

	case KindPow:
		base, exp := n.Args[0], n.Args[1]
		switch {
		case !depends(exp, v):
			// d(u^c) = c u^(c-1) u'
			du, err := diff(base, v)
			if err != nil {
				return nil, err
			}
			return Mul(exp, Pow(base, Add(exp, Num(-1))), du), nil
		case !depends(base, v):
			// d(c^w) = c^w ln(c) w'
			dw, err := diff(exp, v)
			if err != nil {
				return nil, err
			}
			return Mul(n, Call("log", base), dw), nil
		default:
			// d(u^w) = u^w (w' ln u + w u'/u)
			du, err := diff(base, v)
			if err != nil {
				return nil, err
			}
			dw, err := diff(exp, v)
			if err != nil {
				return nil, err
			}
			return Mul(n, Add(
				Mul(dw, Call("log", base)),
				Mul(exp, du, Pow(base, Num(-1))),
			)), nil
		}

	case KindAbs:
		u := n.Args[0]
		du, err := diff(u, v)
		if err != nil {
			return nil, err
		}
		return Mul(u, Pow(Abs(u), Num(-1)), du), nil

	case KindFunc:
		u := n.Args[0]
		du, err := diff(u, v)
		if err != nil {
			return nil, err
		}
		var outer *Node
		switch n.Name {
		case "sin":
			outer = Call("cos", u)
		case "cos":
			outer = neg(Call("sin", u))
		case "tan":
			outer = Add(Num(1), Pow(Call("tan", u), Num(2)))
		case "asin":
			outer = Pow(Add(Num(1), neg(Pow(u, Num(2)))), Num(-0.5))
		case "acos":
			outer = neg(Pow(Add(Num(1), neg(Pow(u, Num(2)))), Num(-0.5)))
		case "atan":
			outer = Pow(Add(Num(1), Pow(u, Num(2))), Num(-1))
		case "exp":
			outer = Call("exp", u)
		case "log", "ln":
			outer = Pow(u, Num(-1))
		case "sqrt":
			outer = Mul(Num(0.5), Pow(Call("sqrt", u), Num(-1)))
		case "cbrt":
			outer = Mul(Num(1.0/3.0), Pow(Call("cbrt", u), Num(-2)))
		default:
			return nil, reject(domain.ErrDisallowedConstruct, "cannot differentiate %q", n.Name)
		}
		return Mul(outer, du), nil
	}

	return nil, reject(domain.ErrDisallowedConstruct, "cannot differentiate %s", n.Kind)
}

func depends(n *Node, v string) bool {
	found := false
	n.Walk(func(c *Node) {
		if c.Kind == KindSymbol && c.Name == v {
			found = true
		}
	})
	return found
}

// Simplify folds numeric constants, flattens sums and products and removes
// neutral elements. It never changes the value of the expression.
func Simplify(n *Node) *Node {
	switch n.Kind {
	case KindAdd:
		sum := 0.0
		var terms []*Node
		for _, t := range n.Args {
			t = Simplify(t)
			switch {
			case t.Kind == KindNumber:
				sum += t.Value
			case t.Kind == KindAdd:
				for _, inner := range t.Args {
					if inner.Kind == KindNumber {
						sum += inner.Value
					} else {
						terms = append(terms, inner)
					}
				}
			default:
				terms = append(terms, t)
			}
		}
		if sum != 0 {
			terms = append(terms, Num(sum))
		}
		switch len(terms) {
		case 0:
			return Num(0)
		case 1:
			return terms[0]
		}
		return Add(terms...)

	case KindMul:
		coeff := 1.0
		var factors []*Node
		for _, f := range n.Args {
			f = Simplify(f)
			switch {
			case f.Kind == KindNumber:
				coeff *= f.Value
			case f.Kind == KindMul:
				for _, inner := range f.Args {
					if inner.Kind == KindNumber {
						coeff *= inner.Value
					} else {
						factors = append(factors, inner)
					}
				}
			default:
				factors = append(factors, f)
			}
		}
		if coeff == 0 {
			return Num(0)
		}
		if coeff != 1 {
			factors = append([]*Node{Num(coeff)}, factors...)
		}
		switch len(factors) {
		case 0:
			return Num(coeff)
		case 1:
			return factors[0]
		}
		return Mul(factors...)

	case KindPow:
		base, exp := Simplify(n.Args[0]), Simplify(n.Args[1])
		switch {
		case exp.isNumber(0):
			return Num(1)
		case exp.isNumber(1):
			return base
		case base.isNumber(1):
			return Num(1)
		case base.Kind == KindNumber && exp.Kind == KindNumber:
			if v := math.Pow(base.Value, exp.Value); !math.IsNaN(v) && !math.IsInf(v, 0) {
				return Num(v)
			}
		}
		return Pow(base, exp)

	case KindAbs:
		arg := Simplify(n.Args[0])
		if arg.Kind == KindNumber {
			return Num(math.Abs(arg.Value))
		}
		return Abs(arg)

	case KindFunc:
		arg := Simplify(n.Args[0])
		if fn, ok := funcTable[n.Name]; ok && arg.Kind == KindNumber {
			if v := fn(arg.Value); !math.IsNaN(v) && !math.IsInf(v, 0) && v == math.Trunc(v) {
				return Num(v)
			}
		}
		return Call(n.Name, arg)

	case KindRelation:
		return Relation(n.Name, Simplify(n.Args[0]), Simplify(n.Args[1]))
	}
	return n
}
