package expr

import (
	"github.com/aalvaropc/numlab/internal/domain"
)

var errSyntax = domain.ErrSyntaxRejected

// funcNames maps every recognised function spelling to its canonical head.
// Heads outside the allow-list still parse so that validation can name them.
var funcNames = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"asin": "asin", "arcsin": "asin",
	"acos": "acos", "arccos": "acos",
	"atan": "atan", "arctan": "atan",
	"exp": "exp", "log": "log", "ln": "ln",
	"sqrt": "sqrt", "cbrt": "cbrt", "abs": "abs",

	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"sec": "sec", "csc": "csc", "cot": "cot",
	"floor": "floor", "ceil": "ceil", "sign": "sign",
}

var relations = map[string]string{
	"le": "le", "leq": "le",
	"ge": "ge", "geq": "ge",
	"lt": "lt", "gt": "gt",
	"ne": "ne", "neq": "ne",
}

// Parse reads src into an expression tree without validating it.
func Parse(src string) (*Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, syntaxErr(0, "empty expression")
	}
	n, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErr(t.pos, "unexpected %q", t.text)
	}
	return n, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

func (p *parser) isCommand(names ...string) bool {
	t := p.peek()
	if t.kind != tokCommand {
		return false
	}
	for _, n := range names {
		if t.text == n {
			return true
		}
	}
	return false
}

func (p *parser) expect(kind tokKind, text string) error {
	t := p.peek()
	if t.kind != kind {
		return syntaxErr(t.pos, "expected %q, got %q", text, t.text)
	}
	p.next()
	return nil
}

func (p *parser) parseRelation() (*Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokCommand {
		if op, ok := relations[t.text]; ok {
			p.next()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return Relation(op, left, right), nil
		}
	}
	return left, nil
}

func (p *parser) parseAdditive() (*Node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []*Node{first}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			t = neg(t)
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return Add(terms...), nil
}

func (p *parser) parseTerm() (*Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []*Node{first}
	for {
		divide := false
		switch {
		case p.isOp("*"), p.isCommand("cdot", "times"):
			p.next()
		case p.isOp("/"), p.isCommand("div"):
			p.next()
			divide = true
		case p.startsPrimary(p.peek()):
			// implicit multiplication: 2x, 3\sin x, (x+1)(x-1)
		default:
			if len(factors) == 1 {
				return first, nil
			}
			return Mul(factors...), nil
		}
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if divide {
			f = Pow(f, Num(-1))
		}
		factors = append(factors, f)
	}
}

func (p *parser) parseUnary() (*Node, error) {
	if p.isOp("-") {
		p.next()
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if n.Kind == KindNumber {
			return Num(-n.Value), nil
		}
		return neg(n), nil
	}
	if p.isOp("+") {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (*Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if base.Kind == KindConst && base.Name == "e" {
		return Call("exp", exp), nil
	}
	return Pow(base, exp), nil
}

func (p *parser) startsPrimary(t token) bool {
	switch t.kind {
	case tokNumber, tokIdent, tokLParen, tokLBrace:
		return true
	case tokCommand:
		switch t.text {
		case "right", "cdot", "times", "div":
			return false
		}
		_, rel := relations[t.text]
		return !rel
	}
	return false
}

func (p *parser) startsFunction(t token) bool {
	switch t.kind {
	case tokIdent, tokCommand:
		if _, ok := funcNames[t.text]; ok {
			return true
		}
		return t.kind == tokCommand && (t.text == "frac" || t.text == "dfrac" || t.text == "tfrac")
	}
	return false
}

func (p *parser) parsePrimary() (*Node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		return Num(t.num), nil

	case tokIdent:
		p.next()
		switch t.text {
		case "pi", "e":
			return Const(t.text), nil
		}
		if head, ok := funcNames[t.text]; ok {
			return p.parseApplication(head)
		}
		return Sym(t.text), nil

	case tokLParen:
		p.next()
		n, err := p.parseRelation()
		if err != nil {
			return nil, err
		}
		return n, p.expect(tokRParen, ")")

	case tokLBrace:
		return p.parseGroup()

	case tokCommand:
		return p.parseCommand()
	}
	if t.kind == tokEOF {
		return nil, syntaxErr(t.pos, "unexpected end of input")
	}
	return nil, syntaxErr(t.pos, "unexpected %q", t.text)
}

// parseGroup reads {expr}.
func (p *parser) parseGroup() (*Node, error) {
	if err := p.expect(tokLBrace, "{"); err != nil {
		return nil, err
	}
	n, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	return n, p.expect(tokRBrace, "}")
}

func (p *parser) parseCommand() (*Node, error) {
	t := p.next()
	switch t.text {
	case "frac", "dfrac", "tfrac":
		num, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		den, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		return Mul(num, Pow(den, Num(-1))), nil

	case "pi":
		return Const("pi"), nil

	case "infty":
		return Infinity(), nil

	case "left":
		return p.parseLeftRight()
	}

	if head, ok := funcNames[t.text]; ok {
		return p.parseApplication(head)
	}
	if _, ok := relations[t.text]; ok {
		return nil, syntaxErr(t.pos, "relation %q without left-hand side", t.text)
	}

	// Unknown commands: \Gamma(x) is an application of an unknown function,
	// \alpha is a symbol. Both are rejected later with a precise reason.
	switch p.peek().kind {
	case tokLParen, tokLBrace:
		return p.parseApplication(t.text)
	}
	if p.isCommand("left") {
		return p.parseApplication(t.text)
	}
	return Sym(t.text), nil
}

func (p *parser) parseLeftRight() (*Node, error) {
	open := p.peek()
	var closeKind tokKind
	switch open.kind {
	case tokLParen:
		closeKind = tokRParen
	case tokLBrace:
		closeKind = tokRBrace
	default:
		return nil, syntaxErr(open.pos, "unsupported \\left delimiter %q", open.text)
	}
	p.next()
	n, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	if !p.isCommand("right") {
		return nil, syntaxErr(p.peek().pos, "expected \\right")
	}
	p.next()
	if p.peek().kind != closeKind {
		return nil, syntaxErr(p.peek().pos, "mismatched \\right delimiter")
	}
	p.next()
	return n, nil
}

// parseApplication reads the argument of a function whose name was consumed.
// Accepted shapes: f(x), f{x}, f\left(x\right), f x, f 2x, f^2 x.
func (p *parser) parseApplication(head string) (*Node, error) {
	var power *Node
	if p.isOp("^") {
		p.next()
		var err error
		if power, err = p.parsePrimary(); err != nil {
			return nil, err
		}
	}

	var arg *Node
	var err error
	switch {
	case p.peek().kind == tokLParen, p.peek().kind == tokLBrace, p.isCommand("left"):
		arg, err = p.parsePrimary()
		if err != nil {
			return nil, err
		}
	default:
		if !p.startsPrimary(p.peek()) {
			return nil, syntaxErr(p.peek().pos, "missing argument for %s", head)
		}
		arg, err = p.parsePower()
		if err != nil {
			return nil, err
		}
		factors := []*Node{arg}
		for p.startsPrimary(p.peek()) && !p.startsFunction(p.peek()) {
			f, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			factors = append(factors, f)
		}
		if len(factors) > 1 {
			arg = Mul(factors...)
		}
	}

	var n *Node
	if head == "abs" {
		n = Abs(arg)
	} else {
		n = Call(head, arg)
	}
	if power != nil {
		n = Pow(n, power)
	}
	return n, nil
}
