package expr

import (
	"sort"
	"strconv"
	"strings"
)

// maxDepth bounds expression nesting
const maxDepth = 64

// Expression is a compiled, immutable expression. It is safe for
// concurrent use; each Eval call reads only the Env it is given.
type Expression struct {
	src   string
	root  node
	names []string
}

// Compile parses src into an Expression. Anything outside the grammar of
// literals, bound names, arithmetic, comparison and boolean operators and
// the abs, min, max and round functions is a *SyntaxError.
func Compile(src string) (*Expression, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, names: make(map[string]struct{})}
	if p.peek().kind == tokEOF {
		return nil, syntaxErrorf(0, "empty expression")
	}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErrorf(t.pos, "unexpected %q", t.text)
	}

	names := make([]string, 0, len(p.names))
	for name := range p.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Expression{src: src, root: root, names: names}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(src string) *Expression {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval evaluates the expression against env
func (e *Expression) Eval(env Env) (Value, error) {
	return e.root.eval(env)
}

// EvalBool evaluates the expression and reports its truthiness
func (e *Expression) EvalBool(env Env) (bool, error) {
	v, err := e.root.eval(env)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// Names returns the sorted variable names referenced by the expression
func (e *Expression) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

func (e *Expression) String() string {
	return e.src
}

type parser struct {
	tokens []token
	pos    int
	depth  int
	names  map[string]struct{}
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if i := p.pos + offset; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) isKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokKeyword && t.text == kw
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return syntaxErrorf(p.peek().pos, "expression nested too deeply")
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") || p.isOp("||") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logical{op: "or", l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") || p.isOp("&&") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &logical{op: "and", l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.isKeyword("not") || p.isOp("!") {
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &unary{op: "not", x: x}, nil
	}
	return p.parseComparison()
}

// comparisonOp consumes a comparison operator if one is next
func (p *parser) comparisonOp() (string, bool) {
	t := p.peek()
	switch {
	case t.kind == tokOp:
		switch t.text {
		case "<", "<=", ">", ">=", "==", "!=":
			p.next()
			return t.text, true
		}
	case t.kind == tokKeyword && t.text == "in":
		p.next()
		return "in", true
	case t.kind == tokKeyword && t.text == "not":
		if n := p.peekAt(1); n.kind == tokKeyword && n.text == "in" {
			p.next()
			p.next()
			return "not in", true
		}
	}
	return "", false
}

func (p *parser) parseComparison() (node, error) {
	first, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	cmp := &compare{operands: []node{first}}
	for {
		op, ok := p.comparisonOp()
		if !ok {
			break
		}
		operand, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		cmp.ops = append(cmp.ops, op)
		cmp.operands = append(cmp.operands, operand)
	}
	if len(cmp.ops) == 0 {
		return first, nil
	}
	return cmp, nil
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binary{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "%") {
		op := p.next().text
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &binary{op: op, l: left, r: right}
	}
	return left, nil
}

// parseFactor handles unary signs, which bind looser than ** on their right
func (p *parser) parseFactor() (node, error) {
	if p.isOp("+", "-") {
		op := p.next().text
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &unary{op: op, x: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp("**") {
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		exp, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &binary{op: "**", l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &literal{v: Number(t.num)}, nil

	case tokString:
		return &literal{v: String(t.text)}, nil

	case tokIdent:
		if strings.EqualFold(t.text, "true") {
			return &literal{v: Bool(true)}, nil
		}
		if strings.EqualFold(t.text, "false") {
			return &literal{v: Bool(false)}, nil
		}
		if p.peek().kind == tokLParen {
			return p.parseCall(t)
		}
		p.names[t.text] = struct{}{}
		return &ident{name: t.text}, nil

	case tokLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, syntaxErrorf(closing.pos, "expected ')'")
		}
		return x, nil

	case tokEOF:
		return nil, syntaxErrorf(t.pos, "unexpected end of expression")

	default:
		return nil, syntaxErrorf(t.pos, "unexpected %q", t.text)
	}
}

func (p *parser) parseCall(name token) (node, error) {
	fn, ok := builtins[name.text]
	if !ok {
		return nil, syntaxErrorf(name.pos, "function %q is not allowed", name.text)
	}
	p.next() // (
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.kind != tokRParen {
		return nil, syntaxErrorf(closing.pos, "expected ')' to close %s(", fn.name)
	}

	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, syntaxErrorf(name.pos, "%s() takes %s, got %d", fn.name, arity(fn), len(args))
	}
	return &call{fn: fn, args: args}, nil
}

func arity(fn *builtin) string {
	switch {
	case fn.maxArgs < 0:
		return "at least " + strconv.Itoa(fn.minArgs) + " arguments"
	case fn.minArgs == fn.maxArgs:
		if fn.minArgs == 1 {
			return "1 argument"
		}
		return strconv.Itoa(fn.minArgs) + " arguments"
	default:
		return strconv.Itoa(fn.minArgs) + " to " + strconv.Itoa(fn.maxArgs) + " arguments"
	}
}
