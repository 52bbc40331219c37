package expr

import (
	"fmt"
	"math"
	"strings"
)

type node interface {
	eval(env Env) (Value, error)
}

type literal struct {
	v Value
}

func (n *literal) eval(Env) (Value, error) {
	return n.v, nil
}

type ident struct {
	name string
}

func (n *ident) eval(env Env) (Value, error) {
	v, ok := env[n.name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUndefined, n.name)
	}
	return v, nil
}

type unary struct {
	op string
	x  node
}

func (n *unary) eval(env Env) (Value, error) {
	v, err := n.x.eval(env)
	if err != nil {
		return Value{}, err
	}
	if n.op == "not" {
		return Bool(!v.Truthy()), nil
	}
	f, ok := v.Float()
	if !ok {
		return Value{}, fmt.Errorf("%w: unary %s on %s", ErrType, n.op, v.kind)
	}
	if n.op == "-" {
		return Number(-f), nil
	}
	return Number(f), nil
}

// logical short-circuits and yields the deciding operand
type logical struct {
	op   string // and, or
	l, r node
}

func (n *logical) eval(env Env) (Value, error) {
	l, err := n.l.eval(env)
	if err != nil {
		return Value{}, err
	}
	if (n.op == "and") != l.Truthy() {
		return l, nil
	}
	return n.r.eval(env)
}

type binary struct {
	op   string
	l, r node
}

func (n *binary) eval(env Env) (Value, error) {
	l, err := n.l.eval(env)
	if err != nil {
		return Value{}, err
	}
	r, err := n.r.eval(env)
	if err != nil {
		return Value{}, err
	}
	return arith(n.op, l, r)
}

func arith(op string, l, r Value) (Value, error) {
	if op == "+" && l.kind == KindString && r.kind == KindString {
		return String(l.str + r.str), nil
	}
	a, okA := l.Float()
	b, okB := r.Float()
	if !okA || !okB {
		return Value{}, fmt.Errorf("%w: %s %s %s", ErrType, l.kind, op, r.kind)
	}

	switch op {
	case "+":
		return Number(a + b), nil
	case "-":
		return Number(a - b), nil
	case "*":
		return Number(a * b), nil
	case "/":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Number(a / b), nil
	case "%":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return Number(m), nil
	case "**":
		if a == 0 && b < 0 {
			return Value{}, ErrDivisionByZero
		}
		p := math.Pow(a, b)
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Value{}, fmt.Errorf("%w: %v ** %v", ErrDomain, a, b)
		}
		return Number(p), nil
	default:
		return Value{}, fmt.Errorf("unknown operator %s", op)
	}
}

// compare is a comparison chain: a < b <= c holds when every adjacent
// pair holds. Evaluation stops at the first false link.
type compare struct {
	operands []node
	ops      []string
}

func (n *compare) eval(env Env) (Value, error) {
	left, err := n.operands[0].eval(env)
	if err != nil {
		return Value{}, err
	}
	for i, op := range n.ops {
		right, err := n.operands[i+1].eval(env)
		if err != nil {
			return Value{}, err
		}
		ok, err := compareValues(op, left, right)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Bool(false), nil
		}
		left = right
	}
	return Bool(true), nil
}

func compareValues(op string, l, r Value) (bool, error) {
	switch op {
	case "==":
		return equal(l, r), nil
	case "!=":
		return !equal(l, r), nil
	case "in", "not in":
		if l.kind != KindString || r.kind != KindString {
			return false, fmt.Errorf("%w: %s %s %s", ErrType, l.kind, op, r.kind)
		}
		found := strings.Contains(r.str, l.str)
		return found == (op == "in"), nil
	}

	var c int
	switch {
	case l.numeric() && r.numeric():
		a, _ := l.Float()
		b, _ := r.Float()
		if math.IsNaN(a) || math.IsNaN(b) {
			return false, nil
		}
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
	case l.kind == KindString && r.kind == KindString:
		c = strings.Compare(l.str, r.str)
	default:
		return false, fmt.Errorf("%w: %s %s %s", ErrType, l.kind, op, r.kind)
	}

	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	default:
		return false, fmt.Errorf("unknown operator %s", op)
	}
}

func equal(l, r Value) bool {
	if l.numeric() && r.numeric() {
		a, _ := l.Float()
		b, _ := r.Float()
		return a == b
	}
	if l.kind == KindString && r.kind == KindString {
		return l.str == r.str
	}
	return false
}

type call struct {
	fn   *builtin
	args []node
}

func (n *call) eval(env Env) (Value, error) {
	args := make([]Value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(env)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return n.fn.call(args)
}
