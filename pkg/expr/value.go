package expr

import (
	"math"
	"strconv"
)

// Kind is the dynamic type of a Value
type Kind uint8

const (
	KindNumber Kind = iota + 1
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a scalar seen by expressions: a float64 number, a bool or a string.
// Bools take part in arithmetic and ordering as 0 and 1.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// Number wraps a float
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a bool
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, str: s} }

// FromInterface converts a scalar Go value. It reports false for types
// that have no expression equivalent, and for nil pointers.
func FromInterface(v interface{}) (Value, bool) {
	switch x := v.(type) {
	case Value:
		return x, x.kind != 0
	case float64:
		return Number(x), true
	case float32:
		return Number(float64(x)), true
	case int:
		return Number(float64(x)), true
	case int32:
		return Number(float64(x)), true
	case int64:
		return Number(float64(x)), true
	case uint:
		return Number(float64(x)), true
	case uint32:
		return Number(float64(x)), true
	case uint64:
		return Number(float64(x)), true
	case bool:
		return Bool(x), true
	case string:
		return String(x), true
	case *float64:
		if x == nil {
			return Value{}, false
		}
		return Number(*x), true
	default:
		return Value{}, false
	}
}

// Kind returns the dynamic type
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric value of numbers and bools
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Truthy follows the usual scripting rules: non-zero numbers, true and
// non-empty strings are truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0
	case KindBool:
		return v.b
	case KindString:
		return v.str != ""
	default:
		return false
	}
}

// Interface returns the underlying Go value
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindString:
		return v.str
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e15 {
			return strconv.FormatFloat(v.num, 'f', 0, 64)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindString:
		return strconv.Quote(v.str)
	default:
		return "<invalid>"
	}
}

// numeric reports whether v takes part in arithmetic
func (v Value) numeric() bool {
	return v.kind == KindNumber || v.kind == KindBool
}

// Env binds names to values for one evaluation
type Env map[string]Value
