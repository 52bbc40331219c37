package expr

import (
	"fmt"
	"math"
)

// builtin is a pure function callable from expressions
type builtin struct {
	name    string
	minArgs int
	maxArgs int // -1 for variadic
	call    func(args []Value) (Value, error)
}

var builtins = map[string]*builtin{
	"abs":   {name: "abs", minArgs: 1, maxArgs: 1, call: builtinAbs},
	"min":   {name: "min", minArgs: 2, maxArgs: -1, call: extremum(func(a, b float64) bool { return a < b })},
	"max":   {name: "max", minArgs: 2, maxArgs: -1, call: extremum(func(a, b float64) bool { return a > b })},
	"round": {name: "round", minArgs: 1, maxArgs: 2, call: builtinRound},
}

func numberArg(name string, v Value) (float64, error) {
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("%w: %s() of %s", ErrType, name, v.kind)
	}
	return f, nil
}

func builtinAbs(args []Value) (Value, error) {
	f, err := numberArg("abs", args[0])
	if err != nil {
		return Value{}, err
	}
	return Number(math.Abs(f)), nil
}

// extremum returns the first argument that wins every comparison
func extremum(better func(a, b float64) bool) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		best := args[0]
		bestF, err := numberArg("min/max", best)
		if err != nil {
			return Value{}, err
		}
		for _, a := range args[1:] {
			f, err := numberArg("min/max", a)
			if err != nil {
				return Value{}, err
			}
			if better(f, bestF) {
				best, bestF = a, f
			}
		}
		return best, nil
	}
}

// builtinRound rounds half to even, optionally to a number of decimals
func builtinRound(args []Value) (Value, error) {
	f, err := numberArg("round", args[0])
	if err != nil {
		return Value{}, err
	}
	if len(args) == 1 {
		return Number(math.RoundToEven(f)), nil
	}
	digits, err := numberArg("round", args[1])
	if err != nil {
		return Value{}, err
	}
	if digits != math.Trunc(digits) {
		return Value{}, fmt.Errorf("%w: round() digits must be an integer", ErrType)
	}
	scale := math.Pow(10, digits)
	return Number(math.RoundToEven(f*scale) / scale), nil
}
