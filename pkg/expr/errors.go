package expr

import (
	"errors"
	"fmt"
)

// Evaluation errors
var (
	ErrUndefined      = errors.New("undefined name")
	ErrType           = errors.New("unsupported operand types")
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("math domain error")
)

// SyntaxError is returned by Compile for text outside the expression grammar
type SyntaxError struct {
	Pos int // byte offset into the source
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

func syntaxErrorf(pos int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
