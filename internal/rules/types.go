package rules

import (
	"fmt"
	"time"

	"github.com/mohamedkhairy/stock-advisor/pkg/expr"
)

// Rule is one compiled "IF <expr> THEN <score>" line. Rules are immutable
// once parsed and safe to share between concurrent evaluations.
type Rule struct {
	Expression string `json:"expr"`
	Score      int    `json:"score"`
	Comment    string `json:"comment,omitempty"`
	Action     string `json:"action,omitempty"` // legacy keyword, empty for numeric scores
	Line       int    `json:"line"`

	compiled *expr.Expression
}

// Names returns the variables the rule refers to
func (r *Rule) Names() []string {
	return r.compiled.Names()
}

// RuleSet is an ordered, immutable sequence of rules
type RuleSet struct {
	rules    []Rule
	source   string
	loadedAt time.Time
}

// NewRuleSet builds a rule set from already compiled rules
func NewRuleSet(source string, rules []Rule) *RuleSet {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &RuleSet{rules: cp, source: source, loadedAt: time.Now()}
}

// Len returns the number of rules; a nil set is empty
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules returns a copy of the rules in file order
func (s *RuleSet) Rules() []Rule {
	if s == nil {
		return nil
	}
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Source is the file path or label the set was parsed from
func (s *RuleSet) Source() string {
	return s.source
}

// LoadedAt is when the set was parsed
func (s *RuleSet) LoadedAt() time.Time {
	return s.loadedAt
}

// SyntaxError describes a rule line that was skipped during parsing
type SyntaxError struct {
	Line int    `json:"line"`
	Text string `json:"text"`
	Msg  string `json:"error"`
	Err  error  `json:"-"`
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// ParseReport summarizes a parse: how many rule lines were seen and which
// were skipped
type ParseReport struct {
	Source   string         `json:"source"`
	Lines    int            `json:"lines"`
	Accepted int            `json:"accepted"`
	Skipped  []*SyntaxError `json:"skipped"`
}

// OK reports whether every rule line was accepted
func (r *ParseReport) OK() bool {
	return len(r.Skipped) == 0
}

// EvalError is a rule whose expression failed at evaluation time. Such a
// rule counts as not triggered.
type EvalError struct {
	Line       int
	Expression string
	Err        error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("rule at line %d (%s): %v", e.Line, e.Expression, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
