package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/pkg/expr"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

// Engine evaluates rule sets against indicator and fundamental values.
// It holds only configuration; every call builds its own bindings, so one
// Engine can serve concurrent evaluations.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and creates an engine
func NewEngine(cfg Config) (*Engine, error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Decide maps a total score to a decision and strength
func (e *Engine) Decide(score int) (models.Decision, models.Strength) {
	t := e.cfg.Thresholds
	switch {
	case score >= t.StrongBuy:
		return models.DecisionBuy, models.StrengthStrong
	case score >= t.Buy:
		return models.DecisionBuy, models.StrengthNormal
	case score <= t.StrongSell:
		return models.DecisionSell, models.StrengthStrong
	case score <= t.Sell:
		return models.DecisionSell, models.StrengthNormal
	default:
		return models.DecisionHold, models.StrengthNeutral
	}
}

// Bind builds a fresh evaluation environment. Indicators are bound under
// their own names; fundamentals under the configured prefix, with null or
// missing values replaced by the configured default.
func (e *Engine) Bind(indicators models.IndicatorSet, fundamentals models.FundamentalSet) expr.Env {
	env := make(expr.Env, len(indicators)+len(fundamentals)+len(models.FundamentalFields))

	for k, v := range indicators {
		if val, ok := expr.FromInterface(v); ok {
			env[k] = val
		}
	}
	if e.cfg.MissingIndicatorDefault != nil {
		for _, k := range e.cfg.DefaultedIndicators {
			if _, ok := env[k]; !ok {
				env[k] = expr.Number(*e.cfg.MissingIndicatorDefault)
			}
		}
	}

	prefix := e.cfg.FundamentalPrefix
	for _, k := range models.FundamentalFields {
		env[prefix+k] = expr.Number(e.cfg.FundamentalDefault)
	}
	for k, v := range fundamentals {
		if v == nil {
			env[prefix+k] = expr.Number(e.cfg.FundamentalDefault)
			continue
		}
		env[prefix+k] = expr.Number(*v)
	}
	return env
}

// Evaluate scores indicators and fundamentals against rs. A rule that
// fails to evaluate counts as not triggered.
func (e *Engine) Evaluate(rs *RuleSet, indicators models.IndicatorSet, fundamentals models.FundamentalSet) models.EvaluationResult {
	result, _ := e.Explain(rs, indicators, fundamentals)
	return result
}

// Explain is Evaluate that also returns the per-rule evaluation errors
func (e *Engine) Explain(rs *RuleSet, indicators models.IndicatorSet, fundamentals models.FundamentalSet) (models.EvaluationResult, []*EvalError) {
	start := time.Now()
	env := e.Bind(indicators, fundamentals)

	triggered := make([]models.TriggeredRule, 0)
	var errs []*EvalError
	total := 0

	if rs != nil {
		for i := range rs.rules {
			rule := &rs.rules[i]
			hit, err := rule.compiled.EvalBool(env)
			if err != nil {
				errs = append(errs, &EvalError{Line: rule.Line, Expression: rule.Expression, Err: err})
				ruleEvaluationsTotal.WithLabelValues("error").Inc()
				logger.Debug("Rule evaluation failed",
					logger.Int("line", rule.Line),
					logger.String("expr", rule.Expression),
					logger.ErrorField(err),
				)
				continue
			}
			if !hit {
				ruleEvaluationsTotal.WithLabelValues("not_triggered").Inc()
				continue
			}
			ruleEvaluationsTotal.WithLabelValues("triggered").Inc()
			total += rule.Score
			triggered = append(triggered, models.TriggeredRule{
				Expression: rule.Expression,
				Score:      rule.Score,
				Comment:    rule.Comment,
				Action:     rule.Action,
			})
		}
	}

	decision, strength := e.Decide(total)
	decisionsTotal.WithLabelValues(string(decision), string(strength)).Inc()
	evaluationLatency.Observe(time.Since(start).Seconds())

	return models.EvaluationResult{
		Decision:  decision,
		Strength:  strength,
		Score:     total,
		Triggered: triggered,
		Reason:    FormatReason(triggered),
	}, errs
}

// FormatReason renders triggered rules as "+3: RSI < 30 (oversold); -2: ..."
func FormatReason(triggered []models.TriggeredRule) string {
	parts := make([]string, 0, len(triggered))
	for _, t := range triggered {
		part := fmt.Sprintf("%+d: %s", t.Score, t.Expression)
		if t.Comment != "" {
			part += " (" + t.Comment + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
