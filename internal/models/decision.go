package models

import "time"

// Decision is the trade recommendation derived from a rule score
type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionSell Decision = "SELL"
	DecisionHold Decision = "HOLD"
)

// Strength qualifies a decision
type Strength string

const (
	StrengthStrong  Strength = "strong"
	StrengthNormal  Strength = "normal"
	StrengthNeutral Strength = "neutral"
)

// TriggeredRule records a rule that fired during evaluation
type TriggeredRule struct {
	Expression string `json:"expr"`
	Score      int    `json:"score"`
	Comment    string `json:"comment,omitempty"`
	Action     string `json:"action,omitempty"`
}

// EvaluationResult is the outcome of evaluating a rule set
type EvaluationResult struct {
	Decision  Decision        `json:"decision"`
	Strength  Strength        `json:"strength"`
	Score     int             `json:"score"`
	Triggered []TriggeredRule `json:"triggered"`
	Reason    string          `json:"reason"`
}

// AnalysisRecord is what gets handed to persistence and API consumers
type AnalysisRecord struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Timestamp    time.Time       `json:"timestamp"`
	Decision     Decision        `json:"decision"`
	Strength     Strength        `json:"strength"`
	Score        int             `json:"score"`
	Reason       string          `json:"reason"`
	Triggered    []TriggeredRule `json:"triggered,omitempty"`
	Indicators   IndicatorSet    `json:"indicators"`
	Fundamentals FundamentalSet  `json:"fundamentals"`
	Scorecard    map[string]int  `json:"scorecard,omitempty"`
	Overall      int             `json:"overall_score"`
	Bars         int             `json:"bars"`
}

// Validate validates an AnalysisRecord before persistence
func (a *AnalysisRecord) Validate() error {
	if a.Symbol == "" {
		return ErrInvalidSymbol
	}
	if a.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}
