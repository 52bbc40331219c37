package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/mohamedkhairy/stock-advisor/internal/data"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	fund := models.EmptyFundamentals()
	fund["trailingPE"] = models.Value(21.5)

	rec := &models.AnalysisRecord{
		Symbol:    "AAPL",
		Timestamp: time.Date(2024, 1, 2, 22, 0, 0, 0, time.UTC),
		Decision:  models.DecisionBuy,
		Strength:  models.StrengthNormal,
		Score:     2,
		Reason:    "+3: RSI < 30 (oversold); -1: ADX < 20",
		Triggered: []models.TriggeredRule{
			{Expression: "ADX < 20", Score: -1},
			{Expression: "RSI < 30", Score: 3, Comment: "oversold"},
		},
		Indicators:   models.IndicatorSet{"RSI": 28.123456, "trend": "Up", "hs_found": false},
		Fundamentals: fund,
		Scorecard:    map[string]int{"RSI": 5, "ADX": 1},
		Overall:      3,
		Bars:         60,
	}

	var buf bytes.Buffer
	printReport(&buf, rec, 1)
	out := buf.String()

	for _, want := range []string{
		"AAPL",
		"Decision: BUY (normal)",
		"Score: +2",
		"+3  RSI < 30",
		"# oversold",
		"RSI     ★★★★★",
		"OVERALL ★★★☆☆ Average",
		"28.1235",
		"trailingPE",
		"21.5000",
		"n/a",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	_, influential, found := strings.Cut(out, "Most influential rules")
	if !found {
		t.Fatalf("report missing influential rules section:\n%s", out)
	}
	influential, _, _ = strings.Cut(influential, "Scorecard")
	if !strings.Contains(influential, "RSI < 30") || strings.Contains(influential, "ADX < 20") {
		t.Errorf("expected only the top rule to be listed:\n%s", influential)
	}
}

func TestPrintSearch(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printSearch(&buf, "apple", []data.SearchResult{{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NMS"}})
	if !strings.Contains(buf.String(), "AAPL") || !strings.Contains(buf.String(), "Apple Inc.") {
		t.Errorf("unexpected search output: %q", buf.String())
	}

	buf.Reset()
	printSearch(&buf, "zzz", nil)
	if !strings.Contains(buf.String(), "no symbols match") {
		t.Errorf("unexpected empty output: %q", buf.String())
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{1.5, "1.5000"},
		{2.5e9, "2.500e+09"},
		{7, "7"},
		{"Up", "Up"},
		{nil, "n/a"},
	}
	color.NoColor = true
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
