package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/mohamedkhairy/stock-advisor/internal/data"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/internal/scorecard"
)

var (
	green    = color.New(color.FgGreen).SprintfFunc()
	red      = color.New(color.FgRed).SprintfFunc()
	yellow   = color.New(color.FgYellow).SprintfFunc()
	cyan     = color.New(color.FgCyan).SprintfFunc()
	faint    = color.New(color.Faint).SprintfFunc()
	boldCyan = color.New(color.FgCyan, color.Bold).SprintfFunc()

	boldGreen  = color.New(color.FgGreen, color.Bold).SprintfFunc()
	boldRed    = color.New(color.FgRed, color.Bold).SprintfFunc()
	boldYellow = color.New(color.FgYellow, color.Bold).SprintfFunc()
)

const rule = "============================================================"

// decisionColor picks the color for a decision
func decisionColor(d models.Decision) func(string, ...interface{}) string {
	switch d {
	case models.DecisionBuy:
		return boldGreen
	case models.DecisionSell:
		return boldRed
	default:
		return boldYellow
	}
}

// starColor colors a 0..5 sub-score
func starColor(score int) func(string, ...interface{}) string {
	switch {
	case score >= 4:
		return green
	case score <= 2:
		return red
	default:
		return yellow
	}
}

// printReport renders an analysis record for a terminal
func printReport(w io.Writer, rec *models.AnalysisRecord, top int) {
	fmt.Fprintln(w, cyan(rule))
	fmt.Fprintf(w, " %s  %s  %s\n",
		boldCyan(rec.Symbol),
		faint(rec.Timestamp.Format("2006-01-02 15:04:05 MST")),
		faint(fmt.Sprintf("%d bars", rec.Bars)),
	)
	fmt.Fprintln(w, cyan(rule))

	paint := decisionColor(rec.Decision)
	fmt.Fprintf(w, "\n Decision: %s (%s)   Score: %s\n",
		paint("%s", rec.Decision), rec.Strength, paint("%+d", rec.Score))
	if rec.Reason != "" {
		fmt.Fprintf(w, " Reason:   %s\n", rec.Reason)
	}

	if len(rec.Triggered) > 0 {
		fmt.Fprintf(w, "\n %s\n", boldCyan("Most influential rules"))
		for _, r := range scorecard.RankInfluential(rec.Triggered, top) {
			line := fmt.Sprintf("%+3d  %s", r.Score, r.Expression)
			if r.Comment != "" {
				line += faint("  # " + r.Comment)
			}
			if r.Score >= 0 {
				fmt.Fprintf(w, "   %s\n", green("%s", line))
			} else {
				fmt.Fprintf(w, "   %s\n", red("%s", line))
			}
		}
	}

	if len(rec.Scorecard) > 0 {
		fmt.Fprintf(w, "\n %s\n", boldCyan("Scorecard"))
		for _, name := range sortedScorecard(rec.Scorecard) {
			s := rec.Scorecard[name]
			fmt.Fprintf(w, "   %-7s %s %s\n", name, starColor(s)("%s", stars(s)), faint(scorecard.Label(s)))
		}
		fmt.Fprintf(w, "   %-7s %s %s\n", "OVERALL", starColor(rec.Overall)("%s", stars(rec.Overall)), scorecard.Label(rec.Overall))
	}

	fmt.Fprintf(w, "\n %s\n", boldCyan("Indicators"))
	for _, key := range rec.Indicators.Keys() {
		fmt.Fprintf(w, "   %-16s %s\n", key, formatValue(rec.Indicators[key]))
	}

	fmt.Fprintf(w, "\n %s\n", boldCyan("Fundamentals"))
	for _, key := range models.FundamentalFields {
		v, ok := rec.Fundamentals.Get(key)
		if !ok {
			fmt.Fprintf(w, "   %-24s %s\n", key, faint("n/a"))
			continue
		}
		fmt.Fprintf(w, "   %-24s %s\n", key, formatValue(v))
	}
	fmt.Fprintln(w)
}

// printSearch renders ticker search results
func printSearch(w io.Writer, query string, results []data.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintf(w, "%s no symbols match %q\n", yellow("WARN "), query)
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%-10s %-40s %s\n", boldCyan(r.Symbol), r.Name, faint(r.Exchange))
	}
}

func stars(score int) string {
	score = scorecard.Clamp(score)
	return strings.Repeat("★", score) + strings.Repeat("☆", scorecard.Max-score)
}

func sortedScorecard(card map[string]int) []string {
	names := make([]string, 0, len(card))
	for name := range card {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatValue(v interface{}) string {
	switch n := v.(type) {
	case float64:
		if math.Abs(n) >= 1e6 {
			return fmt.Sprintf("%.3e", n)
		}
		return fmt.Sprintf("%.4f", n)
	case int:
		return fmt.Sprintf("%d", n)
	case bool:
		if n {
			return green("true")
		}
		return faint("false")
	case string:
		return n
	case nil:
		return faint("n/a")
	default:
		return fmt.Sprint(n)
	}
}
