package scorecard

import (
	"math"
	"sort"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// Scorecard maps a scorer name to its 0..5 sub-score
type Scorecard map[string]int

// Max is the top of the score scale
const Max = 5

var labels = [...]string{"N/A", "Very weak", "Weak", "Average", "Good", "Excellent"}

// Clamp bounds v to 0..5
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > Max {
		return Max
	}
	return v
}

// Overall is the mean sub-score rounded half away from zero, 0 for an
// empty card
func (c Scorecard) Overall() int {
	if len(c) == 0 {
		return 0
	}
	sum := 0
	for _, v := range c {
		sum += v
	}
	return Clamp(int(math.Round(float64(sum) / float64(len(c)))))
}

// Label returns a short description of a 0..5 score
func Label(score int) string {
	return labels[Clamp(score)]
}

// Compute rates set with the built-in scorers
func Compute(set models.IndicatorSet) Scorecard {
	return defaultRegistry.Compute(set)
}

var defaultRegistry = NewRegistry()

// RankInfluential returns up to n triggered rules ordered by absolute
// score, largest first. Ties keep their evaluation order. n <= 0 means all.
func RankInfluential(triggered []models.TriggeredRule, n int) []models.TriggeredRule {
	ranked := make([]models.TriggeredRule, len(triggered))
	copy(ranked, triggered)
	sort.SliceStable(ranked, func(i, j int) bool {
		return abs(ranked[i].Score) > abs(ranked[j].Score)
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
