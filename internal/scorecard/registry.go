package scorecard

import (
	"fmt"
	"sync"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// Registry manages scorers in registration order
type Registry struct {
	mu      sync.RWMutex
	scorers map[string]Scorer
	ordered []Scorer
}

// NewRegistry creates a registry holding the built-in scorers
func NewRegistry() *Registry {
	r := &Registry{
		scorers: make(map[string]Scorer),
	}
	r.registerBuiltIns()
	return r
}

// NewEmptyRegistry creates a registry without built-in scorers
func NewEmptyRegistry() *Registry {
	return &Registry{scorers: make(map[string]Scorer)}
}

// Register adds a scorer
func (r *Registry) Register(s Scorer) error {
	if s == nil {
		return fmt.Errorf("scorer cannot be nil")
	}
	name := s.Name()
	if name == "" {
		return fmt.Errorf("scorer name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scorers[name]; exists {
		return fmt.Errorf("scorer with name %q already registered", name)
	}
	r.scorers[name] = s
	r.ordered = append(r.ordered, s)
	return nil
}

// List returns scorer names in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.ordered))
	for i, s := range r.ordered {
		names[i] = s.Name()
	}
	return names
}

// Compute rates set with every registered scorer. Sub-scores are clamped
// to 0..5.
func (r *Registry) Compute(set models.IndicatorSet) Scorecard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card := make(Scorecard, len(r.ordered))
	for _, s := range r.ordered {
		card[s.Name()] = Clamp(s.Score(set))
	}
	return card
}

func (r *Registry) registerBuiltIns() {
	for _, s := range []Scorer{
		macdScorer(),
		rsiScorer(),
		adxScorer(),
		trendScorer(),
		hnsScorer(),
		stochScorer(),
		bbScorer(),
		smaScorer(),
		candleScorer(),
	} {
		// Built-in names are unique
		_ = r.Register(s)
	}
}
