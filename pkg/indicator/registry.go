package indicator

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// Registry holds a series' calculators in registration order, which makes
// Emit deterministic when two calculators write the same key.
type Registry struct {
	mu    sync.RWMutex
	calcs []Calculator
}

func NewRegistry() *Registry {
	return &Registry{}
}

// indexOf returns the position of name, or -1. Caller holds mu.
func (r *Registry) indexOf(name string) int {
	return slices.IndexFunc(r.calcs, func(c Calculator) bool { return c.Name() == name })
}

func (r *Registry) Register(calc Calculator) error {
	if calc == nil {
		return errors.New("calculator cannot be nil")
	}
	name := calc.Name()
	if name == "" {
		return errors.New("calculator name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(name) >= 0 {
		return fmt.Errorf("calculator with name %q already registered", name)
	}
	r.calcs = append(r.calcs, calc)
	return nil
}

func (r *Registry) Get(name string) (Calculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(name); i >= 0 {
		return r.calcs[i], nil
	}
	return nil, fmt.Errorf("calculator %q not found", name)
}

// List returns calculator names in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.calcs))
	for _, c := range r.calcs {
		names = append(names, c.Name())
	}
	return names
}

func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(name)
	if i < 0 {
		return fmt.Errorf("calculator %q not found", name)
	}
	r.calcs = slices.Delete(r.calcs, i, i+1)
	return nil
}

// Update feeds bar to every calculator, even after one fails, and returns
// the first failure wrapped with the calculator's name.
func (r *Registry) Update(bar *models.PriceBar) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var first error
	for _, c := range r.calcs {
		_, err := c.Update(bar)
		if err != nil && first == nil {
			first = fmt.Errorf("%s: %w", c.Name(), err)
		}
	}
	return first
}

// Emit merges the output of every ready calculator into set
func (r *Registry) Emit(set models.IndicatorSet) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.calcs {
		if c.IsReady() {
			c.Emit(set)
		}
	}
}

func (r *Registry) Reset() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.calcs {
		c.Reset()
	}
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calcs = nil
}
