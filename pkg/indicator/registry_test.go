package indicator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// mockCalculator counts bars and becomes ready after two
type mockCalculator struct {
	name      string
	value     float64
	ready     bool
	processed int
	failWith  error
}

func (m *mockCalculator) Name() string {
	return m.name
}

func (m *mockCalculator) Update(bar *models.PriceBar) (float64, error) {
	m.processed++
	m.value = float64(m.processed)
	if m.processed >= 2 {
		m.ready = true
	}
	return m.value, m.failWith
}

func (m *mockCalculator) Value() (float64, error) {
	return m.value, nil
}

func (m *mockCalculator) Emit(set models.IndicatorSet) {
	set[m.name] = m.value
}

func (m *mockCalculator) Reset() {
	m.processed = 0
	m.value = 0
	m.ready = false
}

func (m *mockCalculator) IsReady() bool {
	return m.ready
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&mockCalculator{name: "test1"}); err != nil {
		t.Fatalf("Failed to register calculator: %v", err)
	}
	if err := registry.Register(&mockCalculator{name: "test2"}); err != nil {
		t.Fatalf("Failed to register calculator: %v", err)
	}

	if err := registry.Register(&mockCalculator{name: "test1"}); err == nil {
		t.Error("Expected error for duplicate registration")
	}
	if err := registry.Register(nil); err == nil {
		t.Error("Expected error for nil calculator")
	}
	if err := registry.Register(&mockCalculator{}); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestRegistry_GetAndList(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"b", "a", "c"} {
		registry.Register(&mockCalculator{name: name})
	}

	calc, err := registry.Get("a")
	if err != nil {
		t.Fatalf("Failed to get calculator: %v", err)
	}
	if calc.Name() != "a" {
		t.Errorf("Expected calculator 'a', got %q", calc.Name())
	}
	if _, err := registry.Get("missing"); err == nil {
		t.Error("Expected error for missing calculator")
	}

	if got := registry.List(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("Expected registration order [b a c], got %v", got)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockCalculator{name: "a"})
	registry.Register(&mockCalculator{name: "b"})

	if err := registry.Unregister("a"); err != nil {
		t.Fatalf("Failed to unregister: %v", err)
	}
	if err := registry.Unregister("a"); err == nil {
		t.Error("Expected error unregistering twice")
	}
	if got := registry.List(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Expected [b], got %v", got)
	}
}

func TestRegistry_UpdateAndEmit(t *testing.T) {
	registry := NewRegistry()
	a := &mockCalculator{name: "a"}
	b := &mockCalculator{name: "b"}
	registry.Register(a)
	registry.Register(b)

	bar := closeBar(0, 100)
	if err := registry.Update(&bar); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	set := make(models.IndicatorSet)
	registry.Emit(set)
	if len(set) != 0 {
		t.Errorf("Calculators that are not ready should not emit, got %v", set)
	}

	registry.Update(&bar)
	registry.Emit(set)
	if set["a"] != 2.0 || set["b"] != 2.0 {
		t.Errorf("Expected both calculators to emit 2, got %v", set)
	}

	registry.Reset()
	if a.IsReady() || b.IsReady() {
		t.Error("Reset should reset every calculator")
	}
}

func TestRegistry_UpdateError(t *testing.T) {
	registry := NewRegistry()
	boom := errors.New("boom")
	failing := &mockCalculator{name: "failing", failWith: boom}
	healthy := &mockCalculator{name: "healthy"}
	registry.Register(failing)
	registry.Register(healthy)

	bar := closeBar(0, 100)
	err := registry.Update(&bar)
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped calculator error, got %v", err)
	}
	if healthy.processed != 1 {
		t.Error("Every calculator should see the bar even when one fails")
	}
}

func TestRegistry_Clear(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockCalculator{name: "a"})
	registry.Clear()
	if len(registry.List()) != 0 {
		t.Error("Registry should be empty after Clear")
	}
}
