package indicator

import (
	"testing"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

func TestADX_Readiness(t *testing.T) {
	adx, err := NewADX(14)
	if err != nil {
		t.Fatalf("Failed to create ADX: %v", err)
	}
	if adx.WindowSize() != 28 {
		t.Errorf("Expected window size 28, got %d", adx.WindowSize())
	}

	feedCloses(t, adx, risingCloses(27, 100))
	if adx.IsReady() {
		t.Error("ADX should not be ready after 27 bars")
	}
	bar := closeBar(27, 127)
	adx.Update(&bar)
	if !adx.IsReady() {
		t.Error("ADX should be ready after 28 bars")
	}
	if adx.BarsProcessed() != 28 {
		t.Errorf("Expected 28 bars processed, got %d", adx.BarsProcessed())
	}
}

func TestADX_SteadyUptrend(t *testing.T) {
	adx, _ := NewADX(14)
	feedCloses(t, adx, risingCloses(60, 100))

	// Every move is +1 DM against a true range of 2
	set := make(models.IndicatorSet)
	adx.Emit(set)
	if v, _ := set.Float(KeyADX); !approxEqual(v, 100, 1e-9) {
		t.Errorf("Expected ADX 100, got %f", v)
	}
	if v, _ := set.Float(KeyDIPlus); !approxEqual(v, 50, 1e-9) {
		t.Errorf("Expected DI+ 50, got %f", v)
	}
	if v, _ := set.Float(KeyDIMinus); v != 0 {
		t.Errorf("Expected DI- 0, got %f", v)
	}
}

func TestADX_FlatSeriesOmitted(t *testing.T) {
	adx, _ := NewADX(14)
	series := flatBars(60, 100)
	for i := range series.Bars {
		adx.Update(&series.Bars[i])
	}
	set := make(models.IndicatorSet)
	adx.Emit(set)
	if len(set) != 0 {
		t.Errorf("Expected nothing emitted for zero true range, got %v", set)
	}
}

func TestADX_Reset(t *testing.T) {
	adx, _ := NewADX(14)
	feedCloses(t, adx, risingCloses(40, 100))
	adx.Reset()
	if adx.IsReady() || adx.BarsProcessed() != 0 {
		t.Error("ADX should be empty after reset")
	}
	if adx.WindowSize() != 28 {
		t.Error("Reset should keep the period")
	}
}
