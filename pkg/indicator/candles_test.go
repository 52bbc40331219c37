package indicator

import (
	"testing"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

func ohlc(i int, o, h, l, c float64) models.PriceBar {
	return models.PriceBar{Timestamp: baseTime.AddDate(0, 0, i), Open: o, High: h, Low: l, Close: c}
}

func TestCandles_Flags(t *testing.T) {
	tests := []struct {
		name string
		bars []models.PriceBar
		want string
	}{
		{
			name: "hammer",
			bars: []models.PriceBar{ohlc(0, 10, 10.6, 8, 10.5)},
			want: KeyHammer,
		},
		{
			name: "doji",
			bars: []models.PriceBar{ohlc(0, 10, 11, 9, 10.05)},
			want: KeyDoji,
		},
		{
			name: "bullish engulfing",
			bars: []models.PriceBar{ohlc(0, 10, 10.2, 8.8, 9), ohlc(1, 8.5, 10.6, 8.4, 10.5)},
			want: KeyBullEngulf,
		},
		{
			name: "bearish engulfing",
			bars: []models.PriceBar{ohlc(0, 9, 10.2, 8.8, 10), ohlc(1, 10.5, 10.6, 8.4, 8.5)},
			want: KeyBearEngulf,
		},
		{
			name: "plain bar",
			bars: []models.PriceBar{ohlc(0, 10, 12.2, 9.8, 12)},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCandles()
			for i := range tt.bars {
				c.Update(&tt.bars[i])
			}
			for key, got := range c.Flags() {
				if want := key == tt.want; got != want {
					t.Errorf("%s = %v, want %v", key, got, want)
				}
			}
		})
	}
}

func TestCandles_EngulfingNeedsTwoBars(t *testing.T) {
	c := NewCandles()
	bar := ohlc(0, 8.5, 10.6, 8.4, 10.5)
	c.Update(&bar)
	flags := c.Flags()
	if flags[KeyBullEngulf] || flags[KeyBearEngulf] {
		t.Error("Engulfing patterns need a previous bar")
	}
}

func TestCandles_ZeroRangeIsDoji(t *testing.T) {
	c := NewCandles()
	bar := ohlc(0, 100, 100, 100, 100)
	c.Update(&bar)
	if !c.Flags()[KeyDoji] {
		t.Error("A bar with no range should be a doji")
	}
}

func TestCandles_Emit(t *testing.T) {
	c := NewCandles()
	set := make(models.IndicatorSet)
	c.Emit(set)
	if len(set) != 0 {
		t.Errorf("Expected nothing emitted without bars, got %v", set)
	}

	bar := ohlc(0, 10, 11, 9, 10.05)
	c.Update(&bar)
	c.Emit(set)
	if len(set) != 4 {
		t.Errorf("Expected 4 candlestick flags, got %v", set)
	}
	if v, _ := set.Bool(KeyDoji); !v {
		t.Error("Expected doji flag set")
	}

	c.Reset()
	if c.IsReady() {
		t.Error("Candles should be empty after reset")
	}
}
