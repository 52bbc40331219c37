package models

import (
	"fmt"
	"math"
	"time"
)

// PriceBar is one OHLCV row of a price series
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Validate validates a PriceBar
func (b *PriceBar) Validate() error {
	if b.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return ErrInvalidPrice
		}
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Volume < 0 || math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) {
		return ErrInvalidVolume
	}
	return nil
}

// Body returns the absolute size of the candle body
func (b *PriceBar) Body() float64 {
	return math.Abs(b.Close - b.Open)
}

// PriceSeries is an ascending, duplicate-free sequence of bars for one symbol.
// It is read-only once handed to the indicator library.
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// NewPriceSeries builds and validates a series
func NewPriceSeries(symbol string, bars []PriceBar) (*PriceSeries, error) {
	s := &PriceSeries{Symbol: symbol, Bars: bars}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks every bar and the ordering invariants
func (s *PriceSeries) Validate() error {
	if len(s.Bars) == 0 {
		return ErrNoData
	}
	for i := range s.Bars {
		if err := s.Bars[i].Validate(); err != nil {
			return fmt.Errorf("bar %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		prev := s.Bars[i-1].Timestamp
		switch {
		case s.Bars[i].Timestamp.Equal(prev):
			return fmt.Errorf("bar %d: %w", i, ErrDuplicateTimestamp)
		case s.Bars[i].Timestamp.Before(prev):
			return fmt.Errorf("bar %d: %w", i, ErrUnsortedSeries)
		}
	}
	return nil
}

// Len returns the number of bars
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes returns the closing prices in order
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i := range s.Bars {
		closes[i] = s.Bars[i].Close
	}
	return closes
}

// Last returns the most recent bar, or nil for an empty series
func (s *PriceSeries) Last() *PriceBar {
	if s.Len() == 0 {
		return nil
	}
	return &s.Bars[len(s.Bars)-1]
}
