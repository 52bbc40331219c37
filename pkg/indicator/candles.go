package indicator

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// Candles flags single and two-bar candlestick patterns on the latest bars
type Candles struct {
	prev, cur models.PriceBar
	seen      int
}

// NewCandles creates the candlestick pattern calculator
func NewCandles() *Candles {
	return &Candles{}
}

func (c *Candles) Name() string {
	return "CANDLES"
}

func (c *Candles) Update(bar *models.PriceBar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}
	c.prev = c.cur
	c.cur = *bar
	c.seen++
	return 0, nil
}

// Value is not meaningful for pattern flags
func (c *Candles) Value() (float64, error) {
	return 0, fmt.Errorf("candlestick patterns have no scalar value")
}

// Flags evaluates the patterns on the latest one or two bars
func (c *Candles) Flags() map[string]bool {
	flags := map[string]bool{
		KeyHammer:     false,
		KeyDoji:       false,
		KeyBullEngulf: false,
		KeyBearEngulf: false,
	}
	if c.seen == 0 {
		return flags
	}

	o, h, l, cl := c.cur.Open, c.cur.High, c.cur.Low, c.cur.Close
	body := math.Abs(cl - o)
	rng := h - l
	if rng <= 1e-9 {
		rng = 1.0
	}
	lowerWick := math.Min(o, cl) - l
	upperWick := h - math.Max(o, cl)

	flags[KeyHammer] = lowerWick > 2*body && upperWick < 0.5*body
	flags[KeyDoji] = body <= 0.1*rng

	if c.seen >= 2 {
		o1, c1 := c.prev.Open, c.prev.Close
		body1 := math.Abs(c1 - o1)
		flags[KeyBullEngulf] = cl > o && c1 < o1 && body > body1 && o < c1 && cl > o1
		flags[KeyBearEngulf] = cl < o && c1 > o1 && body > body1 && o > c1 && cl < o1
	}
	return flags
}

// Emit writes the four candlestick flags
func (c *Candles) Emit(set models.IndicatorSet) {
	if c.seen == 0 {
		return
	}
	for k, v := range c.Flags() {
		set[k] = v
	}
}

func (c *Candles) Reset() {
	*c = Candles{}
}

func (c *Candles) IsReady() bool {
	return c.seen > 0
}
