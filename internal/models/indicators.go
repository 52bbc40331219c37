package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// IndicatorSet maps well-known indicator names (RSI, SMA20, trend, hs_found, ...)
// to scalar values: float64, bool or string.
type IndicatorSet map[string]interface{}

// Float returns a numeric indicator; bools count as 0/1
func (s IndicatorSet) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Bool returns a boolean indicator
func (s IndicatorSet) Bool(key string) (bool, bool) {
	v, ok := s[key].(bool)
	return v, ok
}

// String returns a string indicator
func (s IndicatorSet) String(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// Keys returns the indicator names in sorted order
func (s IndicatorSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy
func (s IndicatorSet) Clone() IndicatorSet {
	out := make(IndicatorSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the set as a plain JSON object. Values the encoder cannot
// represent (NaN, Inf, non-scalar types) are stored in their string form.
func (s IndicatorSet) MarshalJSON() ([]byte, error) {
	plain := make(map[string]interface{}, len(s))
	for k, v := range s {
		plain[k] = jsonScalar(v)
	}
	return json.Marshal(plain)
}

// FundamentalSet maps fundamental metric names to nullable values
type FundamentalSet map[string]*float64

// FundamentalFields are the fundamentals requested from data providers
var FundamentalFields = []string{
	"trailingPE",
	"forwardPE",
	"priceToBook",
	"marketCap",
	"debtToEquity",
	"totalDebt",
	"ebitda",
	"earningsQuarterlyGrowth",
	"dividendYield",
}

// EmptyFundamentals returns a set with every known field present and null
func EmptyFundamentals() FundamentalSet {
	out := make(FundamentalSet, len(FundamentalFields))
	for _, f := range FundamentalFields {
		out[f] = nil
	}
	return out
}

// Value returns a pointer to v, for building FundamentalSet literals
func Value(v float64) *float64 {
	return &v
}

// Get returns the value and whether it is present and non-null
func (f FundamentalSet) Get(key string) (float64, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// MarshalJSON encodes nulls as null and non-finite values as strings
func (f FundamentalSet) MarshalJSON() ([]byte, error) {
	plain := make(map[string]interface{}, len(f))
	for k, v := range f {
		if v == nil {
			plain[k] = nil
			continue
		}
		plain[k] = jsonScalar(*v)
	}
	return json.Marshal(plain)
}

// UnmarshalJSON accepts numbers, nulls and numeric strings
func (f *FundamentalSet) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(FundamentalSet, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case nil:
			out[k] = nil
		case float64:
			out[k] = Value(n)
		case string:
			parsed, err := strconv.ParseFloat(n, 64)
			if err != nil {
				out[k] = nil
				continue
			}
			out[k] = Value(parsed)
		default:
			return fmt.Errorf("fundamental %q: unsupported value type %T", k, v)
		}
	}
	*f = out
	return nil
}

func jsonScalar(v interface{}) interface{} {
	switch n := v.(type) {
	case nil, bool, string, int, int64:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return strconv.FormatFloat(n, 'g', -1, 64)
		}
		return n
	case float32:
		return jsonScalar(float64(n))
	default:
		return fmt.Sprint(n)
	}
}
