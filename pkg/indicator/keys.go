package indicator

// Indicator names shared with the rule engine
const (
	KeyClose      = "Close"
	KeyRSI        = "RSI"
	KeyBBLower    = "BBL"
	KeyBBMiddle   = "BBM"
	KeyBBUpper    = "BBU"
	KeyBBWidthPct = "BB_WIDTH_PCT"
	KeyStochK     = "STOCH_K"
	KeyStochD     = "STOCH_D"
	KeySMA20      = "SMA20"
	KeySMA50      = "SMA50"
	KeyEMA12      = "EMA12"
	KeyEMA26      = "EMA26"
	KeyMACD       = "MACD"
	KeyMACDSignal = "MACD_SIGNAL"
	KeyMACDHist   = "MACD_HIST"
	KeyADX        = "ADX"
	KeyDIPlus     = "DI_PLUS"
	KeyDIMinus    = "DI_MINUS"
	KeyTrend      = "trend"

	KeyHammer     = "candlestick_hammer"
	KeyDoji       = "candlestick_doji"
	KeyBullEngulf = "candlestick_bull_engulf"
	KeyBearEngulf = "candlestick_bear_engulf"

	KeyHSFound      = "hs_found"
	KeyHSType       = "hs_type"
	KeyHSConfidence = "hs_confidence"
	KeyHSLeft       = "hs_left"
	KeyHSHead       = "hs_head"
	KeyHSRight      = "hs_right"
)

// NumericKeys lists the numeric indicators that may be absent from a set
// when the series is too short. The rule engine can bind a neutral default
// for them.
var NumericKeys = []string{
	KeyRSI,
	KeyBBLower, KeyBBMiddle, KeyBBUpper, KeyBBWidthPct,
	KeyStochK, KeyStochD,
	KeySMA20, KeySMA50,
	KeyEMA12, KeyEMA26,
	KeyMACD, KeyMACDSignal, KeyMACDHist,
	KeyADX, KeyDIPlus, KeyDIMinus,
}

// Trend labels
const (
	TrendUp       = "Up"
	TrendDown     = "Down"
	TrendSideways = "Sideways"
	TrendUnknown  = "Unknown"
	strongSuffix  = " (strong)"
)
