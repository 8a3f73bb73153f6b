// Package backtest runs trading strategies over daily price bars:
// signals are derived from indicators, a single-position ledger simulates the
// trades and the run is reduced to performance metrics.
package backtest

import "time"

// DateLayout is the ISO-8601 calendar date used for Bar.Date.
const DateLayout = "2006-01-02"

// Bar is one daily OHLCV data point.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Time parses the bar date. A malformed date yields the zero time.
func (b Bar) Time() time.Time {
	t, err := time.Parse(DateLayout, b.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Closes extracts the close-price series.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
