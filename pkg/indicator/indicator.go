// Package indicator computes technical indicators over close-price series.
//
// All functions return compact slices: the first element corresponds to the
// first bar where the indicator is defined. Use Align to project a compact
// series back onto the bar index for chart overlays.
package indicator

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when the series is shorter than the warm-up
// period of the requested indicator.
var ErrInsufficientData = errors.New("insufficient data for indicator period")

type Kind string

const (
	KindSMA Kind = "SMA"
	KindEMA Kind = "EMA"
	KindRSI Kind = "RSI"
)

// Offset returns the bar index of the first defined value of the indicator.
func (k Kind) Offset(period int) int {
	if k == KindRSI {
		return period
	}
	return period - 1
}

// Calculate dispatches to the indicator named by kind.
func Calculate(kind Kind, closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("invalid period %d", period)
	}
	var out []float64
	switch kind {
	case KindSMA:
		out = SMA(closes, period)
	case KindEMA:
		out = EMA(closes, period)
	case KindRSI:
		out = RSI(closes, period)
	default:
		return nil, fmt.Errorf("unknown indicator %q", kind)
	}
	if out == nil {
		return nil, fmt.Errorf("%s(%d) over %d closes: %w", kind, period, len(closes), ErrInsufficientData)
	}
	return out, nil
}

// SMA returns the simple moving average, len(closes)-period+1 values.
func SMA(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period {
		return nil
	}
	out := make([]float64, len(closes)-period+1)
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i-period+1] = sum / float64(period)
		}
	}
	return out
}

// EMA returns the exponential moving average seeded with the SMA of the first
// period closes, len(closes)-period+1 values.
func EMA(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period {
		return nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(closes)-period+1)

	var seed float64
	for _, c := range closes[:period] {
		seed += c
	}
	out[0] = seed / float64(period)

	for k := 1; k < len(out); k++ {
		out[k] = closes[period+k-1]*alpha + out[k-1]*(1-alpha)
	}
	return out
}

// RSI returns Wilder's relative strength index, len(closes)-period values.
// The first value covers the first period price changes.
func RSI(closes []float64, period int) []float64 {
	if period < 1 || len(closes) <= period {
		return nil
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := change(closes[i-1], closes[i])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, len(closes)-period)
	out[0] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for k := 1; k < len(out); k++ {
		gain, loss := change(closes[period+k-1], closes[period+k])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[k] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func change(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Align projects a compact series onto n bars. Positions before offset, and
// positions not covered by values, are nil.
func Align(values []float64, n, offset int) []*float64 {
	out := make([]*float64, n)
	for i, v := range values {
		idx := offset + i
		if idx < 0 || idx >= n {
			continue
		}
		v := v
		out[idx] = &v
	}
	return out
}
