package backtest

import (
	"zahaam/pkg/indicator"
)

type Signal string

const (
	SignalNone Signal = "NONE"
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)

// SignalGenerator maps a close-price series to one signal per bar.
type SignalGenerator interface {
	Generate(closes []float64, cfg Config) []Signal
	GetType() StrategyType
}

var signalGenerators = map[StrategyType]SignalGenerator{
	StrategyMACrossover: maCrossover{},
	StrategyRSI:         rsiBand{},
}

// GenerateSignals returns a signal for every bar. Bars inside the warm-up
// window, or the whole series when it is too short, are SignalNone.
func GenerateSignals(bars []Bar, cfg Config) []Signal {
	gen, ok := signalGenerators[cfg.Type]
	if !ok {
		return noSignals(len(bars))
	}
	return gen.Generate(Closes(bars), cfg)
}

func noSignals(n int) []Signal {
	out := make([]Signal, n)
	for i := range out {
		out[i] = SignalNone
	}
	return out
}

// series is a compact indicator output together with the bar index of its
// first value.
type series struct {
	values []float64
	offset int
}

func (s series) at(i int) (float64, bool) {
	k := i - s.offset
	if k < 0 || k >= len(s.values) {
		return 0, false
	}
	return s.values[k], true
}

type maCrossover struct{}

func (maCrossover) GetType() StrategyType { return StrategyMACrossover }

func (maCrossover) Generate(closes []float64, cfg Config) []Signal {
	out := noSignals(len(closes))

	fastValues, err := indicator.Calculate(cfg.MAType, closes, cfg.FastPeriod)
	if err != nil {
		return out
	}
	slowValues, err := indicator.Calculate(cfg.MAType, closes, cfg.SlowPeriod)
	if err != nil {
		return out
	}
	fast := series{values: fastValues, offset: cfg.MAType.Offset(cfg.FastPeriod)}
	slow := series{values: slowValues, offset: cfg.MAType.Offset(cfg.SlowPeriod)}

	for i := 1; i < len(closes); i++ {
		prevFast, ok1 := fast.at(i - 1)
		prevSlow, ok2 := slow.at(i - 1)
		curFast, ok3 := fast.at(i)
		curSlow, ok4 := slow.at(i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}

		switch {
		case prevFast <= prevSlow && curFast > curSlow:
			out[i] = SignalBuy
		case prevFast >= prevSlow && curFast < curSlow:
			out[i] = SignalSell
		}
	}
	return out
}

// rsiBand is level triggered: it emits on every bar the RSI stays inside the
// oversold or overbought band, not only on entry into it.
type rsiBand struct{}

func (rsiBand) GetType() StrategyType { return StrategyRSI }

func (rsiBand) Generate(closes []float64, cfg Config) []Signal {
	out := noSignals(len(closes))

	values, err := indicator.Calculate(indicator.KindRSI, closes, cfg.RSIPeriod)
	if err != nil {
		return out
	}
	rsi := series{values: values, offset: indicator.KindRSI.Offset(cfg.RSIPeriod)}

	for i := range closes {
		v, ok := rsi.at(i)
		if !ok {
			continue
		}
		switch {
		case v < cfg.OversoldLevel:
			out[i] = SignalBuy
		case v > cfg.OverboughtLevel:
			out[i] = SignalSell
		}
	}
	return out
}
