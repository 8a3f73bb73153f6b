package backtest

import (
	"math"
	"strings"

	"zahaam/pkg/indicator"

	"github.com/go-playground/validator/v10"
)

type StrategyType string

const (
	StrategyMACrossover StrategyType = "MA_CROSSOVER"
	StrategyRSI         StrategyType = "RSI"
)

// Parameter names accepted in Strategy.Parameters.
const (
	ParamFastPeriod      = "fastPeriod"
	ParamSlowPeriod      = "slowPeriod"
	ParamStopLossPct     = "stopLossPct"
	ParamTakeProfitPct   = "takeProfitPct"
	ParamRSIPeriod       = "rsiPeriod"
	ParamOversoldLevel   = "oversoldLevel"
	ParamOverboughtLevel = "overboughtLevel"
)

// DefaultParameters fill any knob the caller leaves out.
var DefaultParameters = map[string]float64{
	ParamFastPeriod:      5,
	ParamSlowPeriod:      20,
	ParamStopLossPct:     5,
	ParamTakeProfitPct:   10,
	ParamRSIPeriod:       14,
	ParamOversoldLevel:   30,
	ParamOverboughtLevel: 70,
}

var periodParams = map[string]bool{
	ParamFastPeriod: true,
	ParamSlowPeriod: true,
	ParamRSIPeriod:  true,
}

// Strategy is the user-editable description of a backtest strategy. It is
// read-only while a run is in progress.
type Strategy struct {
	Type       StrategyType       `json:"type"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	// MAType selects the moving average used by MA_CROSSOVER: SMA or EMA.
	MAType indicator.Kind `json:"ma_type,omitempty"`
}

// Param returns the named knob, falling back to its default.
func (s Strategy) Param(name string) float64 {
	if v, ok := s.Parameters[name]; ok {
		return v
	}
	return DefaultParameters[name]
}

// WithParameters returns a copy of s with overrides applied on top of its own
// parameters.
func (s Strategy) WithParameters(overrides map[string]float64) Strategy {
	params := make(map[string]float64, len(s.Parameters)+len(overrides))
	for k, v := range s.Parameters {
		params[k] = v
	}
	for k, v := range overrides {
		params[k] = v
	}
	s.Parameters = params
	return s
}

// Config is the validated, typed form of a Strategy. StopLossPct and
// TakeProfitPct are percentages of the entry price; a value of 0 disables
// that exit, so the position is held until a sell signal or the last bar.
type Config struct {
	Type            StrategyType
	MAType          indicator.Kind `validate:"oneof=SMA EMA"`
	FastPeriod      int            `validate:"gte=1"`
	SlowPeriod      int            `validate:"gte=1,gtfield=FastPeriod"`
	StopLossPct     float64        `validate:"gte=0"`
	TakeProfitPct   float64        `validate:"gte=0"`
	RSIPeriod       int            `validate:"gte=2"`
	OversoldLevel   float64        `validate:"gte=0,lte=100"`
	OverboughtLevel float64        `validate:"gte=0,lte=100,gtfield=OversoldLevel"`
}

var paramNameByField = map[string]string{
	"MAType":          "ma_type",
	"FastPeriod":      ParamFastPeriod,
	"SlowPeriod":      ParamSlowPeriod,
	"StopLossPct":     ParamStopLossPct,
	"TakeProfitPct":   ParamTakeProfitPct,
	"RSIPeriod":       ParamRSIPeriod,
	"OversoldLevel":   ParamOversoldLevel,
	"OverboughtLevel": ParamOverboughtLevel,
}

// fields checked per strategy type; knobs of the other type are ignored.
var fieldsByType = map[StrategyType][]string{
	StrategyMACrossover: {"MAType", "FastPeriod", "SlowPeriod", "StopLossPct", "TakeProfitPct"},
	StrategyRSI:         {"RSIPeriod", "OversoldLevel", "OverboughtLevel", "StopLossPct", "TakeProfitPct"},
}

var validate = validator.New()

// Config validates s and returns its typed configuration. Failures are
// reported as *InvalidStrategyError.
func (s Strategy) Config() (Config, error) {
	typ := StrategyType(strings.ToUpper(strings.TrimSpace(string(s.Type))))
	fields, ok := fieldsByType[typ]
	if !ok {
		return Config{}, invalid("type", "%q is not a known strategy type", s.Type)
	}

	for _, field := range fields {
		name := paramNameByField[field]
		if _, numeric := DefaultParameters[name]; !numeric {
			continue
		}
		v := s.Param(name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Config{}, invalid(name, "must be a finite number")
		}
		if periodParams[name] && v != math.Trunc(v) {
			return Config{}, invalid(name, "must be a whole number of bars")
		}
	}

	maType := indicator.Kind(strings.ToUpper(string(s.MAType)))
	if maType == "" {
		maType = indicator.KindSMA
	}

	cfg := Config{
		Type:            typ,
		MAType:          maType,
		FastPeriod:      int(s.Param(ParamFastPeriod)),
		SlowPeriod:      int(s.Param(ParamSlowPeriod)),
		StopLossPct:     s.Param(ParamStopLossPct),
		TakeProfitPct:   s.Param(ParamTakeProfitPct),
		RSIPeriod:       int(s.Param(ParamRSIPeriod)),
		OversoldLevel:   s.Param(ParamOversoldLevel),
		OverboughtLevel: s.Param(ParamOverboughtLevel),
	}
	if err := validate.StructPartial(cfg, fields...); err != nil {
		return Config{}, fromValidation(err)
	}
	return cfg, nil
}

// WarmUp is the number of bars consumed before the strategy can emit its
// first signal.
func (c Config) WarmUp() int {
	if c.Type == StrategyRSI {
		return c.RSIPeriod
	}
	return c.SlowPeriod
}
