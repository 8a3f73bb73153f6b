package dto

import "zahaam/internal/backtest"

type GetIndicatorsParam struct {
	Symbol string `param:"symbol" validate:"required,max=20,printascii,excludesall=/?#%"`
	Range  string `query:"range" validate:"omitempty,oneof=1m 3m 6m 1y 2y 5y"`
	Source string `query:"source" validate:"omitempty,oneof=auto live synthetic"`
	SMA    int    `query:"sma" validate:"gte=0,lte=500"`
	EMA    int    `query:"ema" validate:"gte=0,lte=500"`
	RSI    int    `query:"rsi" validate:"gte=0,lte=500"`
	Seed   *int64 `query:"-"`
}

// IndicatorSeries is aligned to the bar series: element i belongs to bar i
// and is null until the indicator has warmed up.
type IndicatorSeries struct {
	Kind   string     `json:"kind"`
	Period int        `json:"period"`
	Values []*float64 `json:"values"`
}

type IndicatorsResponse struct {
	DataProvenance
	Bars       []backtest.Bar    `json:"bars"`
	Indicators []IndicatorSeries `json:"indicators"`
}
