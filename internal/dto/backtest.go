package dto

import (
	"time"

	"zahaam/internal/backtest"
	"zahaam/pkg/indicator"
)

type StrategyRequest struct {
	Type       string             `json:"type" validate:"required"`
	Parameters map[string]float64 `json:"parameters"`
	MAType     string             `json:"ma_type"`
}

func (s StrategyRequest) ToStrategy() backtest.Strategy {
	return backtest.Strategy{
		Type:       backtest.StrategyType(s.Type),
		Parameters: s.Parameters,
		MAType:     indicator.Kind(s.MAType),
	}
}

// BacktestRequest is the body of POST /api/backtest.
type BacktestRequest struct {
	Symbol          string          `json:"symbol" validate:"required,max=20,printascii,excludesall=/?#%"`
	Range           string          `json:"range" validate:"omitempty,oneof=1m 3m 6m 1y 2y 5y"`
	Source          string          `json:"source" validate:"omitempty,oneof=auto live synthetic"`
	Seed            *int64          `json:"seed,omitempty"`
	InitialCapital  float64         `json:"initial_capital" validate:"gte=0"`
	PositionSizePct float64         `json:"position_size_pct" validate:"gte=0,lte=1"`
	Strategy        StrategyRequest `json:"strategy" validate:"required"`
}

func (r BacktestRequest) StockParam() GetStockDataParam {
	return GetStockDataParam{
		Symbol:   r.Symbol,
		Range:    r.Range,
		Interval: Interval1Day,
		Source:   r.Source,
		Seed:     r.Seed,
	}
}

// DataProvenance tells the caller whether results were computed on market
// data or on the synthetic fallback.
type DataProvenance struct {
	Symbol         string `json:"symbol"`
	Range          string `json:"range"`
	Source         string `json:"source"`
	Synthetic      bool   `json:"synthetic"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

func NewDataProvenance(data *StockData) DataProvenance {
	return DataProvenance{
		Symbol:         data.Symbol,
		Range:          data.Range,
		Source:         data.Source,
		Synthetic:      data.Synthetic,
		FallbackReason: data.FallbackReason,
	}
}

type BacktestResponse struct {
	RunID uint `json:"run_id,omitempty"`
	DataProvenance
	Result *backtest.Result `json:"result"`
}

// OptimizeRequest is the body of POST /api/backtest/optimize.
type OptimizeRequest struct {
	BacktestRequest
	Ranges map[string]backtest.Range `json:"ranges" validate:"required,min=1"`
	Top    int                       `json:"top" validate:"gte=0,lte=100"`
}

type OptimizeResponse struct {
	DataProvenance
	Result *backtest.OptimizeResult `json:"result"`
}

type GetBacktestRunsParam struct {
	Symbol string `query:"symbol" validate:"omitempty,max=20,printascii,excludesall=/?#%"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
}

// BacktestRunSummary is one row of the run history listing.
type BacktestRunSummary struct {
	ID             uint      `json:"id"`
	Symbol         string    `json:"symbol"`
	Range          string    `json:"range"`
	StrategyType   string    `json:"strategy_type"`
	Source         string    `json:"source"`
	Synthetic      bool      `json:"synthetic"`
	InitialCapital float64   `json:"initial_capital"`
	FinalCapital   float64   `json:"final_capital"`
	TotalReturn    float64   `json:"total_return"`
	WinRate        float64   `json:"win_rate"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	TotalTrades    int       `json:"total_trades"`
	CreatedAt      time.Time `json:"created_at"`
}

type BacktestRunDetail struct {
	BacktestRunSummary
	FallbackReason string                 `json:"fallback_reason,omitempty"`
	Strategy       backtest.Strategy      `json:"strategy"`
	Trades         []backtest.Trade       `json:"trades"`
	Equity         []backtest.EquityPoint `json:"equity"`
}
