package dto

import (
	"zahaam/internal/backtest"
)

// StockData is a bar series plus where it came from. Synthetic bars are
// always flagged so callers never mistake them for market data.
type StockData struct {
	Symbol         string         `json:"symbol"`
	Range          string         `json:"range"`
	Interval       string         `json:"interval"`
	Source         string         `json:"source"`
	Synthetic      bool           `json:"synthetic"`
	FallbackReason string         `json:"fallback_reason,omitempty"`
	MarketPrice    float64        `json:"market_price,omitempty"`
	Bars           []backtest.Bar `json:"bars"`
}

type GetStockDataParam struct {
	Symbol   string `json:"symbol" param:"symbol" validate:"required,max=20,printascii,excludesall=/?#%"`
	Range    string `json:"range" query:"range" validate:"omitempty,oneof=1m 3m 6m 1y 2y 5y"`
	Interval string `json:"interval" query:"interval" validate:"omitempty,oneof=1d"`
	Source   string `json:"source" query:"source" validate:"omitempty,oneof=auto live synthetic"`
	Seed     *int64 `json:"seed,omitempty" query:"-"`
}

// Yahoo Finance API Response. Quote values are pointers because the API
// reports missing sessions as null.
type YahooFinanceResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				ExchangeTimezone   string  `json:"exchangeTimezoneName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}
