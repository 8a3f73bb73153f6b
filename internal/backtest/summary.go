package backtest

import (
	"github.com/samber/lo"
)

// Summary aggregates a ledger into performance metrics. Percentages are
// expressed in percent, not fractions.
type Summary struct {
	TotalReturn      float64 `json:"total_return"`
	WinRate          float64 `json:"win_rate"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	LosingTrades     int     `json:"losing_trades"`
	GrossProfit      float64 `json:"gross_profit"`
	GrossLoss        float64 `json:"gross_loss"`
	ProfitFactor     float64 `json:"profit_factor"`
	AvgHoldingDays   float64 `json:"avg_holding_days"`
	BuyAndHoldReturn float64 `json:"buy_and_hold_return"`
}

// Summarize computes the metrics of a finished simulation.
func Summarize(bars []Bar, ledger Ledger) Summary {
	var sum Summary
	if ledger.InitialCapital > 0 {
		sum.TotalReturn = (ledger.FinalCapital - ledger.InitialCapital) / ledger.InitialCapital * 100
	}

	closed := lo.Filter(ledger.Trades, func(t Trade, _ int) bool {
		return t.Type == TradeSell && t.PnL != nil
	})
	sum.TotalTrades = len(closed)

	var holding int
	for _, t := range closed {
		holding += t.HoldingDays
		if *t.PnL > 0 {
			sum.WinningTrades++
			sum.GrossProfit += *t.PnL
		} else {
			sum.LosingTrades++
			sum.GrossLoss += -*t.PnL
		}
	}
	if sum.TotalTrades > 0 {
		sum.WinRate = float64(sum.WinningTrades) / float64(sum.TotalTrades) * 100
		sum.AvgHoldingDays = float64(holding) / float64(sum.TotalTrades)
	}
	if sum.GrossLoss > 0 {
		sum.ProfitFactor = sum.GrossProfit / sum.GrossLoss
	}

	sum.MaxDrawdown = MaxDrawdown(ledger.Equity)
	sum.BuyAndHoldReturn = buyAndHoldReturn(bars)
	return sum
}

// MaxDrawdown is the largest percentage decline from a running peak of the
// equity curve. It is never negative.
func MaxDrawdown(equity []EquityPoint) float64 {
	var peak, maxDD float64
	for i, p := range equity {
		if i == 0 || p.Value > peak {
			peak = p.Value
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - p.Value) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func buyAndHoldReturn(bars []Bar) float64 {
	if len(bars) == 0 || bars[0].Close <= 0 {
		return 0
	}
	first, last := bars[0].Close, bars[len(bars)-1].Close
	return (last - first) / first * 100
}
