package backtest

import (
	"math"
)

type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

type TradeReason string

const (
	ReasonSignal      TradeReason = "SIGNAL"
	ReasonStopLoss    TradeReason = "STOP_LOSS"
	ReasonTakeProfit  TradeReason = "TAKE_PROFIT"
	ReasonEndOfPeriod TradeReason = "END_OF_PERIOD"
)

// DefaultPositionSizePct is the share of available capital committed on entry.
const DefaultPositionSizePct = 0.95

// Trade is one entry in the trade log. PnL fields are set on SELL trades only.
type Trade struct {
	Type        TradeType   `json:"type"`
	Reason      TradeReason `json:"reason"`
	Date        string      `json:"date"`
	Price       float64     `json:"price"`
	Shares      int64       `json:"shares"`
	PnL         *float64    `json:"pnl,omitempty"`
	PnLPercent  *float64    `json:"pnl_percent,omitempty"`
	HoldingDays int         `json:"holding_days,omitempty"`
}

// EquityPoint is the mark-to-market portfolio value at the close of a bar.
type EquityPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Position is the open holding. A simulation has at most one.
type Position struct {
	EntryPrice float64
	Shares     int64
	EntryDate  string
	entryIndex int
}

// Options tune the simulation. Zero values take the defaults.
// Entries buy whole shares only, floor(PositionSizePct*capital/close);
// a buy signal that cannot afford one share is skipped.
type Options struct {
	InitialCapital  float64
	PositionSizePct float64
}

const DefaultInitialCapital = 10000.0

func (o Options) withDefaults() Options {
	if o.InitialCapital <= 0 {
		o.InitialCapital = DefaultInitialCapital
	}
	if o.PositionSizePct <= 0 || o.PositionSizePct > 1 {
		o.PositionSizePct = DefaultPositionSizePct
	}
	return o
}

// Ledger is the raw output of a simulation.
type Ledger struct {
	InitialCapital float64
	FinalCapital   float64
	Trades         []Trade
	Equity         []EquityPoint
}

// simulator is the two-state (flat / in position) trade machine. Each run owns
// its simulator; nothing is shared between runs.
type simulator struct {
	cfg      Config
	opts     Options
	capital  float64
	position *Position
	trades   []Trade
	equity   []EquityPoint
}

// Simulate replays bars and their signals through the trade state machine.
// Stop-loss, take-profit and signal exits are checked in that order; an open
// position is force-closed on the last bar.
func Simulate(bars []Bar, signals []Signal, cfg Config, opts Options) Ledger {
	opts = opts.withDefaults()
	s := &simulator{
		cfg:     cfg,
		opts:    opts,
		capital: opts.InitialCapital,
		trades:  make([]Trade, 0),
		equity:  make([]EquityPoint, 0, len(bars)),
	}

	for i, bar := range bars {
		signal := SignalNone
		if i < len(signals) {
			signal = signals[i]
		}

		if s.position == nil {
			if signal == SignalBuy {
				s.open(i, bar)
			}
		} else if reason, ok := s.exitReason(bar, signal); ok {
			s.close(i, bar, reason)
		}

		if i == len(bars)-1 && s.position != nil {
			s.close(i, bar, ReasonEndOfPeriod)
		}

		s.equity = append(s.equity, EquityPoint{Date: bar.Date, Value: s.markToMarket(bar.Close)})
	}

	return Ledger{
		InitialCapital: opts.InitialCapital,
		FinalCapital:   s.capital,
		Trades:         s.trades,
		Equity:         s.equity,
	}
}

func (s *simulator) open(i int, bar Bar) {
	if bar.Close <= 0 {
		return
	}
	shares := int64(math.Floor(s.capital * s.opts.PositionSizePct / bar.Close))
	if shares <= 0 {
		return
	}
	s.capital -= float64(shares) * bar.Close
	s.position = &Position{
		EntryPrice: bar.Close,
		Shares:     shares,
		EntryDate:  bar.Date,
		entryIndex: i,
	}
	s.trades = append(s.trades, Trade{
		Type:   TradeBuy,
		Reason: ReasonSignal,
		Date:   bar.Date,
		Price:  bar.Close,
		Shares: shares,
	})
}

func (s *simulator) exitReason(bar Bar, signal Signal) (TradeReason, bool) {
	pctChange := (bar.Close - s.position.EntryPrice) / s.position.EntryPrice * 100

	switch {
	case s.cfg.StopLossPct > 0 && pctChange < -s.cfg.StopLossPct:
		return ReasonStopLoss, true
	case s.cfg.TakeProfitPct > 0 && pctChange > s.cfg.TakeProfitPct:
		return ReasonTakeProfit, true
	case signal == SignalSell:
		return ReasonSignal, true
	}
	return "", false
}

func (s *simulator) close(i int, bar Bar, reason TradeReason) {
	pos := s.position
	proceeds := float64(pos.Shares) * bar.Close
	pnl := proceeds - float64(pos.Shares)*pos.EntryPrice
	pnlPercent := (bar.Close - pos.EntryPrice) / pos.EntryPrice * 100

	s.capital += proceeds
	s.position = nil
	s.trades = append(s.trades, Trade{
		Type:        TradeSell,
		Reason:      reason,
		Date:        bar.Date,
		Price:       bar.Close,
		Shares:      pos.Shares,
		PnL:         &pnl,
		PnLPercent:  &pnlPercent,
		HoldingDays: i - pos.entryIndex,
	})
}

func (s *simulator) markToMarket(price float64) float64 {
	if s.position == nil {
		return s.capital
	}
	return s.capital + float64(s.position.Shares)*price
}
