package backtest

// Result is the JSON-serializable outcome of a backtest run.
type Result struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`
	Summary
	Strategy Strategy      `json:"strategy"`
	Bars     int           `json:"bars"`
	Signals  int           `json:"signals"`
	Trades   []Trade       `json:"trades"`
	Equity   []EquityPoint `json:"equity"`
}

// Run validates the strategy and executes the full pipeline over bars. An
// invalid strategy returns *InvalidStrategyError. Empty input yields a
// zero-trade result rather than an error.
func Run(bars []Bar, strategy Strategy, opts Options) (*Result, error) {
	cfg, err := strategy.Config()
	if err != nil {
		return nil, err
	}
	return RunConfig(bars, strategy, cfg, opts), nil
}

// RunConfig runs an already validated configuration.
func RunConfig(bars []Bar, strategy Strategy, cfg Config, opts Options) *Result {
	strategy.Type = cfg.Type
	signals := GenerateSignals(bars, cfg)
	ledger := Simulate(bars, signals, cfg, opts)

	fired := 0
	for _, s := range signals {
		if s != SignalNone {
			fired++
		}
	}

	return &Result{
		InitialCapital: ledger.InitialCapital,
		FinalCapital:   ledger.FinalCapital,
		Summary:        Summarize(bars, ledger),
		Strategy:       strategy,
		Bars:           len(bars),
		Signals:        fired,
		Trades:         ledger.Trades,
		Equity:         ledger.Equity,
	}
}
