package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"zahaam/config"
	"zahaam/internal/dto"
	"zahaam/internal/repository"
	"zahaam/internal/service"
	"zahaam/pkg/cache"
	"zahaam/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

type backtestFlags struct {
	symbol   string
	strategy string
	maType   string
	params   map[string]string
	dataRng  string
	source   string
	seed     int64
	capital  float64
	size     float64
}

var btFlags backtestFlags

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a single backtest without the database and print the result as JSON",
	RunE:  runBacktest,
}

func init() {
	f := backtestCmd.Flags()
	f.StringVar(&btFlags.symbol, "symbol", "", "ticker symbol")
	f.StringVar(&btFlags.strategy, "strategy", "", "strategy type (MA_CROSSOVER, RSI)")
	f.StringVar(&btFlags.maType, "ma-type", "", "moving average kind for crossover (sma, ema)")
	f.StringToStringVar(&btFlags.params, "param", nil, "strategy parameter, e.g. --param fastPeriod=10")
	f.StringVar(&btFlags.dataRng, "range", "", "history range (1m 3m 6m 1y 2y 5y)")
	f.StringVar(&btFlags.source, "source", "", "bar source (auto, live, synthetic)")
	f.Int64Var(&btFlags.seed, "seed", 0, "synthetic data seed; 0 derives one from the symbol")
	f.Float64Var(&btFlags.capital, "capital", 0, "initial capital")
	f.Float64Var(&btFlags.size, "position-size", 0, "fraction of cash per entry")
	_ = backtestCmd.MarkFlagRequired("symbol")
	_ = backtestCmd.MarkFlagRequired("strategy")
}

func (f backtestFlags) request() (dto.BacktestRequest, error) {
	params := make(map[string]float64, len(f.params))
	for k, v := range f.params {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return dto.BacktestRequest{}, fmt.Errorf("parameter %s: %w", k, err)
		}
		params[k] = n
	}

	req := dto.BacktestRequest{
		Symbol:          f.symbol,
		Range:           f.dataRng,
		Source:          f.source,
		InitialCapital:  f.capital,
		PositionSizePct: f.size,
		Strategy: dto.StrategyRequest{
			Type:       f.strategy,
			Parameters: params,
			MAType:     f.maType,
		},
	}
	if f.seed != 0 {
		seed := f.seed
		req.Seed = &seed
	}
	return req, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := btFlags.request()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	resp, err := runOfflineBacktest(ctx, cfg, log, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// runOfflineBacktest wires the market data sources and the backtest service
// with no store and no notifier.
func runOfflineBacktest(ctx context.Context, cfg *config.Config, log *logger.Logger, req dto.BacktestRequest) (*dto.BacktestResponse, error) {
	repo := repository.NewMarketDataRepository(cfg, cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval), log)
	svc := service.NewBacktestService(cfg, log, goValidator.New(), repo.CandleRepo, nil, nil)
	return svc.RunBacktest(ctx, req)
}
