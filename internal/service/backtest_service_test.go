package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"zahaam/config"
	"zahaam/internal/backtest"
	"zahaam/internal/dto"
	"zahaam/internal/model"
	"zahaam/internal/repository"
	"zahaam/internal/repository/mocks"
	"zahaam/pkg/common"
	"zahaam/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	enabled  bool
	messages []string
	err      error
}

func (f *fakeNotifier) Enabled() bool { return f.enabled }

func (f *fakeNotifier) Send(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Backtest: config.Backtest{
			InitialCapital:        10000,
			PositionSizePct:       0.95,
			DefaultRange:          "1y",
			MaxOptimizeCandidates: 100,
			OptimizeTop:           3,
			NotifyResults:         true,
		},
		Scheduler: config.Scheduler{MaxConcurrency: 2, TimeoutDuration: time.Minute},
	}
}

// zigzag bars cross their moving averages often enough to trade.
func zigzagData(n int) *dto.StockData {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]backtest.Bar, n)
	for i := range bars {
		price := 100 + 10*float64((i/6)%2) + float64(i%6)
		bars[i] = backtest.Bar{
			Date:   start.AddDate(0, 0, i).Format(backtest.DateLayout),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		}
	}
	return &dto.StockData{
		Symbol:    "AAPL",
		Range:     "1y",
		Interval:  "1d",
		Source:    common.SOURCE_SYNTHETIC,
		Synthetic: true,
		Bars:      bars,
	}
}

func validBacktestRequest() dto.BacktestRequest {
	return dto.BacktestRequest{
		Symbol: "AAPL",
		Range:  "1y",
		Strategy: dto.StrategyRequest{
			Type:       "MA_CROSSOVER",
			Parameters: map[string]float64{"fastPeriod": 3, "slowPeriod": 8},
		},
	}
}

func TestRunBacktestPersistsAndNotifies(t *testing.T) {
	candles := new(mocks.BarSource)
	runs := new(mocks.BacktestRunRepository)
	notifier := &fakeNotifier{enabled: true}

	candles.On("Get", mock.Anything, mock.MatchedBy(func(p dto.GetStockDataParam) bool {
		return p.Symbol == "AAPL" && p.Interval == dto.Interval1Day
	})).Return(zigzagData(80), nil)

	var stored *model.BacktestRun
	runs.On("Create", mock.Anything, mock.AnythingOfType("*model.BacktestRun")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*model.BacktestRun)
			stored.ID = 42
		}).
		Return(nil)

	svc := NewBacktestService(testConfig(), logger.NewNop(), goValidator.New(), candles, runs, notifier)
	resp, err := svc.RunBacktest(context.Background(), validBacktestRequest())
	require.NoError(t, err)

	assert.Equal(t, uint(42), resp.RunID)
	assert.True(t, resp.Synthetic)
	assert.Equal(t, common.SOURCE_SYNTHETIC, resp.Source)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 80, resp.Result.Bars)
	assert.Len(t, resp.Result.Equity, 80)
	assert.Greater(t, resp.Result.TotalTrades, 0)

	require.NotNil(t, stored)
	assert.Equal(t, "AAPL", stored.Symbol)
	assert.Equal(t, "MA_CROSSOVER", stored.StrategyType)
	assert.True(t, stored.Synthetic)
	assert.Equal(t, resp.Result.FinalCapital, stored.FinalCapital)

	var trades []backtest.Trade
	require.NoError(t, json.Unmarshal(stored.Trades, &trades))
	assert.Equal(t, resp.Result.Trades, trades)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "[AAPL] MA_CROSSOVER")
	assert.Contains(t, notifier.messages[0], "Run #42")
}

func TestRunBacktestSideEffectFailuresDoNotFailRun(t *testing.T) {
	candles := new(mocks.BarSource)
	runs := new(mocks.BacktestRunRepository)
	notifier := &fakeNotifier{enabled: true, err: errors.New("telegram down")}

	candles.On("Get", mock.Anything, mock.Anything).Return(zigzagData(40), nil)
	runs.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := NewBacktestService(testConfig(), logger.NewNop(), goValidator.New(), candles, runs, notifier)
	resp, err := svc.RunBacktest(context.Background(), validBacktestRequest())
	require.NoError(t, err)
	assert.Zero(t, resp.RunID)
	assert.Len(t, notifier.messages, 1)
}

func TestRunBacktestWithoutStore(t *testing.T) {
	candles := new(mocks.BarSource)
	candles.On("Get", mock.Anything, mock.Anything).Return(zigzagData(40), nil)

	svc := NewBacktestService(testConfig(), logger.NewNop(), goValidator.New(), candles, nil, nil)
	resp, err := svc.RunBacktest(context.Background(), validBacktestRequest())
	require.NoError(t, err)
	assert.Zero(t, resp.RunID)

	_, err = svc.GetRun(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrRunNotFound)
}

func TestRunBacktestRejectsBadInput(t *testing.T) {
	candles := new(mocks.BarSource)
	svc := NewBacktestService(testConfig(), logger.NewNop(), goValidator.New(), candles, nil, nil)

	tests := []struct {
		name     string
		mutate   func(r *dto.BacktestRequest)
		strategy bool
	}{
		{"missing symbol", func(r *dto.BacktestRequest) { r.Symbol = "" }, false},
		{"bad range", func(r *dto.BacktestRequest) { r.Range = "3d" }, false},
		{"bad source", func(r *dto.BacktestRequest) { r.Source = "csv" }, false},
		{"position size above one", func(r *dto.BacktestRequest) { r.PositionSizePct = 1.5 }, false},
		{"unknown strategy", func(r *dto.BacktestRequest) { r.Strategy.Type = "MACD" }, true},
		{"fast not below slow", func(r *dto.BacktestRequest) {
			r.Strategy.Parameters = map[string]float64{"fastPeriod": 20, "slowPeriod": 10}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBacktestRequest()
			tt.mutate(&req)
			_, err := svc.RunBacktest(context.Background(), req)
			require.Error(t, err)
			if tt.strategy {
				assert.True(t, backtest.IsInvalidStrategy(err), err.Error())
			} else {
				assert.ErrorIs(t, err, ErrInvalidRequest)
			}
		})
	}
	candles.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRunBacktestSourceError(t *testing.T) {
	candles := new(mocks.BarSource)
	candles.On("Get", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: timeout", repository.ErrLiveDataUnavailable))

	svc := NewBacktestService(testConfig(), logger.NewNop(), goValidator.New(), candles, nil, nil)
	req := validBacktestRequest()
	req.Source = common.SOURCE_MODE_LIVE
	_, err := svc.RunBacktest(context.Background(), req)
	assert.ErrorIs(t, err, repository.ErrLiveDataUnavailable)
}

func TestOptimize(t *testing.T) {
	candles := new(mocks.BarSource)
	candles.On("Get", mock.Anything, mock.Anything).Return(zigzagData(80), nil)

	svc := NewBacktestService(testConfig(), logger.NewNop(), goValidator.New(), candles, nil, nil)
	req := dto.OptimizeRequest{
		BacktestRequest: validBacktestRequest(),
		Ranges: map[string]backtest.Range{
			"fastPeriod": {Min: 2, Max: 4, Step: 1},
			"slowPeriod": {Min: 6, Max: 10, Step: 2},
		},
	}
	resp, err := svc.Optimize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 9, resp.Result.Evaluated)
	assert.Len(t, resp.Result.Top, 3)
	require.NotNil(t, resp.Result.Best)
	assert.Equal(t, resp.Result.Top[0], *resp.Result.Best)

	req.Ranges = map[string]backtest.Range{"fastPeriod": {Min: 1, Max: 1000, Step: 1}}
	_, err = svc.Optimize(context.Background(), req)
	assert.True(t, backtest.IsInvalidStrategy(err))

	req.Ranges = nil
	_, err = svc.Optimize(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetAndListRuns(t *testing.T) {
	runs := new(mocks.BacktestRunRepository)
	trades, _ := json.Marshal([]backtest.Trade{{Type: backtest.TradeBuy, Reason: backtest.ReasonSignal, Date: "2024-01-02", Price: 10, Shares: 5}})
	strategy, _ := json.Marshal(backtest.Strategy{Type: backtest.StrategyRSI})
	run := model.BacktestRun{
		ID: 7, Symbol: "AAPL", StrategyType: "RSI", Source: "yahoo",
		Strategy: strategy, Trades: trades, Equity: []byte(`[{"date":"2024-01-02","value":10000}]`),
	}
	runs.On("GetByID", mock.Anything, uint(7)).Return(&run, nil)
	runs.On("GetByID", mock.Anything, uint(8)).Return(nil, repository.ErrRunNotFound)
	runs.On("List", mock.Anything, model.GetBacktestRunParam{Symbol: "AAPL", Limit: dto.DefaultRunsLimit}).Return([]model.BacktestRun{run}, nil)

	svc := NewBacktestService(testConfig(), logger.NewNop(), goValidator.New(), new(mocks.BarSource), runs, nil)

	detail, err := svc.GetRun(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), detail.ID)
	assert.Equal(t, backtest.StrategyRSI, detail.Strategy.Type)
	require.Len(t, detail.Trades, 1)
	assert.Equal(t, int64(5), detail.Trades[0].Shares)
	require.Len(t, detail.Equity, 1)

	_, err = svc.GetRun(context.Background(), 8)
	assert.ErrorIs(t, err, repository.ErrRunNotFound)

	list, err := svc.ListRuns(context.Background(), dto.GetBacktestRunsParam{Symbol: "AAPL"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "AAPL", list[0].Symbol)

	_, err = svc.ListRuns(context.Background(), dto.GetBacktestRunsParam{Limit: 1000})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
