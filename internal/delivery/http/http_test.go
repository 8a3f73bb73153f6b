package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zahaam/config"
	"zahaam/internal/backtest"
	"zahaam/internal/dto"
	"zahaam/internal/model"
	"zahaam/internal/repository"
	"zahaam/internal/repository/mocks"
	"zahaam/internal/service"
	"zahaam/pkg/common"
	"zahaam/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func risingBars(n int) *dto.StockData {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]backtest.Bar, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = backtest.Bar{
			Date:   start.AddDate(0, 0, i).Format(backtest.DateLayout),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 10,
		}
	}
	return &dto.StockData{Symbol: "AAPL", Range: "1y", Interval: "1d", Source: common.SOURCE_YAHOO, Bars: bars}
}

func newTestServer(t *testing.T, candles *mocks.BarSource, runs *mocks.BacktestRunRepository) *echo.Echo {
	t.Helper()
	return newTestServerWithJobs(t, candles, runs, new(mocks.JobRepository))
}

func newTestServerWithJobs(t *testing.T, candles *mocks.BarSource, runs *mocks.BacktestRunRepository, jobs *mocks.JobRepository) *echo.Echo {
	t.Helper()
	cfg := &config.Config{Backtest: config.Backtest{InitialCapital: 10000, PositionSizePct: 0.95, MaxOptimizeCandidates: 50}}
	validator := goValidator.New()
	log := logger.NewNop()

	var runRepo repository.BacktestRunRepository
	if runs != nil {
		runRepo = runs
	}
	svc := &service.Service{
		BacktestService:  service.NewBacktestService(cfg, log, validator, candles, runRepo, nil),
		IndicatorService: service.NewIndicatorService(log, validator, candles),
		StockService:     service.NewStockService(log, validator, candles),
		SchedulerService: service.NewSchedulerService(cfg, log, jobs, nil),
	}
	e := echo.New()
	NewHttpAPIHandler(e, validator, svc, log).SetupRoutes()
	return e
}

func do(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestRunBacktestEndpoint(t *testing.T) {
	candles := new(mocks.BarSource)
	candles.On("Get", mock.Anything, mock.Anything).Return(risingBars(50), nil)
	runs := new(mocks.BacktestRunRepository)
	runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	e := newTestServer(t, candles, runs)

	rec, env := do(e, http.MethodPost, "/api/backtest", `{"symbol":"AAPL","range":"1y","strategy":{"type":"RSI"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusOK, env.Code)

	var resp struct {
		Source    string `json:"source"`
		Synthetic bool   `json:"synthetic"`
		Result    struct {
			InitialCapital float64           `json:"initial_capital"`
			FinalCapital   float64           `json:"final_capital"`
			TotalReturn    float64           `json:"total_return"`
			Trades         []json.RawMessage `json:"trades"`
			Equity         []json.RawMessage `json:"equity"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, common.SOURCE_YAHOO, resp.Source)
	assert.False(t, resp.Synthetic)
	assert.Equal(t, 10000.0, resp.Result.InitialCapital)
	assert.Equal(t, 10000.0, resp.Result.FinalCapital)
	assert.Empty(t, resp.Result.Trades)
	assert.Len(t, resp.Result.Equity, 50)
}

func TestRunBacktestEndpointErrors(t *testing.T) {
	candles := new(mocks.BarSource)
	e := newTestServer(t, candles, new(mocks.BacktestRunRepository))

	rec, env := do(e, http.MethodPost, "/api/backtest", `{"symbol":"AAPL","strategy":{"type":"MA_CROSSOVER","parameters":{"fastPeriod":30,"slowPeriod":10}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "slowPeriod")

	rec, _ = do(e, http.MethodPost, "/api/backtest", `{"strategy":{"type":"RSI"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodPost, "/api/backtest", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	candles.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRunsEndpoints(t *testing.T) {
	runs := new(mocks.BacktestRunRepository)
	runs.On("GetByID", mock.Anything, uint(99)).Return(nil, repository.ErrRunNotFound)
	e := newTestServer(t, new(mocks.BarSource), runs)

	rec, env := do(e, http.MethodGet, "/api/backtest/runs/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.Code)

	rec, _ = do(e, http.MethodGet, "/api/backtest/runs/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodGet, "/api/backtest/runs?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndicatorsEndpoint(t *testing.T) {
	candles := new(mocks.BarSource)
	var seen dto.GetStockDataParam
	candles.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		seen = args.Get(1).(dto.GetStockDataParam)
	}).Return(risingBars(30), nil)
	e := newTestServer(t, candles, nil)

	rec, env := do(e, http.MethodGet, "/api/indicators/AAPL?range=3m&sma=10&rsi=5&source=synthetic&seed=9", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "AAPL", seen.Symbol)
	assert.Equal(t, "3m", seen.Range)
	assert.Equal(t, common.SOURCE_MODE_SYNTHETIC, seen.Source)
	require.NotNil(t, seen.Seed)
	assert.Equal(t, int64(9), *seen.Seed)

	var resp dto.IndicatorsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Indicators, 3)
	assert.Equal(t, 10, resp.Indicators[0].Period)
	assert.Nil(t, resp.Indicators[0].Values[8])
	assert.NotNil(t, resp.Indicators[0].Values[9])
	// rising closes never lose, so RSI saturates
	require.NotNil(t, resp.Indicators[2].Values[5])
	assert.Equal(t, 100.0, *resp.Indicators[2].Values[5])

	rec, _ = do(e, http.MethodGet, "/api/indicators/AAPL?seed=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBarsEndpoint(t *testing.T) {
	candles := new(mocks.BarSource)
	candles.On("Get", mock.Anything, mock.Anything).Return(nil, repository.ErrLiveDataUnavailable)
	e := newTestServer(t, candles, nil)

	rec, _ := do(e, http.MethodGet, "/api/stocks/AAPL/bars?source=live", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, _ = do(e, http.MethodGet, "/api/stocks/AAPL/bars?range=9y", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeEndpoint(t *testing.T) {
	candles := new(mocks.BarSource)
	candles.On("Get", mock.Anything, mock.Anything).Return(risingBars(60), nil)
	e := newTestServer(t, candles, nil)

	rec, env := do(e, http.MethodPost, "/api/backtest/optimize",
		`{"symbol":"AAPL","strategy":{"type":"MA_CROSSOVER"},"ranges":{"fastPeriod":{"min":2,"max":4,"step":1}},"top":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.OptimizeResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 3, resp.Result.Evaluated)
	assert.Len(t, resp.Result.Top, 2)
	assert.NotNil(t, resp.Result.Best)

	rec, _ = do(e, http.MethodPost, "/api/backtest/optimize", `{"symbol":"AAPL","strategy":{"type":"MA_CROSSOVER"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobsEndpoints(t *testing.T) {
	jobs := new(mocks.JobRepository)
	jobs.On("Get", mock.Anything, mock.MatchedBy(func(p *model.GetJobParam) bool {
		return len(p.IDs) == 0
	})).Return([]model.Job{{ID: 1, Name: "Warm price cache", Type: "price_warmup"}}, nil)
	jobs.On("Get", mock.Anything, mock.MatchedBy(func(p *model.GetJobParam) bool {
		return len(p.IDs) == 1 && p.IDs[0] == 7
	})).Return([]model.Job{}, nil)
	jobs.On("FindJobsToSchedule", mock.Anything).Return([]model.TaskSchedule{}, nil)
	e := newTestServerWithJobs(t, new(mocks.BarSource), nil, jobs)

	rec, env := do(e, http.MethodGet, "/api/v1/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []model.Job
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Warm price cache", listed[0].Name)

	rec, _ = do(e, http.MethodPost, "/api/v1/jobs/7/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(e, http.MethodPost, "/api/v1/jobs/abc/run", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodPost, "/api/v1/jobs/run", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	jobs.AssertExpectations(t)
}
