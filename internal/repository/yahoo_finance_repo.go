package repository

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"zahaam/config"
	"zahaam/internal/backtest"
	"zahaam/internal/dto"
	"zahaam/pkg/common"
	"zahaam/pkg/httpclient"
	"zahaam/pkg/logger"
	"zahaam/pkg/utils"

	"golang.org/x/time/rate"
)

type YahooFinanceRepository interface {
	Get(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error)
}

// yahooFinanceRepository reads daily bars from the Yahoo Finance chart API.
type yahooFinanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	mu             sync.Mutex
	now            func() time.Time
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	client := httpclient.New(log, cfg.MarketData.BaseURL, cfg.MarketData.Timeout, cfg.MarketData.RetryCount)
	return newYahooFinanceRepository(client, cfg, log, utils.TimeNowUTC)
}

func newYahooFinanceRepository(client httpclient.HTTPClient, cfg *config.Config, log *logger.Logger, now func() time.Time) *yahooFinanceRepository {
	perMinute := cfg.MarketData.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	return &yahooFinanceRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		now:            now,
	}
}

func (r *yahooFinanceRepository) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.requestLimiter.Allow() {
		r.logger.WarnContext(ctx, "Yahoo Finance API request limit reached, waiting",
			logger.IntField("max_request_per_minute", r.cfg.MarketData.MaxRequestPerMinute),
		)
		return r.requestLimiter.Wait(ctx)
	}
	return nil
}

func (r *yahooFinanceRepository) Get(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error) {
	period1, period2, err := r.period(param.Range)
	if err != nil {
		return nil, err
	}

	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", period1),
		"period2":        fmt.Sprintf("%d", period2),
		"interval":       param.Interval,
		"includePrePost": "false",
		"events":         "div,split",
	}

	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}

	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, "/"+url.PathEscape(param.Symbol), queryParams, headers, &yahooResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from yahoo finance: %w", err)
	}

	if err := resp.CheckStatus(); err != nil {
		r.logger.WarnContext(ctx, "Yahoo Finance API returned Non-OK status",
			logger.StringField("symbol", param.Symbol),
			logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("yahoo finance api: %w", err)
	}

	if yahooResp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance api error: %s: %s", yahooResp.Chart.Error.Code, yahooResp.Chart.Error.Description)
	}
	if len(yahooResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol: %s", param.Symbol)
	}

	result := yahooResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data available for symbol: %s", param.Symbol)
	}
	quote := result.Indicators.Quote[0]

	loc := time.UTC
	if result.Meta.ExchangeTimezone != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezone); err == nil {
			loc = l
		}
	}

	// keyed by date so a duplicated trailing session keeps its latest values
	byDate := make(map[string]backtest.Bar, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		open, okO := valueAt(quote.Open, i)
		high, okH := valueAt(quote.High, i)
		low, okL := valueAt(quote.Low, i)
		closePrice, okC := valueAt(quote.Close, i)
		volume, okV := valueAt(quote.Volume, i)
		if !okO || !okH || !okL || !okC || !okV {
			continue
		}
		if open <= 0 || high <= 0 || low <= 0 || closePrice <= 0 || volume < 0 {
			continue
		}

		day := time.Unix(ts, 0).In(loc)
		if !utils.IsBusinessDay(day) {
			continue
		}
		date := day.Format(backtest.DateLayout)
		byDate[date] = backtest.Bar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		}
	}

	if len(byDate) == 0 {
		return nil, fmt.Errorf("no valid OHLCV data found for symbol: %s", param.Symbol)
	}

	bars := make([]backtest.Bar, 0, len(byDate))
	for _, bar := range byDate {
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	return &dto.StockData{
		Symbol:      strings.ToUpper(param.Symbol),
		Range:       param.Range,
		Interval:    param.Interval,
		Source:      common.SOURCE_YAHOO,
		MarketPrice: result.Meta.RegularMarketPrice,
		Bars:        bars,
	}, nil
}

// period converts a range label into the unix window ending now.
func (r *yahooFinanceRepository) period(rangeLabel string) (int64, int64, error) {
	days, ok := utils.RangeToDays(rangeLabel)
	if !ok {
		return 0, 0, fmt.Errorf("invalid range: %q", rangeLabel)
	}
	now := r.now()
	return now.AddDate(0, 0, -days).Unix(), now.Unix(), nil
}

func valueAt[T any](values []*T, i int) (T, bool) {
	var zero T
	if i >= len(values) || values[i] == nil {
		return zero, false
	}
	return *values[i], true
}
