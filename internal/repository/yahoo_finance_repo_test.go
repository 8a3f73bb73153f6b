package repository

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zahaam/config"
	"zahaam/internal/dto"
	"zahaam/pkg/common"
	"zahaam/pkg/httpclient"
	"zahaam/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Timestamps are 14:30 UTC: Fri 2024-03-08, Sat 2024-03-09, Mon 2024-03-11,
// Tue 2024-03-12 (null close), Wed 2024-03-13, Wed 2024-03-13 again.
const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "regularMarketPrice": 171.5},
      "timestamp": [1709908200, 1709994600, 1710167400, 1710253800, 1710340200, 1710340260],
      "indicators": {"quote": [{
        "open":   [170.1, 171.0, 172.0, 173.0, 174.0, 174.0],
        "high":   [171.0, 172.0, 173.5, 174.0, 175.0, 175.5],
        "low":    [169.0, 170.0, 171.5, 172.0, 173.0, 173.0],
        "close":  [170.7, 171.2, 173.0, null,  174.5, 175.1],
        "volume": [1000,  1000,  2000,  3000,  4000,  4100]
      }]}
    }],
    "error": null
  }
}`

func newTestYahooRepo(t *testing.T, handler http.HandlerFunc) *yahooFinanceRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{MarketData: config.MarketData{MaxRequestPerMinute: 600}}
	client := httpclient.New(logger.NewNop(), srv.URL, 5*time.Second, 0)
	now := func() time.Time { return time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC) }
	return newYahooFinanceRepository(client, cfg, logger.NewNop(), now)
}

func TestYahooFinanceRepositoryGet(t *testing.T) {
	var gotPath, gotInterval, gotPeriod2 string
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotPeriod2 = r.URL.Query().Get("period2")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chartFixture)
	})

	data, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "AAPL", Range: "1m", Interval: "1d"})
	require.NoError(t, err)

	assert.Equal(t, "/AAPL", gotPath)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, "1710374400", gotPeriod2)

	assert.Equal(t, common.SOURCE_YAHOO, data.Source)
	assert.False(t, data.Synthetic)
	assert.Equal(t, 171.5, data.MarketPrice)

	require.Len(t, data.Bars, 3)
	assert.Equal(t, "2024-03-08", data.Bars[0].Date)
	assert.Equal(t, "2024-03-11", data.Bars[1].Date)
	assert.Equal(t, "2024-03-13", data.Bars[2].Date)
	assert.Equal(t, 175.1, data.Bars[2].Close, "duplicate session keeps the latest values")
	assert.Equal(t, int64(4100), data.Bars[2].Volume)
}

func TestYahooFinanceRepositoryErrors(t *testing.T) {
	t.Run("non ok status", func(t *testing.T) {
		repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		})
		_, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "NOPE", Range: "1m", Interval: "1d"})
		var statusErr *httpclient.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "No data found")
	})

	t.Run("chart error", func(t *testing.T) {
		repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"invalid symbol"}}}`)
		})
		_, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "??", Range: "1m", Interval: "1d"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid symbol")
	})

	t.Run("unknown range", func(t *testing.T) {
		called := false
		repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})
		_, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "AAPL", Range: "7w", Interval: "1d"})
		assert.Error(t, err)
		assert.False(t, called)
	})
}

func TestYahooFinanceRepositoryEscapesSymbol(t *testing.T) {
	var gotEscapedPath, gotInterval string
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		gotEscapedPath = r.URL.EscapedPath()
		gotInterval = r.URL.Query().Get("interval")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chartFixture)
	})

	_, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "../x?y#z", Range: "1m", Interval: "1d"})
	require.NoError(t, err)
	assert.Equal(t, "/..%2Fx%3Fy%23z", gotEscapedPath)
	assert.Equal(t, "1d", gotInterval)
}
