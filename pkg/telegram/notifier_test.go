package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"zahaam/config"
	"zahaam/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierDisabledWithoutToken(t *testing.T) {
	n, err := NewNotifier(&config.TelegramConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send(context.Background(), "ignored"))
	assert.NoError(t, n.SendAlert("ignored"))
}

func TestNotifierSend(t *testing.T) {
	var (
		mu     sync.Mutex
		paths  []string
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":99,"type":"private"},"text":"ok"}}`)
	}))
	defer srv.Close()

	n, err := NewNotifier(&config.TelegramConfig{
		BotToken:                  "test-token",
		URL:                       srv.URL,
		ChatID:                    99,
		TimeoutDuration:           5 * time.Second,
		MaxGlobalRequestPerSecond: 10,
	}, logger.NewNop())
	require.NoError(t, err)
	require.True(t, n.Enabled())

	require.NoError(t, n.Send(context.Background(), "hello backtest"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], "/sendMessage"))
	assert.Contains(t, bodies[0], "hello backtest")
}

func TestFormatBacktestDigest(t *testing.T) {
	msg := FormatBacktestDigest(BacktestDigest{
		RunID:            7,
		Symbol:           "AAPL",
		Strategy:         "MA_CROSSOVER",
		Range:            "1y",
		Source:           "synthetic",
		Synthetic:        true,
		TotalReturn:      -4.5,
		BuyAndHoldReturn: 12,
		WinRate:          50,
		MaxDrawdown:      8.25,
		TotalTrades:      4,
		FinishedAt:       time.Date(2024, 3, 8, 9, 5, 0, 0, time.UTC),
	})

	assert.Contains(t, msg, "📉 [AAPL] MA_CROSSOVER backtest (1y)")
	assert.Contains(t, msg, "Run #7")
	assert.Contains(t, msg, "Return: -4.50% (buy & hold +12.00%)")
	assert.Contains(t, msg, "Win rate: 50.00% over 4 trades")
	assert.Contains(t, msg, "synthetic (synthetic)")
	assert.Contains(t, msg, "08 Mar 2024 - 09:05 UTC")
}
