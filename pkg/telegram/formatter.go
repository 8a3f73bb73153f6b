package telegram

import (
	"fmt"
	"strings"
	"time"

	"zahaam/pkg/utils"
)

// BacktestDigest is the subset of a backtest run worth pushing to a chat.
type BacktestDigest struct {
	RunID            uint
	Symbol           string
	Strategy         string
	Range            string
	Source           string
	Synthetic        bool
	TotalReturn      float64
	BuyAndHoldReturn float64
	WinRate          float64
	MaxDrawdown      float64
	TotalTrades      int
	FinishedAt       time.Time
}

func FormatBacktestDigest(d BacktestDigest) string {
	var builder strings.Builder

	emoji := "📈"
	if d.TotalReturn < 0 {
		emoji = "📉"
	}
	builder.WriteString(fmt.Sprintf("%s [%s] %s backtest (%s)\n", emoji, d.Symbol, d.Strategy, d.Range))
	if d.RunID != 0 {
		builder.WriteString(fmt.Sprintf("🆔 Run #%d\n", d.RunID))
	}
	builder.WriteString(fmt.Sprintf("💰 Return: %s (buy & hold %s)\n",
		utils.FormatPercentage(d.TotalReturn), utils.FormatPercentage(d.BuyAndHoldReturn)))
	builder.WriteString(fmt.Sprintf("🎯 Win rate: %.2f%% over %d trades\n", d.WinRate, d.TotalTrades))
	builder.WriteString(fmt.Sprintf("🔻 Max drawdown: %.2f%%\n", d.MaxDrawdown))
	source := d.Source
	if d.Synthetic {
		source += " (synthetic)"
	}
	builder.WriteString(fmt.Sprintf("🗂 Data: %s\n", source))
	builder.WriteString(utils.PrettyDate(d.FinishedAt))
	return builder.String()
}

func FormatErrorAlertMessage(t time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 [ERROR ALERT]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, utils.PrettyDate(t), errType, errMsg, data)
}
