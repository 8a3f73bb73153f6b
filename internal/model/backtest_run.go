package model

import (
	"time"

	"gorm.io/datatypes"
)

// BacktestRun is one persisted backtest: its inputs, headline metrics and
// the full trade and equity series as JSON.
type BacktestRun struct {
	ID               uint           `gorm:"primaryKey"`
	Symbol           string         `gorm:"type:varchar(20);not null;index"`
	Range            string         `gorm:"column:data_range;type:varchar(10);not null"`
	StrategyType     string         `gorm:"type:varchar(30);not null"`
	Source           string         `gorm:"type:varchar(20);not null"`
	Synthetic        bool           `gorm:"not null;default:false"`
	FallbackReason   string         `gorm:"type:text"`
	Seed             *int64         `gorm:"column:seed"`
	InitialCapital   float64        `gorm:"type:numeric(18,4);not null"`
	FinalCapital     float64        `gorm:"type:numeric(18,4);not null"`
	TotalReturn      float64        `gorm:"type:numeric(12,4);not null"`
	WinRate          float64        `gorm:"type:numeric(7,4);not null"`
	MaxDrawdown      float64        `gorm:"type:numeric(7,4);not null"`
	BuyAndHoldReturn float64        `gorm:"type:numeric(12,4);not null"`
	TotalTrades      int            `gorm:"not null"`
	BarCount         int            `gorm:"not null"`
	Strategy         datatypes.JSON `gorm:"type:jsonb;not null"`
	Summary          datatypes.JSON `gorm:"type:jsonb;not null"`
	Trades           datatypes.JSON `gorm:"type:jsonb;not null"`
	Equity           datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index"`
}

func (BacktestRun) TableName() string {
	return "backtest_runs"
}

type GetBacktestRunParam struct {
	Symbol string
	Limit  int
}
