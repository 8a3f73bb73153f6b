package dto

// PriceWarmupPayload is the payload of a price_warmup job.
type PriceWarmupPayload struct {
	Symbols     []string `json:"symbols" validate:"required,min=1,dive,required,max=20,printascii,excludesall=/?#%"`
	Range       string   `json:"range" validate:"omitempty,oneof=1m 3m 6m 1y 2y 5y"`
	Concurrency int      `json:"concurrency" validate:"gte=0"`
}

// DataCleanUpPayload is the payload of a data_clean_up job.
type DataCleanUpPayload struct {
	BacktestRunRetentionDays int `json:"backtest_run_retention_days" validate:"gte=0"`
	TaskHistoryRetentionDays int `json:"task_history_retention_days" validate:"gte=0"`
}
