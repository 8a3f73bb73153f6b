package repository

import (
	"zahaam/config"
	"zahaam/pkg/cache"
	"zahaam/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	JobRepo          JobRepository
	BacktestRunRepo  BacktestRunRepository
	YahooFinanceRepo YahooFinanceRepository
	SyntheticRepo    SyntheticRepository
	CandleRepo       CandleRepository
	UnitOfWork       UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, inMemoryCache cache.Cache, log *logger.Logger) *Repository {
	yahooRepo := NewYahooFinanceRepository(cfg, log)
	syntheticRepo := NewSyntheticRepository(cfg)

	return &Repository{
		JobRepo:          NewJobRepository(db),
		BacktestRunRepo:  NewBacktestRunRepository(db),
		YahooFinanceRepo: yahooRepo,
		SyntheticRepo:    syntheticRepo,
		CandleRepo:       NewCandleRepository(cfg, log, yahooRepo, syntheticRepo, inMemoryCache),
		UnitOfWork:       NewUnitOfWork(db),
	}
}

// NewMarketDataRepository wires only the bar sources, for callers that run
// without a database.
func NewMarketDataRepository(cfg *config.Config, inMemoryCache cache.Cache, log *logger.Logger) *Repository {
	yahooRepo := NewYahooFinanceRepository(cfg, log)
	syntheticRepo := NewSyntheticRepository(cfg)

	return &Repository{
		YahooFinanceRepo: yahooRepo,
		SyntheticRepo:    syntheticRepo,
		CandleRepo:       NewCandleRepository(cfg, log, yahooRepo, syntheticRepo, inMemoryCache),
	}
}
