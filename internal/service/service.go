package service

import (
	"zahaam/config"
	"zahaam/internal/repository"
	"zahaam/internal/strategy"
	"zahaam/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
)

type Service struct {
	SchedulerService SchedulerService
	TaskExecutor     TaskExecutor
	BacktestService  BacktestService
	IndicatorService IndicatorService
	StockService     StockService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	validator *goValidator.Validate,
	repo *repository.Repository,
	notifier Notifier,
) *Service {
	executors := strategy.NewRegistry(
		strategy.NewPriceWarmupStrategy(cfg, log, repo.CandleRepo),
		strategy.NewDataCleanUpStrategy(cfg, log, repo.BacktestRunRepo, repo.JobRepo, repo.UnitOfWork),
	)

	taskExecutor := NewTaskExecutor(cfg, log, repo.JobRepo, executors)
	return &Service{
		SchedulerService: NewSchedulerService(cfg, log, repo.JobRepo, taskExecutor),
		TaskExecutor:     taskExecutor,
		BacktestService:  NewBacktestService(cfg, log, validator, repo.CandleRepo, repo.BacktestRunRepo, notifier),
		IndicatorService: NewIndicatorService(log, validator, repo.CandleRepo),
		StockService:     NewStockService(log, validator, repo.CandleRepo),
	}
}
