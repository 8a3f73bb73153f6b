package service

import (
	"context"

	"zahaam/internal/dto"
	"zahaam/internal/repository"
	"zahaam/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
)

type StockService interface {
	GetBars(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error)
}

type stockService struct {
	log        *logger.Logger
	validator  *goValidator.Validate
	candleRepo repository.CandleRepository
}

func NewStockService(log *logger.Logger, validator *goValidator.Validate, candleRepo repository.CandleRepository) StockService {
	return &stockService{
		log:        log,
		validator:  validator,
		candleRepo: candleRepo,
	}
}

func (s *stockService) GetBars(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error) {
	if err := s.validator.Struct(param); err != nil {
		return nil, invalidRequest(err)
	}
	data, err := s.candleRepo.Get(ctx, param)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load bars", logger.StringField("symbol", param.Symbol), logger.ErrorField(err))
		return nil, err
	}
	return data, nil
}
