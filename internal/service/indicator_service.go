package service

import (
	"context"
	"errors"

	"zahaam/internal/backtest"
	"zahaam/internal/dto"
	"zahaam/internal/repository"
	"zahaam/pkg/indicator"
	"zahaam/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
)

type IndicatorService interface {
	GetIndicators(ctx context.Context, param dto.GetIndicatorsParam) (*dto.IndicatorsResponse, error)
}

type indicatorService struct {
	log        *logger.Logger
	validator  *goValidator.Validate
	candleRepo repository.CandleRepository
}

func NewIndicatorService(log *logger.Logger, validator *goValidator.Validate, candleRepo repository.CandleRepository) IndicatorService {
	return &indicatorService{
		log:        log,
		validator:  validator,
		candleRepo: candleRepo,
	}
}

// GetIndicators returns the bars with SMA, EMA and RSI overlays aligned to
// them. A period of zero picks the chart default; a series that cannot warm
// up on the available bars is returned all null.
func (s *indicatorService) GetIndicators(ctx context.Context, param dto.GetIndicatorsParam) (*dto.IndicatorsResponse, error) {
	if err := s.validator.Struct(param); err != nil {
		return nil, invalidRequest(err)
	}

	data, err := s.candleRepo.Get(ctx, dto.GetStockDataParam{
		Symbol:   param.Symbol,
		Range:    param.Range,
		Interval: dto.Interval1Day,
		Source:   param.Source,
		Seed:     param.Seed,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load bars for indicators", logger.StringField("symbol", param.Symbol), logger.ErrorField(err))
		return nil, err
	}

	requested := []struct {
		kind     indicator.Kind
		period   int
		fallback int
	}{
		{indicator.KindSMA, param.SMA, dto.DefaultSMAPeriod},
		{indicator.KindEMA, param.EMA, dto.DefaultEMAPeriod},
		{indicator.KindRSI, param.RSI, dto.DefaultRSIPeriod},
	}

	closes := backtest.Closes(data.Bars)
	series := make([]dto.IndicatorSeries, 0, len(requested))
	for _, r := range requested {
		period := r.period
		if period == 0 {
			period = r.fallback
		}
		values, err := indicator.Calculate(r.kind, closes, period)
		if err != nil && !errors.Is(err, indicator.ErrInsufficientData) {
			return nil, invalidRequest(err)
		}
		series = append(series, dto.IndicatorSeries{
			Kind:   string(r.kind),
			Period: period,
			Values: indicator.Align(values, len(closes), r.kind.Offset(period)),
		})
	}

	return &dto.IndicatorsResponse{
		DataProvenance: dto.NewDataProvenance(data),
		Bars:           data.Bars,
		Indicators:     series,
	}, nil
}
