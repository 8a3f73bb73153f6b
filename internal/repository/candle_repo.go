package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zahaam/config"
	"zahaam/internal/dto"
	"zahaam/pkg/cache"
	"zahaam/pkg/common"
	"zahaam/pkg/logger"
)

// ErrLiveDataUnavailable is returned when live data was explicitly requested
// and the feed failed.
var ErrLiveDataUnavailable = errors.New("live market data unavailable")

// CandleRepository is the data source with fallback: live bars when the feed
// answers, flagged synthetic bars otherwise.
type CandleRepository interface {
	Get(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error)
}

type candleRepository struct {
	live      YahooFinanceRepository
	synthetic SyntheticRepository
	cache     cache.Cache
	cfg       *config.Config
	log       *logger.Logger
}

func NewCandleRepository(cfg *config.Config, log *logger.Logger, live YahooFinanceRepository, synthetic SyntheticRepository, inMemoryCache cache.Cache) CandleRepository {
	return &candleRepository{
		live:      live,
		synthetic: synthetic,
		cache:     inMemoryCache,
		cfg:       cfg,
		log:       log,
	}
}

func (r *candleRepository) normalize(param dto.GetStockDataParam) dto.GetStockDataParam {
	param.Symbol = strings.ToUpper(strings.TrimSpace(param.Symbol))
	if param.Range == "" {
		param.Range = r.cfg.Backtest.DefaultRange
	}
	if param.Range == "" {
		param.Range = dto.DefaultRange
	}
	if param.Interval == "" {
		param.Interval = dto.Interval1Day
	}
	if param.Source == "" {
		param.Source = common.SOURCE_MODE_AUTO
	}
	return param
}

func (r *candleRepository) Get(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error) {
	param = r.normalize(param)

	switch param.Source {
	case common.SOURCE_MODE_SYNTHETIC:
		return r.synthetic.Get(ctx, param)
	case common.SOURCE_MODE_LIVE:
		data, err := r.getLive(ctx, param)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLiveDataUnavailable, err)
		}
		return data, nil
	case common.SOURCE_MODE_AUTO:
	default:
		return nil, fmt.Errorf("unknown data source %q", param.Source)
	}

	data, err := r.getLive(ctx, param)
	if err == nil {
		return data, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.log.WarnContext(ctx, "Live bars unavailable, falling back to synthetic data",
		logger.StringField("symbol", param.Symbol),
		logger.StringField("range", param.Range),
		logger.ErrorField(err),
	)
	fallback, synErr := r.synthetic.Get(ctx, param)
	if synErr != nil {
		return nil, fmt.Errorf("synthetic fallback failed: %w", synErr)
	}
	fallback.FallbackReason = err.Error()
	return fallback, nil
}

func (r *candleRepository) getLive(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error) {
	key := fmt.Sprintf(common.KEY_STOCK_BARS, param.Symbol, param.Range, param.Interval)
	if cached, ok := cache.GetTyped[*dto.StockData](r.cache, key); ok {
		r.log.DebugContext(ctx, "Bars served from cache", logger.StringField("key", key))
		data := *cached
		return &data, nil
	}

	data, err := r.live.Get(ctx, param)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, data, r.cfg.Cache.BarsExpiration)

	out := *data
	return &out, nil
}
