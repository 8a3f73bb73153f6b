package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"zahaam/config"
	"zahaam/internal/backtest"
	"zahaam/internal/dto"
	"zahaam/pkg/common"
	"zahaam/pkg/utils"
)

const syntheticDrift = 0.0003

type SyntheticRepository interface {
	Get(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error)
}

// syntheticRepository produces a seeded random walk of business-day bars.
// Every call owns its generator, so identical inputs give identical bars.
type syntheticRepository struct {
	cfg *config.Config
	now func() time.Time
}

func NewSyntheticRepository(cfg *config.Config) SyntheticRepository {
	return newSyntheticRepository(cfg, utils.TimeNowUTC)
}

func newSyntheticRepository(cfg *config.Config, now func() time.Time) *syntheticRepository {
	return &syntheticRepository{cfg: cfg, now: now}
}

// SyntheticSeed derives the walk seed for symbol from the base seed.
func SyntheticSeed(base int64, symbol string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	return base ^ int64(h.Sum32())
}

func (r *syntheticRepository) Get(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := utils.RangeToBusinessDays(param.Range)
	if !ok {
		return nil, fmt.Errorf("invalid range: %q", param.Range)
	}

	seed := SyntheticSeed(r.cfg.MarketData.SyntheticSeed, param.Symbol)
	if param.Seed != nil {
		seed = *param.Seed
	}

	start := r.cfg.MarketData.SyntheticStartPrice
	if start <= 0 {
		start = 100
	}
	vol := r.cfg.MarketData.SyntheticVolatility
	if vol <= 0 {
		vol = 0.02
	}

	rng := rand.New(rand.NewSource(seed))
	days := utils.BusinessDaysBack(r.now(), n)
	bars := make([]backtest.Bar, 0, len(days))
	prev := start
	for _, day := range days {
		open := math.Max(0.01, prev*(1+rng.NormFloat64()*vol/4))
		closePrice := math.Max(0.01, prev*(1+syntheticDrift+rng.NormFloat64()*vol))
		high := math.Max(open, closePrice) * (1 + math.Abs(rng.NormFloat64())*vol/2)
		low := math.Min(open, closePrice) * (1 - math.Min(0.5, math.Abs(rng.NormFloat64())*vol/2))

		bars = append(bars, backtest.Bar{
			Date:   day.Format(backtest.DateLayout),
			Open:   round2(open),
			High:   round2(high),
			Low:    math.Max(0.01, round2(low)),
			Close:  round2(closePrice),
			Volume: 500_000 + rng.Int63n(4_500_000),
		})
		prev = closePrice
	}

	return &dto.StockData{
		Symbol:    strings.ToUpper(param.Symbol),
		Range:     param.Range,
		Interval:  param.Interval,
		Source:    common.SOURCE_SYNTHETIC,
		Synthetic: true,
		Bars:      bars,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
