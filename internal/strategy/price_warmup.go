package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"zahaam/config"
	"zahaam/internal/dto"
	"zahaam/internal/model"
	"zahaam/internal/repository"
	"zahaam/pkg/common"
	"zahaam/pkg/logger"
	"zahaam/pkg/utils"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const defaultWarmupConcurrency = 4

type PriceWarmupResult struct {
	Symbol string `json:"symbol"`
	Bars   int    `json:"bars"`
	Error  string `json:"error,omitempty"`
}

// PriceWarmupStrategy prefetches live bars for a watchlist so the first
// dashboard request for those symbols is served from cache.
type PriceWarmupStrategy struct {
	cfg        *config.Config
	log        *logger.Logger
	candleRepo repository.CandleRepository
}

func NewPriceWarmupStrategy(cfg *config.Config, log *logger.Logger, candleRepo repository.CandleRepository) JobExecutionStrategy {
	return &PriceWarmupStrategy{
		cfg:        cfg,
		log:        log,
		candleRepo: candleRepo,
	}
}

func (s *PriceWarmupStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	payload, err := decodePayload[dto.PriceWarmupPayload](job)
	if err != nil {
		s.log.ErrorContext(ctx, "Rejected job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return failed(err), err
	}

	symbols := lo.Uniq(lo.Map(payload.Symbols, func(s string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(s))
	}))
	concurrency := payload.Concurrency
	if concurrency <= 0 {
		concurrency = defaultWarmupConcurrency
	}

	s.log.InfoContext(ctx, "Starting price warm-up",
		logger.IntField("job_id", int(job.ID)),
		logger.IntField("symbols", len(symbols)),
		logger.IntField("concurrency", concurrency),
	)

	var (
		mu      sync.Mutex
		results = make([]PriceWarmupResult, len(symbols))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, symbol := range symbols {
		if !utils.ShouldContinue(gctx, s.log) {
			break
		}
		g.Go(func() error {
			data, err := s.candleRepo.Get(gctx, dto.GetStockDataParam{
				Symbol:   symbol,
				Range:    payload.Range,
				Interval: dto.Interval1Day,
				Source:   common.SOURCE_MODE_LIVE,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.WarnContext(gctx, "Price warm-up failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
				results[i] = PriceWarmupResult{Symbol: symbol, Error: err.Error()}
				// a cancelled run stops the group, a bad symbol does not
				return gctx.Err()
			}
			results[i] = PriceWarmupResult{Symbol: symbol, Bars: len(data.Bars)}
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return failed(err), fmt.Errorf("price warm-up interrupted: %w", err)
	}

	failures := lo.CountBy(results, func(r PriceWarmupResult) bool { return r.Error != "" })
	res, err := json.Marshal(results)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to marshal output message: %v", err)}, fmt.Errorf("failed to marshal output message: %w", err)
	}

	switch {
	case failures == 0:
		return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(res)}, nil
	case failures < len(results):
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(res)}, nil
	default:
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: string(res)}, fmt.Errorf("price warm-up failed for all %d symbols", failures)
	}
}

func (s *PriceWarmupStrategy) GetType() JobType {
	return JobTypePriceWarmup
}
