package service

import (
	"context"
	"encoding/json"
	"fmt"

	"zahaam/config"
	"zahaam/internal/backtest"
	"zahaam/internal/dto"
	"zahaam/internal/model"
	"zahaam/internal/repository"
	"zahaam/pkg/logger"
	"zahaam/pkg/telegram"
	"zahaam/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

// Notifier delivers human-readable run summaries.
type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, message string) error
}

type BacktestService interface {
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResponse, error)
	Optimize(ctx context.Context, req dto.OptimizeRequest) (*dto.OptimizeResponse, error)
	GetRun(ctx context.Context, id uint) (*dto.BacktestRunDetail, error)
	ListRuns(ctx context.Context, param dto.GetBacktestRunsParam) ([]dto.BacktestRunSummary, error)
}

type backtestService struct {
	cfg             *config.Config
	log             *logger.Logger
	validator       *goValidator.Validate
	candleRepo      repository.CandleRepository
	backtestRunRepo repository.BacktestRunRepository
	notifier        Notifier
}

// NewBacktestService builds the service. backtestRunRepo and notifier may be
// nil, in which case runs are neither stored nor announced.
func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	validator *goValidator.Validate,
	candleRepo repository.CandleRepository,
	backtestRunRepo repository.BacktestRunRepository,
	notifier Notifier,
) BacktestService {
	return &backtestService{
		cfg:             cfg,
		log:             log,
		validator:       validator,
		candleRepo:      candleRepo,
		backtestRunRepo: backtestRunRepo,
		notifier:        notifier,
	}
}

func (s *backtestService) options(req dto.BacktestRequest) backtest.Options {
	opts := backtest.Options{
		InitialCapital:  s.cfg.Backtest.InitialCapital,
		PositionSizePct: s.cfg.Backtest.PositionSizePct,
	}
	if req.InitialCapital > 0 {
		opts.InitialCapital = req.InitialCapital
	}
	if req.PositionSizePct > 0 {
		opts.PositionSizePct = req.PositionSizePct
	}
	return opts
}

// RunBacktest validates the request and strategy, loads bars through the
// fallback source and runs the pipeline. Storing and announcing the run are
// best effort.
func (s *backtestService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidRequest(err)
	}
	strategy := req.Strategy.ToStrategy()
	if _, err := strategy.Config(); err != nil {
		return nil, err
	}

	data, err := s.candleRepo.Get(ctx, req.StockParam())
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load bars for backtest", logger.StringField("symbol", req.Symbol), logger.ErrorField(err))
		return nil, fmt.Errorf("failed to load bars: %w", err)
	}

	result, err := backtest.Run(data.Bars, strategy, s.options(req))
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Backtest finished",
		logger.StringField("symbol", data.Symbol),
		logger.StringField("strategy", string(strategy.Type)),
		logger.StringField("source", data.Source),
		logger.IntField("bars", result.Bars),
		logger.IntField("trades", result.TotalTrades),
		logger.Float64Field("total_return", result.TotalReturn),
	)

	resp := &dto.BacktestResponse{
		DataProvenance: dto.NewDataProvenance(data),
		Result:         result,
	}
	resp.RunID = s.persist(ctx, req, data, result)
	s.notify(ctx, resp)
	return resp, nil
}

func (s *backtestService) persist(ctx context.Context, req dto.BacktestRequest, data *dto.StockData, result *backtest.Result) uint {
	if s.backtestRunRepo == nil {
		return 0
	}
	run, err := newBacktestRun(req, data, result)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to encode backtest run", logger.ErrorField(err))
		return 0
	}
	if err := s.backtestRunRepo.Create(ctx, run); err != nil {
		s.log.ErrorContextWithAlert(ctx, "Failed to store backtest run",
			logger.StringField("symbol", data.Symbol),
			logger.ErrorField(err),
		)
		return 0
	}
	return run.ID
}

func (s *backtestService) notify(ctx context.Context, resp *dto.BacktestResponse) {
	if s.notifier == nil || !s.cfg.Backtest.NotifyResults || !s.notifier.Enabled() {
		return
	}
	msg := telegram.FormatBacktestDigest(telegram.BacktestDigest{
		RunID:            resp.RunID,
		Symbol:           resp.Symbol,
		Strategy:         string(resp.Result.Strategy.Type),
		Range:            resp.Range,
		Source:           resp.Source,
		Synthetic:        resp.Synthetic,
		TotalReturn:      resp.Result.TotalReturn,
		BuyAndHoldReturn: resp.Result.BuyAndHoldReturn,
		WinRate:          resp.Result.WinRate,
		MaxDrawdown:      resp.Result.MaxDrawdown,
		TotalTrades:      resp.Result.TotalTrades,
		FinishedAt:       utils.TimeNowUTC(),
	})
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.log.WarnContext(ctx, "Failed to send backtest notification", logger.ErrorField(err))
	}
}

func (s *backtestService) Optimize(ctx context.Context, req dto.OptimizeRequest) (*dto.OptimizeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidRequest(err)
	}
	strategy := req.Strategy.ToStrategy()
	if _, err := strategy.Config(); err != nil {
		return nil, err
	}

	data, err := s.candleRepo.Get(ctx, req.StockParam())
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load bars for optimization", logger.StringField("symbol", req.Symbol), logger.ErrorField(err))
		return nil, fmt.Errorf("failed to load bars: %w", err)
	}

	top := req.Top
	if top == 0 {
		top = s.cfg.Backtest.OptimizeTop
	}
	result, err := backtest.Optimize(data.Bars, strategy, req.Ranges, s.options(req.BacktestRequest), s.cfg.Backtest.MaxOptimizeCandidates, top)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Optimization finished",
		logger.StringField("symbol", data.Symbol),
		logger.StringField("strategy", string(strategy.Type)),
		logger.IntField("evaluated", result.Evaluated),
		logger.IntField("skipped", result.Skipped),
	)
	return &dto.OptimizeResponse{
		DataProvenance: dto.NewDataProvenance(data),
		Result:         result,
	}, nil
}

func (s *backtestService) GetRun(ctx context.Context, id uint) (*dto.BacktestRunDetail, error) {
	if s.backtestRunRepo == nil {
		return nil, repository.ErrRunNotFound
	}
	run, err := s.backtestRunRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &dto.BacktestRunDetail{
		BacktestRunSummary: toRunSummary(*run),
		FallbackReason:     run.FallbackReason,
	}
	if err := decodeJSON(run.Strategy, &detail.Strategy); err != nil {
		return nil, fmt.Errorf("decode strategy of run %d: %w", id, err)
	}
	if err := decodeJSON(run.Trades, &detail.Trades); err != nil {
		return nil, fmt.Errorf("decode trades of run %d: %w", id, err)
	}
	if err := decodeJSON(run.Equity, &detail.Equity); err != nil {
		return nil, fmt.Errorf("decode equity of run %d: %w", id, err)
	}
	return detail, nil
}

func (s *backtestService) ListRuns(ctx context.Context, param dto.GetBacktestRunsParam) ([]dto.BacktestRunSummary, error) {
	if err := s.validator.Struct(param); err != nil {
		return nil, invalidRequest(err)
	}
	if s.backtestRunRepo == nil {
		return []dto.BacktestRunSummary{}, nil
	}
	limit := param.Limit
	if limit == 0 {
		limit = dto.DefaultRunsLimit
	}
	runs, err := s.backtestRunRepo.List(ctx, model.GetBacktestRunParam{Symbol: param.Symbol, Limit: limit})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list backtest runs", logger.ErrorField(err))
		return nil, err
	}
	return lo.Map(runs, func(r model.BacktestRun, _ int) dto.BacktestRunSummary {
		return toRunSummary(r)
	}), nil
}

func newBacktestRun(req dto.BacktestRequest, data *dto.StockData, result *backtest.Result) (*model.BacktestRun, error) {
	strategy, err := json.Marshal(result.Strategy)
	if err != nil {
		return nil, err
	}
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		return nil, err
	}
	trades, err := json.Marshal(result.Trades)
	if err != nil {
		return nil, err
	}
	equity, err := json.Marshal(result.Equity)
	if err != nil {
		return nil, err
	}

	return &model.BacktestRun{
		Symbol:           data.Symbol,
		Range:            data.Range,
		StrategyType:     string(result.Strategy.Type),
		Source:           data.Source,
		Synthetic:        data.Synthetic,
		FallbackReason:   data.FallbackReason,
		Seed:             req.Seed,
		InitialCapital:   result.InitialCapital,
		FinalCapital:     result.FinalCapital,
		TotalReturn:      result.TotalReturn,
		WinRate:          result.WinRate,
		MaxDrawdown:      result.MaxDrawdown,
		BuyAndHoldReturn: result.BuyAndHoldReturn,
		TotalTrades:      result.TotalTrades,
		BarCount:         result.Bars,
		Strategy:         datatypes.JSON(strategy),
		Summary:          datatypes.JSON(summary),
		Trades:           datatypes.JSON(trades),
		Equity:           datatypes.JSON(equity),
	}, nil
}

func toRunSummary(r model.BacktestRun) dto.BacktestRunSummary {
	return dto.BacktestRunSummary{
		ID:             r.ID,
		Symbol:         r.Symbol,
		Range:          r.Range,
		StrategyType:   r.StrategyType,
		Source:         r.Source,
		Synthetic:      r.Synthetic,
		InitialCapital: r.InitialCapital,
		FinalCapital:   r.FinalCapital,
		TotalReturn:    r.TotalReturn,
		WinRate:        r.WinRate,
		MaxDrawdown:    r.MaxDrawdown,
		TotalTrades:    r.TotalTrades,
		CreatedAt:      r.CreatedAt,
	}
}

func decodeJSON(raw datatypes.JSON, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
