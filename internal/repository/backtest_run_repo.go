package repository

import (
	"context"
	"errors"
	"time"

	"zahaam/internal/model"
	"zahaam/pkg/utils"

	"gorm.io/gorm"
)

var ErrRunNotFound = errors.New("backtest run not found")

type BacktestRunRepository interface {
	Create(ctx context.Context, run *model.BacktestRun, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id uint) (*model.BacktestRun, error)
	List(ctx context.Context, param model.GetBacktestRunParam) ([]model.BacktestRun, error)
	DeleteOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error)
}

type backtestRunRepository struct {
	db *gorm.DB
}

func NewBacktestRunRepository(db *gorm.DB) BacktestRunRepository {
	return &backtestRunRepository{db: db}
}

func (r *backtestRunRepository) Create(ctx context.Context, run *model.BacktestRun, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(run).Error
}

func (r *backtestRunRepository) GetByID(ctx context.Context, id uint) (*model.BacktestRun, error) {
	var run model.BacktestRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// List returns the most recent runs first. The heavy JSON columns are left
// out; use GetByID for the full record.
func (r *backtestRunRepository) List(ctx context.Context, param model.GetBacktestRunParam) ([]model.BacktestRun, error) {
	var runs []model.BacktestRun
	db := r.db.WithContext(ctx).
		Omit("trades", "equity").
		Order("created_at DESC")
	if param.Symbol != "" {
		db = db.Where("symbol = ?", param.Symbol)
	}
	db = utils.ApplyOptions(db, utils.WithLimit(param.Limit))
	if err := db.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *backtestRunRepository) DeleteOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	result := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("created_at < ?", date).
		Delete(&model.BacktestRun{})
	return result.RowsAffected, result.Error
}
