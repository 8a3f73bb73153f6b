package repository

import (
	"context"
	"errors"
	"time"

	"zahaam/internal/model"
	"zahaam/pkg/utils"

	"gorm.io/gorm"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository interface {
	FindJobsToSchedule(ctx context.Context, dueAt time.Time, opts ...utils.DBOption) ([]model.TaskSchedule, error)
	CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error
	UpdateTaskSchedule(ctx context.Context, schedule *model.TaskSchedule, opts ...utils.DBOption) error
	FindByID(ctx context.Context, id uint) (*model.Job, error)
	UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error
	Get(ctx context.Context, param *model.GetJobParam, opts ...utils.DBOption) ([]model.Job, error)
	DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) query(ctx context.Context, opts ...utils.DBOption) *gorm.DB {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...)
}

// FindJobsToSchedule returns active schedules due at dueAt, oldest first,
// with their job preloaded. A schedule that never ran is always due.
func (r *jobRepository) FindJobsToSchedule(ctx context.Context, dueAt time.Time, opts ...utils.DBOption) ([]model.TaskSchedule, error) {
	var schedules []model.TaskSchedule
	err := r.query(ctx, append(opts, utils.WithPreload("Job"))...).
		Where("is_active = ?", true).
		Where("next_execution IS NULL OR next_execution <= ?", dueAt).
		Order("next_execution ASC NULLS FIRST").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *jobRepository) CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return r.query(ctx, opts...).Create(history).Error
}

func (r *jobRepository) UpdateTaskSchedule(ctx context.Context, schedule *model.TaskSchedule, opts ...utils.DBOption) error {
	return r.query(ctx, opts...).
		Model(schedule).
		Select("next_execution", "last_execution", "is_active").
		Updates(schedule).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	err := r.query(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return r.query(ctx, opts...).
		Model(history).
		Select("completed_at", "status", "exit_code", "output", "error_message").
		Updates(history).Error
}

// Get lists jobs with their schedules, optionally filtered by id or by
// schedule activity. Recent executions are attached when requested.
func (r *jobRepository) Get(ctx context.Context, param *model.GetJobParam, opts ...utils.DBOption) ([]model.Job, error) {
	db := r.query(ctx, opts...).
		Model(&model.Job{}).
		Joins("LEFT JOIN task_schedules ON task_schedules.job_id = jobs.id")
	if param.IsActive != nil {
		db = db.Where("task_schedules.is_active = ?", *param.IsActive)
	}
	if len(param.IDs) > 0 {
		db = db.Where("jobs.id IN ?", param.IDs)
	}
	if param.Limit != nil {
		db = utils.WithLimit(*param.Limit)(db)
	}
	if h := param.WithTaskHistory; h != nil {
		db = db.Preload("Histories", func(tx *gorm.DB) *gorm.DB {
			tx = tx.Order("started_at DESC")
			if h.Limit != nil {
				tx = utils.WithLimit(*h.Limit)(tx)
			}
			return tx
		})
	}

	var jobs []model.Job
	err := db.Distinct("jobs.*").
		Preload("Schedules").
		Order("jobs.id").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	result := r.query(ctx, opts...).
		Where("created_at < ?", date).
		Delete(&model.TaskExecutionHistory{})
	return result.RowsAffected, result.Error
}
