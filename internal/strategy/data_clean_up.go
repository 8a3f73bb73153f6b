package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"zahaam/config"
	"zahaam/internal/dto"
	"zahaam/internal/model"
	"zahaam/internal/repository"
	"zahaam/pkg/logger"
	"zahaam/pkg/utils"
)

type DataCleanUpResult struct {
	Table string `json:"table"`
	Total int64  `json:"total"`
	Error string `json:"error,omitempty"`
}

// DataCleanUpStrategy prunes stored backtest runs and task history past
// their retention. A retention of zero keeps that table untouched.
type DataCleanUpStrategy struct {
	cfg             *config.Config
	log             *logger.Logger
	backtestRunRepo repository.BacktestRunRepository
	jobRepo         repository.JobRepository
	unitOfWork      repository.UnitOfWork
}

func NewDataCleanUpStrategy(cfg *config.Config, log *logger.Logger, backtestRunRepo repository.BacktestRunRepository, jobRepo repository.JobRepository, unitOfWork repository.UnitOfWork) JobExecutionStrategy {
	return &DataCleanUpStrategy{
		cfg:             cfg,
		log:             log,
		backtestRunRepo: backtestRunRepo,
		jobRepo:         jobRepo,
		unitOfWork:      unitOfWork,
	}
}

func (s *DataCleanUpStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting data clean up", logger.IntField("job_id", int(job.ID)))

	payload, err := decodePayload[dto.DataCleanUpPayload](job)
	if err != nil {
		s.log.ErrorContext(ctx, "Rejected job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return failed(err), err
	}
	if payload.BacktestRunRetentionDays == 0 && payload.TaskHistoryRetentionDays == 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "no retention configured"}, nil
	}

	now := utils.TimeNowUTC()
	outputMsg := []DataCleanUpResult{}
	err = s.unitOfWork.Run(ctx, func(opts ...utils.DBOption) error {
		if payload.BacktestRunRetentionDays > 0 {
			date := now.AddDate(0, 0, -payload.BacktestRunRetentionDays)
			total, err := s.backtestRunRepo.DeleteOlderThan(ctx, date, opts...)
			if err != nil {
				return fmt.Errorf("failed to delete backtest runs older than %s: %w", date.Format("2006-01-02"), err)
			}
			outputMsg = append(outputMsg, DataCleanUpResult{Table: "backtest_runs", Total: total})
		}
		if payload.TaskHistoryRetentionDays > 0 {
			date := now.AddDate(0, 0, -payload.TaskHistoryRetentionDays)
			total, err := s.jobRepo.DeleteTaskHistoryOlderThan(ctx, date, opts...)
			if err != nil {
				return fmt.Errorf("failed to delete task history older than %s: %w", date.Format("2006-01-02"), err)
			}
			outputMsg = append(outputMsg, DataCleanUpResult{Table: "task_execution_history", Total: total})
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Data clean up rolled back", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return failed(err), err
	}

	res, err := json.Marshal(outputMsg)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to marshal output message: %v", err)}, fmt.Errorf("failed to marshal output message: %w", err)
	}
	s.log.InfoContext(ctx, "Data clean up finished", logger.StringField("output", string(res)))
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(res)}, nil
}

func (s *DataCleanUpStrategy) GetType() JobType {
	return JobTypeDataCleanUp
}
