package service

import (
	"context"
	"errors"
	"fmt"

	"zahaam/config"
	"zahaam/internal/model"
	"zahaam/internal/repository"
	"zahaam/internal/strategy"
	"zahaam/pkg/logger"
	"zahaam/pkg/utils"
)

type TaskExecutor interface {
	Execute(ctx context.Context, taskHistory *model.TaskExecutionHistory) error
}

type taskExecutor struct {
	cfg       *config.Config
	log       *logger.Logger
	jobRepo   repository.JobRepository
	executors strategy.Registry
}

func NewTaskExecutor(cfg *config.Config, log *logger.Logger, jobRepo repository.JobRepository, executors strategy.Registry) TaskExecutor {
	return &taskExecutor{
		cfg:       cfg,
		log:       log,
		jobRepo:   jobRepo,
		executors: executors,
	}
}

// Execute runs the job behind taskHistory and stamps the outcome on the
// history row. Only lookup and bookkeeping failures are returned; a job that
// fails is recorded as such.
func (t *taskExecutor) Execute(ctx context.Context, taskHistory *model.TaskExecutionHistory) error {
	log := t.log.With(logger.IntField("job_id", int(taskHistory.JobID)), logger.IntField("history_id", int(taskHistory.ID)))
	log.InfoContext(ctx, "Processing job")

	job, err := t.jobRepo.FindByID(ctx, taskHistory.JobID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to find job", logger.ErrorField(err))
		return fmt.Errorf("failed to find job: %w", err)
	}

	status, result, runErr := t.run(ctx, job)
	if runErr != nil {
		log.ErrorContext(ctx, "Job finished with error",
			logger.StringField("job_type", job.Type),
			logger.StringField("status", string(status)),
			logger.ErrorField(runErr),
		)
	}
	taskHistory.Finish(utils.TimeNowUTC(), status, result.Output, runErr)
	if result.ExitCode != 0 {
		taskHistory.ExitCode.Int32 = result.ExitCode
	}

	// the task context may already be past its deadline
	if err := t.jobRepo.UpdateTaskExecutionHistory(context.WithoutCancel(ctx), taskHistory); err != nil {
		log.ErrorContext(ctx, "Failed to update task execution history", logger.ErrorField(err))
		return fmt.Errorf("failed to update task execution history: %w", err)
	}
	return nil
}

func (t *taskExecutor) run(ctx context.Context, job *model.Job) (model.TaskExecutionStatus, strategy.JobResult, error) {
	executor, ok := t.executors.Lookup(job.Type)
	if !ok {
		return model.StatusFailed, strategy.JobResult{}, fmt.Errorf("job type %q not registered", job.Type)
	}

	result, err := executor.Execute(ctx, job)
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		if err == nil {
			err = ctx.Err()
		}
		return model.StatusTimeout, result, err
	case err != nil:
		return model.StatusFailed, result, err
	default:
		return model.StatusCompleted, result, nil
	}
}
