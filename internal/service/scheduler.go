package service

import (
	"context"
	"errors"
	"fmt"

	"zahaam/config"
	"zahaam/internal/model"
	"zahaam/internal/repository"
	"zahaam/pkg/logger"
	"zahaam/pkg/utils"

	"github.com/robfig/cron/v3"
)

var ErrScheduleNotFound = errors.New("schedule not found")

type SchedulerService interface {
	Execute(ctx context.Context) error
	GetJobSchedule(ctx context.Context, param model.GetJobParam) ([]model.Job, error)
	RunJobTask(ctx context.Context, jobID uint) error
	Wait()
}

type schedulerService struct {
	cfg          *config.Config
	log          *logger.Logger
	cronParser   cron.Parser
	jobRepo      repository.JobRepository
	taskExecutor TaskExecutor
	semaphore    chan struct{}
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	jobRepo repository.JobRepository,
	taskExecutor TaskExecutor,
) SchedulerService {
	maxConcurrency := cfg.Scheduler.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &schedulerService{
		cfg:          cfg,
		log:          log,
		jobRepo:      jobRepo,
		cronParser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		taskExecutor: taskExecutor,
		semaphore:    make(chan struct{}, maxConcurrency),
	}
}

// Execute starts every due schedule. Tasks run in the background, bounded by
// the scheduler's concurrency limit.
func (s *schedulerService) Execute(ctx context.Context) error {
	schedules, err := s.jobRepo.FindJobsToSchedule(ctx, utils.TimeNowUTC())
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to find jobs to schedule", logger.ErrorField(err))
		return fmt.Errorf("failed to find jobs to schedule: %w", err)
	}

	if len(schedules) == 0 {
		s.log.DebugContext(ctx, "No jobs to schedule")
		return nil
	}
	s.log.InfoContext(ctx, "Start running jobs",
		logger.IntField("job_count", len(schedules)),
		logger.IntField("max_concurrency", cap(s.semaphore)),
	)

	for _, task := range schedules {
		if ctx.Err() != nil {
			s.log.WarnContext(ctx, "Job execution cancelled", logger.ErrorField(ctx.Err()))
			return nil
		}

		if err := s.executeJob(ctx, task); err != nil {
			s.log.ErrorContextWithAlert(ctx, "Failed to execute job",
				logger.ErrorField(err),
				logger.IntField("job_id", int(task.JobID)),
				logger.IntField("schedule_id", int(task.ID)),
				logger.StringField("job_name", task.Job.Name),
				logger.StringField("job_type", task.Job.Type),
			)
		}
	}

	return nil
}

func (s *schedulerService) executeJob(ctx context.Context, task model.TaskSchedule) error {
	s.log.DebugContext(ctx, "Executing job",
		logger.IntField("job_id", int(task.JobID)),
		logger.IntField("schedule_id", int(task.ID)),
		logger.StringField("job_name", task.Job.Name),
		logger.StringField("job_type", task.Job.Type),
		logger.IntField("active_concurrency", len(s.semaphore)),
		logger.IntField("max_concurrency", cap(s.semaphore)),
	)

	now := utils.TimeNowUTC()
	history := &model.TaskExecutionHistory{
		JobID:      task.JobID,
		ScheduleID: task.ID,
		Status:     model.StatusRunning,
		StartedAt:  now,
	}

	if err := s.jobRepo.CreateTaskExecutionHistory(ctx, history); err != nil {
		return fmt.Errorf("failed to create task history: %w", err)
	}

	timeout := task.Job.TimeoutDuration(s.cfg.Scheduler.TimeoutDuration)
	s.semaphore <- struct{}{}
	utils.GoSafe(s.log, func() {
		defer func() {
			<-s.semaphore
		}()

		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := s.taskExecutor.Execute(taskCtx, history); err != nil {
			s.log.ErrorContextWithAlert(taskCtx, "Failed to execute task", logger.ErrorField(err), logger.IntField("schedule_id", int(task.ID)))
		}
	})

	cronSchedule, err := s.cronParser.Parse(task.CronExpression)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", task.CronExpression, err)
	}
	next := cronSchedule.Next(now)
	task.MarkExecuted(now, next)

	if err := s.jobRepo.UpdateTaskSchedule(ctx, &task); err != nil {
		return fmt.Errorf("failed to update task schedule: %w", err)
	}
	return nil
}

// Wait blocks until every running task has released its slot.
func (s *schedulerService) Wait() {
	for i := 0; i < cap(s.semaphore); i++ {
		s.semaphore <- struct{}{}
	}
	for i := 0; i < cap(s.semaphore); i++ {
		<-s.semaphore
	}
}

func (s *schedulerService) GetJobSchedule(ctx context.Context, param model.GetJobParam) ([]model.Job, error) {
	return s.jobRepo.Get(ctx, &param)
}

// RunJobTask runs the first schedule of jobID immediately.
func (s *schedulerService) RunJobTask(ctx context.Context, jobID uint) error {
	s.log.InfoContext(ctx, "Running job task", logger.IntField("job_id", int(jobID)))
	jobs, err := s.jobRepo.Get(ctx, &model.GetJobParam{IDs: []uint{jobID}})
	if err != nil {
		return fmt.Errorf("failed to find job: %w", err)
	}
	if len(jobs) == 0 {
		return repository.ErrJobNotFound
	}
	if len(jobs[0].Schedules) == 0 {
		return ErrScheduleNotFound
	}

	task := jobs[0].Schedules[0]
	task.Job = jobs[0]
	task.Job.Schedules = nil
	return s.executeJob(ctx, task)
}
