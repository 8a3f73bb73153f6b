package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"zahaam/internal/model"

	"github.com/go-playground/validator/v10"
)

// Exit codes follow HTTP status semantics so task history reads at a glance.
const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
	JOB_EXIT_CODE_FAILED          = 500
)

type JobType string

const (
	JobTypePriceWarmup JobType = "price_warmup"
	JobTypeDataCleanUp JobType = "data_clean_up"
)

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

func failed(err error) JobResult {
	return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: err.Error()}
}

// JobExecutionStrategy runs one kind of background job.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *model.Job) (JobResult, error)
	GetType() JobType
}

// Registry maps job types to their executor.
type Registry map[JobType]JobExecutionStrategy

func NewRegistry(strategies ...JobExecutionStrategy) Registry {
	r := make(Registry, len(strategies))
	for _, s := range strategies {
		r[s.GetType()] = s
	}
	return r
}

// Lookup returns the executor for a stored job type.
func (r Registry) Lookup(jobType string) (JobExecutionStrategy, bool) {
	s, ok := r[JobType(jobType)]
	return s, ok
}

var payloadValidator = validator.New()

// decodePayload unmarshals and validates the job payload into T.
func decodePayload[T any](job *model.Job) (T, error) {
	var payload T
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if err := payloadValidator.Struct(payload); err != nil {
		return payload, fmt.Errorf("invalid job payload: %w", err)
	}
	return payload, nil
}
