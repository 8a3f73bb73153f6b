package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskExecutionHistoryFinish(t *testing.T) {
	now := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	ok := &TaskExecutionHistory{Status: StatusRunning}
	ok.Finish(now, StatusCompleted, "warmed 3 symbols", nil)
	assert.Equal(t, StatusCompleted, ok.Status)
	assert.True(t, ok.CompletedAt.Valid)
	assert.Equal(t, int32(0), ok.ExitCode.Int32)
	assert.Equal(t, "warmed 3 symbols", ok.Output.String)
	assert.False(t, ok.ErrorMessage.Valid)

	failed := &TaskExecutionHistory{Status: StatusRunning}
	failed.Finish(now, StatusFailed, "", errors.New("boom"))
	assert.Equal(t, int32(1), failed.ExitCode.Int32)
	assert.Equal(t, "boom", failed.ErrorMessage.String)
	assert.False(t, failed.Output.Valid)
}

func TestJobTimeoutDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, Job{Timeout: 90}.TimeoutDuration(time.Minute))
	assert.Equal(t, time.Minute, Job{}.TimeoutDuration(time.Minute))
}

func TestTaskScheduleMarkExecuted(t *testing.T) {
	ran := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	s := &TaskSchedule{}
	s.MarkExecuted(ran, ran.Add(time.Hour))
	assert.True(t, s.LastExecution.Valid)
	assert.Equal(t, ran.Add(time.Hour), s.NextExecution.Time)

	s.MarkExecuted(ran, time.Time{})
	assert.False(t, s.NextExecution.Valid)
}
