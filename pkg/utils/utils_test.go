package utils

import (
	"context"
	"testing"
	"time"

	"zahaam/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessDaysBack(t *testing.T) {
	// Monday 2024-03-11
	end := time.Date(2024, 3, 11, 15, 30, 0, 0, time.UTC)
	days := BusinessDaysBack(end, 6)
	require.Len(t, days, 6)

	want := []string{"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08", "2024-03-11"}
	for i, d := range days {
		assert.Equal(t, want[i], d.Format("2006-01-02"))
		assert.True(t, IsBusinessDay(d))
	}

	// Sunday end is skipped
	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	days = BusinessDaysBack(sunday, 1)
	assert.Equal(t, "2024-03-08", days[0].Format("2006-01-02"))

	assert.Nil(t, BusinessDaysBack(end, 0))
}

func TestRangeToBusinessDays(t *testing.T) {
	n, ok := RangeToBusinessDays("1y")
	assert.True(t, ok)
	assert.Equal(t, 260, n)

	_, ok = RangeToBusinessDays("10y")
	assert.False(t, ok)
}

func TestShouldContinue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, ShouldContinue(ctx, logger.NewNop()))
	cancel()
	assert.False(t, ShouldContinue(ctx, logger.NewNop()))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "+12.50%", FormatPercentage(12.5))
	assert.Equal(t, "-3.25%", FormatPercentage(-3.25))
}

func TestPrettyDate(t *testing.T) {
	ts := time.Date(2024, 3, 8, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "08 Mar 2024 - 09:05 UTC", PrettyDate(ts))
}
