package repository

import (
	"context"
	"testing"
	"time"

	"zahaam/config"
	"zahaam/internal/dto"
	"zahaam/pkg/common"
	"zahaam/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSyntheticRepo() *syntheticRepository {
	cfg := &config.Config{MarketData: config.MarketData{
		SyntheticSeed:       42,
		SyntheticStartPrice: 100,
		SyntheticVolatility: 0.02,
	}}
	now := func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return newSyntheticRepository(cfg, now)
}

func TestSyntheticRepositoryDeterministic(t *testing.T) {
	repo := newTestSyntheticRepo()
	param := dto.GetStockDataParam{Symbol: "aapl", Range: "6m", Interval: "1d"}

	first, err := repo.Get(context.Background(), param)
	require.NoError(t, err)
	second, err := repo.Get(context.Background(), param)
	require.NoError(t, err)
	assert.Equal(t, first.Bars, second.Bars)

	other, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "MSFT", Range: "6m", Interval: "1d"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Bars, other.Bars)

	seed := int64(7)
	seeded, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "AAPL", Range: "6m", Interval: "1d", Seed: &seed})
	require.NoError(t, err)
	reseeded, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "MSFT", Range: "6m", Interval: "1d", Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, seeded.Bars, reseeded.Bars, "explicit seed overrides the symbol")
}

func TestSyntheticRepositoryBars(t *testing.T) {
	repo := newTestSyntheticRepo()
	data, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "AAPL", Range: "1y", Interval: "1d"})
	require.NoError(t, err)

	assert.Equal(t, common.SOURCE_SYNTHETIC, data.Source)
	assert.True(t, data.Synthetic)
	assert.Equal(t, "AAPL", data.Symbol)

	want, _ := utils.RangeToBusinessDays("1y")
	require.Len(t, data.Bars, want)
	assert.Equal(t, "2024-03-08", data.Bars[len(data.Bars)-1].Date)

	for i, bar := range data.Bars {
		day := bar.Time()
		assert.True(t, utils.IsBusinessDay(day), bar.Date)
		if i > 0 {
			assert.Less(t, data.Bars[i-1].Date, bar.Date)
		}
		assert.Greater(t, bar.Close, 0.0)
		assert.Greater(t, bar.Low, 0.0)
		assert.GreaterOrEqual(t, bar.High, bar.Open)
		assert.GreaterOrEqual(t, bar.High, bar.Close)
		assert.LessOrEqual(t, bar.Low, bar.Open)
		assert.LessOrEqual(t, bar.Low, bar.Close)
		assert.GreaterOrEqual(t, bar.Volume, int64(0))
	}
}

func TestSyntheticRepositoryInvalidRange(t *testing.T) {
	_, err := newTestSyntheticRepo().Get(context.Background(), dto.GetStockDataParam{Symbol: "AAPL", Range: "10y"})
	assert.Error(t, err)
}

func TestSyntheticSeed(t *testing.T) {
	assert.Equal(t, SyntheticSeed(42, "aapl"), SyntheticSeed(42, "AAPL"))
	assert.NotEqual(t, SyntheticSeed(42, "AAPL"), SyntheticSeed(43, "AAPL"))
}
