package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

func logEntry(t *testing.T, pair string, rate float64) models.PredictionLogEntry {
	t.Helper()
	return models.PredictionLogEntry{
		Timestamp:      time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		CurrencyPair:   pair,
		PredictionDate: day(t, "2025-01-11"),
		DaysAhead:      3,
		PredictedRate:  rate,
		ModelType:      "simple_average",
	}
}

func TestPredictionLogRepository_AppendAndRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionLogRepository(t.TempDir())

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, logEntry(t, fmt.Sprintf("USD_to_EUR_%d", i), 1.1)))
	}

	lines, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, lines, 3, "only the last limit lines are returned")

	// Oldest of the returned slice comes first.
	assert.Contains(t, lines[0], "USD_to_EUR_2")
	assert.Contains(t, lines[2], "USD_to_EUR_4")
	assert.Contains(t, lines[2], "predicted_rate=1.100000")
}

func TestPredictionLogRepository_RecentShorterThanLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionLogRepository(t.TempDir())

	require.NoError(t, repo.Append(ctx, logEntry(t, "USD_to_EUR", 1.105)))

	lines, err := repo.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestPredictionLogRepository_RecentMissingFile(t *testing.T) {
	repo := NewPredictionLogRepository(t.TempDir())

	lines, err := repo.Recent(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPredictionLogRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionLogRepository(t.TempDir())

	require.NoError(t, repo.Append(ctx, logEntry(t, "USD_to_EUR", 1.105)))
	require.NoError(t, repo.Clear(ctx))

	lines, err := repo.Recent(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, lines)

	assert.NoError(t, repo.Clear(ctx), "clearing an absent log succeeds")
}
