package notes

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/quotedesk/internal/kv"
)

func TestSummarize(t *testing.T) {
	reviews := []Review{
		{WinLoss: "won", EstimatedCost: 1000, ActualCost: 1100, EstimatedHours: 10, ActualHours: 12, ActualProfit: 300},
		{WinLoss: "won", EstimatedCost: 2000, ActualCost: 1800, EstimatedHours: 20, ActualHours: 20, ActualProfit: 500},
		{WinLoss: "lost", EstimatedCost: 0, ActualCost: 400},
		{WinLoss: "pending"},
	}

	got := Summarize(reviews)

	assert.Equal(t, 4, got.Count)
	assert.Equal(t, 2, got.Won)
	assert.Equal(t, 1, got.Lost)
	assert.InDelta(t, 200.0/3.0, got.WinRate, 1e-9)
	// (+10% + -10%) / 2; the zero estimate is skipped.
	assert.InDelta(t, 0.0, got.AvgCostVariancePercent, 1e-9)
	assert.InDelta(t, 10.0, got.AvgHoursVariancePercent, 1e-9)
	assert.InDelta(t, 800.0, got.TotalActualProfit, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.Equal(t, Summary{}, got)
}

func TestSummarize_TinyEstimateDoesNotOverflow(t *testing.T) {
	reviews := []Review{
		{WinLoss: "won", EstimatedCost: 1e-300, ActualCost: 1e9, EstimatedHours: 1e-320, ActualHours: 1e5},
		{WinLoss: "won", EstimatedCost: 100, ActualCost: 150, EstimatedHours: 10, ActualHours: 5},
	}

	got := Summarize(reviews)

	assert.InDelta(t, 50.0, got.AvgCostVariancePercent, 1e-9)
	assert.InDelta(t, -50.0, got.AvgHoursVariancePercent, 1e-9)
	_, err := json.Marshal(got)
	assert.NoError(t, err)
}

func TestReviewSummary_ReadsStore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(kv.NewMemory())

	_, err := svc.SubmitReview(ctx, Review{ProjectName: "A", WinLoss: "won", ActualProfit: 120})
	require.NoError(t, err)
	_, err = svc.SubmitReview(ctx, Review{ProjectName: "B", WinLoss: "lost"})
	require.NoError(t, err)

	got, err := svc.ReviewSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
	assert.InDelta(t, 50.0, got.WinRate, 1e-9)
	assert.InDelta(t, 120.0, got.TotalActualProfit, 1e-9)
}
