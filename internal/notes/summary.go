package notes

import (
	"context"
	"math"

	"github.com/samber/lo"
)

// Summary aggregates post-job reviews into estimating accuracy figures.
type Summary struct {
	Count                   int     `json:"count"`
	Won                     int     `json:"won"`
	Lost                    int     `json:"lost"`
	WinRate                 float64 `json:"winRate"`
	AvgCostVariancePercent  float64 `json:"avgCostVariancePercent"`
	AvgHoursVariancePercent float64 `json:"avgHoursVariancePercent"`
	TotalActualProfit       float64 `json:"totalActualProfit"`
}

// ReviewSummary summarises every stored review.
func (s *Service) ReviewSummary(ctx context.Context) (Summary, error) {
	reviews, err := s.Reviews(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(reviews), nil
}

// Summarize computes a Summary. Variances are (actual-estimated)/estimated
// and only count reviews with a positive estimate and a finite result.
func Summarize(reviews []Review) Summary {
	sum := Summary{Count: len(reviews)}
	sum.Won = lo.CountBy(reviews, func(r Review) bool { return r.WinLoss == "won" })
	sum.Lost = lo.CountBy(reviews, func(r Review) bool { return r.WinLoss == "lost" })
	if decided := sum.Won + sum.Lost; decided > 0 {
		sum.WinRate = float64(sum.Won) / float64(decided) * 100
	}

	sum.AvgCostVariancePercent = averageVariance(reviews, func(r Review) (float64, float64) {
		return r.EstimatedCost, r.ActualCost
	})
	sum.AvgHoursVariancePercent = averageVariance(reviews, func(r Review) (float64, float64) {
		return r.EstimatedHours, r.ActualHours
	})
	if total := lo.SumBy(reviews, func(r Review) float64 { return r.ActualProfit }); !math.IsInf(total, 0) && !math.IsNaN(total) {
		sum.TotalActualProfit = total
	}

	return sum
}

func averageVariance(reviews []Review, pick func(Review) (estimated, actual float64)) float64 {
	var total float64
	var n int
	for _, r := range reviews {
		estimated, actual := pick(r)
		if estimated <= 0 {
			continue
		}
		v := (actual - estimated) / estimated * 100
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		total += v
		n++
	}
	if n == 0 || math.IsInf(total, 0) {
		return 0
	}
	return total / float64(n)
}
