package pricing

import "math"

// CalcLabourTotal returns hours times rate. Out-of-range inputs give 0.
func CalcLabourTotal(hours, rate float64) float64 {
	return bounded(hours, MaxHours) * bounded(rate, MaxRate)
}

// CalcContingency returns the contingency buffer. It is charged on net
// materials plus labour, not on marked-up materials.
func CalcContingency(materialsNet, labourTotal, contingencyPercent float64) float64 {
	base := nonNegative(materialsNet) + nonNegative(labourTotal)
	return finite(base * nonNegative(contingencyPercent) / 100.0)
}

// CalcBreakEven returns the floor price covering every cost of the job. A sum
// that overflows yields 0, which leaves pricing unavailable.
func CalcBreakEven(materialsTotal, labourTotal, overheadsTotal, contingencyAmount float64) float64 {
	return finite(nonNegative(materialsTotal) +
		nonNegative(labourTotal) +
		nonNegative(overheadsTotal) +
		nonNegative(contingencyAmount))
}

// CalcProfit returns price minus break-even, clamped at zero for display.
func CalcProfit(price, breakEven float64) float64 {
	return math.Max(0, CalcProfitUnclamped(price, breakEven))
}

// CalcProfitUnclamped returns price minus break-even. A negative result means
// the job is priced at a loss.
func CalcProfitUnclamped(price, breakEven float64) float64 {
	return finite(finite(price) - finite(breakEven))
}

// CalcMargin returns gross margin as a percentage of the selling price.
// A missing price or break-even yields 0.
func CalcMargin(price, breakEven float64) float64 {
	price = finite(price)
	breakEven = finite(breakEven)
	if price <= 0 || breakEven <= 0 {
		return 0
	}
	return CalcProfit(price, breakEven) / price * 100.0
}

// CalcProfitPerHour spreads profit across the labour hours of the job.
func CalcProfitPerHour(profit, labourHours float64) float64 {
	labourHours = finite(labourHours)
	if labourHours <= 0 {
		return 0
	}
	return finite(finite(profit) / labourHours)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func nonNegative(v float64) float64 {
	v = finite(v)
	if v < 0 {
		return 0
	}
	return v
}
