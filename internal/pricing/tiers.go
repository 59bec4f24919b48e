package pricing

import "github.com/samber/lo"

// TierName identifies one of the three price points offered to a client.
type TierName string

const (
	TierLow      TierName = "low"
	TierStandard TierName = "standard"
	TierHigh     TierName = "high"
)

// TierOrder is the fixed order tiers are always returned in.
var TierOrder = []TierName{TierLow, TierStandard, TierHigh}

// Multipliers scale break-even into the tier prices.
type Multipliers struct {
	Low      float64 `json:"low" validate:"gt=0,lte=100"`
	Standard float64 `json:"standard" validate:"gt=0,lte=100"`
	High     float64 `json:"high" validate:"gt=0,lte=100"`
}

// DefaultMultipliers are used when no pricing service supplies tier prices.
var DefaultMultipliers = Multipliers{Low: 1.2, Standard: 1.3, High: 1.4}

// For returns the multiplier for name, falling back to the default when unset.
func (m Multipliers) For(name TierName) float64 {
	var v, fallback float64
	switch name {
	case TierLow:
		v, fallback = m.Low, DefaultMultipliers.Low
	case TierStandard:
		v, fallback = m.Standard, DefaultMultipliers.Standard
	case TierHigh:
		v, fallback = m.High, DefaultMultipliers.High
	}
	if v = finite(v); v <= 0 {
		return fallback
	}
	return v
}

// TierOverrides carries externally supplied tier prices. Zero means none and
// prices above MaxAmount are ignored.
type TierOverrides struct {
	Low      float64 `json:"low,omitempty"`
	Standard float64 `json:"standard,omitempty"`
	High     float64 `json:"high,omitempty"`
}

// For returns the override price for name, or 0 when none was supplied.
func (o TierOverrides) For(name TierName) float64 {
	switch name {
	case TierLow:
		return bounded(o.Low, MaxAmount)
	case TierStandard:
		return bounded(o.Standard, MaxAmount)
	case TierHigh:
		return bounded(o.High, MaxAmount)
	}
	return 0
}

// QuoteTier is one price point with its profitability figures.
type QuoteTier struct {
	Name          TierName `json:"name"`
	Multiplier    float64  `json:"multiplier"`
	Overridden    bool     `json:"overridden"`
	Price         float64  `json:"price"`
	Profit        float64  `json:"profit"`
	Margin        float64  `json:"margin"`
	ProfitPerHour float64  `json:"profitPerHour"`
}

// BuildTiers derives the low, standard and high tiers from break-even.
// Override prices take precedence over multipliers. When breakEven is not
// positive, or a product overflows, the tier price is 0; see TiersUnavailable.
func BuildTiers(breakEven, labourHours float64, m Multipliers, overrides TierOverrides) []QuoteTier {
	breakEven = finite(breakEven)

	tiers := make([]QuoteTier, 0, len(TierOrder))
	for _, name := range TierOrder {
		tier := QuoteTier{Name: name, Multiplier: m.For(name)}

		if breakEven > 0 {
			if override := overrides.For(name); override > 0 {
				tier.Price = override
				tier.Overridden = true
			} else {
				tier.Price = finite(breakEven * tier.Multiplier)
			}
		}

		tier.Profit = CalcProfit(tier.Price, breakEven)
		tier.Margin = CalcMargin(tier.Price, breakEven)
		tier.ProfitPerHour = CalcProfitPerHour(tier.Profit, labourHours)
		tiers = append(tiers, tier)
	}

	return tiers
}

// TiersUnavailable reports whether every tier degraded to a zero price.
func TiersUnavailable(tiers []QuoteTier) bool {
	return lo.EveryBy(tiers, func(t QuoteTier) bool { return t.Price == 0 })
}

// FindTier returns the tier with the given name.
func FindTier(tiers []QuoteTier, name TierName) (QuoteTier, bool) {
	return lo.Find(tiers, func(t QuoteTier) bool { return t.Name == name })
}
