package pricing

import "strconv"

// Upper bounds for calculator inputs. Within them no intermediate product can
// overflow a float64. Keep the validate tags in settings and notes in sync.
const (
	MaxAmount     = 1e9
	MaxHours      = 1e5
	MaxRate       = 1e5
	MaxPercent    = 1000
	MaxVATPercent = 100
	MaxMultiplier = 100
)

// bounded returns v when it lies in [0, limit] and 0 otherwise.
func bounded(v, limit float64) float64 {
	v = nonNegative(v)
	if v > limit {
		return 0
	}
	return v
}

func limitText(limit float64) string {
	return strconv.FormatFloat(limit, 'f', -1, 64)
}

type inputLimit struct {
	name  string
	value float64
	limit float64
}

// inputLimits pairs each CostInputs field with its upper bound.
func (in CostInputs) inputLimits() []inputLimit {
	return []inputLimit{
		{"materialsNet", in.MaterialsNet, MaxAmount},
		{"materialsMarkupPercent", in.MaterialsMarkupPercent, MaxPercent},
		{"labourHours", in.LabourHours, MaxHours},
		{"labourRate", in.LabourRate, MaxRate},
		{"overheadsTotal", in.OverheadsTotal, MaxAmount},
		{"contingencyPercent", in.ContingencyPercent, MaxPercent},
	}
}

// exceedsLimits reports whether any finite field is above its bound.
func (in CostInputs) exceedsLimits() bool {
	for _, f := range in.inputLimits() {
		if finite(f.value) > f.limit {
			return true
		}
	}
	return false
}
