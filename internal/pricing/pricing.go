// Package pricing turns raw job costs into the break-even, tier and margin
// figures shown on a client quote. Every function is pure; nothing here
// formats currency.
package pricing

import (
	"math"
	"strings"

	"github.com/samber/lo"
)

// CostInputs holds the raw job-cost figures a quote is built from.
type CostInputs struct {
	MaterialsNet           float64 `json:"materialsNet"`
	MaterialsMarkupPercent float64 `json:"materialsMarkupPercent"`
	LabourHours            float64 `json:"labourHours"`
	LabourRate             float64 `json:"labourRate"`
	OverheadsTotal         float64 `json:"overheadsTotal"`
	ContingencyPercent     float64 `json:"contingencyPercent"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field of CostInputs that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid cost inputs: " + strings.Join(parts, "; ")
}

// Validate rejects negative, non-finite and out-of-range inputs.
func (in CostInputs) Validate() error {
	var fields []FieldError
	for _, f := range in.inputLimits() {
		switch {
		case math.IsNaN(f.value) || math.IsInf(f.value, 0):
			fields = append(fields, FieldError{Field: f.name, Message: "must be a finite number"})
		case f.value < 0:
			fields = append(fields, FieldError{Field: f.name, Message: "must be greater than or equal to 0"})
		case f.value > f.limit:
			fields = append(fields, FieldError{Field: f.name, Message: "must be less than or equal to " + limitText(f.limit)})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Normalize returns a copy with negative, non-finite and out-of-range fields
// replaced by 0.
func (in CostInputs) Normalize() CostInputs {
	return CostInputs{
		MaterialsNet:           bounded(in.MaterialsNet, MaxAmount),
		MaterialsMarkupPercent: bounded(in.MaterialsMarkupPercent, MaxPercent),
		LabourHours:            bounded(in.LabourHours, MaxHours),
		LabourRate:             bounded(in.LabourRate, MaxRate),
		OverheadsTotal:         bounded(in.OverheadsTotal, MaxAmount),
		ContingencyPercent:     bounded(in.ContingencyPercent, MaxPercent),
	}
}

// Options tunes how tiers and totals are derived.
type Options struct {
	Multipliers Multipliers   `json:"multipliers"`
	Overrides   TierOverrides `json:"overrides"`
	VATPercent  float64       `json:"vatPercent"`
	// QuotedPrice is the price the user intends to send; 0 skips the check.
	QuotedPrice float64 `json:"quotedPrice,omitempty"`
}

// Breakdown contains every intermediate value of the calculation.
type Breakdown struct {
	Materials         MaterialsPriced `json:"materials"`
	LabourTotal       float64         `json:"labourTotal"`
	OverheadsTotal    float64         `json:"overheadsTotal"`
	ContingencyAmount float64         `json:"contingencyAmount"`
	BreakEven         float64         `json:"breakEven"`
}

// TierTotals is a tier price split into net, VAT and gross.
type TierTotals struct {
	Name  TierName `json:"name"`
	Net   float64  `json:"net"`
	VAT   float64  `json:"vat"`
	Gross float64  `json:"gross"`
}

// Totals contains the VAT roll-up of every tier.
type Totals struct {
	VATPercent float64      `json:"vatPercent"`
	Tiers      []TierTotals `json:"tiers"`
}

// Warning flags a condition the quote screen should call out.
type Warning string

const (
	WarningBelowBreakEven     Warning = "below_break_even"
	WarningPricingUnavailable Warning = "pricing_unavailable"
	WarningZeroLabourHours    Warning = "zero_labour_hours"
)

// Result groups the full calculation output.
type Result struct {
	Inputs    CostInputs  `json:"inputs"`
	Breakdown Breakdown   `json:"breakdown"`
	Tiers     []QuoteTier `json:"tiers"`
	Totals    Totals      `json:"totals"`
	Warnings  []Warning   `json:"warnings"`
}

// Calculate runs the full quote pipeline on normalised inputs. When any input
// is above its limit the tiers are withheld and pricing_unavailable is set.
func Calculate(in CostInputs, opts Options) Result {
	outOfRange := in.exceedsLimits()
	in = in.Normalize()

	materials := PriceMaterials(in.MaterialsNet, in.MaterialsMarkupPercent)
	labourTotal := CalcLabourTotal(in.LabourHours, in.LabourRate)
	contingency := CalcContingency(materials.Net, labourTotal, in.ContingencyPercent)
	breakEven := CalcBreakEven(materials.Total, labourTotal, in.OverheadsTotal, contingency)

	tierBase := breakEven
	if outOfRange {
		tierBase = 0
	}
	tiers := BuildTiers(tierBase, in.LabourHours, opts.Multipliers, opts.Overrides)

	vatPercent := bounded(opts.VATPercent, MaxVATPercent)
	totals := Totals{VATPercent: vatPercent, Tiers: make([]TierTotals, 0, len(tiers))}
	for _, t := range tiers {
		vat := finite(t.Price * vatPercent / 100.0)
		totals.Tiers = append(totals.Tiers, TierTotals{Name: t.Name, Net: t.Price, VAT: vat, Gross: finite(t.Price + vat)})
	}

	warnings := make([]Warning, 0)
	if TiersUnavailable(tiers) {
		warnings = append(warnings, WarningPricingUnavailable)
	} else if belowBreakEven(tiers, breakEven, opts.QuotedPrice) {
		warnings = append(warnings, WarningBelowBreakEven)
	}
	if in.LabourHours == 0 {
		warnings = append(warnings, WarningZeroLabourHours)
	}

	return Result{
		Inputs: in,
		Breakdown: Breakdown{
			Materials:         materials,
			LabourTotal:       labourTotal,
			OverheadsTotal:    in.OverheadsTotal,
			ContingencyAmount: contingency,
			BreakEven:         breakEven,
		},
		Tiers:    tiers,
		Totals:   totals,
		Warnings: warnings,
	}
}

func belowBreakEven(tiers []QuoteTier, breakEven, quotedPrice float64) bool {
	if q := finite(quotedPrice); q > 0 && CalcProfitUnclamped(q, breakEven) < 0 {
		return true
	}
	for _, t := range tiers {
		if t.Overridden && CalcProfitUnclamped(t.Price, breakEven) < 0 {
			return true
		}
	}
	return false
}

// HasWarning reports whether r carries w.
func (r Result) HasWarning(w Warning) bool {
	return lo.Contains(r.Warnings, w)
}
