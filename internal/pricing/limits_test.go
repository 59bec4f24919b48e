package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func assertFinite(t *testing.T, name string, v float64) {
	t.Helper()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Fatalf("%s = %v, want a finite number", name, v)
	}
}

func TestPriceMaterials_HugeInputsStayFinite(t *testing.T) {
	got := PriceMaterials(1e308, 200)

	assertFinite(t, "markupAmount", got.MarkupAmount)
	assertFinite(t, "total", got.Total)
	if got.Total < got.Net {
		t.Fatalf("total %v below net %v", got.Total, got.Net)
	}
	nearlyEqual(t, "out-of-range net", got.Net, 0)

	got = PriceMaterials(1000, 1e307)
	nearlyEqual(t, "out-of-range markup total", got.Total, 1000)
}

func TestFinancials_OverflowingProductsStayFinite(t *testing.T) {
	assertFinite(t, "labour total", CalcLabourTotal(1e200, 1e200))
	assertFinite(t, "contingency", CalcContingency(1e308, 1e308, 1e308))
	assertFinite(t, "break-even", CalcBreakEven(1e308, 1e308, 1e308, 1e308))
	assertFinite(t, "unclamped profit", CalcProfitUnclamped(1e308, -1e308))
	assertFinite(t, "profit per hour", CalcProfitPerHour(1e308, 1e-300))
}

func TestBuildTiers_OverflowingMultiplierZeroesTier(t *testing.T) {
	m := Multipliers{Low: 1.2, Standard: 1e300, High: 1.4}
	tiers := BuildTiers(1e300, 8, m, TierOverrides{})

	for _, tier := range tiers {
		assertFinite(t, string(tier.Name)+" price", tier.Price)
		assertFinite(t, string(tier.Name)+" profit", tier.Profit)
	}
	nearlyEqual(t, "standard price", tiers[1].Price, 0)
}

func TestCalculate_OutOfRangeInputsFlagPricingUnavailable(t *testing.T) {
	cases := []struct {
		name string
		in   CostInputs
	}{
		{"huge materials", CostInputs{MaterialsNet: 1e308, MaterialsMarkupPercent: 200, LabourHours: 8, LabourRate: 45}},
		{"huge labour", CostInputs{MaterialsNet: 100, LabourHours: 1e200, LabourRate: 1e200}},
		{"huge contingency", CostInputs{MaterialsNet: 100, LabourHours: 8, LabourRate: 45, ContingencyPercent: 1e300}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Calculate(tc.in, Options{Multipliers: DefaultMultipliers, VATPercent: 20})

			if !result.HasWarning(WarningPricingUnavailable) {
				t.Fatalf("expected pricing_unavailable, got %v", result.Warnings)
			}
			for _, tier := range result.Tiers {
				if tier.Price != 0 {
					t.Fatalf("expected withheld tier, got %+v", tier)
				}
			}
			if _, err := json.Marshal(result); err != nil {
				t.Fatalf("result does not encode: %v", err)
			}
		})
	}
}

func TestCalculate_HugeMultiplierStillEncodes(t *testing.T) {
	in := CostInputs{MaterialsNet: MaxAmount, MaterialsMarkupPercent: MaxPercent, LabourHours: MaxHours, LabourRate: MaxRate}
	m := Multipliers{Low: 1e300, Standard: 1e300, High: 1e300}

	result := Calculate(in, Options{Multipliers: m, VATPercent: 20})

	if _, err := json.Marshal(result); err != nil {
		t.Fatalf("result does not encode: %v", err)
	}
	if !result.HasWarning(WarningPricingUnavailable) {
		t.Fatalf("expected pricing_unavailable, got %v", result.Warnings)
	}
}

func TestCostInputsValidate_RejectsValuesAboveLimits(t *testing.T) {
	err := CostInputs{MaterialsNet: 1e308, MaterialsMarkupPercent: 200, LabourHours: 8, LabourRate: 45}.Validate()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "materialsNet" {
		t.Fatalf("unexpected fields: %+v", verr.Fields)
	}
	if verr.Fields[0].Message != "must be less than or equal to 1000000000" {
		t.Fatalf("unexpected message: %q", verr.Fields[0].Message)
	}

	atLimit := CostInputs{
		MaterialsNet:           MaxAmount,
		MaterialsMarkupPercent: MaxPercent,
		LabourHours:            MaxHours,
		LabourRate:             MaxRate,
		OverheadsTotal:         MaxAmount,
		ContingencyPercent:     MaxPercent,
	}
	if err := atLimit.Validate(); err != nil {
		t.Fatalf("values at the limits rejected: %v", err)
	}
}

func TestCalculate_InputsAtLimitsStayFinite(t *testing.T) {
	in := CostInputs{
		MaterialsNet:           MaxAmount,
		MaterialsMarkupPercent: MaxPercent,
		LabourHours:            MaxHours,
		LabourRate:             MaxRate,
		OverheadsTotal:         MaxAmount,
		ContingencyPercent:     MaxPercent,
	}
	m := Multipliers{Low: MaxMultiplier, Standard: MaxMultiplier, High: MaxMultiplier}

	result := Calculate(in, Options{Multipliers: m, VATPercent: MaxVATPercent})

	if result.HasWarning(WarningPricingUnavailable) {
		t.Fatalf("unexpected pricing_unavailable")
	}
	for _, tt := range result.Totals.Tiers {
		assertFinite(t, string(tt.Name)+" gross", tt.Gross)
		if tt.Gross <= 0 {
			t.Fatalf("%s gross = %v, want positive", tt.Name, tt.Gross)
		}
	}
}
