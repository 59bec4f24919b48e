package quotes

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/elecmate/quotedesk/internal/money"
	"github.com/elecmate/quotedesk/internal/pricing"
)

var tierLabels = map[pricing.TierName]string{
	pricing.TierLow:      "Low",
	pricing.TierStandard: "Standard",
	pricing.TierHigh:     "High",
}

// TierLabel is the display name of a tier.
func TierLabel(name pricing.TierName) string {
	if label, ok := tierLabels[name]; ok {
		return label
	}
	return string(name)
}

// RenderText formats s as a plain-text summary suitable for pasting into an
// email or message.
func RenderText(s Snapshot) string {
	var b strings.Builder

	title := s.Title
	if title == "" {
		title = fmt.Sprintf("Quote #%d", s.ID)
	}
	fmt.Fprintf(&b, "%s\n", title)
	if s.ProjectName != "" {
		fmt.Fprintf(&b, "Project: %s\n", s.ProjectName)
	}
	if s.CreatedAt != "" {
		fmt.Fprintf(&b, "Date: %s\n", s.CreatedAt)
	}
	if until := s.ValidUntil(); until != "" {
		fmt.Fprintf(&b, "Valid until: %s\n", until)
	}

	b.WriteString("\nCosts:\n")
	fmt.Fprintf(&b, "- Materials (net): %s\n", money.Itemised(s.Breakdown.Materials.Net))
	fmt.Fprintf(&b, "- Materials markup: %s\n", money.Itemised(s.Breakdown.Materials.MarkupAmount))
	fmt.Fprintf(&b, "- Labour (%s h @ %s): %s\n",
		money.Round(s.Inputs.LabourHours, 2).String(),
		money.Itemised(s.Inputs.LabourRate),
		money.Itemised(s.Breakdown.LabourTotal),
	)
	fmt.Fprintf(&b, "- Overheads: %s\n", money.Itemised(s.Breakdown.OverheadsTotal))
	fmt.Fprintf(&b, "- Contingency (%s): %s\n",
		money.Percent(s.Inputs.ContingencyPercent),
		money.Itemised(s.Breakdown.ContingencyAmount),
	)
	fmt.Fprintf(&b, "Break-even: %s\n", money.Itemised(s.Breakdown.BreakEven))

	b.WriteString("\nOptions:\n")
	if pricing.TiersUnavailable(s.Tiers) {
		b.WriteString("- Pricing unavailable until costs are entered\n")
	} else {
		for _, tier := range s.Tiers {
			totals, _ := lo.Find(s.Totals.Tiers, func(t pricing.TierTotals) bool { return t.Name == tier.Name })
			fmt.Fprintf(&b, "- %s: %s + VAT %s = %s (profit %s, margin %s)\n",
				TierLabel(tier.Name),
				money.Headline(tier.Price),
				money.Itemised(totals.VAT),
				money.Headline(totals.Gross),
				money.Headline(tier.Profit),
				money.Percent(tier.Margin),
			)
		}
	}
	fmt.Fprintf(&b, "VAT rate: %s\n", money.Percent(s.Totals.VATPercent))

	if len(s.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", WarningText(w))
		}
	}

	if s.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", s.Notes)
	}

	return b.String()
}

// WarningText describes a calculator warning for people.
func WarningText(w pricing.Warning) string {
	switch w {
	case pricing.WarningBelowBreakEven:
		return "Quoted price is below break-even"
	case pricing.WarningPricingUnavailable:
		return "Pricing unavailable: break-even is zero"
	case pricing.WarningZeroLabourHours:
		return "No labour hours entered"
	default:
		return string(w)
	}
}
