package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elecmate/quotedesk/internal/jobdata"
	"github.com/elecmate/quotedesk/internal/pricing"
	"github.com/elecmate/quotedesk/internal/quotes"
	"github.com/elecmate/quotedesk/internal/settings"
)

type calcCmd struct {
	inputs      pricing.CostInputs
	multipliers pricing.Multipliers
	overrides   pricing.TierOverrides
	vatPercent  float64
	quotedPrice float64
	structured  string
	title       string
	asJSON      bool
}

func newCalcCmd() *cobra.Command {
	defaults := settings.Defaults()
	cc := &calcCmd{}

	cmd := &cobra.Command{
		Use:           "quotecalc",
		Short:         "Price a job from its costs and print the quote options",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cc.run,
	}

	flags := cmd.Flags()
	flags.Float64Var(&cc.inputs.MaterialsNet, "materials-net", 0, "net materials cost")
	flags.Float64Var(&cc.inputs.MaterialsMarkupPercent, "markup", defaults.DefaultMarkupPercent, "materials markup percent")
	flags.Float64Var(&cc.inputs.LabourHours, "hours", 0, "labour hours")
	flags.Float64Var(&cc.inputs.LabourRate, "rate", defaults.HourlyRate, "labour rate per hour")
	flags.Float64Var(&cc.inputs.OverheadsTotal, "overheads", 0, "overheads total")
	flags.Float64Var(&cc.inputs.ContingencyPercent, "contingency", defaults.DefaultContingencyPercent, "contingency percent of materials and labour")
	flags.Float64Var(&cc.vatPercent, "vat", defaults.VATPercent, "VAT percent")
	flags.Float64Var(&cc.multipliers.Low, "low", defaults.Multipliers.Low, "low tier multiplier")
	flags.Float64Var(&cc.multipliers.Standard, "standard", defaults.Multipliers.Standard, "standard tier multiplier")
	flags.Float64Var(&cc.multipliers.High, "high", defaults.Multipliers.High, "high tier multiplier")
	flags.Float64Var(&cc.overrides.Low, "low-price", 0, "fixed low tier price")
	flags.Float64Var(&cc.overrides.Standard, "standard-price", 0, "fixed standard tier price")
	flags.Float64Var(&cc.overrides.High, "high-price", 0, "fixed high tier price")
	flags.Float64Var(&cc.quotedPrice, "quoted", 0, "price actually quoted, checked against break-even")
	flags.StringVar(&cc.structured, "structured", "", "read costs from a job analysis JSON file instead of flags")
	flags.StringVar(&cc.title, "title", "", "title printed on the summary")
	flags.BoolVar(&cc.asJSON, "json", false, "print the full result as JSON")

	return cmd
}

func (cc *calcCmd) run(cmd *cobra.Command, _ []string) error {
	inputs := cc.inputs
	overrides := cc.overrides

	if cc.structured != "" {
		raw, err := os.ReadFile(cc.structured)
		if err != nil {
			return fmt.Errorf("read structured data: %w", err)
		}
		record, err := jobdata.Parse(raw)
		if err != nil {
			return err
		}
		ext := jobdata.Extract(record, settings.Defaults().JobDefaults())
		inputs = ext.Inputs
		if overrides == (pricing.TierOverrides{}) {
			overrides = ext.Overrides
		}
	}

	if err := inputs.Validate(); err != nil {
		return err
	}
	if cc.vatPercent < 0 || cc.vatPercent > 100 {
		return fmt.Errorf("--vat must be between 0 and 100")
	}
	if cc.quotedPrice < 0 || cc.quotedPrice > pricing.MaxAmount {
		return fmt.Errorf("--quoted must be between 0 and %.0f", float64(pricing.MaxAmount))
	}
	for _, m := range []struct {
		flag  string
		value float64
	}{{"low", cc.multipliers.Low}, {"standard", cc.multipliers.Standard}, {"high", cc.multipliers.High}} {
		if m.value <= 0 || m.value > pricing.MaxMultiplier {
			return fmt.Errorf("--%s must be greater than 0 and at most %d", m.flag, pricing.MaxMultiplier)
		}
	}

	for _, o := range []struct {
		flag  string
		value float64
	}{{"low-price", overrides.Low}, {"standard-price", overrides.Standard}, {"high-price", overrides.High}} {
		if o.value < 0 || o.value > pricing.MaxAmount {
			return fmt.Errorf("--%s must be between 0 and %.0f", o.flag, float64(pricing.MaxAmount))
		}
	}

	res := pricing.Calculate(inputs, pricing.Options{
		Multipliers: cc.multipliers,
		Overrides:   overrides,
		VATPercent:  cc.vatPercent,
		QuotedPrice: cc.quotedPrice,
	})

	out := cmd.OutOrStdout()
	if cc.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	title := cc.title
	if title == "" {
		title = "Quote"
	}
	_, err := fmt.Fprint(out, quotes.RenderText(quotes.NewSnapshot(title, "", "", res)))
	return err
}
