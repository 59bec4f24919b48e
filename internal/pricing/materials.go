package pricing

// MaterialsPriced is the net material cost with the trade markup applied.
type MaterialsPriced struct {
	Net          float64 `json:"net"`
	MarkupAmount float64 `json:"markupAmount"`
	Total        float64 `json:"total"`
}

// PriceMaterials applies markupPercent to the net material cost.
// Negative, non-finite or out-of-range inputs are treated as 0, so Total is
// never below Net and never overflows.
func PriceMaterials(net, markupPercent float64) MaterialsPriced {
	net = bounded(net, MaxAmount)
	markup := net * bounded(markupPercent, MaxPercent) / 100.0

	return MaterialsPriced{
		Net:          net,
		MarkupAmount: markup,
		Total:        net + markup,
	}
}
