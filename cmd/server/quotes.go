package main

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/elecmate/quotedesk/internal/export"
	"github.com/elecmate/quotedesk/internal/jobdata"
	"github.com/elecmate/quotedesk/internal/money"
	"github.com/elecmate/quotedesk/internal/pricing"
	"github.com/elecmate/quotedesk/internal/quotes"
	"github.com/elecmate/quotedesk/internal/settings"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type calculateRequest struct {
	Inputs         *pricing.CostInputs    `json:"inputs"`
	StructuredData json.RawMessage        `json:"structuredData"`
	Multipliers    *pricing.Multipliers   `json:"multipliers"`
	Overrides      *pricing.TierOverrides `json:"overrides"`
	VATPercent     *float64               `json:"vatPercent"`
	QuotedPrice    float64                `json:"quotedPrice"`
}

type createQuoteRequest struct {
	calculateRequest
	Title       string `json:"title"`
	ProjectName string `json:"projectName"`
	Notes       string `json:"notes"`
}

type calculation struct {
	inputs  pricing.CostInputs
	options pricing.Options
	tasks   []jobdata.Task
}

// resolve turns a request into calculator inputs, filling gaps from the
// business settings.
func (req calculateRequest) resolve(biz settings.Settings) (calculation, error) {
	var calc calculation

	hasStructured := len(req.StructuredData) > 0 && string(req.StructuredData) != "null"
	switch {
	case req.Inputs != nil:
		if err := req.Inputs.Validate(); err != nil {
			return calc, err
		}
		calc.inputs = *req.Inputs
	case hasStructured:
		record, err := jobdata.Parse(req.StructuredData)
		if err != nil {
			return calc, badRequest("structuredData must be a JSON object")
		}
		ext := jobdata.Extract(record, biz.JobDefaults())
		calc.inputs = ext.Inputs
		calc.options.Overrides = ext.Overrides
		calc.tasks = ext.Tasks
	default:
		return calc, badRequest("inputs or structuredData is required")
	}

	var fields []pricing.FieldError
	check := func(field string, v float64, ok bool, message string) {
		if math.IsNaN(v) || math.IsInf(v, 0) || !ok {
			fields = append(fields, pricing.FieldError{Field: field, Message: message})
		}
	}

	multiplierMsg := "must be greater than 0 and at most " + formatLimit(pricing.MaxMultiplier)
	amountMsg := "must be between 0 and " + formatLimit(pricing.MaxAmount)

	calc.options.Multipliers = biz.Multipliers
	if m := req.Multipliers; m != nil {
		check("multipliers.low", m.Low, m.Low > 0 && m.Low <= pricing.MaxMultiplier, multiplierMsg)
		check("multipliers.standard", m.Standard, m.Standard > 0 && m.Standard <= pricing.MaxMultiplier, multiplierMsg)
		check("multipliers.high", m.High, m.High > 0 && m.High <= pricing.MaxMultiplier, multiplierMsg)
		calc.options.Multipliers = *m
	}

	if o := req.Overrides; o != nil {
		check("overrides.low", o.Low, o.Low >= 0 && o.Low <= pricing.MaxAmount, amountMsg)
		check("overrides.standard", o.Standard, o.Standard >= 0 && o.Standard <= pricing.MaxAmount, amountMsg)
		check("overrides.high", o.High, o.High >= 0 && o.High <= pricing.MaxAmount, amountMsg)
		calc.options.Overrides = *o
	}

	calc.options.VATPercent = biz.VATPercent
	if req.VATPercent != nil {
		vat := *req.VATPercent
		check("vatPercent", vat, vat >= 0 && vat <= pricing.MaxVATPercent, "must be between 0 and 100")
		calc.options.VATPercent = vat
	}

	check("quotedPrice", req.QuotedPrice, req.QuotedPrice >= 0 && req.QuotedPrice <= pricing.MaxAmount, amountMsg)
	calc.options.QuotedPrice = req.QuotedPrice

	if len(fields) > 0 {
		return calculation{}, badRequest("invalid pricing options", fields...)
	}
	return calc, nil
}

func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type formattedTier struct {
	Name          pricing.TierName `json:"name"`
	Label         string           `json:"label"`
	Price         string           `json:"price"`
	VAT           string           `json:"vat"`
	Gross         string           `json:"gross"`
	Profit        string           `json:"profit"`
	Margin        string           `json:"margin"`
	ProfitPerHour string           `json:"profitPerHour"`
}

type formattedResult struct {
	MaterialsTotal string          `json:"materialsTotal"`
	LabourTotal    string          `json:"labourTotal"`
	OverheadsTotal string          `json:"overheadsTotal"`
	Contingency    string          `json:"contingency"`
	BreakEven      string          `json:"breakEven"`
	Tiers          []formattedTier `json:"tiers"`
	Warnings       []string        `json:"warnings"`
}

type calculateResponse struct {
	pricing.Result
	Tasks     []jobdata.Task  `json:"tasks,omitempty"`
	Formatted formattedResult `json:"formatted"`
}

func newCalculateResponse(res pricing.Result, tasks []jobdata.Task) calculateResponse {
	formatted := formattedResult{
		MaterialsTotal: money.Itemised(res.Breakdown.Materials.Total),
		LabourTotal:    money.Itemised(res.Breakdown.LabourTotal),
		OverheadsTotal: money.Itemised(res.Breakdown.OverheadsTotal),
		Contingency:    money.Itemised(res.Breakdown.ContingencyAmount),
		BreakEven:      money.Itemised(res.Breakdown.BreakEven),
		Tiers:          make([]formattedTier, 0, len(res.Tiers)),
		Warnings:       lo.Map(res.Warnings, func(w pricing.Warning, _ int) string { return quotes.WarningText(w) }),
	}

	for _, tier := range res.Tiers {
		totals, _ := lo.Find(res.Totals.Tiers, func(t pricing.TierTotals) bool { return t.Name == tier.Name })
		formatted.Tiers = append(formatted.Tiers, formattedTier{
			Name:          tier.Name,
			Label:         quotes.TierLabel(tier.Name),
			Price:         money.Headline(tier.Price),
			VAT:           money.Itemised(totals.VAT),
			Gross:         money.Headline(totals.Gross),
			Profit:        money.Headline(tier.Profit),
			Margin:        money.Percent(tier.Margin),
			ProfitPerHour: money.Itemised(tier.ProfitPerHour),
		})
	}

	return calculateResponse{Result: res, Tasks: tasks, Formatted: formatted}
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	biz, err := s.settings.Get(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, tasks, err := calculate(req, biz)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, newCalculateResponse(res, tasks))
}

func calculate(req calculateRequest, biz settings.Settings) (pricing.Result, []jobdata.Task, error) {
	calc, err := req.resolve(biz)
	if err != nil {
		return pricing.Result{}, nil, err
	}

	return pricing.Calculate(calc.inputs, calc.options), calc.tasks, nil
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	biz, err := s.settings.Get(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, _, err := calculate(req.calculateRequest, biz)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	snap := quotes.NewSnapshot(req.Title, req.ProjectName, req.Notes, res)
	snap.ValidityDays = biz.QuoteValidityDays
	id, err := s.quotes.Create(r.Context(), snap)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	saved, err := s.quotes.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/quotes/%d", id))
	writeJSON(w, r, http.StatusCreated, saved)
}

type quotesListResponse struct {
	Query  string            `json:"query"`
	Quotes []quotes.ListItem `json:"quotes"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := s.quotes.List(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, quotesListResponse{Query: query, Quotes: items})
}

func (s *server) loadQuote(r *http.Request) (quotes.Snapshot, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return quotes.Snapshot{}, badRequest("invalid quote id")
	}
	return s.quotes.Get(r.Context(), id)
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadQuote(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadQuote(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(quotes.RenderText(snap)))
}

func (s *server) handleQuoteExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadQuote(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body, err := export.QuoteWorkbook(snap)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%d.xlsx"`, snap.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
