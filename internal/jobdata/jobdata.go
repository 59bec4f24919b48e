// Package jobdata extracts calculator inputs from the loosely-typed job
// analysis record produced upstream. Missing keys, wrong types and
// non-finite numbers all degrade to zero or to the business defaults.
package jobdata

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/elecmate/quotedesk/internal/pricing"
)

const defaultWorkerType = "electrician"

// Defaults fill gaps in the upstream record.
type Defaults struct {
	HourlyRate         float64
	WorkerRates        map[string]float64
	MarkupPercent      float64
	ContingencyPercent float64
}

// Task is one labour line read from labour.tasks.
type Task struct {
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	WorkerType  string  `json:"workerType"`
	Rate        float64 `json:"rate"`
}

// Extraction is everything the calculator needs from one record.
type Extraction struct {
	Inputs    pricing.CostInputs    `json:"inputs"`
	Overrides pricing.TierOverrides `json:"overrides"`
	Tasks     []Task                `json:"tasks"`
}

// Parse decodes a raw structuredData JSON object.
func Parse(raw []byte) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode structured data: %w", err)
	}
	return record, nil
}

// Extract reads the numeric leaves of record into calculator inputs.
func Extract(record map[string]any, defaults Defaults) Extraction {
	out := Extraction{}

	// materials.total already carries the markup, so it is used as the cost
	// with no further markup when no net figure is given.
	net, hasNet := findNumber(record, []string{"materials", "net"}, []string{"materials", "subtotal"})
	total, hasTotal := findNumber(record, []string{"materials", "total"})
	if !hasNet && hasTotal {
		out.Inputs.MaterialsNet = total
	} else {
		out.Inputs.MaterialsNet = net
		out.Inputs.MaterialsMarkupPercent = numberOr(defaults.MarkupPercent, record,
			[]string{"materials", "markup"},
			[]string{"materials", "markupPercent"},
		)
	}
	out.Inputs.OverheadsTotal = firstNumber(record,
		[]string{"overheads", "total"},
		[]string{"overheads"},
	)
	out.Inputs.ContingencyPercent = numberOr(defaults.ContingencyPercent, record,
		[]string{"contingency", "percent"},
		[]string{"contingencyPercent"},
	)

	explicitRate := firstNumber(record, []string{"labour", "rate"})
	out.Tasks = readTasks(record, defaults, explicitRate)

	if len(out.Tasks) > 0 {
		var hours, cost float64
		for _, task := range out.Tasks {
			hours += task.Hours
			cost += task.Hours * task.Rate
		}
		out.Inputs.LabourHours = hours
		if hours > 0 {
			out.Inputs.LabourRate = cost / hours
		} else {
			out.Inputs.LabourRate = rateFor(defaults, defaultWorkerType, explicitRate)
		}
	} else {
		out.Inputs.LabourHours = firstNumber(record, []string{"labour", "hours"}, []string{"labour", "totalHours"})
		out.Inputs.LabourRate = rateFor(defaults, defaultWorkerType, explicitRate)
	}

	out.Overrides = pricing.TierOverrides{
		Low:      tierPrice(record, "low"),
		Standard: tierPrice(record, "standard"),
		High:     tierPrice(record, "high"),
	}

	return out
}

func readTasks(record map[string]any, defaults Defaults, explicitRate float64) []Task {
	raw, ok := lookup(record, "labour", "tasks")
	if !ok {
		return nil
	}
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil
	}

	tasks := make([]Task, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}

		workerType := strings.ToLower(strings.TrimSpace(cast.ToString(firstValue(fields, "workerType", "worker_type"))))
		if workerType == "" {
			workerType = defaultWorkerType
		}

		task := Task{
			Description: cast.ToString(firstValue(fields, "description", "task", "name")),
			Hours:       number(firstValue(fields, "hours", "estimatedHours")),
			WorkerType:  workerType,
			Rate:        rateFor(defaults, workerType, explicitRate),
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func rateFor(defaults Defaults, workerType string, explicitRate float64) float64 {
	if explicitRate > 0 {
		return explicitRate
	}
	if rate := number(defaults.WorkerRates[workerType]); rate > 0 {
		return rate
	}
	return number(defaults.HourlyRate)
}

func tierPrice(record map[string]any, name string) float64 {
	raw, ok := lookup(record, "profitabilityAnalysis", "quoteTiers", name)
	if !ok {
		return 0
	}
	if fields, ok := raw.(map[string]any); ok {
		return number(firstValue(fields, "price", "total"))
	}
	return number(raw)
}

// lookup walks nested objects along path.
func lookup(record map[string]any, path ...string) (any, bool) {
	var current any = record
	for _, key := range path {
		fields, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = fields[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func firstNumber(record map[string]any, paths ...[]string) float64 {
	return numberOr(0, record, paths...)
}

func numberOr(fallback float64, record map[string]any, paths ...[]string) float64 {
	if v, ok := findNumber(record, paths...); ok {
		return v
	}
	return number(fallback)
}

// findNumber returns the first scalar found along paths and whether one was.
func findNumber(record map[string]any, paths ...[]string) (float64, bool) {
	for _, path := range paths {
		if raw, ok := lookup(record, path...); ok {
			if _, isObject := raw.(map[string]any); isObject {
				continue
			}
			return number(raw), true
		}
	}
	return 0, false
}

func firstValue(fields map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := fields[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// number coerces v to a non-negative finite float; anything else is 0.
func number(v any) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
