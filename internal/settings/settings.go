// Package settings stores the business-wide pricing defaults: labour rates,
// markup, contingency, tier multipliers and VAT.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/elecmate/quotedesk/internal/jobdata"
	"github.com/elecmate/quotedesk/internal/money"
	"github.com/elecmate/quotedesk/internal/pricing"
	"github.com/elecmate/quotedesk/internal/validation"
)

// ErrInvalid wraps every validation failure returned by Update.
var ErrInvalid = errors.New("invalid settings")

// Settings is the singleton business configuration row. Upper bounds match
// the pricing limits.
type Settings struct {
	HourlyRate                float64             `json:"hourlyRate" validate:"gte=0,lte=100000"`
	WorkerRates               map[string]float64  `json:"workerRates" validate:"dive,gte=0,lte=100000"`
	DefaultMarkupPercent      float64             `json:"defaultMarkupPercent" validate:"gte=0,lte=1000"`
	DefaultContingencyPercent float64             `json:"defaultContingencyPercent" validate:"gte=0,lte=100"`
	Multipliers               pricing.Multipliers `json:"multipliers"`
	VATPercent                float64             `json:"vatPercent" validate:"gte=0,lte=100"`
	QuoteValidityDays         int                 `json:"quoteValidityDays" validate:"gte=1,lte=365"`
	Currency                  string              `json:"currency"`
}

// Defaults mirrors the out-of-the-box business profile.
func Defaults() Settings {
	return Settings{
		HourlyRate: 45,
		WorkerRates: map[string]float64{
			"electrician": 45,
			"apprentice":  25,
			"labourer":    20,
			"designer":    65,
			"owner":       75,
		},
		DefaultMarkupPercent:      15,
		DefaultContingencyPercent: 5,
		Multipliers:               pricing.DefaultMultipliers,
		VATPercent:                20,
		QuoteValidityDays:         30,
		Currency:                  money.Currency,
	}
}

// JobDefaults adapts the settings for structured-data extraction.
func (s Settings) JobDefaults() jobdata.Defaults {
	return jobdata.Defaults{
		HourlyRate:         s.HourlyRate,
		WorkerRates:        s.WorkerRates,
		MarkupPercent:      s.DefaultMarkupPercent,
		ContingencyPercent: s.DefaultContingencyPercent,
	}
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertDefaults creates the singleton row when missing and reports whether
// it inserted one.
func InsertDefaults(ctx context.Context, db Execer) (bool, error) {
	d := Defaults()
	rates, err := json.Marshal(d.WorkerRates)
	if err != nil {
		return false, fmt.Errorf("encode default worker rates: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO business_settings (
			id,
			hourly_rate,
			worker_rates_json,
			default_markup_percent,
			default_contingency_percent,
			low_multiplier,
			standard_multiplier,
			high_multiplier,
			vat_percent,
			quote_validity_days,
			currency
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		d.HourlyRate,
		string(rates),
		d.DefaultMarkupPercent,
		d.DefaultContingencyPercent,
		d.Multipliers.Low,
		d.Multipliers.Standard,
		d.Multipliers.High,
		d.VATPercent,
		d.QuoteValidityDays,
		d.Currency,
	)
	if err != nil {
		return false, fmt.Errorf("insert default business_settings: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert default business_settings: %w", err)
	}
	return affected > 0, nil
}

// Repository reads and writes the settings row.
type Repository struct {
	db       *sql.DB
	validate *validator.Validate
}

// NewRepository returns a Repository backed by db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, validate: validation.New()}
}

// Get returns the current settings, creating the default row if needed.
func (r *Repository) Get(ctx context.Context) (Settings, error) {
	if _, err := InsertDefaults(ctx, r.db); err != nil {
		return Settings{}, err
	}

	var s Settings
	var rates string
	err := r.db.QueryRowContext(ctx, `
		SELECT
			hourly_rate,
			worker_rates_json,
			default_markup_percent,
			default_contingency_percent,
			low_multiplier,
			standard_multiplier,
			high_multiplier,
			vat_percent,
			quote_validity_days,
			currency
		FROM business_settings
		WHERE id = 1
	`).Scan(
		&s.HourlyRate,
		&rates,
		&s.DefaultMarkupPercent,
		&s.DefaultContingencyPercent,
		&s.Multipliers.Low,
		&s.Multipliers.Standard,
		&s.Multipliers.High,
		&s.VATPercent,
		&s.QuoteValidityDays,
		&s.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, fmt.Errorf("business_settings singleton not found")
		}
		return Settings{}, fmt.Errorf("query business_settings: %w", err)
	}

	if err := json.Unmarshal([]byte(rates), &s.WorkerRates); err != nil {
		return Settings{}, fmt.Errorf("decode worker rates: %w", err)
	}
	return s, nil
}

// Update validates and stores s. The currency is always GBP.
func (r *Repository) Update(ctx context.Context, s Settings) (Settings, error) {
	s.Currency = money.Currency
	if s.WorkerRates == nil {
		s.WorkerRates = map[string]float64{}
	}
	if err := r.validate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if _, err := InsertDefaults(ctx, r.db); err != nil {
		return Settings{}, err
	}

	rates, err := json.Marshal(s.WorkerRates)
	if err != nil {
		return Settings{}, fmt.Errorf("encode worker rates: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE business_settings
		SET
			hourly_rate = ?,
			worker_rates_json = ?,
			default_markup_percent = ?,
			default_contingency_percent = ?,
			low_multiplier = ?,
			standard_multiplier = ?,
			high_multiplier = ?,
			vat_percent = ?,
			quote_validity_days = ?,
			currency = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		s.HourlyRate,
		string(rates),
		s.DefaultMarkupPercent,
		s.DefaultContingencyPercent,
		s.Multipliers.Low,
		s.Multipliers.Standard,
		s.Multipliers.High,
		s.VATPercent,
		s.QuoteValidityDays,
		s.Currency,
	)
	if err != nil {
		return Settings{}, fmt.Errorf("update business_settings: %w", err)
	}

	return s, nil
}
