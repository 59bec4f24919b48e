// Package quotes stores calculated quotes as immutable snapshots. Reading a
// snapshot never recalculates it, so later changes to business settings do
// not alter a quote that was already sent.
package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elecmate/quotedesk/internal/pricing"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("quote not found")

const (
	createdAtLayout  = "2006-01-02 15:04:05"
	validUntilLayout = "2 January 2006"
)

// Snapshot is a persisted calculation.
type Snapshot struct {
	ID           int64               `json:"id"`
	CreatedAt    string              `json:"createdAt"`
	Title        string              `json:"title"`
	ProjectName  string              `json:"projectName"`
	Notes        string              `json:"notes"`
	// ValidityDays is how long the client may accept the quote; 0 means open.
	ValidityDays int                 `json:"validityDays"`
	Inputs       pricing.CostInputs  `json:"inputs"`
	Breakdown    pricing.Breakdown   `json:"breakdown"`
	Tiers        []pricing.QuoteTier `json:"tiers"`
	Totals       pricing.Totals      `json:"totals"`
	Warnings     []pricing.Warning   `json:"warnings"`
}

// NewSnapshot copies a calculator result into an unsaved snapshot.
func NewSnapshot(title, projectName, notes string, res pricing.Result) Snapshot {
	return Snapshot{
		Title:       strings.TrimSpace(title),
		ProjectName: strings.TrimSpace(projectName),
		Notes:       strings.TrimSpace(notes),
		Inputs:      res.Inputs,
		Breakdown:   res.Breakdown,
		Tiers:       res.Tiers,
		Totals:      res.Totals,
		Warnings:    res.Warnings,
	}
}

// StandardPrice is the net price of the standard tier, or 0.
func (s Snapshot) StandardPrice() float64 {
	tier, ok := pricing.FindTier(s.Tiers, pricing.TierStandard)
	if !ok {
		return 0
	}
	return tier.Price
}

// ValidUntil returns the last day the quote may be accepted, formatted for
// people. It is empty when the quote has no validity period or no date.
func (s Snapshot) ValidUntil() string {
	if s.ValidityDays <= 0 || s.CreatedAt == "" {
		return ""
	}
	created, err := time.Parse(createdAtLayout, s.CreatedAt)
	if err != nil {
		return ""
	}
	return created.AddDate(0, 0, s.ValidityDays).Format(validUntilLayout)
}

// ListItem is one row of the quote list.
type ListItem struct {
	ID          int64   `json:"id"`
	CreatedAt   string  `json:"createdAt"`
	Title       string  `json:"title"`
	ProjectName string  `json:"projectName"`
	Total       float64 `json:"total"`
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository reads and writes the quotes table.
type Repository struct {
	db  DBTX
	now func() time.Time
}

// NewRepository returns a Repository backed by a database or transaction.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Create stores s and returns its id. CreatedAt is set when empty.
func (r *Repository) Create(ctx context.Context, s Snapshot) (int64, error) {
	if s.CreatedAt == "" {
		s.CreatedAt = r.now().UTC().Format(createdAtLayout)
	}
	if s.Tiers == nil {
		s.Tiers = []pricing.QuoteTier{}
	}
	if s.Warnings == nil {
		s.Warnings = []pricing.Warning{}
	}

	blobs := make([]string, 0, 5)
	for _, v := range []any{s.Inputs, s.Breakdown, s.Tiers, s.Totals, s.Warnings} {
		raw, err := json.Marshal(v)
		if err != nil {
			return 0, fmt.Errorf("encode quote snapshot: %w", err)
		}
		blobs = append(blobs, string(raw))
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quotes (
			created_at,
			title,
			project_name,
			notes,
			validity_days,
			inputs_json,
			breakdown_json,
			tiers_json,
			totals_json,
			warnings_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.CreatedAt, s.Title, s.ProjectName, s.Notes, s.ValidityDays, blobs[0], blobs[1], blobs[2], blobs[3], blobs[4])
	if err != nil {
		return 0, fmt.Errorf("insert quote: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert quote: %w", err)
	}
	return id, nil
}

// Get loads the snapshot with id exactly as it was stored.
func (r *Repository) Get(ctx context.Context, id int64) (Snapshot, error) {
	var s Snapshot
	var inputsJSON, breakdownJSON, tiersJSON, totalsJSON, warningsJSON string

	err := r.db.QueryRowContext(ctx, `
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			COALESCE(project_name, ''),
			COALESCE(notes, ''),
			validity_days,
			inputs_json,
			breakdown_json,
			tiers_json,
			totals_json,
			warnings_json
		FROM quotes
		WHERE id = ?
	`, id).Scan(
		&s.ID,
		&s.CreatedAt,
		&s.Title,
		&s.ProjectName,
		&s.Notes,
		&s.ValidityDays,
		&inputsJSON,
		&breakdownJSON,
		&tiersJSON,
		&totalsJSON,
		&warningsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("query quote %d: %w", id, err)
	}

	decode := []struct {
		name string
		raw  string
		dst  any
	}{
		{"inputs", inputsJSON, &s.Inputs},
		{"breakdown", breakdownJSON, &s.Breakdown},
		{"tiers", tiersJSON, &s.Tiers},
		{"totals", totalsJSON, &s.Totals},
		{"warnings", warningsJSON, &s.Warnings},
	}
	for _, d := range decode {
		if err := json.Unmarshal([]byte(d.raw), d.dst); err != nil {
			return Snapshot{}, fmt.Errorf("decode quote %d %s: %w", id, d.name, err)
		}
	}

	return s, nil
}

// List returns quotes newest first. A non-empty query filters on title,
// project name and notes.
func (r *Repository) List(ctx context.Context, query string) ([]ListItem, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			COALESCE(project_name, ''),
			tiers_json
		FROM quotes
		WHERE (? = ''
			OR COALESCE(title, '') LIKE ?
			OR COALESCE(project_name, '') LIKE ?
			OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		var item ListItem
		var tiersJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &item.ProjectName, &tiersJSON); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		item.Total = standardPriceFromJSON(tiersJSON)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	return items, nil
}

// standardPriceFromJSON reads the standard tier price from a tiers blob,
// returning 0 when it cannot be decoded.
func standardPriceFromJSON(tiersJSON string) float64 {
	var tiers []pricing.QuoteTier
	if err := json.Unmarshal([]byte(tiersJSON), &tiers); err != nil {
		return 0
	}
	return Snapshot{Tiers: tiers}.StandardPrice()
}
