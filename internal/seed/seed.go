// Package seed prepares a fresh database: business defaults, an empty review
// list and, optionally, a demo quote.
package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elecmate/quotedesk/internal/kv"
	"github.com/elecmate/quotedesk/internal/notes"
	"github.com/elecmate/quotedesk/internal/pricing"
	"github.com/elecmate/quotedesk/internal/quotes"
	"github.com/elecmate/quotedesk/internal/settings"
)

const demoQuoteTitle = "Demo: consumer unit replacement"

// Config selects optional seed data.
type Config struct {
	DemoQuote bool
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureSettings(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureReviews(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if cfg.DemoQuote {
		if err := ensureDemoQuote(ctx, tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	inserted, err := settings.InsertDefaults(ctx, tx)
	if err != nil {
		return err
	}
	if inserted {
		stats.Inserts++
	}
	return nil
}

func ensureReviews(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	store, err := kv.NewSQLite(tx)
	if err != nil {
		return err
	}
	wrote, err := notes.InitReviews(ctx, store)
	if err != nil {
		return err
	}
	if wrote {
		stats.Inserts++
	}
	return nil
}

func ensureDemoQuote(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM quotes WHERE title = ? LIMIT 1)`, demoQuoteTitle).Scan(&exists); err != nil {
		return fmt.Errorf("check demo quote existence: %w", err)
	}
	if exists {
		return nil
	}

	res := pricing.Calculate(pricing.CostInputs{
		MaterialsNet:           320,
		MaterialsMarkupPercent: 15,
		LabourHours:            6,
		LabourRate:             45,
		OverheadsTotal:         40,
		ContingencyPercent:     5,
	}, pricing.Options{VATPercent: 20})

	snap := quotes.NewSnapshot(demoQuoteTitle, "Demo", "Sample quote created by the seed.", res)
	snap.ValidityDays = settings.Defaults().QuoteValidityDays
	if _, err := quotes.NewRepository(tx).Create(ctx, snap); err != nil {
		return fmt.Errorf("insert demo quote: %w", err)
	}
	stats.Inserts++
	return nil
}
