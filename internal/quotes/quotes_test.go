package quotes

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/elecmate/quotedesk/internal/pricing"
	"github.com/elecmate/quotedesk/internal/testdb"
)

func sampleResult() pricing.Result {
	return pricing.Calculate(pricing.CostInputs{
		MaterialsNet:           100,
		MaterialsMarkupPercent: 15,
		LabourHours:            8,
		LabourRate:             45,
		OverheadsTotal:         50,
		ContingencyPercent:     10,
	}, pricing.Options{VATPercent: 20})
}

func TestCreateAndGetReturnsStoredSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testdb.Open(t))

	snap := NewSnapshot(" Consumer unit swap ", "Smith house", "Tails need replacing", sampleResult())
	snap.ValidityDays = 14
	id, err := repo.Create(ctx, snap)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if got.ID != id || got.Title != "Consumer unit swap" || got.ProjectName != "Smith house" {
		t.Fatalf("unexpected snapshot header: %+v", got)
	}
	if got.CreatedAt == "" {
		t.Fatalf("expected created_at to be set")
	}
	if got.ValidityDays != 14 || got.ValidUntil() == "" {
		t.Fatalf("expected validity to round-trip, got %d days (%q)", got.ValidityDays, got.ValidUntil())
	}
	if got.Breakdown.BreakEven != 571 {
		t.Fatalf("expected break-even 571, got %v", got.Breakdown.BreakEven)
	}
	if len(got.Tiers) != 3 || got.Tiers[1].Name != pricing.TierStandard {
		t.Fatalf("unexpected tiers: %+v", got.Tiers)
	}
	if got.Totals.VATPercent != 20 || len(got.Totals.Tiers) != 3 {
		t.Fatalf("unexpected totals: %+v", got.Totals)
	}
	if got.Warnings == nil {
		t.Fatalf("expected non-nil warnings slice")
	}
}

func TestGetReadsSnapshotWithoutRecalculation(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	repo := NewRepository(db)

	id, err := repo.Create(ctx, NewSnapshot("Garden lighting", "", "", sampleResult()))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Tamper with the stored tiers; Get must return them as-is.
	_, err = db.Exec(`UPDATE quotes SET tiers_json = ? WHERE id = ?`,
		`[{"name":"standard","multiplier":1.3,"price":999.99}]`, id)
	if err != nil {
		t.Fatalf("failed to update tiers: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.StandardPrice() != 999.99 {
		t.Fatalf("expected stored standard price 999.99, got %v", got.StandardPrice())
	}
}

func TestGetUnknownID(t *testing.T) {
	repo := NewRepository(testdb.Open(t))

	_, err := repo.Get(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrdersByDateDescAndReadsStandardPrice(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)

	seedQuote(t, db, "2024-01-01 10:00:00", "First", "", "note one", `[{"name":"standard","price":100.50}]`)
	seedQuote(t, db, "2024-01-03 12:00:00", "Third", "", "note three", `[{"name":"standard","price":300.00}]`)
	seedQuote(t, db, "2024-01-02 11:00:00", "Second", "", "note two", `[{"name":"low","price":50},{"name":"standard","price":200.25}]`)

	quotes, err := repo.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(quotes))
	}
	if quotes[0].Title != "Third" || quotes[1].Title != "Second" || quotes[2].Title != "First" {
		t.Fatalf("quotes are not sorted desc by created_at: %+v", quotes)
	}
	if quotes[0].Total != 300.00 || quotes[1].Total != 200.25 || quotes[2].Total != 100.50 {
		t.Fatalf("unexpected totals: %+v", quotes)
	}
}

func TestListFiltersByTitleProjectAndNotes(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedQuote(t, db, "2024-01-01 10:00:00", "House", "", "red cabling", `[]`)
	seedQuote(t, db, "2024-01-02 10:00:00", "EV charger", "Patel", "vip client", `[]`)
	seedQuote(t, db, "2024-01-03 10:00:00", "Prototype", "", "urgent for the house", `[]`)

	byTitle, err := repo.List(ctx, "charger")
	if err != nil {
		t.Fatalf("List title filter returned error: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "EV charger" {
		t.Fatalf("expected 1 quote filtered by title, got %+v", byTitle)
	}

	byProject, err := repo.List(ctx, "patel")
	if err != nil {
		t.Fatalf("List project filter returned error: %v", err)
	}
	if len(byProject) != 1 || byProject[0].ProjectName != "Patel" {
		t.Fatalf("expected 1 quote filtered by project, got %+v", byProject)
	}

	byNotes, err := repo.List(ctx, "house")
	if err != nil {
		t.Fatalf("List notes filter returned error: %v", err)
	}
	if len(byNotes) != 2 {
		t.Fatalf("expected 2 quotes filtered by notes/title, got %+v", byNotes)
	}
	if byNotes[0].Total != 0 {
		t.Fatalf("expected 0 total without a standard tier, got %v", byNotes[0].Total)
	}
}

func TestValidUntil(t *testing.T) {
	cases := []struct {
		name      string
		createdAt string
		days      int
		want      string
	}{
		{name: "thirty days", createdAt: "2024-01-15 10:00:00", days: 30, want: "14 February 2024"},
		{name: "crosses leap day", createdAt: "2024-02-20 23:59:00", days: 10, want: "1 March 2024"},
		{name: "no period", createdAt: "2024-01-15 10:00:00", days: 0, want: ""},
		{name: "no date", createdAt: "", days: 30, want: ""},
		{name: "unparseable date", createdAt: "yesterday", days: 30, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Snapshot{CreatedAt: tc.createdAt, ValidityDays: tc.days}.ValidUntil()
			if got != tc.want {
				t.Fatalf("ValidUntil() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStandardPriceFromJSONToleratesGarbage(t *testing.T) {
	if got := standardPriceFromJSON("not json"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func seedQuote(t *testing.T, db *sql.DB, createdAt, title, project, notes, tiersJSON string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO quotes (
			created_at, title, project_name, notes,
			inputs_json, breakdown_json, tiers_json, totals_json
		)
		VALUES (?, ?, ?, ?, '{}', '{}', ?, '{}')
	`, createdAt, title, project, notes, tiersJSON)
	if err != nil {
		t.Fatalf("failed to seed quote: %v", err)
	}
}
