package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/quotedesk/internal/db"
)

func TestUpCreatesSchemaAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, Up(ctx, database))
	require.NoError(t, Up(ctx, database))

	version, err := Version(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)

	for _, table := range []string{"kv_entries", "business_settings", "quotes"} {
		var name string
		err := database.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}
