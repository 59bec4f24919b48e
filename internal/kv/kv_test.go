package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/quotedesk/internal/testdb"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLite(testdb.Open(t))
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := store.Get(context.Background(), "job-notes-missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, v)
		})
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "job-reviews", "[]"))
			require.NoError(t, store.Set(ctx, "job-reviews", `[{"id":"a"}]`))

			v, ok, err := store.Get(ctx, "job-reviews")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":"a"}]`, v)
		})
	}
}

func TestStore_EmptyValueIsPresent(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "blank", ""))

			_, ok, err := store.Get(ctx, "blank")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestNewSQLite_NilDatabase(t *testing.T) {
	_, err := NewSQLite(nil)
	assert.Error(t, err)
}
