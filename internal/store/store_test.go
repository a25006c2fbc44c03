package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"philately/catalog/internal/domain"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func makeRecords(n int) []domain.StampRecord {
	records := make([]domain.StampRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, domain.StampRecord{
			ID:         fmt.Sprintf("stamp-%04d", i),
			Name:       fmt.Sprintf("Stamp %d", i),
			SeriesName: "Test Series",
		})
	}
	return records
}

func TestBulkInsertIdempotent(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			records := makeRecords(10)

			require.NoError(t, st.BulkInsert(ctx, records))
			require.NoError(t, st.BulkInsert(ctx, records))

			n, err := st.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 10, n)

			all, err := st.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, records, all)
		})
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.BulkInsert(ctx, makeRecords(3)))

			updated := domain.StampRecord{ID: "stamp-0001", Name: "Renamed", SeriesName: "Other"}
			require.NoError(t, st.BulkInsert(ctx, []domain.StampRecord{updated}))

			n, err := st.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			got, err := st.GetByID(ctx, "stamp-0001")
			require.NoError(t, err)
			assert.Equal(t, "Renamed", got.Name)

			// Insertion order is preserved across an upsert.
			all, err := st.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, "stamp-0001", all[1].ID)
		})
	}
}

func TestPaginationCompleteness(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.BulkInsert(ctx, makeRecords(125)))

			var (
				pages   []int
				hasMore []bool
				seen    = map[string]bool{}
			)
			offset := 0
			for {
				page, more, err := st.GetPage(ctx, offset, 50)
				require.NoError(t, err)
				pages = append(pages, len(page))
				hasMore = append(hasMore, more)
				for _, rec := range page {
					assert.False(t, seen[rec.ID], "duplicate record %s", rec.ID)
					seen[rec.ID] = true
				}
				offset += len(page)
				if !more {
					break
				}
			}

			assert.Equal(t, []int{50, 50, 25}, pages)
			assert.Equal(t, []bool{true, true, false}, hasMore)
			assert.Len(t, seen, 125)
		})
	}
}

func TestGetPageStableOrder(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			records := makeRecords(20)
			require.NoError(t, st.BulkInsert(ctx, records))

			page, _, err := st.GetPage(ctx, 5, 5)
			require.NoError(t, err)
			require.Len(t, page, 5)
			for i, rec := range page {
				assert.Equal(t, records[5+i].ID, rec.ID)
			}
		})
	}
}

func TestClearAndIsEmpty(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := st.IsEmpty(ctx)
			require.NoError(t, err)
			assert.True(t, empty)

			require.NoError(t, st.BulkInsert(ctx, makeRecords(5)))
			empty, err = st.IsEmpty(ctx)
			require.NoError(t, err)
			assert.False(t, empty)

			require.NoError(t, st.Clear(ctx))
			empty, err = st.IsEmpty(ctx)
			require.NoError(t, err)
			assert.True(t, empty)
		})
	}
}

func TestRecreate(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.BulkInsert(ctx, makeRecords(5)))
			require.NoError(t, st.Recreate(ctx))

			n, err := st.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			// The store is usable again after a schema rebuild.
			require.NoError(t, st.BulkInsert(ctx, makeRecords(2)))
			n, err = st.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestGetByIDNotFound(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.GetByID(context.Background(), "no-such-stamp")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.BulkInsert(ctx, makeRecords(7)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	n, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestOpenSQLiteUnavailable(t *testing.T) {
	// A directory path cannot be opened as a database file.
	_, err := OpenSQLite(t.TempDir())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
