package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func testRecord(version, code int, body string) *domain.CrsRecord {
	key := domain.Key{Namespace: "IAU", Version: version, Code: code}
	return &domain.CrsRecord{
		ID:             key.String(),
		Namespace:      key.Namespace,
		Version:        version,
		Code:           code,
		SolarBody:      body,
		DatumName:      fmt.Sprintf("%s (%d)", body, version),
		EllipsoidName:  fmt.Sprintf("%s (%d)", body, version),
		ProjectionName: domain.NoProjection,
		Wkt:            fmt.Sprintf(`GEOGCRS["%s (%d)", DATUM["%s (%d)", ELLIPSOID["%s (%d)", 1, 0, LENGTHUNIT["kilometre", 1000]]], ID["IAU", %d, %d]]`, body, version, body, version, body, version, code, version),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestSqliteStoreInsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord(2015, 19900, "Mercury")
	require.NoError(t, store.Insert(ctx, rec))

	key := rec.Key()

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Wkt, got.Wkt)
	assert.Equal(t, "Mercury", got.SolarBody)

	_, err = store.Get(ctx, domain.Key{Namespace: "IAU", Version: 2015, Code: 99999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err = store.Exists(ctx, domain.Key{Namespace: "IAU", Version: 2015, Code: 99999})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSqliteStoreDuplicateKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord(2015, 19900, "Mercury")
	require.NoError(t, store.Insert(ctx, rec))
	assert.ErrorIs(t, store.Insert(ctx, rec), domain.ErrDuplicateKey)

	// Same composite key under a different id hits the unique index.
	other := testRecord(2015, 19900, "Mercury")
	other.ID = "IAU:2015:19900-dup"
	assert.ErrorIs(t, store.Insert(ctx, other), domain.ErrDuplicateKey)
}

func TestSqliteStoreListPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const total = 137
	for i := 0; i < total; i++ {
		require.NoError(t, store.Insert(ctx, testRecord(2015, 1000+i, "Mars")))
	}

	wantSizes := []int{50, 50, 37, 0}
	for page := 1; page <= len(wantSizes); page++ {
		items, count, err := store.List(ctx, Filter{}, domain.PageRequest{Page: page, PageSize: 50})
		require.NoError(t, err)
		assert.Equal(t, total, count, "page %d", page)
		assert.Len(t, items, wantSizes[page-1], "page %d", page)
	}

	// Ordering is (namespace, version, code) ascending.
	items, _, err := store.List(ctx, Filter{}, domain.PageRequest{Page: 1, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 1000, items[0].Code)
	assert.Equal(t, 1001, items[1].Code)
	assert.Equal(t, 1002, items[2].Code)
}

func TestSqliteStoreFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord(2015, 19900, "Mercury")))
	require.NoError(t, store.Insert(ctx, testRecord(2015, 49900, "Mars")))
	require.NoError(t, store.Insert(ctx, testRecord(2018, 49900, "Mars")))

	page := domain.PageRequest{Page: 1, PageSize: 50}

	items, count, err := store.List(ctx, Filter{Version: 2015}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, items, 2)

	// Solar body matching is case-insensitive.
	items, count, err = store.List(ctx, Filter{SolarBody: "mars"}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, items, 2)
	assert.Equal(t, "Mars", items[0].SolarBody)

	n, err := store.Count(ctx, Filter{Namespace: "IAU", Version: 2018})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.Count(ctx, Filter{Namespace: "ESRI"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSqliteStoreSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord(2015, 19900, "Mercury")))
	require.NoError(t, store.Insert(ctx, testRecord(2015, 49900, "Mars")))
	require.NoError(t, store.Insert(ctx, testRecord(2015, 30100, "Moon")))

	page := domain.PageRequest{Page: 1, PageSize: 50}

	// Case-insensitive over solar_body.
	items, count, err := store.Search(ctx, "mercury", page)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, items, 1)
	assert.Equal(t, "Mercury", items[0].SolarBody)

	// Substring over the wkt text itself.
	_, count, err = store.Search(ctx, "ELLIPSOID", page)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Empty term matches everything.
	items, count, err = store.Search(ctx, "", page)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, items, 3)

	// LIKE metacharacters are literals, not wildcards.
	_, count, err = store.Search(ctx, "%", page)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	n, err := store.SearchCount(ctx, "mars")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSqliteStoreVersionsAndSolarBodies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord(2018, 19900, "Mercury")))
	require.NoError(t, store.Insert(ctx, testRecord(2015, 49900, "Mars")))
	require.NoError(t, store.Insert(ctx, testRecord(2015, 30100, "Moon")))

	versions, err := store.Versions(ctx, "IAU")
	require.NoError(t, err)
	assert.Equal(t, []int{2015, 2018}, versions)

	versions, err = store.Versions(ctx, "ESRI")
	require.NoError(t, err)
	assert.Empty(t, versions)

	bodies, err := store.SolarBodies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mars", "Mercury", "Moon"}, bodies)
}
