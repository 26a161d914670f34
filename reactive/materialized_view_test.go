package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/dataflow"
	"veloxdb/schema"
	"veloxdb/storage"
	"veloxdb/value"
)

func itemsCache(t *testing.T) (*storage.TableCache, *storage.RowStore) {
	t.Helper()
	tbl, err := schema.NewBuilder("items").
		AddColumn("id", value.KindInt64).
		AddColumn("name", value.KindString, schema.NotNull()).
		AddPrimaryKey("id").
		Build()
	require.NoError(t, err)

	cache := storage.NewTableCache()
	store, err := cache.CreateTable(tbl)
	require.NoError(t, err)
	return cache, store
}

func TestMaterializedViewSeedReflectsExistingRows(t *testing.T) {
	cache, store := itemsCache(t)
	row := value.New(0, []value.Value{value.Int64(1), value.String("widget")})
	row.ID = store.NextRowID()
	_, err := store.Insert(row)
	require.NoError(t, err)

	mv := NewMaterializedView("view:items", dataflow.Chain(dataflow.Source{}), []string{"items"}, cache)
	mv.Seed()

	assert.Equal(t, 1, mv.Query().Len())
}

func TestMaterializedViewResolveInsertsNewRow(t *testing.T) {
	cache, store := itemsCache(t)
	mv := NewMaterializedView("view:items", dataflow.Chain(dataflow.Source{}), []string{"items"}, cache)
	mv.Seed()

	row := value.New(0, []value.Value{value.Int64(1), value.String("widget")})
	row.ID = store.NextRowID()
	id, err := store.Insert(row)
	require.NoError(t, err)

	batch := mv.resolve("items", []value.RowID{id})
	require.Len(t, batch, 1)
	assert.Equal(t, dataflow.Insert, batch[0].Kind)
}

func TestMaterializedViewResolveUpdatesToDeleteThenInsert(t *testing.T) {
	cache, store := itemsCache(t)
	row := value.New(0, []value.Value{value.Int64(1), value.String("widget")})
	row.ID = store.NextRowID()
	id, err := store.Insert(row)
	require.NoError(t, err)

	mv := NewMaterializedView("view:items", dataflow.Chain(dataflow.Source{}), []string{"items"}, cache)
	mv.Seed()

	updated := value.New(id, []value.Value{value.Int64(1), value.String("gadget")})
	require.NoError(t, store.Update(id, updated))

	batch := mv.resolve("items", []value.RowID{id})
	require.Len(t, batch, 2)
	assert.Equal(t, dataflow.Delete, batch[0].Kind)
	assert.Equal(t, dataflow.Insert, batch[1].Kind)
}

func TestMaterializedViewResolveDeletesRemovedRow(t *testing.T) {
	cache, store := itemsCache(t)
	row := value.New(0, []value.Value{value.Int64(1), value.String("widget")})
	row.ID = store.NextRowID()
	id, err := store.Insert(row)
	require.NoError(t, err)

	mv := NewMaterializedView("view:items", dataflow.Chain(dataflow.Source{}), []string{"items"}, cache)
	mv.Seed()

	_, err = store.Delete(id)
	require.NoError(t, err)

	batch := mv.resolve("items", []value.RowID{id})
	require.Len(t, batch, 1)
	assert.Equal(t, dataflow.Delete, batch[0].Kind)
}

func TestMaterializedViewEndToEndThroughQueryRegistry(t *testing.T) {
	cache, store := itemsCache(t)
	row := value.New(0, []value.Value{value.Int64(1), value.String("widget")})
	row.ID = store.NextRowID()
	id, err := store.Insert(row)
	require.NoError(t, err)

	mv := NewMaterializedView("view:items", dataflow.Chain(dataflow.Source{}), []string{"items"}, cache)
	mv.Seed()

	registry := NewQueryRegistry()
	registry.Register(mv.Query())

	_, err = store.Delete(id)
	require.NoError(t, err)
	registry.OnTableChange("items", []value.RowID{id})

	assert.Equal(t, 0, mv.Query().Len())
}
