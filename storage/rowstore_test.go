package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/dberr"
	"veloxdb/internal/idgen"
	"veloxdb/jsonb"
	"veloxdb/schema"
	"veloxdb/value"
)

func usersSchema(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.NewBuilder("users").
		AddColumn("id", value.KindInt64).
		AddColumn("email", value.KindString, schema.UniqueColumn()).
		AddColumn("name", value.KindString, schema.NotNull()).
		AddPrimaryKey("id").
		Build()
	require.NoError(t, err)
	return tbl
}

func newTestStore(t *testing.T) *RowStore {
	t.Helper()
	return NewRowStore(usersSchema(t), idgen.NewRowAllocator())
}

func TestRowStoreInsertAndGet(t *testing.T) {
	store := newTestStore(t)
	row := value.New(1, []value.Value{value.Int64(1), value.String("a@x.com"), value.String("Ann")})

	id, err := store.Insert(row)
	require.NoError(t, err)
	assert.Equal(t, value.RowID(1), id)

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Ann", got.Values[2].String())
}

func TestRowStoreInsertRejectsNull(t *testing.T) {
	store := newTestStore(t)
	row := value.New(1, []value.Value{value.Int64(1), value.String("a@x.com"), value.Null()})

	_, err := store.Insert(row)
	require.Error(t, err)
	var nullErr *dberr.NullConstraintError
	assert.ErrorAs(t, err, &nullErr)
}

func TestRowStoreInsertRejectsDuplicateUnique(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, insertRow(store, 1, "a@x.com", "Ann"))

	_, err := store.Insert(value.New(2, []value.Value{value.Int64(2), value.String("a@x.com"), value.String("Bob")}))
	require.Error(t, err)
	var dup *dberr.DuplicateKeyError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, store.Len())
}

func TestRowStoreUpdateBumpsVersion(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, insertRow(store, 1, "a@x.com", "Ann"))

	newRow := value.New(1, []value.Value{value.Int64(1), value.String("a2@x.com"), value.String("Ann2")})
	require.NoError(t, store.Update(1, newRow))

	got, _ := store.Get(1)
	assert.Equal(t, uint64(2), got.Version)
	assert.Equal(t, "Ann2", got.Values[2].String())
}

func TestRowStoreUpdateRejectsUniqueCollision(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, insertRow(store, 1, "a@x.com", "Ann"))
	require.NoError(t, insertRow(store, 2, "b@x.com", "Bob"))

	newRow := value.New(2, []value.Value{value.Int64(2), value.String("a@x.com"), value.String("Bob")})
	err := store.Update(2, newRow)
	require.Error(t, err)

	got, _ := store.Get(2)
	assert.Equal(t, "b@x.com", got.Values[1].String())
}

func TestRowStoreDeleteRemovesPostings(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, insertRow(store, 1, "a@x.com", "Ann"))

	_, err := store.Delete(1)
	require.NoError(t, err)
	_, ok := store.Get(1)
	assert.False(t, ok)

	require.NoError(t, insertRow(store, 2, "a@x.com", "Ann2"))
}

func TestRowStoreGetByPK(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, insertRow(store, 1, "a@x.com", "Ann"))

	row, ok := store.GetByPK(value.Int64(1))
	require.True(t, ok)
	assert.Equal(t, "Ann", row.Values[2].String())

	assert.True(t, store.PKExists(value.Int64(1)))
	assert.False(t, store.PKExists(value.Int64(99)))
}

func TestRowStoreScanPreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, insertRow(store, 1, "a@x.com", "Ann"))
	require.NoError(t, insertRow(store, 2, "b@x.com", "Bob"))
	require.NoError(t, insertRow(store, 3, "c@x.com", "Cid"))

	rows := store.Scan()
	require.Len(t, rows, 3)
	assert.Equal(t, value.RowID(1), rows[0].ID)
	assert.Equal(t, value.RowID(2), rows[1].ID)
	assert.Equal(t, value.RowID(3), rows[2].ID)
}

func docsSchema(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.NewBuilder("docs").
		AddColumn("id", value.KindInt64).
		AddColumn("payload", value.KindJsonb).
		AddPrimaryKey("id").
		AddIndex(schema.IndexDef{Name: "payload_gin", Columns: []schema.IndexColumn{{Name: "payload"}}}).
		Build()
	require.NoError(t, err)
	return tbl
}

func jsonbDoc(pairs ...jsonb.Member) value.Value {
	return value.Jsonb(jsonb.Encode(jsonb.Value{Kind: jsonb.KindObject, Object: pairs}))
}

func TestRowStoreGinIndexTracksInsertUpdateDelete(t *testing.T) {
	store := NewRowStore(docsSchema(t), idgen.NewRowAllocator())
	gin, ok := store.GinIndex("payload_gin")
	require.True(t, ok)

	doc := jsonbDoc(jsonb.Member{Key: "status", Value: jsonb.Value{Kind: jsonb.KindString, Str: "active"}})
	row := value.New(1, []value.Value{value.Int64(1), doc})
	_, err := store.Insert(row)
	require.NoError(t, err)

	assert.ElementsMatch(t, []value.RowID{1}, gin.GetByKey("status"))
	assert.ElementsMatch(t, []value.RowID{1}, gin.GetByKeyValue("status", "active"))

	newDoc := jsonbDoc(jsonb.Member{Key: "status", Value: jsonb.Value{Kind: jsonb.KindString, Str: "closed"}})
	require.NoError(t, store.Update(1, value.New(1, []value.Value{value.Int64(1), newDoc})))

	assert.Empty(t, gin.GetByKeyValue("status", "active"))
	assert.ElementsMatch(t, []value.RowID{1}, gin.GetByKeyValue("status", "closed"))

	_, err = store.Delete(1)
	require.NoError(t, err)
	assert.Empty(t, gin.GetByKey("status"))
}

func insertRow(store *RowStore, id int64, email, name string) error {
	row := value.New(value.RowID(id), []value.Value{value.Int64(id), value.String(email), value.String(name)})
	_, err := store.Insert(row)
	return err
}
