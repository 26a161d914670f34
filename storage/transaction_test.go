package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/dberr"
	"veloxdb/value"
)

func newUsersCache(t *testing.T) *TableCache {
	t.Helper()
	cache := NewTableCache()
	_, err := cache.CreateTable(usersSchema(t))
	require.NoError(t, err)
	return cache
}

func TestTransactionInsertUpdateDeleteCommit(t *testing.T) {
	cache := newUsersCache(t)
	txn := Begin()

	_, err := txn.Insert(cache, "users", row3(1, "a@x.com", "Ann"))
	require.NoError(t, err)

	err = txn.Update(cache, "users", 1, row3(1, "a2@x.com", "Ann2"))
	require.NoError(t, err)

	entries, err := txn.Commit(cache)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, Committed, txn.State())

	store, _ := cache.GetTable("users")
	got, _ := store.Get(1)
	assert.Equal(t, "Ann2", got.Values[2].String())
}

func TestTransactionRejectsCallsAfterCommit(t *testing.T) {
	cache := newUsersCache(t)
	txn := Begin()
	_, err := txn.Insert(cache, "users", row3(1, "a@x.com", "Ann"))
	require.NoError(t, err)
	_, err = txn.Commit(cache)
	require.NoError(t, err)

	_, err = txn.Insert(cache, "users", row3(2, "b@x.com", "Bob"))
	require.Error(t, err)
	var invalid *dberr.InvalidOperationError
	assert.ErrorAs(t, err, &invalid)
}

func TestTransactionRollbackRestoresPriorState(t *testing.T) {
	cache := newUsersCache(t)
	setup := Begin()
	_, err := setup.Insert(cache, "users", row3(1, "a@x.com", "Ann"))
	require.NoError(t, err)
	_, err = setup.Commit(cache)
	require.NoError(t, err)

	txn := Begin()
	err = txn.Update(cache, "users", 1, row3(1, "a2@x.com", "Ann2"))
	require.NoError(t, err)
	_, err = txn.Insert(cache, "users", row3(2, "b@x.com", "Bob"))
	require.NoError(t, err)

	require.NoError(t, txn.Rollback(cache))

	store, _ := cache.GetTable("users")
	_, ok := store.Get(2)
	assert.False(t, ok, "inserted row should be gone after rollback")

	restored, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", restored.Values[1].String())
	// version keeps advancing even though values were restored
	assert.Equal(t, uint64(3), restored.Version)
}

func TestTransactionNotFoundOnUnknownTable(t *testing.T) {
	cache := newUsersCache(t)
	txn := Begin()
	_, err := txn.Insert(cache, "ghosts", row3(1, "a@x.com", "Ann"))
	require.Error(t, err)
	var notFound *dberr.TableNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func row3(id int64, email, name string) value.Row {
	return value.New(value.RowID(id), []value.Value{value.Int64(id), value.String(email), value.String(name)})
}
