package indexing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/dberr"
	"veloxdb/value"
)

func TestHashIndexAddGet(t *testing.T) {
	idx := NewHashIndex("users", "ux_email", true)
	require.NoError(t, idx.Add(k(1), 100))

	assert.Equal(t, []value.RowID{100}, idx.Get(k(1)))
	assert.True(t, idx.ContainsKey(k(1)))
	assert.False(t, idx.ContainsKey(k(2)))
}

func TestHashIndexUniqueRejectsDuplicate(t *testing.T) {
	idx := NewHashIndex("users", "ux_email", true)
	require.NoError(t, idx.Add(k(1), 100))

	err := idx.Add(k(1), 200)
	require.Error(t, err)
	var dup *dberr.DuplicateKeyError
	assert.ErrorAs(t, err, &dup)
}

func TestHashIndexCostTreatsRangeAsFullScan(t *testing.T) {
	idx := NewHashIndex("t", "ix", false)
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, idx.Add(k(i), value.RowID(i)))
	}

	assert.Equal(t, 1, idx.Cost(Only(k(3))))
	assert.Equal(t, 5, idx.Cost(Bound(k(1), k(4), false, false)))
	assert.Equal(t, 5, idx.Cost(All()))
}

func TestHashIndexMinMax(t *testing.T) {
	idx := NewHashIndex("t", "ix", false)
	require.NoError(t, idx.Add(k(5), 1))
	require.NoError(t, idx.Add(k(1), 2))

	minKey, _, ok := idx.Min()
	require.True(t, ok)
	assert.Equal(t, k(1), minKey)
}

func TestHashIndexRemove(t *testing.T) {
	idx := NewHashIndex("t", "ix", false)
	require.NoError(t, idx.Add(k(1), 10))
	idx.Remove(k(1), nil)
	assert.False(t, idx.ContainsKey(k(1)))
	assert.Equal(t, 0, idx.Len())
}
