package indexing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/dberr"
	"veloxdb/value"
)

func TestBTreeIndexAddGet(t *testing.T) {
	idx := NewBTreeIndex("users", "pk_users", true)
	require.NoError(t, idx.Add(k(1), 100))
	require.NoError(t, idx.Add(k(2), 101))

	assert.Equal(t, []value.RowID{100}, idx.Get(k(1)))
	assert.True(t, idx.ContainsKey(k(2)))
	assert.False(t, idx.ContainsKey(k(3)))
	assert.Equal(t, 2, idx.Len())
}

func TestBTreeIndexUniqueRejectsDuplicate(t *testing.T) {
	idx := NewBTreeIndex("users", "pk_users", true)
	require.NoError(t, idx.Add(k(1), 100))

	err := idx.Add(k(1), 200)
	require.Error(t, err)
	var dup *dberr.DuplicateKeyError
	assert.ErrorAs(t, err, &dup)
}

func TestBTreeIndexNonUniqueAccumulates(t *testing.T) {
	idx := NewBTreeIndex("orders", "ix_customer", false)
	require.NoError(t, idx.Add(k(1), 10))
	require.NoError(t, idx.Add(k(1), 11))

	assert.ElementsMatch(t, []value.RowID{10, 11}, idx.Get(k(1)))
}

func TestBTreeIndexMinMax(t *testing.T) {
	idx := NewBTreeIndex("t", "ix", false)
	require.NoError(t, idx.Add(k(5), 1))
	require.NoError(t, idx.Add(k(1), 2))
	require.NoError(t, idx.Add(k(9), 3))

	minKey, _, ok := idx.Min()
	require.True(t, ok)
	assert.Equal(t, k(1), minKey)

	maxKey, _, ok := idx.Max()
	require.True(t, ok)
	assert.Equal(t, k(9), maxKey)
}

func TestBTreeIndexGetRange(t *testing.T) {
	idx := NewBTreeIndex("t", "ix", false)
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, idx.Add(k(i), value.RowID(i)))
	}

	out := idx.GetRange(Bound(k(2), k(4), false, false), false, 0, nil)
	assert.Equal(t, []value.RowID{2, 3, 4}, out)

	outRev := idx.GetRange(Bound(k(2), k(4), false, false), true, 0, nil)
	assert.Equal(t, []value.RowID{4, 3, 2}, outRev)

	limit := 2
	outLimited := idx.GetRange(All(), false, 0, &limit)
	assert.Equal(t, []value.RowID{1, 2}, outLimited)
}

func TestBTreeIndexRemove(t *testing.T) {
	idx := NewBTreeIndex("t", "ix", false)
	require.NoError(t, idx.Add(k(1), 10))
	require.NoError(t, idx.Add(k(1), 11))

	one := value.RowID(10)
	idx.Remove(k(1), &one)
	assert.Equal(t, []value.RowID{11}, idx.Get(k(1)))

	idx.Remove(k(1), nil)
	assert.False(t, idx.ContainsKey(k(1)))
}

func TestBTreeIndexCost(t *testing.T) {
	idx := NewBTreeIndex("t", "ix", false)
	for i := int64(1); i <= 10; i++ {
		require.NoError(t, idx.Add(k(i), value.RowID(i)))
	}

	assert.Equal(t, 10, idx.Cost(All()))
	assert.Equal(t, 1, idx.Cost(Only(k(5))))
	assert.Equal(t, 5, idx.Cost(Bound(k(1), k(5), false, false)))
}
