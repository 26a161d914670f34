package indexing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"veloxdb/value"
)

func TestGinIndexAddKey(t *testing.T) {
	g := NewGinIndex()
	g.AddKey("name", 1)
	g.AddKey("name", 2)
	g.AddKey("age", 1)

	assert.True(t, g.ContainsKey("name"))
	assert.ElementsMatch(t, []uint64{1, 2}, toUint64s(g.GetByKey("name")))
	assert.Equal(t, 2, g.KeyCount())
}

func TestGinIndexKeysAllAny(t *testing.T) {
	g := NewGinIndex()
	g.AddKey("a", 1)
	g.AddKey("a", 2)
	g.AddKey("b", 2)
	g.AddKey("b", 3)

	assert.Equal(t, []uint64{2}, toUint64s(g.GetByKeysAll([]string{"a", "b"})))
	assert.ElementsMatch(t, []uint64{1, 2, 3}, toUint64s(g.GetByKeysAny([]string{"a", "b"})))
}

func TestGinIndexKeyValueContainment(t *testing.T) {
	g := NewGinIndex()
	g.AddKeyValue("status", "active", 1)
	g.AddKeyValue("status", "active", 2)
	g.AddKeyValue("status", "closed", 3)

	assert.ElementsMatch(t, []uint64{1, 2}, toUint64s(g.GetByKeyValue("status", "active")))
	assert.Equal(t, []uint64{3}, toUint64s(g.GetByKeyValue("status", "closed")))
}

func TestGinIndexKeyValuesAllMissingPairYieldsEmpty(t *testing.T) {
	g := NewGinIndex()
	g.AddKeyValue("a", "1", 1)

	assert.Nil(t, g.GetByKeyValuesAll([][2]string{{"a", "1"}, {"b", "2"}}))
}

func TestGinIndexRemove(t *testing.T) {
	g := NewGinIndex()
	g.AddKey("a", 1)
	g.RemoveKey("a", 1)
	assert.False(t, g.ContainsKey("a"))
	assert.True(t, g.IsEmpty())
}

func toUint64s(ids []value.RowID) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
