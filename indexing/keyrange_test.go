package indexing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"veloxdb/value"
)

func k(n int64) Key { return Key{value.Int64(n)} }

func TestKeyRangeAll(t *testing.T) {
	r := All()
	assert.True(t, r.Contains(k(-100)))
	assert.True(t, r.Contains(k(0)))
	assert.True(t, r.Contains(k(100)))
}

func TestKeyRangeOnly(t *testing.T) {
	r := Only(k(5))
	assert.False(t, r.Contains(k(4)))
	assert.True(t, r.Contains(k(5)))
	assert.False(t, r.Contains(k(6)))
}

func TestKeyRangeLowerBound(t *testing.T) {
	r := LowerBound(k(5), false)
	assert.False(t, r.Contains(k(4)))
	assert.True(t, r.Contains(k(5)))
	assert.True(t, r.Contains(k(6)))

	rex := LowerBound(k(5), true)
	assert.False(t, rex.Contains(k(5)))
	assert.True(t, rex.Contains(k(6)))
}

func TestKeyRangeUpperBound(t *testing.T) {
	r := UpperBound(k(5), false)
	assert.True(t, r.Contains(k(5)))
	assert.False(t, r.Contains(k(6)))

	rex := UpperBound(k(5), true)
	assert.False(t, rex.Contains(k(5)))
}

func TestKeyRangeBound(t *testing.T) {
	r := Bound(k(3), k(7), false, false)
	assert.False(t, r.Contains(k(2)))
	assert.True(t, r.Contains(k(3)))
	assert.True(t, r.Contains(k(7)))
	assert.False(t, r.Contains(k(8)))

	rex := Bound(k(3), k(7), true, true)
	assert.False(t, rex.Contains(k(3)))
	assert.True(t, rex.Contains(k(5)))
	assert.False(t, rex.Contains(k(7)))
}

func TestKeyRangeOverlapsLowerUpper(t *testing.T) {
	lower := LowerBound(k(5), false)
	upper := UpperBound(k(10), false)
	assert.True(t, lower.Overlaps(upper))

	lower2 := LowerBound(k(11), false)
	assert.False(t, lower2.Overlaps(upper))
}

func TestKeyRangeOverlapsBounded(t *testing.T) {
	a := Bound(k(0), k(5), false, false)
	b := Bound(k(5), k(10), false, false)
	assert.True(t, a.Overlaps(b))

	c := Bound(k(0), k(5), false, true)
	d := Bound(k(5), k(10), false, false)
	assert.False(t, c.Overlaps(d))
}
