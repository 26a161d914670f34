package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"veloxdb/query"
	"veloxdb/value"
)

func row(id value.RowID, n int64) value.Row {
	return value.New(id, []value.Value{value.Int64(n)})
}

func TestBatchNegateFlipsSign(t *testing.T) {
	b := Batch{Insertion(row(1, 1)), Deletion(row(2, 2))}
	neg := b.Negate()

	assert.Equal(t, Delete, neg[0].Kind)
	assert.Equal(t, Insert, neg[1].Kind)
	assert.Equal(t, b[0].Row.ID, neg[0].Row.ID)
}

func TestSourcePassesThroughUnchanged(t *testing.T) {
	in := Batch{Insertion(row(1, 1))}
	out := Source{}.Apply(in)
	assert.Equal(t, in, out)
}

func TestChainComposesFilterThenProject(t *testing.T) {
	in := Batch{Insertion(row(1, 5)), Insertion(row(2, 15))}
	gtTen := query.Gt(query.Col("t", "n", 0), query.Lit(value.Int64(10)))
	double := query.Col("t", "n", 0)

	op := Chain(Filter{Predicate: gtTen}, Project{Columns: []query.Expr{double}})
	out := op.Apply(in)

	assert.Len(t, out, 1)
	assert.Equal(t, value.RowID(2), out[0].Row.ID)
	n, _ := out[0].Row.Get(0).AsInt64()
	assert.Equal(t, int64(15), n)
}

func TestFilterDropsNonMatchingRows(t *testing.T) {
	in := Batch{Deletion(row(1, 1)), Insertion(row(2, 2))}
	isTwo := query.Eq(query.Col("t", "n", 0), query.Lit(value.Int64(2)))

	out := Filter{Predicate: isTwo}.Apply(in)
	assert.Len(t, out, 1)
	assert.Equal(t, Insert, out[0].Kind)
}
