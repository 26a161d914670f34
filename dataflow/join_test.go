package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"veloxdb/query"
	"veloxdb/value"
)

// equiCondition builds a.key = b.key where a is the join's left side
// (width leftWidth) and b's column index is pre-resolved to the global
// combined-row offset leftWidth+0, the convention the physical executor
// and this operator both assume.
func equiCondition(leftWidth int) query.Expr {
	return query.Eq(query.Col("a", "key", 0), query.Col("b", "key", leftWidth))
}

func keyedRow(id value.RowID, key int64, payload string) value.Row {
	return value.New(id, []value.Value{value.Int64(key), value.String(payload)})
}

func TestJoinEmitsOnMatchingInsertFromEitherSide(t *testing.T) {
	j := NewJoin(equiCondition(2), query.InnerJoin, 2)

	leftOut := j.ApplyLeft(Batch{Insertion(keyedRow(1, 10, "L"))})
	assert.Empty(t, leftOut)

	rightOut := j.ApplyRight(Batch{Insertion(keyedRow(2, 10, "R"))})
	assert.Len(t, rightOut, 1)
	assert.Equal(t, Insert, rightOut[0].Kind)

	leftPayload, _ := rightOut[0].Row.Values[1].AsString()
	rightPayload, _ := rightOut[0].Row.Values[3].AsString()
	assert.Equal(t, "L", leftPayload)
	assert.Equal(t, "R", rightPayload)
}

func TestJoinRetractsOnDeleteFromMatchedSide(t *testing.T) {
	j := NewJoin(equiCondition(2), query.InnerJoin, 2)
	j.ApplyLeft(Batch{Insertion(keyedRow(1, 10, "L"))})
	j.ApplyRight(Batch{Insertion(keyedRow(2, 10, "R"))})

	out := j.ApplyLeft(Batch{Deletion(keyedRow(1, 10, "L"))})
	assert.Len(t, out, 1)
	assert.Equal(t, Delete, out[0].Kind)
}

func TestJoinIgnoresNonMatchingKey(t *testing.T) {
	j := NewJoin(equiCondition(2), query.InnerJoin, 2)
	j.ApplyLeft(Batch{Insertion(keyedRow(1, 10, "L"))})

	out := j.ApplyRight(Batch{Insertion(keyedRow(2, 99, "R"))})
	assert.Empty(t, out)
}
