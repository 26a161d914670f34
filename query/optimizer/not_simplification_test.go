package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"veloxdb/query"
	"veloxdb/value"
)

func TestNotSimplificationPushesThroughAnd(t *testing.T) {
	a := query.Eq(query.Col("t", "a", 0), query.Lit(value.Int64(1)))
	b := query.Eq(query.Col("t", "b", 1), query.Lit(value.Int64(2)))
	pred := query.Not(query.And(a, b))

	plan := query.Filter(query.Scan("t"), pred)
	out := NotSimplification{}.Optimize(plan)

	assert.Equal(t, query.OpOr, out.Predicate.BinOp)
	assert.Equal(t, query.OpNe, out.Predicate.Left.BinOp)
	assert.Equal(t, query.OpNe, out.Predicate.Right.BinOp)
}

func TestNotSimplificationCollapsesDoubleNegation(t *testing.T) {
	a := query.Eq(query.Col("t", "a", 0), query.Lit(value.Int64(1)))
	pred := query.Not(query.Not(a))

	plan := query.Filter(query.Scan("t"), pred)
	out := NotSimplification{}.Optimize(plan)

	assert.Equal(t, query.OpEq, out.Predicate.BinOp)
}

func TestNotSimplificationFlipsComparisonOperator(t *testing.T) {
	a := query.Lt(query.Col("t", "a", 0), query.Lit(value.Int64(1)))
	pred := query.Not(a)

	plan := query.Filter(query.Scan("t"), pred)
	out := NotSimplification{}.Optimize(plan)

	assert.Equal(t, query.OpGe, out.Predicate.BinOp)
}
