package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/query"
	"veloxdb/value"
)

func TestPredicatePushdownMovesFilterBelowProject(t *testing.T) {
	pred := query.Eq(query.Col("t", "a", 0), query.Lit(value.Int64(1)))
	plan := query.Filter(query.Project(query.Scan("t"), []query.Expr{query.Col("t", "a", 0)}), pred)

	out := PredicatePushdown{}.Optimize(plan)

	require.Equal(t, query.LogProject, out.Kind)
	require.Equal(t, query.LogFilter, out.Input.Kind)
	assert.Equal(t, query.LogScan, out.Input.Input.Kind)
}

func TestPredicatePushdownMovesFilterToMatchingInnerJoinSide(t *testing.T) {
	left := query.Scan("orders")
	right := query.Scan("users")
	join := query.InnerJoinOn(left, right, query.Eq(query.Col("orders", "user_id", 1), query.Col("users", "id", 0)))

	pred := query.Eq(query.Col("orders", "status", 2), query.Lit(value.String("open")))
	plan := query.Filter(join, pred)

	out := PredicatePushdown{}.Optimize(plan)

	require.Equal(t, query.LogJoin, out.Kind)
	require.Equal(t, query.LogFilter, out.Left.Kind)
	assert.Equal(t, query.LogScan, out.Left.Input.Kind)
	assert.Equal(t, query.LogScan, out.Right.Kind)
}

func TestPredicatePushdownLeavesOuterJoinFilterOnNullableSide(t *testing.T) {
	left := query.Scan("users")
	right := query.Scan("orders")
	join := query.LeftJoinOn(left, right, query.Eq(query.Col("users", "id", 0), query.Col("orders", "user_id", 1)))

	pred := query.Eq(query.Col("orders", "status", 2), query.Lit(value.String("open")))
	plan := query.Filter(join, pred)

	out := PredicatePushdown{}.Optimize(plan)

	require.Equal(t, query.LogFilter, out.Kind)
	assert.Equal(t, query.LogJoin, out.Input.Kind)
}
