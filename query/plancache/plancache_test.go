package plancache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/query"
	"veloxdb/value"
)

func scanWithFilter(table string, threshold int64) *query.LogicalPlan {
	pred := query.Gt(query.Col(table, "age", 2), query.Lit(value.Int64(threshold)))
	return query.Filter(query.Scan(table), pred)
}

func TestHashIsStableAcrossEquivalentPlans(t *testing.T) {
	a := Hash(scanWithFilter("users", 18))
	b := Hash(scanWithFilter("users", 18))
	assert.Equal(t, a, b)
}

func TestHashDiffersOnLiteralValue(t *testing.T) {
	a := Hash(scanWithFilter("users", 18))
	b := Hash(scanWithFilter("users", 21))
	assert.NotEqual(t, a, b)
}

func TestHashDiffersOnTableName(t *testing.T) {
	a := Hash(scanWithFilter("users", 18))
	b := Hash(scanWithFilter("accounts", 18))
	assert.NotEqual(t, a, b)
}

func TestGetOrPlanCachesByFingerprint(t *testing.T) {
	cache, err := New(8)
	require.NoError(t, err)

	ctx := query.NewExecutionContext()
	plan := scanWithFilter("users", 18)

	first := cache.GetOrPlan(plan, ctx)
	require.Equal(t, 1, cache.Len())

	second := cache.GetOrPlan(scanWithFilter("users", 18), ctx)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestGetOrPlanMissesOnDifferentShape(t *testing.T) {
	cache, err := New(8)
	require.NoError(t, err)

	ctx := query.NewExecutionContext()
	cache.GetOrPlan(scanWithFilter("users", 18), ctx)
	cache.GetOrPlan(scanWithFilter("users", 21), ctx)

	assert.Equal(t, 2, cache.Len())
}

func TestPurgeEmptiesCache(t *testing.T) {
	cache, err := New(8)
	require.NoError(t, err)

	ctx := query.NewExecutionContext()
	cache.GetOrPlan(scanWithFilter("users", 18), ctx)
	require.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}
