package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/query"
	"veloxdb/value"
)

func ctxWithIndexes(table string, indexes ...query.IndexInfo) *query.ExecutionContext {
	ctx := query.NewExecutionContext()
	ctx.RegisterTable(table, query.TableStats{RowCount: 100, Indexes: indexes})
	return ctx
}

func TestIndexSelectionPrefersUniqueOverNonUnique(t *testing.T) {
	nonUnique := query.NewIndexInfo("idx_users_name", []string{"name"}, false)
	unique := query.NewIndexInfo("idx_users_name_unique", []string{"name"}, true)
	ctx := ctxWithIndexes("users", nonUnique, unique)

	pred := query.Eq(query.Col("users", "name", 1), query.Lit(value.String("ann")))
	plan := query.Filter(query.Scan("users"), pred)

	out := IndexSelection{Ctx: ctx}.Optimize(plan)

	require.Equal(t, query.LogIndexGet, out.Kind)
	assert.Equal(t, "idx_users_name_unique", out.Index)
}

func TestIndexSelectionPrefersPrimaryKeyOverUnique(t *testing.T) {
	unique := query.NewIndexInfo("idx_users_email", []string{"email"}, true)
	pk := query.NewIndexInfo("pk_users_email", []string{"email"}, true)
	pk.PK = true
	ctx := ctxWithIndexes("users", unique, pk)

	pred := query.Eq(query.Col("users", "email", 1), query.Lit(value.String("a@x.com")))
	plan := query.Filter(query.Scan("users"), pred)

	out := IndexSelection{Ctx: ctx}.Optimize(plan)

	require.Equal(t, query.LogIndexGet, out.Kind)
	assert.Equal(t, "pk_users_email", out.Index)
}

func TestIndexSelectionBreaksTieByLowestCost(t *testing.T) {
	expensive := query.NewIndexInfo("idx_orders_status_wide", []string{"status"}, false)
	expensive.Cost = 40
	cheap := query.NewIndexInfo("idx_orders_status_narrow", []string{"status"}, false)
	cheap.Cost = 3
	ctx := ctxWithIndexes("orders", expensive, cheap)

	pred := query.Eq(query.Col("orders", "status", 1), query.Lit(value.String("open")))
	plan := query.Filter(query.Scan("orders"), pred)

	out := IndexSelection{Ctx: ctx}.Optimize(plan)

	require.Equal(t, query.LogIndexScan, out.Kind)
	assert.Equal(t, "idx_orders_status_narrow", out.Index)
}

func TestIndexSelectionTreatsUnknownCostAsWorstCase(t *testing.T) {
	unknown := query.NewIndexInfo("idx_orders_status_unknown", []string{"status"}, false)
	known := query.NewIndexInfo("idx_orders_status_known", []string{"status"}, false)
	known.Cost = 5
	ctx := ctxWithIndexes("orders", unknown, known)

	pred := query.Eq(query.Col("orders", "status", 1), query.Lit(value.String("open")))
	plan := query.Filter(query.Scan("orders"), pred)

	out := IndexSelection{Ctx: ctx}.Optimize(plan)

	require.Equal(t, query.LogIndexScan, out.Kind)
	assert.Equal(t, "idx_orders_status_known", out.Index)
}
