package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/query"
	"veloxdb/schema"
	"veloxdb/storage"
	"veloxdb/value"
)

func seedUsers(t *testing.T, cache *storage.TableCache) {
	t.Helper()
	tbl, err := schema.NewBuilder("users").
		AddColumn("id", value.KindInt64).
		AddColumn("name", value.KindString).
		AddColumn("age", value.KindInt64).
		AddPrimaryKey("id").
		Build()
	require.NoError(t, err)

	store, err := cache.CreateTable(tbl)
	require.NoError(t, err)

	seed := []value.Row{
		value.New(0, []value.Value{value.Int64(1), value.String("Ada"), value.Int64(30)}),
		value.New(0, []value.Value{value.Int64(2), value.String("Grace"), value.Int64(40)}),
		value.New(0, []value.Value{value.Int64(3), value.String("Linus"), value.Int64(25)}),
	}
	for _, row := range seed {
		row.ID = store.NextRowID()
		_, err := store.Insert(row)
		require.NoError(t, err)
	}
}

func seedOrders(t *testing.T, cache *storage.TableCache) {
	t.Helper()
	tbl, err := schema.NewBuilder("orders").
		AddColumn("id", value.KindInt64).
		AddColumn("user_id", value.KindInt64).
		AddColumn("total", value.KindInt64).
		AddPrimaryKey("id").
		Build()
	require.NoError(t, err)

	store, err := cache.CreateTable(tbl)
	require.NoError(t, err)

	seed := []value.Row{
		value.New(0, []value.Value{value.Int64(1), value.Int64(1), value.Int64(100)}),
		value.New(0, []value.Value{value.Int64(2), value.Int64(1), value.Int64(50)}),
		value.New(0, []value.Value{value.Int64(3), value.Int64(2), value.Int64(75)}),
	}
	for _, row := range seed {
		row.ID = store.NextRowID()
		_, err := store.Insert(row)
		require.NoError(t, err)
	}
}

func TestExecuteTableScanReturnsAllRows(t *testing.T) {
	cache := storage.NewTableCache()
	seedUsers(t, cache)

	rel, err := Execute(TableScan("users"), cache)
	require.NoError(t, err)
	assert.Len(t, rel.Entries, 3)
}

func TestExecuteFilterKeepsMatchingRows(t *testing.T) {
	cache := storage.NewTableCache()
	seedUsers(t, cache)

	pred := query.Gt(query.Col("users", "age", 2), query.Lit(value.Int64(28)))
	plan := Filter(TableScan("users"), pred)

	rel, err := Execute(plan, cache)
	require.NoError(t, err)
	assert.Len(t, rel.Entries, 2)
}

func TestExecuteProjectSelectsColumns(t *testing.T) {
	cache := storage.NewTableCache()
	seedUsers(t, cache)

	plan := Project(TableScan("users"), []query.Expr{query.Col("users", "name", 1)})
	rel, err := Execute(plan, cache)
	require.NoError(t, err)
	require.Len(t, rel.Entries, 3)
	assert.Equal(t, "Ada", rel.Entries[0].Row.Get(0).String())
}

func TestExecuteHashJoinCombinesMatchingRows(t *testing.T) {
	cache := storage.NewTableCache()
	seedUsers(t, cache)
	seedOrders(t, cache)

	condition := query.Eq(query.Col("users", "id", 0), query.Col("orders", "user_id", 4))
	plan := HashJoin(TableScan("users"), TableScan("orders"), condition, query.InnerJoin)

	rel, err := Execute(plan, cache)
	require.NoError(t, err)
	assert.Len(t, rel.Entries, 3) // Ada has two orders, Grace has one, Linus has none
}

func TestExecuteLeftOuterJoinKeepsUnmatchedLeftRows(t *testing.T) {
	cache := storage.NewTableCache()
	seedUsers(t, cache)
	seedOrders(t, cache)

	condition := query.Eq(query.Col("users", "id", 0), query.Col("orders", "user_id", 4))
	plan := HashJoin(TableScan("users"), TableScan("orders"), condition, query.LeftOuterJoin)

	rel, err := Execute(plan, cache)
	require.NoError(t, err)
	assert.Len(t, rel.Entries, 4) // 3 matches + Linus unmatched
}

func TestExecuteHashAggregateSumsPerGroup(t *testing.T) {
	cache := storage.NewTableCache()
	seedOrders(t, cache)

	groupBy := []query.Expr{query.Col("orders", "user_id", 1)}
	aggregates := []query.AggregateCall{{Func: query.AggSum, Arg: query.Col("orders", "total", 2)}}
	plan := HashAggregate(TableScan("orders"), groupBy, aggregates)

	rel, err := Execute(plan, cache)
	require.NoError(t, err)
	assert.Len(t, rel.Entries, 2) // two distinct user_ids
}

func TestExecuteLimitTrimsResults(t *testing.T) {
	cache := storage.NewTableCache()
	seedUsers(t, cache)

	plan := LimitPlan(TableScan("users"), 1, 1)
	rel, err := Execute(plan, cache)
	require.NoError(t, err)
	assert.Len(t, rel.Entries, 1)
}
