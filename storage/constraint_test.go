package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/dberr"
	"veloxdb/schema"
	"veloxdb/value"
)

func ordersSchema(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.NewBuilder("orders").
		AddColumn("id", value.KindInt64).
		AddColumn("user_id", value.KindInt64).
		AddColumn("amount", value.KindInt64).
		AddPrimaryKey("id").
		AddForeignKey(schema.ForeignKey{
			Name:        "fk_orders_user",
			ChildColumn: "user_id",
			ParentTable: "users",
			ParentColumn: "id",
			Timing:      schema.Immediate,
			OnDeleteAction: schema.Restrict,
		}).
		Build()
	require.NoError(t, err)
	return tbl
}

func newUsersOrdersCache(t *testing.T) *TableCache {
	t.Helper()
	cache := NewTableCache()
	_, err := cache.CreateTable(usersSchema(t))
	require.NoError(t, err)
	_, err = cache.CreateTable(ordersSchema(t))
	require.NoError(t, err)
	return cache
}

func TestCheckForeignKeysForInsertValid(t *testing.T) {
	cache := newUsersOrdersCache(t)
	users, _ := cache.GetTableMut("users")
	_, err := users.Insert(row3(1, "a@x.com", "Ann"))
	require.NoError(t, err)

	orders := ordersSchema(t)
	order := value.New(1, []value.Value{value.Int64(1), value.Int64(1), value.Int64(100)})

	var checker ConstraintChecker
	err = checker.CheckForeignKeysForInsert(cache, orders, []value.Row{order}, schema.Immediate)
	assert.NoError(t, err)
}

func TestCheckForeignKeysForInsertViolation(t *testing.T) {
	cache := newUsersOrdersCache(t)
	orders := ordersSchema(t)
	order := value.New(1, []value.Value{value.Int64(1), value.Int64(999), value.Int64(100)})

	var checker ConstraintChecker
	err := checker.CheckForeignKeysForInsert(cache, orders, []value.Row{order}, schema.Immediate)
	require.Error(t, err)
	var fkErr *dberr.ForeignKeyViolationError
	assert.ErrorAs(t, err, &fkErr)
}

func TestCheckForeignKeysForInsertNullAllowed(t *testing.T) {
	cache := newUsersOrdersCache(t)
	orders := ordersSchema(t)
	order := value.New(1, []value.Value{value.Int64(1), value.Null(), value.Int64(100)})

	var checker ConstraintChecker
	err := checker.CheckForeignKeysForInsert(cache, orders, []value.Row{order}, schema.Immediate)
	assert.NoError(t, err)
}

func TestCheckForeignKeysForDeleteWithChildren(t *testing.T) {
	cache := newUsersOrdersCache(t)
	users, _ := cache.GetTableMut("users")
	user := row3(1, "a@x.com", "Ann")
	_, err := users.Insert(user)
	require.NoError(t, err)

	orders, _ := cache.GetTableMut("orders")
	_, err = orders.Insert(value.New(1, []value.Value{value.Int64(1), value.Int64(1), value.Int64(100)}))
	require.NoError(t, err)

	var checker ConstraintChecker
	usersSchema := users.Schema
	err = checker.CheckForeignKeysForDelete(cache, usersSchema, []value.Row{user}, schema.Immediate)
	require.Error(t, err)
}

func TestCheckForeignKeysForDeleteNoChildren(t *testing.T) {
	cache := newUsersOrdersCache(t)
	users, _ := cache.GetTableMut("users")
	user := row3(1, "a@x.com", "Ann")
	_, err := users.Insert(user)
	require.NoError(t, err)

	var checker ConstraintChecker
	err = checker.CheckForeignKeysForDelete(cache, users.Schema, []value.Row{user}, schema.Immediate)
	assert.NoError(t, err)
}

func TestApplyDeleteActionCascade(t *testing.T) {
	cache := NewTableCache()
	_, err := cache.CreateTable(usersSchema(t))
	require.NoError(t, err)
	cascadeOrders, err := schema.NewBuilder("orders").
		AddColumn("id", value.KindInt64).
		AddColumn("user_id", value.KindInt64).
		AddPrimaryKey("id").
		AddForeignKey(schema.ForeignKey{
			Name: "fk_orders_user", ChildColumn: "user_id", ParentTable: "users", ParentColumn: "id",
			Timing: schema.Immediate, OnDeleteAction: schema.Cascade,
		}).
		Build()
	require.NoError(t, err)
	_, err = cache.CreateTable(cascadeOrders)
	require.NoError(t, err)

	users, _ := cache.GetTableMut("users")
	user := row3(1, "a@x.com", "Ann")
	_, err = users.Insert(user)
	require.NoError(t, err)

	orders, _ := cache.GetTableMut("orders")
	_, err = orders.Insert(value.New(1, []value.Value{value.Int64(1), value.Int64(1)}))
	require.NoError(t, err)

	var checker ConstraintChecker
	require.NoError(t, checker.ApplyDeleteAction(cache, users.Schema, []value.Row{user}))

	_, ok := orders.Get(1)
	assert.False(t, ok, "cascade should have removed the child order")
}
