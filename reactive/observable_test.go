package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/dataflow"
	"veloxdb/value"
)

func sampleRow(id value.RowID, n int64) value.Row {
	return value.New(id, []value.Value{value.Int64(n)})
}

func TestObservableQueryAppliesDeltasFromOnTableChange(t *testing.T) {
	q := NewObservableQuery(dataflow.Chain(dataflow.Source{}), []string{"t"}, nil)

	q.OnTableChange("t", dataflow.Batch{dataflow.Insertion(sampleRow(1, 10))})
	assert.Equal(t, 1, q.Len())

	q.OnTableChange("t", dataflow.Batch{dataflow.Deletion(sampleRow(1, 10))})
	assert.Equal(t, 0, q.Len())
}

func TestObservableQueryIgnoresUnrelatedTable(t *testing.T) {
	q := NewObservableQuery(dataflow.Chain(dataflow.Source{}), []string{"t"}, nil)

	q.OnTableChange("other", dataflow.Batch{dataflow.Insertion(sampleRow(1, 10))})
	assert.Equal(t, 0, q.Len())
}

func TestObservableQueryNotifiesSubscribersOnChange(t *testing.T) {
	q := NewObservableQuery(dataflow.Chain(dataflow.Source{}), []string{"t"}, nil)

	var seen []value.Row
	calls := 0
	q.Subscribe(func(rows []value.Row) {
		calls++
		seen = rows
	})

	q.OnTableChange("t", dataflow.Batch{dataflow.Insertion(sampleRow(1, 10))})
	assert.Equal(t, 1, calls)
	require.Len(t, seen, 1)
	assert.Equal(t, value.RowID(1), seen[0].ID)
}

func TestObservableQueryUnsubscribeStopsNotifications(t *testing.T) {
	q := NewObservableQuery(dataflow.Chain(dataflow.Source{}), []string{"t"}, nil)

	calls := 0
	id := q.Subscribe(func(rows []value.Row) { calls++ })
	q.Unsubscribe(id)

	q.OnTableChange("t", dataflow.Batch{dataflow.Insertion(sampleRow(1, 10))})
	assert.Equal(t, 0, calls)
	assert.False(t, q.HasSubscribers())
}

func TestObservableQueryOnRowsChangedUsesResolver(t *testing.T) {
	resolverCalls := 0
	resolver := func(table string, ids []value.RowID) dataflow.Batch {
		resolverCalls++
		require.Equal(t, "t", table)
		require.Equal(t, []value.RowID{1, 2}, ids)
		return dataflow.Batch{dataflow.Insertion(sampleRow(1, 1)), dataflow.Insertion(sampleRow(2, 2))}
	}
	q := NewObservableQuery(dataflow.Chain(dataflow.Source{}), []string{"t"}, resolver)

	q.OnRowsChanged("t", []value.RowID{1, 2})
	assert.Equal(t, 1, resolverCalls)
	assert.Equal(t, 2, q.Len())
}

func TestObservableQueryOnRowsChangedNoopWithoutResolver(t *testing.T) {
	q := NewObservableQuery(dataflow.Chain(dataflow.Source{}), []string{"t"}, nil)
	q.OnRowsChanged("t", []value.RowID{1})
	assert.Equal(t, 0, q.Len())
}
