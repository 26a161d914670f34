package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/dataflow"
	"veloxdb/value"
)

func newObservedQuery(resolver Resolver, tables ...string) *ObservableQuery {
	return NewObservableQuery(dataflow.Chain(dataflow.Source{}), tables, resolver)
}

func TestQueryRegistryRegisterIndexesByTable(t *testing.T) {
	r := NewQueryRegistry()
	q := newObservedQuery(nil, "t")
	id := r.Register(q)

	assert.Equal(t, 1, r.QueryCount())
	assert.Equal(t, 1, r.QueriesForTable("t"))
	assert.Equal(t, 0, r.QueriesForTable("other"))

	assert.True(t, r.Unregister(id))
	assert.Equal(t, 0, r.QueryCount())
	assert.Equal(t, 0, r.QueriesForTable("t"))
}

func TestQueryRegistryUnregisterUnknownIDReturnsFalse(t *testing.T) {
	r := NewQueryRegistry()
	assert.False(t, r.Unregister(QueryID(999)))
}

func TestQueryRegistryOnTableChangeFlushesSynchronously(t *testing.T) {
	resolverCalls := 0
	resolver := func(table string, ids []value.RowID) dataflow.Batch {
		resolverCalls++
		var b dataflow.Batch
		for _, id := range ids {
			b = append(b, dataflow.Insertion(sampleRow(id, int64(id))))
		}
		return b
	}
	r := NewQueryRegistry()
	q := newObservedQuery(resolver, "t")
	r.Register(q)

	r.OnTableChange("t", []value.RowID{1, 2, 3})

	assert.Equal(t, 1, resolverCalls)
	assert.Equal(t, 3, q.Len())
	assert.False(t, r.HasPendingChanges())
}

func TestQueryRegistryCoalescesChangesWithinOneFlush(t *testing.T) {
	var seenIDs []value.RowID
	resolverCalls := 0
	resolver := func(table string, ids []value.RowID) dataflow.Batch {
		resolverCalls++
		seenIDs = append(seenIDs, ids...)
		return nil
	}
	q := newObservedQuery(resolver, "t")

	manual := NewQueryRegistryWithScheduler(deferredScheduler{})
	manual.Register(q)
	manual.OnTableChange("t", []value.RowID{1})
	manual.OnTableChange("t", []value.RowID{2})
	assert.True(t, manual.HasPendingChanges())

	manual.Flush()
	assert.False(t, manual.HasPendingChanges())
	require.Len(t, seenIDs, 2)
	assert.Equal(t, 1, resolverCalls)
}

func TestQueryRegistryOnlyNotifiesQueriesForChangedTable(t *testing.T) {
	var calledA, calledB bool
	resolverA := func(table string, ids []value.RowID) dataflow.Batch { calledA = true; return nil }
	resolverB := func(table string, ids []value.RowID) dataflow.Batch { calledB = true; return nil }

	r := NewQueryRegistry()
	r.Register(newObservedQuery(resolverA, "a"))
	r.Register(newObservedQuery(resolverB, "b"))

	r.OnTableChange("a", []value.RowID{1})

	assert.True(t, calledA)
	assert.False(t, calledB)
}

func TestQueryRegistryClearRemovesEverything(t *testing.T) {
	r := NewQueryRegistry()
	r.Register(newObservedQuery(nil, "t"))
	r.Clear()

	assert.Equal(t, 0, r.QueryCount())
	assert.False(t, r.HasPendingChanges())
}

// deferredScheduler never runs its callback automatically, letting a
// test accumulate multiple OnTableChange calls before forcing a single
// Flush and asserting the resolver only saw one coalesced batch.
type deferredScheduler struct{}

func (deferredScheduler) Schedule(fn func()) {}
