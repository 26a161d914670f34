// Package reactive drives dataflow.Operator chains from live table
// changes and lets callers subscribe to a query's result set instead
// of re-issuing it.
package reactive

import (
	"sync"

	"veloxdb/dataflow"
	"veloxdb/value"
)

// Subscriber is called with the current result set whenever it changes.
type Subscriber func(rows []value.Row)

// Resolver turns a batch of changed row ids on table into the delta
// batch an ObservableQuery's dataflow chain should apply — typically a
// MaterializedView's resolver diffs "current row in storage" against
// "row this view last saw" for each id and emits Delete-then-Insert
// (or just one of the two, for a plain insert/delete) accordingly.
type Resolver func(table string, changedIDs []value.RowID) dataflow.Batch

// ObservableQuery wraps one dataflow.Operator chain and the rows it
// currently produces. Subscribers are notified only when a table
// change actually altered the result (results_equal is checked before
// firing), and if there are no subscribers at all the query still
// updates its own cache but never pays the notification-callback
// overhead.
type ObservableQuery struct {
	mu sync.Mutex

	op       dataflow.Operator
	tables   []string
	results  []value.Row
	resolver Resolver

	subs   map[int]Subscriber
	nextID int
}

// NewObservableQuery wraps op, an already-built dataflow chain, as an
// observable query depending on tables. resolver turns a QueryRegistry
// flush's changed-id set into the delta batch op.Apply expects.
func NewObservableQuery(op dataflow.Operator, tables []string, resolver Resolver) *ObservableQuery {
	return &ObservableQuery{op: op, tables: tables, resolver: resolver, subs: make(map[int]Subscriber)}
}

// Tables returns the base tables this query depends on, used by
// QueryRegistry to route change notifications.
func (q *ObservableQuery) Tables() []string { return q.tables }

// Results returns a snapshot of the query's current output.
func (q *ObservableQuery) Results() []value.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]value.Row, len(q.results))
	copy(out, q.results)
	return out
}

// Len reports the current result set size without copying it.
func (q *ObservableQuery) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.results)
}

// Subscribe registers fn to be called on every change and returns a
// handle Unsubscribe accepts to remove it again.
func (q *ObservableQuery) Subscribe(fn Subscriber) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextID
	q.nextID++
	q.subs[id] = fn
	return id
}

// Unsubscribe removes a subscriber registered with Subscribe.
func (q *ObservableQuery) Unsubscribe(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.subs, id)
}

// HasSubscribers reports whether anyone is currently listening.
func (q *ObservableQuery) HasSubscribers() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.subs) > 0
}

// OnTableChange feeds table's deltas through the query's dataflow
// chain and applies the resulting delta batch to the cached result
// set. Subscribers only fire when the result set actually differs from
// what was last delivered — a batch that nets out to nothing (every
// insert matched by a delete elsewhere in the same transaction) is not
// itself a change worth a callback round trip.
func (q *ObservableQuery) OnTableChange(table string, deltas dataflow.Batch) {
	if !q.dependsOn(table) {
		return
	}
	q.apply(deltas)
}

// OnRowsChanged is the entry point a QueryRegistry flush calls: table
// reports which of its row ids changed since the last flush, with no
// information about what actually happened to them. resolver (supplied
// at construction, typically by a MaterializedView with storage access)
// turns that id set into the Insert/Delete delta batch the dataflow
// chain needs, and the result is applied exactly like OnTableChange.
func (q *ObservableQuery) OnRowsChanged(table string, changedIDs []value.RowID) {
	if !q.dependsOn(table) || q.resolver == nil || len(changedIDs) == 0 {
		return
	}
	q.apply(q.resolver(table, changedIDs))
}

func (q *ObservableQuery) apply(deltas dataflow.Batch) {
	// The operator chain always re-applies the delta, even with zero
	// subscribers: Join/Aggregate keep their own incremental state
	// (leftRows/rightRows, bucket contents) that must track storage
	// exactly, or a later subscriber would see a result computed against
	// a stale base. Only the comparison-and-notify step below is worth
	// skipping when nobody is listening.
	out := q.op.Apply(deltas)
	if len(out) == 0 {
		return
	}

	changedIDs := make(map[value.RowID]struct{}, len(out))
	for _, d := range out {
		changedIDs[d.Row.ID] = struct{}{}
	}

	q.mu.Lock()
	before := append([]value.Row(nil), q.results...)
	q.results = applyDeltas(q.results, out)
	changed := len(q.subs) > 0 && !resultsEqual(before, q.results, changedIDs)
	var subs []Subscriber
	if changed {
		for _, s := range q.subs {
			subs = append(subs, s)
		}
	}
	snapshot := append([]value.Row(nil), q.results...)
	q.mu.Unlock()

	for _, s := range subs {
		s(snapshot)
	}
}

func (q *ObservableQuery) dependsOn(table string) bool {
	for _, t := range q.tables {
		if t == table {
			return true
		}
	}
	return false
}

func applyDeltas(base []value.Row, batch dataflow.Batch) []value.Row {
	for _, d := range batch {
		switch d.Kind {
		case dataflow.Insert:
			base = append(base, d.Row)
		case dataflow.Delete:
			base = removeRowByID(base, d.Row)
		}
	}
	return base
}

// removeRowByID removes the row matching target from rows. Join/
// aggregate output rows all share value.DummyRowID, so an id match alone
// would evict an arbitrary row sharing that sentinel rather than the one
// actually being retracted; for those, the retracted row's own version
// (the wrapping sum of its contributing source versions, unique to that
// particular combination) together with its values identifies the exact
// row instead.
func removeRowByID(rows []value.Row, target value.Row) []value.Row {
	if target.ID != value.DummyRowID {
		for i, r := range rows {
			if r.ID == target.ID {
				return append(rows[:i], rows[i+1:]...)
			}
		}
		return rows
	}
	for i, r := range rows {
		if r.Version == target.Version && rowValuesEqual(r, target) {
			return append(rows[:i], rows[i+1:]...)
		}
	}
	return rows
}

func rowValuesEqual(a, b value.Row) bool {
	if len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if !value.Equal(a.Values[i], b.Values[i]) {
			return false
		}
	}
	return true
}

// resultsEqual implements the results_equal algorithm: a length change
// is always a difference, empty results are always equal, dummy-row-id
// (join/aggregate) results compare each row's version positionally since
// that version already reflects every contributing source row, and
// single-table results compare ids positionally first and then only
// re-check the version of rows whose id appears in changedIDs.
func resultsEqual(old, new []value.Row, changedIDs map[value.RowID]struct{}) bool {
	if len(old) != len(new) {
		return false
	}
	if len(old) == 0 {
		return true
	}

	if old[0].IsDummy() {
		for i := range old {
			if old[i].Version != new[i].Version {
				return false
			}
		}
		return true
	}

	for i := range old {
		if old[i].ID != new[i].ID {
			return false
		}
	}
	for i := range old {
		if _, touched := changedIDs[old[i].ID]; touched && old[i].Version != new[i].Version {
			return false
		}
	}
	return true
}
