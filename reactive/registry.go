package reactive

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"veloxdb/value"
)

// QueryID identifies a query registered with a QueryRegistry.
type QueryID uint64

// Scheduler decides when a registry's accumulated pending changes get
// flushed to the queries that depend on them. SyncScheduler (the
// default) flushes immediately, matching the reference registry's
// non-WASM test configuration; a host embedding veloxdb in an event
// loop can supply one that defers the call to the next tick instead,
// matching the reference's microtask-queued WASM behavior.
type Scheduler interface {
	// Schedule arranges for fn to run once, as soon as the scheduler
	// considers appropriate (immediately, or deferred).
	Schedule(fn func())
}

// SyncScheduler runs the flush callback immediately, inline with the
// call that triggered it.
type SyncScheduler struct{}

func (SyncScheduler) Schedule(fn func()) { fn() }

// QueryRegistry batches table changes and flushes them to dependent
// queries as a single coalesced notification instead of one per
// change, so N inserts in one transaction trigger one re-evaluation
// per dependent query rather than N. Changed row ids accumulate in a
// RoaringBitmap per table between flushes; row ids are assumed to fit
// in 32 bits, which holds for any table an in-memory engine like this
// one is sized for.
type QueryRegistry struct {
	mu sync.Mutex

	byTable   map[string][]*ObservableQuery
	byID      map[QueryID]*ObservableQuery
	nextID    QueryID
	pending   map[string]*roaring.Bitmap
	scheduled bool
	scheduler Scheduler
}

// NewQueryRegistry returns an empty registry that flushes synchronously.
func NewQueryRegistry() *QueryRegistry {
	return NewQueryRegistryWithScheduler(SyncScheduler{})
}

// NewQueryRegistryWithScheduler returns an empty registry using sched
// to decide when accumulated changes are flushed.
func NewQueryRegistryWithScheduler(sched Scheduler) *QueryRegistry {
	return &QueryRegistry{
		byTable:   make(map[string][]*ObservableQuery),
		byID:      make(map[QueryID]*ObservableQuery),
		nextID:    1,
		pending:   make(map[string]*roaring.Bitmap),
		scheduler: sched,
	}
}

// Register adds query, indexing it under every table it depends on,
// and returns an id Unregister accepts.
func (r *QueryRegistry) Register(query *ObservableQuery) QueryID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.byID[id] = query
	for _, t := range query.Tables() {
		r.byTable[t] = append(r.byTable[t], query)
	}
	return id
}

// Unregister removes a query by id, reporting whether it was present.
func (r *QueryRegistry) Unregister(id QueryID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	for _, t := range q.Tables() {
		r.byTable[t] = removeQuery(r.byTable[t], q)
		if len(r.byTable[t]) == 0 {
			delete(r.byTable, t)
		}
	}
	return true
}

func removeQuery(qs []*ObservableQuery, target *ObservableQuery) []*ObservableQuery {
	for i, q := range qs {
		if q == target {
			return append(qs[:i], qs[i+1:]...)
		}
	}
	return qs
}

// OnTableChange accumulates changedIDs against table and schedules a
// flush if one isn't already pending. Calling this repeatedly for the
// same table before a flush runs coalesces every changed id into one
// bitmap, so a burst of writes in one transaction produces exactly one
// re-evaluation per dependent query.
func (r *QueryRegistry) OnTableChange(table string, changedIDs []value.RowID) {
	r.mu.Lock()
	bm, ok := r.pending[table]
	if !ok {
		bm = roaring.New()
		r.pending[table] = bm
	}
	for _, id := range changedIDs {
		bm.Add(uint32(id))
	}
	alreadyScheduled := r.scheduled
	r.scheduled = true
	r.mu.Unlock()

	if !alreadyScheduled {
		r.scheduler.Schedule(r.flush)
	}
}

// Flush forces an immediate flush of all pending changes, bypassing
// the scheduler. Tests and callers needing synchronous behavior past
// a non-default scheduler use this directly.
func (r *QueryRegistry) Flush() { r.flush() }

func (r *QueryRegistry) flush() {
	r.mu.Lock()
	r.scheduled = false
	pending := r.pending
	r.pending = make(map[string]*roaring.Bitmap)
	r.mu.Unlock()

	for table, bm := range pending {
		r.mu.Lock()
		queries := append([]*ObservableQuery(nil), r.byTable[table]...)
		r.mu.Unlock()

		ids := make([]value.RowID, 0, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			ids = append(ids, value.RowID(it.Next()))
		}
		for _, q := range queries {
			q.OnRowsChanged(table, ids)
		}
	}
}

// QueryCount returns the number of registered queries.
func (r *QueryRegistry) QueryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// IsEmpty reports whether no query is registered.
func (r *QueryRegistry) IsEmpty() bool { return r.QueryCount() == 0 }

// QueriesForTable returns how many registered queries depend on table.
func (r *QueryRegistry) QueriesForTable(table string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTable[table])
}

// HasPendingChanges reports whether a flush would currently do anything.
func (r *QueryRegistry) HasPendingChanges() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending) > 0
}

// Clear removes every registered query and discards pending changes.
func (r *QueryRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTable = make(map[string][]*ObservableQuery)
	r.byID = make(map[QueryID]*ObservableQuery)
	r.pending = make(map[string]*roaring.Bitmap)
	r.scheduled = false
}
