package reactive

import (
	"veloxdb/dataflow"
	"veloxdb/storage"
	"veloxdb/value"
)

// MaterializedView is the storage-aware glue an ObservableQuery needs
// but cannot have on its own: a dataflow chain only ever sees delta
// batches, while a QueryRegistry flush only ever reports "these row ids
// on this table changed". MaterializedView bridges the two by keeping
// the last row snapshot it fed through the chain per dependent table,
// so a changed-id set can be turned into the Delete-old/Insert-new
// pairs (or a bare Insert or Delete, for new or removed rows) the chain
// needs to stay correct incrementally.
type MaterializedView struct {
	name  string
	query *ObservableQuery
	cache *storage.TableCache
	seen  map[string]map[value.RowID]value.Row
}

// NewMaterializedView builds a view named name over op, an already
// constructed dataflow chain reading from tables, backed by cache for
// resolving changed row ids to their current contents. Call Seed once
// before registering it with a QueryRegistry, so its first Results()
// reflect the tables' state at view-creation time rather than an empty
// result set waiting for the first write.
func NewMaterializedView(name string, op dataflow.Operator, tables []string, cache *storage.TableCache) *MaterializedView {
	mv := &MaterializedView{name: name, cache: cache, seen: make(map[string]map[value.RowID]value.Row)}
	mv.query = NewObservableQuery(op, tables, mv.resolve)
	return mv
}

// Name returns the view's identifying name.
func (mv *MaterializedView) Name() string { return mv.name }

// Query exposes the underlying ObservableQuery, for Subscribe/Results
// access and for registering with a QueryRegistry.
func (mv *MaterializedView) Query() *ObservableQuery { return mv.query }

// Seed bootstraps the view by feeding every currently stored row of
// each dependent table through the dataflow chain as an Insertion,
// recording the snapshot that later resolve calls diff against.
func (mv *MaterializedView) Seed() {
	for _, t := range mv.query.Tables() {
		store, ok := mv.cache.GetTable(t)
		if !ok {
			continue
		}
		rows := store.Scan()
		snap := make(map[value.RowID]value.Row, len(rows))
		batch := make(dataflow.Batch, 0, len(rows))
		for _, r := range rows {
			snap[r.ID] = r
			batch = append(batch, dataflow.Insertion(r))
		}
		mv.seen[t] = snap
		if len(batch) > 0 {
			mv.query.OnTableChange(t, batch)
		}
	}
}

// resolve is the ObservableQuery Resolver this view supplies: it looks
// up each changed id's current row in storage and compares it against
// the last row this view saw for that id, emitting exactly the deltas
// needed to bring the dataflow chain's state up to date.
func (mv *MaterializedView) resolve(table string, changedIDs []value.RowID) dataflow.Batch {
	store, ok := mv.cache.GetTable(table)
	if !ok {
		return nil
	}
	snap, ok := mv.seen[table]
	if !ok {
		snap = make(map[value.RowID]value.Row)
		mv.seen[table] = snap
	}

	var batch dataflow.Batch
	for _, id := range changedIDs {
		old, hadOld := snap[id]
		current, hasCurrent := store.Get(id)
		switch {
		case hadOld && hasCurrent:
			batch = append(batch, dataflow.Deletion(old), dataflow.Insertion(current))
			snap[id] = current
		case hadOld && !hasCurrent:
			batch = append(batch, dataflow.Deletion(old))
			delete(snap, id)
		case !hadOld && hasCurrent:
			batch = append(batch, dataflow.Insertion(current))
			snap[id] = current
		}
	}
	return batch
}
