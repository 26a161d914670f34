package storage

import "veloxdb/value"

// EntryKind discriminates the three shapes of JournalEntry.
type EntryKind uint8

const (
	EntryInsert EntryKind = iota
	EntryUpdate
	EntryDelete
)

// JournalEntry is one ordered record of a mutation performed within a
// transaction: what happened, to which table/row, and (for Update) the
// before/after values needed to reverse it.
type JournalEntry struct {
	Kind  EntryKind
	Table string
	RowID value.RowID
	Old   value.Row // Update, Delete
	New   value.Row // Insert, Update
}

// Modification pairs a row's state before and after one change, with a
// nil pointer on whichever side does not apply — used
// to feed the incremental dataflow layer a uniform (old, new) stream.
type Modification struct {
	Old *value.Row
	New *value.Row
}

// TableDiff accumulates the net effect of a transaction's changes to
// one table: rows added since the diff began, rows modified (original
// old value preserved across repeated edits to the same row), and rows
// deleted. Add-then-delete cancels to nothing; add-then-modify
// collapses to a single add of the latest value; modify-then-delete
// collapses to a delete of the diff's original old value.
type TableDiff struct {
	TableName string
	added     map[value.RowID]value.Row
	modified  map[value.RowID][2]value.Row // [old, new]
	deleted   map[value.RowID]value.Row
}

// NewTableDiff returns an empty diff for table.
func NewTableDiff(table string) *TableDiff {
	return &TableDiff{
		TableName: table,
		added:     make(map[value.RowID]value.Row),
		modified:  make(map[value.RowID][2]value.Row),
		deleted:   make(map[value.RowID]value.Row),
	}
}

// Add records an insertion. A row previously recorded as deleted in
// this diff is reinterpreted as a modification from that deleted value.
func (d *TableDiff) Add(row value.Row) {
	id := row.ID
	if oldRow, ok := d.deleted[id]; ok {
		delete(d.deleted, id)
		d.modified[id] = [2]value.Row{oldRow, row}
		return
	}
	d.added[id] = row
}

// Modify records an update. If the row was added earlier in this diff,
// the add is simply replaced with the new value; if it was already
// modified, the diff's original "old" is preserved so that the net
// effect spans the whole transaction, not just the latest edit.
func (d *TableDiff) Modify(old, newRow value.Row) {
	id := old.ID
	if _, ok := d.added[id]; ok {
		d.added[id] = newRow
		return
	}
	if prior, ok := d.modified[id]; ok {
		d.modified[id] = [2]value.Row{prior[0], newRow}
		return
	}
	d.modified[id] = [2]value.Row{old, newRow}
}

// Delete records a deletion. A row added earlier in this diff cancels
// out entirely; a row modified earlier collapses to a delete of the
// diff's original old value.
func (d *TableDiff) Delete(row value.Row) {
	id := row.ID
	if _, ok := d.added[id]; ok {
		delete(d.added, id)
		return
	}
	if prior, ok := d.modified[id]; ok {
		delete(d.modified, id)
		d.deleted[id] = prior[0]
		return
	}
	d.deleted[id] = row
}

// Added returns the net-added rows.
func (d *TableDiff) Added() map[value.RowID]value.Row { return d.added }

// Modified returns the net-modified rows as id -> [old, new].
func (d *TableDiff) Modified() map[value.RowID][2]value.Row { return d.modified }

// Deleted returns the net-deleted rows.
func (d *TableDiff) Deleted() map[value.RowID]value.Row { return d.deleted }

// IsEmpty reports whether the diff records no net change.
func (d *TableDiff) IsEmpty() bool {
	return len(d.added) == 0 && len(d.modified) == 0 && len(d.deleted) == 0
}

// Reverse returns the diff that would undo d: adds become deletes,
// deletes become adds, and modifications swap old/new.
func (d *TableDiff) Reverse() *TableDiff {
	rev := NewTableDiff(d.TableName)
	for id, row := range d.added {
		rev.deleted[id] = row
	}
	for id, pair := range d.modified {
		rev.modified[id] = [2]value.Row{pair[1], pair[0]}
	}
	for id, row := range d.deleted {
		rev.added[id] = row
	}
	return rev
}

// AsModifications flattens the diff into a uniform (old, new) stream
// for the incremental dataflow layer: an add has a nil old, a delete
// has a nil new, a modify has both.
func (d *TableDiff) AsModifications() []Modification {
	mods := make([]Modification, 0, len(d.added)+len(d.modified)+len(d.deleted))
	for _, row := range d.added {
		r := row
		mods = append(mods, Modification{New: &r})
	}
	for _, pair := range d.modified {
		o, n := pair[0], pair[1]
		mods = append(mods, Modification{Old: &o, New: &n})
	}
	for _, row := range d.deleted {
		r := row
		mods = append(mods, Modification{Old: &r})
	}
	return mods
}

// ChangedRowIDs returns every row id touched by this diff, the set
// handed to the view registry on commit.
func (d *TableDiff) ChangedRowIDs() []value.RowID {
	ids := make(map[value.RowID]struct{}, len(d.added)+len(d.modified)+len(d.deleted))
	for id := range d.added {
		ids[id] = struct{}{}
	}
	for id := range d.modified {
		ids[id] = struct{}{}
	}
	for id := range d.deleted {
		ids[id] = struct{}{}
	}
	return sortedRowIDs(ids)
}

// Journal records every mutation performed within one transaction, both
// as an ordered entry log (for rollback and audit) and as a per-table
// net diff (for the view registry and IVM feed).
type Journal struct {
	tableDiffs map[string]*TableDiff
	entries    []JournalEntry
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{tableDiffs: make(map[string]*TableDiff)}
}

func (j *Journal) diffFor(table string) *TableDiff {
	d, ok := j.tableDiffs[table]
	if !ok {
		d = NewTableDiff(table)
		j.tableDiffs[table] = d
	}
	return d
}

// RecordInsert appends an Insert entry and folds it into table's diff.
func (j *Journal) RecordInsert(table string, row value.Row) {
	j.diffFor(table).Add(row)
	j.entries = append(j.entries, JournalEntry{Kind: EntryInsert, Table: table, RowID: row.ID, New: row})
}

// RecordUpdate appends an Update entry and folds it into table's diff.
func (j *Journal) RecordUpdate(table string, old, new value.Row) {
	j.diffFor(table).Modify(old, new)
	j.entries = append(j.entries, JournalEntry{Kind: EntryUpdate, Table: table, RowID: old.ID, Old: old, New: new})
}

// RecordDelete appends a Delete entry and folds it into table's diff.
func (j *Journal) RecordDelete(table string, row value.Row) {
	j.diffFor(table).Delete(row)
	j.entries = append(j.entries, JournalEntry{Kind: EntryDelete, Table: table, RowID: row.ID, Old: row})
}

// Entries returns the ordered log of every mutation recorded.
func (j *Journal) Entries() []JournalEntry { return j.entries }

// TableDiff returns the net diff recorded for table, if any.
func (j *Journal) TableDiff(table string) (*TableDiff, bool) {
	d, ok := j.tableDiffs[table]
	return d, ok
}

// AllDiffs returns every table's net diff.
func (j *Journal) AllDiffs() map[string]*TableDiff { return j.tableDiffs }

// IsEmpty reports whether no entries have been recorded.
func (j *Journal) IsEmpty() bool { return len(j.entries) == 0 }

// Commit finalizes the journal, returning its ordered entries for the
// caller to build the view registry's changed-id notification from.
// Changes are already live in the store; this only clears bookkeeping.
func (j *Journal) Commit() []JournalEntry {
	entries := j.entries
	j.entries = nil
	j.tableDiffs = make(map[string]*TableDiff)
	return entries
}

// Rollback undoes every recorded entry against cache, in reverse order:
// inserts are deleted, deletes are reinserted, and updates are restored
// to their old values — but stored with version = new.Version+1 so that
// a downstream dataflow still observes a version change and
// re-evaluates rather than treating the restore as a no-op.
func (j *Journal) Rollback(cache *TableCache) {
	for i := len(j.entries) - 1; i >= 0; i-- {
		entry := j.entries[i]
		store, ok := cache.GetTableMut(entry.Table)
		if !ok {
			continue
		}
		switch entry.Kind {
		case EntryInsert:
			_, _ = store.Delete(entry.RowID)
		case EntryUpdate:
			_ = store.RestoreForRollback(entry.RowID, entry.Old, entry.New.Version+1)
		case EntryDelete:
			_, _ = store.Insert(entry.Old)
		}
	}
	j.entries = nil
	j.tableDiffs = make(map[string]*TableDiff)
}

// Clear discards the journal without applying any of its entries.
func (j *Journal) Clear() {
	j.entries = nil
	j.tableDiffs = make(map[string]*TableDiff)
}
