// Package storage implements the mutable row containers, the journal
// that tracks per-transaction diffs, the transaction state machine, and
// constraint enforcement atop schema.Table definitions.
package storage

import (
	"sort"

	"veloxdb/dberr"
	"veloxdb/indexing"
	"veloxdb/internal/idgen"
	"veloxdb/jsonb"
	"veloxdb/schema"
	"veloxdb/value"
)

// RowStore owns one table's rows and every index declared on it. Rows
// are mutated only through Insert/Update/Delete so that indexes never
// drift out of sync with the row map.
type RowStore struct {
	Schema *schema.Table

	rows    map[value.RowID]value.Row
	order   []value.RowID
	indexes map[string]indexing.Index
	ginIdx  map[string]*indexing.GinIndex // Jsonb columns: GinIndex answers key/key-value, not composite-key range, queries
	pkIndex string

	rowAlloc *idgen.RowAllocator
}

// NewRowStore allocates an empty store for schema, building one runtime
// index per schema.IndexDef. Jsonb-backed GIN indexes are built
// separately from the generic indexing.Index contract: GinIndex answers
// key/key-value existence and containment queries over a document
// column, not composite-key range queries.
func NewRowStore(tbl *schema.Table, rowAlloc *idgen.RowAllocator) *RowStore {
	s := &RowStore{
		Schema:   tbl,
		rows:     make(map[value.RowID]value.Row),
		indexes:  make(map[string]indexing.Index),
		ginIdx:   make(map[string]*indexing.GinIndex),
		rowAlloc: rowAlloc,
	}
	for _, def := range tbl.Indexes {
		if def.Type == schema.IndexGin {
			s.ginIdx[def.Name] = indexing.NewGinIndex()
			continue
		}
		if def.Type == schema.IndexHash {
			s.indexes[def.Name] = indexing.NewHashIndex(tbl.Name, def.Name, def.Unique)
		} else {
			s.indexes[def.Name] = indexing.NewBTreeIndex(tbl.Name, def.Name, def.Unique)
		}
	}
	pk := tbl.PrimaryKey()
	s.pkIndex = pk.Name
	return s
}

// GinIndex returns the GIN index backing def.Name, if one was built.
func (s *RowStore) GinIndex(name string) (*indexing.GinIndex, bool) {
	idx, ok := s.ginIdx[name]
	return idx, ok
}

// ginAdd populates every GIN index declared on tbl from row's Jsonb
// columns.
func (s *RowStore) ginAdd(row value.Row) {
	for _, def := range s.Schema.Indexes {
		gin, ok := s.ginIdx[def.Name]
		if !ok {
			continue
		}
		for _, ic := range def.Columns {
			pos, ok := s.Schema.GetColumnIndex(ic.Name)
			if !ok {
				continue
			}
			raw, ok := row.Get(pos).AsJsonb()
			if !ok {
				continue
			}
			doc, _, err := jsonb.Decode(raw)
			if err != nil {
				continue
			}
			gin.AddKeys(jsonb.TopLevelKeys(doc), row.ID)
			gin.AddKeyValues(jsonb.TopLevelScalarPairs(doc), row.ID)
		}
	}
}

// ginRemove removes row's postings from every GIN index declared on
// tbl.
func (s *RowStore) ginRemove(row value.Row) {
	for _, def := range s.Schema.Indexes {
		gin, ok := s.ginIdx[def.Name]
		if !ok {
			continue
		}
		for _, ic := range def.Columns {
			pos, ok := s.Schema.GetColumnIndex(ic.Name)
			if !ok {
				continue
			}
			raw, ok := row.Get(pos).AsJsonb()
			if !ok {
				continue
			}
			doc, _, err := jsonb.Decode(raw)
			if err != nil {
				continue
			}
			for _, k := range jsonb.TopLevelKeys(doc) {
				gin.RemoveKey(k, row.ID)
			}
			for _, p := range jsonb.TopLevelScalarPairs(doc) {
				gin.RemoveKeyValue(p[0], p[1], row.ID)
			}
		}
	}
}

// indexKey extracts the composite indexing.Key for def from row.
func indexKey(tbl *schema.Table, def schema.IndexDef, row value.Row) indexing.Key {
	key := make(indexing.Key, len(def.Columns))
	for i, col := range def.Columns {
		pos, _ := tbl.GetColumnIndex(col.Name)
		key[i] = row.Get(pos)
	}
	return key
}

// Insert validates not-null and uniqueness, then writes row into the
// row map and every secondary index. On any index failure, every index
// already touched is rolled back before the error is returned.
func (s *RowStore) Insert(row value.Row) (value.RowID, error) {
	if err := s.checkNotNull(row); err != nil {
		return 0, err
	}

	touched := make([]string, 0, len(s.indexes))
	for _, def := range s.Schema.Indexes {
		idx, ok := s.indexes[def.Name]
		if !ok {
			continue
		}
		key := indexKey(s.Schema, def, row)
		if err := idx.Add(key, row.ID); err != nil {
			for _, name := range touched {
				s.indexFor(name).Remove(key, &row.ID)
			}
			return 0, err
		}
		touched = append(touched, def.Name)
	}

	s.rows[row.ID] = row
	s.order = append(s.order, row.ID)
	s.ginAdd(row)
	return row.ID, nil
}

func (s *RowStore) indexFor(name string) indexing.Index { return s.indexes[name] }

// Update preserves oldID, bumps the version to old.Version+1 (wrapping),
// and rewrites every index (old values removed, new values added). On
// failure nothing is changed: uniqueness is validated, treating the old
// row as absent, before any index is mutated.
func (s *RowStore) Update(oldID value.RowID, newRow value.Row) error {
	old, ok := s.rows[oldID]
	if !ok {
		return &dberr.NotFoundError{Table: s.Schema.Name, Key: "row"}
	}
	return s.updateWithVersion(oldID, old, newRow, old.Version+1)
}

// RestoreForRollback rewrites oldID's row to restored's values but
// stamps it with version rather than bumping from the current row,
// mirroring the journal's rollback contract: the restored row must
// still carry a fresh version so dependent views re-evaluate rather
// than treat the restore as a no-op.
func (s *RowStore) RestoreForRollback(oldID value.RowID, restored value.Row, version uint64) error {
	old, ok := s.rows[oldID]
	if !ok {
		return &dberr.NotFoundError{Table: s.Schema.Name, Key: "row"}
	}
	return s.updateWithVersion(oldID, old, restored, version)
}

func (s *RowStore) updateWithVersion(oldID value.RowID, old, newRow value.Row, version uint64) error {
	if err := s.checkNotNull(newRow); err != nil {
		return err
	}

	for _, def := range s.Schema.Indexes {
		if !def.Unique {
			continue
		}
		idx, ok := s.indexes[def.Name]
		if !ok {
			continue
		}
		newKey := indexKey(s.Schema, def, newRow)
		oldKey := indexKey(s.Schema, def, old)
		if indexing.CompareKeys(newKey, oldKey) == 0 {
			continue
		}
		if idx.ContainsKey(newKey) {
			return &dberr.DuplicateKeyError{Table: s.Schema.Name, Index: def.Name, Key: newKey.String()}
		}
	}

	bumped := value.NewWithVersion(oldID, version, newRow.Values)

	for _, def := range s.Schema.Indexes {
		idx, ok := s.indexes[def.Name]
		if !ok {
			continue
		}
		oldKey := indexKey(s.Schema, def, old)
		idx.Remove(oldKey, &oldID)
	}
	for _, def := range s.Schema.Indexes {
		idx, ok := s.indexes[def.Name]
		if !ok {
			continue
		}
		newKey := indexKey(s.Schema, def, bumped)
		_ = idx.Add(newKey, oldID)
	}

	s.rows[oldID] = bumped
	s.ginRemove(old)
	s.ginAdd(bumped)
	return nil
}

// Delete removes the row and every posting that referenced it.
func (s *RowStore) Delete(id value.RowID) (value.Row, error) {
	row, ok := s.rows[id]
	if !ok {
		return value.Row{}, &dberr.NotFoundError{Table: s.Schema.Name, Key: "row"}
	}
	for _, def := range s.Schema.Indexes {
		idx, ok := s.indexes[def.Name]
		if !ok {
			continue
		}
		key := indexKey(s.Schema, def, row)
		idx.Remove(key, &id)
	}
	delete(s.rows, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.ginRemove(row)
	return row, nil
}

// Get returns the row stored under id, if any.
func (s *RowStore) Get(id value.RowID) (value.Row, bool) {
	row, ok := s.rows[id]
	return row, ok
}

// Scan returns every row in insertion (== row-id) order.
func (s *RowStore) Scan() []value.Row {
	out := make([]value.Row, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}

// Len reports the number of rows currently stored.
func (s *RowStore) Len() int { return len(s.rows) }

// GetByPK performs an O(log n) lookup of the row whose primary key
// equals key, used by foreign-key checks.
func (s *RowStore) GetByPK(key value.Value) (value.Row, bool) {
	idx, ok := s.indexes[s.pkIndex]
	if !ok {
		return value.Row{}, false
	}
	ids := idx.Get(indexing.Key{key})
	if len(ids) == 0 {
		return value.Row{}, false
	}
	return s.Get(ids[0])
}

// PKExists reports whether any row carries key as its primary key.
func (s *RowStore) PKExists(key value.Value) bool {
	_, ok := s.GetByPK(key)
	return ok
}

// FindRowIDByPK returns the row id whose primary-key columns match
// row's, used by the constraint checker to resolve "does a conflicting
// row already exist" independent of row's own id.
func (s *RowStore) FindRowIDByPK(row value.Row) (value.RowID, bool) {
	pk := s.Schema.PrimaryKey()
	idx, ok := s.indexes[pk.Name]
	if !ok {
		return 0, false
	}
	key := indexKey(s.Schema, pk, row)
	ids := idx.Get(key)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// Index returns the runtime index backing def.Name, if one was built.
func (s *RowStore) Index(name string) (indexing.Index, bool) {
	idx, ok := s.indexes[name]
	return idx, ok
}

// NextRowID reserves a single row id from the shared allocator.
func (s *RowStore) NextRowID() value.RowID {
	return value.RowID(s.rowAlloc.Next())
}

// ReserveRowIDRange reserves n contiguous row ids for a bulk insert.
func (s *RowStore) ReserveRowIDRange(n int) value.RowID {
	return value.RowID(s.rowAlloc.ReserveRange(uint64(n)))
}

func (s *RowStore) checkNotNull(row value.Row) error {
	for _, name := range s.Schema.Constraints.NotNullableColumns() {
		pos, ok := s.Schema.GetColumnIndex(name)
		if !ok {
			continue
		}
		if row.Get(pos).IsNull() {
			return &dberr.NullConstraintError{Table: s.Schema.Name, Column: name}
		}
	}
	return nil
}

// sortedRowIDs is a small helper the constraint checker and optimizer
// use when they need a deterministic iteration order over a row-id set
// (e.g. a map used as a changed-id accumulator).
func sortedRowIDs(ids map[value.RowID]struct{}) []value.RowID {
	out := make([]value.RowID, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
