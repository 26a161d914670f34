package indexing

import (
	"github.com/google/btree"

	"veloxdb/dberr"
	"veloxdb/value"
)

// btreeEntry is one node payload: a composite key and its row-id
// postings, ordered by CompareKeys.
type btreeEntry struct {
	key      Key
	postings []value.RowID
}

// BTreeIndex is an ordered index backed by google/btree, giving
// min/max/range iteration without hand-rolling a balanced tree. It is
// the shape used for primary keys and any secondary index declared
// IndexBTree (schema.IndexBTree).
type BTreeIndex struct {
	table  string
	name   string
	unique bool
	tree   *btree.BTreeG[btreeEntry]
}

// NewBTreeIndex returns an empty ordered index. degree follows the
// teacher's default B-tree fanout of 32, a reasonable node width for
// in-memory key comparisons.
func NewBTreeIndex(table, name string, unique bool) *BTreeIndex {
	less := func(a, b btreeEntry) bool { return CompareKeys(a.key, b.key) < 0 }
	return &BTreeIndex{
		table:  table,
		name:   name,
		unique: unique,
		tree:   btree.NewG(32, less),
	}
}

func (idx *BTreeIndex) Add(key Key, rowID value.RowID) error {
	if existing, ok := idx.tree.Get(btreeEntry{key: key}); ok {
		if idx.unique && len(existing.postings) > 0 {
			return &dberr.DuplicateKeyError{Table: idx.table, Index: idx.name, Key: key.String()}
		}
		existing.postings = sortedInsert(existing.postings, rowID)
		idx.tree.ReplaceOrInsert(existing)
		return nil
	}
	idx.tree.ReplaceOrInsert(btreeEntry{key: key, postings: []value.RowID{rowID}})
	return nil
}

func (idx *BTreeIndex) Set(key Key, rowID value.RowID) {
	idx.tree.ReplaceOrInsert(btreeEntry{key: key, postings: []value.RowID{rowID}})
}

func (idx *BTreeIndex) Get(key Key) []value.RowID {
	if e, ok := idx.tree.Get(btreeEntry{key: key}); ok {
		return e.postings
	}
	return nil
}

func (idx *BTreeIndex) Remove(key Key, rowID *value.RowID) {
	e, ok := idx.tree.Get(btreeEntry{key: key})
	if !ok {
		return
	}
	if rowID == nil {
		idx.tree.Delete(e)
		return
	}
	e.postings = sortedRemove(e.postings, *rowID)
	if len(e.postings) == 0 {
		idx.tree.Delete(e)
		return
	}
	idx.tree.ReplaceOrInsert(e)
}

func (idx *BTreeIndex) ContainsKey(key Key) bool {
	_, ok := idx.tree.Get(btreeEntry{key: key})
	return ok
}

func (idx *BTreeIndex) Len() int { return idx.tree.Len() }

func (idx *BTreeIndex) Clear() { idx.tree.Clear(false) }

func (idx *BTreeIndex) Min() (Key, []value.RowID, bool) {
	e, ok := idx.tree.Min()
	if !ok {
		return nil, nil, false
	}
	return e.key, e.postings, true
}

func (idx *BTreeIndex) Max() (Key, []value.RowID, bool) {
	e, ok := idx.tree.Max()
	if !ok {
		return nil, nil, false
	}
	return e.key, e.postings, true
}

// Cost estimates scan size for the optimizer's index-selection pass: an
// equality lookup costs the size of that one posting list, an unbounded
// range costs the whole index, and a bounded range is estimated by
// walking it (acceptable since this only runs during planning, not
// execution).
func (idx *BTreeIndex) Cost(r KeyRange) int {
	if r.IsOnly() {
		return len(idx.Get(r.OnlyKey()))
	}
	if r.IsAll() {
		return idx.totalPostings()
	}
	total := 0
	idx.walkRange(r, false, func(e btreeEntry) bool {
		total += len(e.postings)
		return true
	})
	return total
}

func (idx *BTreeIndex) totalPostings() int {
	total := 0
	idx.tree.Ascend(func(e btreeEntry) bool {
		total += len(e.postings)
		return true
	})
	return total
}

// GetRange returns postings for every key in r, in ascending or
// descending key order, after skipping skip matched keys and capped at
// limit row ids.
func (idx *BTreeIndex) GetRange(r KeyRange, reverse bool, skip int, limit *int) []value.RowID {
	var out []value.RowID
	skipped := 0
	idx.walkRange(r, reverse, func(e btreeEntry) bool {
		if skipped < skip {
			skipped++
			return true
		}
		for _, id := range e.postings {
			out = append(out, id)
			if limit != nil && len(out) >= *limit {
				return false
			}
		}
		return limit == nil || len(out) < *limit
	})
	return out
}

// walkRange visits every entry overlapping r in key order (or reverse
// key order), stopping early when visit returns false.
func (idx *BTreeIndex) walkRange(r KeyRange, reverse bool, visit func(btreeEntry) bool) {
	iter := func(e btreeEntry) bool {
		if !r.Contains(e.key) {
			return true
		}
		return visit(e)
	}
	if reverse {
		idx.tree.Descend(iter)
		return
	}
	idx.tree.Ascend(iter)
}

