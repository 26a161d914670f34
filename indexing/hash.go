package indexing

import (
	"veloxdb/dberr"
	"veloxdb/value"
)

// HashIndex is an equality-only index: O(1) Get/Add/Remove but no
// useful range support. Its Cost for any non-equality range is the
// total row count, a deliberate signal that tells the optimizer's
// index-selection pass never to pick a hash index for a range or sort
// requirement.
type HashIndex struct {
	table  string
	name   string
	unique bool
	m      map[string][]value.RowID
	// keys preserves one decoded Key per bucket, for Min/Max which a
	// hash table has no intrinsic order to answer; both are O(n) here,
	// matching their rarity of use against a hash index.
	keys map[string]Key
}

// NewHashIndex returns an empty equality index.
func NewHashIndex(table, name string, unique bool) *HashIndex {
	return &HashIndex{
		table:  table,
		name:   name,
		unique: unique,
		m:      make(map[string][]value.RowID),
		keys:   make(map[string]Key),
	}
}

func (idx *HashIndex) Add(key Key, rowID value.RowID) error {
	k := key.Encode()
	if idx.unique {
		if existing, ok := idx.m[k]; ok && len(existing) > 0 {
			return &dberr.DuplicateKeyError{Table: idx.table, Index: idx.name, Key: k}
		}
	}
	idx.m[k] = sortedInsert(idx.m[k], rowID)
	idx.keys[k] = key
	return nil
}

func (idx *HashIndex) Set(key Key, rowID value.RowID) {
	k := key.Encode()
	idx.m[k] = []value.RowID{rowID}
	idx.keys[k] = key
}

func (idx *HashIndex) Get(key Key) []value.RowID {
	return idx.m[key.Encode()]
}

func (idx *HashIndex) Remove(key Key, rowID *value.RowID) {
	k := key.Encode()
	if rowID == nil {
		delete(idx.m, k)
		delete(idx.keys, k)
		return
	}
	postings := sortedRemove(idx.m[k], *rowID)
	if len(postings) == 0 {
		delete(idx.m, k)
		delete(idx.keys, k)
		return
	}
	idx.m[k] = postings
}

func (idx *HashIndex) ContainsKey(key Key) bool {
	_, ok := idx.m[key.Encode()]
	return ok
}

func (idx *HashIndex) Len() int { return len(idx.m) }

func (idx *HashIndex) Clear() {
	idx.m = make(map[string][]value.RowID)
	idx.keys = make(map[string]Key)
}

func (idx *HashIndex) Min() (Key, []value.RowID, bool) { return idx.extreme(true) }
func (idx *HashIndex) Max() (Key, []value.RowID, bool) { return idx.extreme(false) }

func (idx *HashIndex) extreme(wantMin bool) (Key, []value.RowID, bool) {
	var bestK string
	first := true
	for k := range idx.keys {
		if first {
			bestK, first = k, false
			continue
		}
		c := CompareKeys(idx.keys[k], idx.keys[bestK])
		if (wantMin && c < 0) || (!wantMin && c > 0) {
			bestK = k
		}
	}
	if first {
		return nil, nil, false
	}
	return idx.keys[bestK], idx.m[bestK], true
}

// Cost returns the size of the matched bucket for an equality range,
// and the full index size for anything else (see type doc).
func (idx *HashIndex) Cost(r KeyRange) int {
	if r.IsOnly() {
		return len(idx.Get(r.OnlyKey()))
	}
	total := 0
	for _, postings := range idx.m {
		total += len(postings)
	}
	return total
}
