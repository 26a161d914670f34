package indexing

import "veloxdb/value"

// keyValuePair is the composite map key for GinIndex's containment
// index: a Jsonb path key paired with the scalar value found there.
type keyValuePair struct {
	key   string
	value string
}

// GinIndex is a two-map inverted index over Jsonb columns: key_index
// answers "does this row have key K at all" (the `?` operator) and
// key_value_index answers "does this row have K=V" (the `@>` containment
// operator). Posting lists are kept sorted so AND/OR queries across
// multiple keys merge in O(n) instead of bitmap arithmetic, per the
// engine's preference for predictable small-list behavior over roaring
// bitmaps in this one spot.
type GinIndex struct {
	keyIndex      map[string][]value.RowID
	keyValueIndex map[keyValuePair][]value.RowID
}

// NewGinIndex returns an empty GIN index.
func NewGinIndex() *GinIndex {
	return &GinIndex{
		keyIndex:      make(map[string][]value.RowID),
		keyValueIndex: make(map[keyValuePair][]value.RowID),
	}
}

// AddKey records that rowID's document contains key (at any value).
func (g *GinIndex) AddKey(key string, rowID value.RowID) {
	g.keyIndex[key] = sortedInsert(g.keyIndex[key], rowID)
}

// AddKeyValue records that rowID's document contains key=value.
func (g *GinIndex) AddKeyValue(key, val string, rowID value.RowID) {
	pair := keyValuePair{key: key, value: val}
	g.keyValueIndex[pair] = sortedInsert(g.keyValueIndex[pair], rowID)
}

// AddKeys is AddKey for every key found in a single document.
func (g *GinIndex) AddKeys(keys []string, rowID value.RowID) {
	for _, k := range keys {
		g.AddKey(k, rowID)
	}
}

// AddKeyValues is AddKeyValue for every (key, value) pair found in a
// single document.
func (g *GinIndex) AddKeyValues(pairs [][2]string, rowID value.RowID) {
	for _, p := range pairs {
		g.AddKeyValue(p[0], p[1], rowID)
	}
}

// RemoveKey removes rowID's posting for key.
func (g *GinIndex) RemoveKey(key string, rowID value.RowID) {
	postings := sortedRemove(g.keyIndex[key], rowID)
	if len(postings) == 0 {
		delete(g.keyIndex, key)
		return
	}
	g.keyIndex[key] = postings
}

// RemoveKeyValue removes rowID's posting for key=value.
func (g *GinIndex) RemoveKeyValue(key, val string, rowID value.RowID) {
	pair := keyValuePair{key: key, value: val}
	postings := sortedRemove(g.keyValueIndex[pair], rowID)
	if len(postings) == 0 {
		delete(g.keyValueIndex, pair)
		return
	}
	g.keyValueIndex[pair] = postings
}

// ContainsKey reports whether any indexed row has key (the `?` operator).
func (g *GinIndex) ContainsKey(key string) bool {
	_, ok := g.keyIndex[key]
	return ok
}

// GetByKey returns every row id whose document has key.
func (g *GinIndex) GetByKey(key string) []value.RowID {
	return g.keyIndex[key]
}

// GetByKeyValue returns every row id whose document has key=value (the
// `@>` containment operator for one scalar pair).
func (g *GinIndex) GetByKeyValue(key, val string) []value.RowID {
	return g.keyValueIndex[keyValuePair{key: key, value: val}]
}

// GetByKeysAll returns row ids whose document has every key in keys
// (AND semantics). An empty keys list matches nothing, and a key absent
// from the index short-circuits the whole query to nothing.
func (g *GinIndex) GetByKeysAll(keys []string) []value.RowID {
	if len(keys) == 0 {
		return nil
	}
	var result []value.RowID
	first := true
	for _, k := range keys {
		postings, ok := g.keyIndex[k]
		if !ok {
			return nil
		}
		if first {
			result = append([]value.RowID(nil), postings...)
			first = false
			continue
		}
		result = intersectSorted(result, postings)
	}
	return result
}

// GetByKeysAny returns row ids whose document has at least one key in
// keys (OR semantics).
func (g *GinIndex) GetByKeysAny(keys []string) []value.RowID {
	var result []value.RowID
	for _, k := range keys {
		if postings, ok := g.keyIndex[k]; ok {
			result = unionSorted(result, postings)
		}
	}
	return result
}

// GetByKeyValuesAll returns row ids whose document satisfies every
// (key, value) pair (AND semantics for a multi-key containment query).
func (g *GinIndex) GetByKeyValuesAll(pairs [][2]string) []value.RowID {
	if len(pairs) == 0 {
		return nil
	}
	var result []value.RowID
	first := true
	for _, p := range pairs {
		postings, ok := g.keyValueIndex[keyValuePair{key: p[0], value: p[1]}]
		if !ok {
			return nil
		}
		if first {
			result = append([]value.RowID(nil), postings...)
			first = false
			continue
		}
		result = intersectSorted(result, postings)
	}
	return result
}

// KeyCount returns the number of distinct keys in the index.
func (g *GinIndex) KeyCount() int { return len(g.keyIndex) }

// KeyValueCount returns the number of distinct (key, value) pairs.
func (g *GinIndex) KeyValueCount() int { return len(g.keyValueIndex) }

// Clear drops every entry.
func (g *GinIndex) Clear() {
	g.keyIndex = make(map[string][]value.RowID)
	g.keyValueIndex = make(map[keyValuePair][]value.RowID)
}

// IsEmpty reports whether both inverted maps are empty.
func (g *GinIndex) IsEmpty() bool { return len(g.keyIndex) == 0 && len(g.keyValueIndex) == 0 }

// CostKey estimates the size of a `?` lookup.
func (g *GinIndex) CostKey(key string) int { return len(g.keyIndex[key]) }

// CostKeyValue estimates the size of an `@>` lookup.
func (g *GinIndex) CostKeyValue(key, val string) int {
	return len(g.keyValueIndex[keyValuePair{key: key, value: val}])
}
