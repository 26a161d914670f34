package indexing

import "veloxdb/value"

// Index is the contract every secondary (and primary-key) index
// implementation satisfies, regardless of its internal shape.
type Index interface {
	// Add inserts key -> rowID. Unique indexes return *dberr.DuplicateKeyError
	// when key is already present.
	Add(key Key, rowID value.RowID) error
	// Set replaces every posting for key with exactly {rowID}.
	Set(key Key, rowID value.RowID)
	// Get returns every row id posted under key.
	Get(key Key) []value.RowID
	// Remove deletes rowID from key's posting list. If rowID is nil, every
	// posting for key is removed.
	Remove(key Key, rowID *value.RowID)
	// ContainsKey reports whether key has at least one posting.
	ContainsKey(key Key) bool
	// Len returns the number of distinct keys stored.
	Len() int
	// Clear drops every entry.
	Clear()
	// Min returns the smallest key and its postings.
	Min() (Key, []value.RowID, bool)
	// Max returns the largest key and its postings.
	Max() (Key, []value.RowID, bool)
	// Cost estimates the number of rows a query over range would touch,
	// used by the optimizer's index-selection pass to compare candidate
	// access paths.
	Cost(r KeyRange) int
}

// RangeIndex is satisfied by indexes that can answer ordered range
// queries (only the B-tree shape today; Hash reports its full row count
// as the cost of any non-trivial range so the optimizer prefers a scan
// or another index instead).
type RangeIndex interface {
	Index
	// GetRange returns row ids whose key falls in r, honoring reverse
	// iteration order, skip, and an optional result limit.
	GetRange(r KeyRange, reverse bool, skip int, limit *int) []value.RowID
}

// sortedInsert inserts rowID into postings, keeping it sorted and
// deduplicated. Posting lists are kept sorted so GIN's intersect/union
// can merge them in linear time without resorting to bitmap arithmetic.
func sortedInsert(postings []value.RowID, rowID value.RowID) []value.RowID {
	i := 0
	for i < len(postings) && postings[i] < rowID {
		i++
	}
	if i < len(postings) && postings[i] == rowID {
		return postings
	}
	postings = append(postings, 0)
	copy(postings[i+1:], postings[i:])
	postings[i] = rowID
	return postings
}

// sortedRemove deletes rowID from a sorted posting list, if present.
func sortedRemove(postings []value.RowID, rowID value.RowID) []value.RowID {
	for i, id := range postings {
		if id == rowID {
			return append(postings[:i], postings[i+1:]...)
		}
	}
	return postings
}

// intersectSorted returns the sorted intersection of two sorted posting
// lists in O(n+m), preferred over bitmap arithmetic for predictable
// small-list behavior.
func intersectSorted(a, b []value.RowID) []value.RowID {
	out := make([]value.RowID, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// unionSorted returns the sorted union of two sorted posting lists in
// O(n+m).
func unionSorted(a, b []value.RowID) []value.RowID {
	out := make([]value.RowID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
