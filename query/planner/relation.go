package planner

import "veloxdb/query"

// RelationEntry is one combined row flowing through the executor: the
// row data itself plus, per contributing table, the row's current
// version (used to detect whether a materialized-view entry is stale
// without re-comparing every column). Every entry owns its Tables and
// Versions slices: a table scan's entry holds its single table name,
// and each of a join's output entries gets freshly allocated slices of
// its own, so no two entries share a backing array. Row is a query.Row
// rather than a concrete value.Row so a join's
// combined row (two source rows concatenated by column offset) can
// satisfy it without copying either side's Values slice.
type RelationEntry struct {
	Row      query.Row
	Tables   []string
	Versions []uint64
	owned    bool
}

// NewEntry builds a single-table entry that owns its table-name slice.
func NewEntry(row query.Row, table string, version uint64) RelationEntry {
	return RelationEntry{Row: row, Tables: []string{table}, Versions: []uint64{version}, owned: true}
}

// Combine merges two entries produced by a join: the row is the
// caller-supplied combined row, and the table/version lists are
// concatenated into newly allocated slices on every call, which the
// result owns.
func Combine(row query.Row, left, right RelationEntry) RelationEntry {
	tables := make([]string, 0, len(left.Tables)+len(right.Tables))
	tables = append(tables, left.Tables...)
	tables = append(tables, right.Tables...)
	versions := make([]uint64, 0, len(left.Versions)+len(right.Versions))
	versions = append(versions, left.Versions...)
	versions = append(versions, right.Versions...)
	return RelationEntry{Row: row, Tables: tables, Versions: versions, owned: true}
}

// CombineOuterNull merges a left entry with a NULL-extended right side
// produced by an outer join that found no match: the right table names
// are still recorded (so Tables() reports every table the query
// touches) but carry version 0, a sentinel meaning "no row from this
// table contributed," since there is no real right-hand version to
// record.
func CombineOuterNull(row query.Row, left RelationEntry, rightTables []string) RelationEntry {
	tables := make([]string, 0, len(left.Tables)+len(rightTables))
	tables = append(tables, left.Tables...)
	tables = append(tables, rightTables...)
	versions := make([]uint64, 0, len(left.Versions)+len(rightTables))
	versions = append(versions, left.Versions...)
	for range rightTables {
		versions = append(versions, 0)
	}
	return RelationEntry{Row: row, Tables: tables, Versions: versions, owned: true}
}

// Relation is an ordered batch of RelationEntry, the unit the executor
// passes between physical plan nodes.
type Relation struct {
	Entries []RelationEntry
}

// NewRelation wraps entries as a Relation.
func NewRelation(entries []RelationEntry) Relation { return Relation{Entries: entries} }

// Rows extracts just the row data, discarding provenance, for a node
// whose output no longer needs it (a final Project, a materialized
// view snapshot).
func (r Relation) Rows() []query.Row {
	out := make([]query.Row, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Row
	}
	return out
}

// VersionSum returns the sum of every contributing table's version for
// entry i, a cheap fingerprint a materialized view compares against its
// last-seen value to decide whether a row changed without re-hashing
// its full contents. A version of 0 (the outer-join NULL sentinel)
// contributes nothing, matching CombineOuterNull's intent that a
// missing side never perturbs the fingerprint.
func (r Relation) VersionSum(i int) uint64 {
	var sum uint64
	for _, v := range r.Entries[i].Versions {
		sum += v
	}
	return sum
}
