// Package dataflow implements incremental recomputation: each operator
// consumes a batch of row-level deltas from its input and produces the
// smallest equivalent batch of deltas on its output, instead of
// recomputing its full result from scratch on every change. This is
// the engine a reactive.MaterializedView drives to stay in sync with
// its base tables.
package dataflow

import "veloxdb/value"

// ChangeKind is the sign of one delta: a row entering or leaving a
// dataflow operator's output.
type ChangeKind int

const (
	Insert ChangeKind = iota
	Delete
)

// Delta is one signed row change flowing through the dataflow graph.
type Delta struct {
	Kind ChangeKind
	Row  value.Row
}

// Batch is an ordered sequence of deltas produced by one operator
// invocation. Order matters for Sort/Limit-sensitive consumers, but
// most operators (Filter, Project, Join, Aggregate) are
// order-insensitive and simply fold over it.
type Batch []Delta

// Insertion builds an Insert delta for row.
func Insertion(row value.Row) Delta { return Delta{Kind: Insert, Row: row} }

// Deletion builds a Delete delta for row.
func Deletion(row value.Row) Delta { return Delta{Kind: Delete, Row: row} }

// Negate flips every delta's sign: each Insert becomes a Delete of the
// same row and each Delete an Insert.
func (b Batch) Negate() Batch {
	out := make(Batch, len(b))
	for i, d := range b {
		k := Insert
		if d.Kind == Insert {
			k = Delete
		}
		out[i] = Delta{Kind: k, Row: d.Row}
	}
	return out
}
