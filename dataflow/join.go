package dataflow

import (
	"veloxdb/query"
	"veloxdb/value"
)

// Join incrementally maintains an equi-join between two base tables.
// It keeps its own copy of both sides' current rows (there is no other
// place a dataflow operator can look up "what does the other side
// currently hold" without re-scanning storage on every delta), keyed
// by the join column so a delta on either side only has to probe the
// matching bucket on the other.
type Join struct {
	Condition query.Expr
	Kind      query.JoinType
	LeftWidth int

	leftKeyCol  int
	rightKeyCol int

	leftRows  map[string][]value.Row
	rightRows map[string][]value.Row
}

// NewJoin builds a Join operator for an equi-join condition, deriving
// each side's key column from the condition's two column references.
// condition's column indices are global offsets into a hypothetical
// combined row (the convention combinedRow.Get also assumes), so the
// right side's index is translated back to a local offset into its own
// un-joined row before it is used to probe rightRows/leftRows, which
// always hold raw single-table rows.
func NewJoin(condition query.Expr, kind query.JoinType, leftWidth int) *Join {
	leftRef, rightRef := condition.Left.Column, condition.Right.Column
	if leftRef.Index >= leftWidth {
		leftRef, rightRef = rightRef, leftRef
	}
	return &Join{
		Condition: condition, Kind: kind, LeftWidth: leftWidth,
		leftKeyCol: leftRef.Index, rightKeyCol: rightRef.Index - leftWidth,
		leftRows:  make(map[string][]value.Row),
		rightRows: make(map[string][]value.Row),
	}
}

// ApplyLeft incrementally joins a batch of deltas from the left table,
// maintaining the left-side row cache as it goes.
func (j *Join) ApplyLeft(in Batch) Batch {
	var out Batch
	for _, d := range in {
		key := d.Row.Get(j.leftKeyCol).String()
		switch d.Kind {
		case Insert:
			j.leftRows[key] = append(j.leftRows[key], d.Row)
			for _, r := range j.rightRows[key] {
				out = append(out, Insertion(combineRows(d.Row, r)))
			}
		case Delete:
			j.leftRows[key] = removeRow(j.leftRows[key], d.Row)
			for _, r := range j.rightRows[key] {
				out = append(out, Deletion(combineRows(d.Row, r)))
			}
		}
	}
	return out
}

// ApplyRight incrementally joins a batch of deltas from the right
// table, symmetric to ApplyLeft.
func (j *Join) ApplyRight(in Batch) Batch {
	var out Batch
	for _, d := range in {
		key := d.Row.Get(j.rightKeyCol).String()
		switch d.Kind {
		case Insert:
			j.rightRows[key] = append(j.rightRows[key], d.Row)
			for _, l := range j.leftRows[key] {
				out = append(out, Insertion(combineRows(l, d.Row)))
			}
		case Delete:
			j.rightRows[key] = removeRow(j.rightRows[key], d.Row)
			for _, l := range j.leftRows[key] {
				out = append(out, Deletion(combineRows(l, d.Row)))
			}
		}
	}
	return out
}

func combineRows(left, right value.Row) value.Row {
	vals := make([]value.Value, 0, len(left.Values)+len(right.Values))
	vals = append(vals, left.Values...)
	vals = append(vals, right.Values...)
	version := value.CombineVersions(left.Version, right.Version)
	return value.NewWithVersion(value.DummyRowID, version, vals)
}

func removeRow(rows []value.Row, target value.Row) []value.Row {
	for i, r := range rows {
		if r.ID == target.ID {
			return append(rows[:i], rows[i+1:]...)
		}
	}
	return rows
}
