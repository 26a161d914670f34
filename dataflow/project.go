package dataflow

import (
	"veloxdb/query"
	"veloxdb/value"
)

// Project rewrites each delta's row to the evaluated Columns,
// preserving the delta's insert/delete sign — a deleted source row
// becomes a deleted projected row, letting a downstream Aggregate
// retract exactly the contribution the original row made.
type Project struct {
	Columns []query.Expr
}

func (p Project) Apply(in Batch) Batch {
	out := make(Batch, len(in))
	for i, d := range in {
		vals := make([]value.Value, len(p.Columns))
		for j, c := range p.Columns {
			vals[j] = query.Eval(c, d.Row)
		}
		out[i] = Delta{Kind: d.Kind, Row: value.NewWithVersion(d.Row.ID, d.Row.Version, vals)}
	}
	return out
}
