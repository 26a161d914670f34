package dataflow

import "veloxdb/query"

// Filter passes through only the deltas whose row satisfies predicate.
// A row's insert/delete status is unaffected by filtering: if it fails
// the predicate it never appears in the output batch at all, matching
// the filter operator's contract that it narrows, never transforms,
// the delta stream.
type Filter struct {
	Predicate query.Expr
}

func (f Filter) Apply(in Batch) Batch {
	out := make(Batch, 0, len(in))
	for _, d := range in {
		if b, ok := query.Eval(f.Predicate, d.Row).AsBool(); ok && b {
			out = append(out, d)
		}
	}
	return out
}
