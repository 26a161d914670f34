package dataflow

// Operator consumes a batch of deltas from upstream and emits the
// batch of deltas its own output changed by, given those inputs. Each
// concrete operator keeps whatever running state (row counts, hash
// join build sides, aggregate accumulators) it needs to answer without
// re-scanning its base tables.
type Operator interface {
	Apply(in Batch) Batch
}

// Source is the leaf of a dataflow graph: it has no upstream operator
// and simply forwards whatever deltas the owning RowStore reports for
// its table, unfiltered.
type Source struct{}

func (Source) Apply(in Batch) Batch { return in }

// Chain composes operators left to right, feeding each one's output
// batch into the next's input.
func Chain(ops ...Operator) Operator { return chain(ops) }

type chain []Operator

func (c chain) Apply(in Batch) Batch {
	for _, op := range c {
		in = op.Apply(in)
	}
	return in
}
