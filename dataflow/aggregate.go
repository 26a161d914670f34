package dataflow

import (
	"veloxdb/query"
	"veloxdb/value"
)

// Aggregate incrementally maintains one HashAggregate's buckets. Each
// bucket keeps every contributing row's aggregate-argument value
// rather than just a running total, so a Delete delta can retract its
// exact contribution and the result can be recomputed from what
// remains — a running sum/count could be decremented directly, but
// Min/Max need the full multiset to answer correctly once the current
// extreme value is retracted, so every aggregate pays the same,
// simpler bookkeeping cost.
type Aggregate struct {
	GroupBy    []query.Expr
	Aggregates []query.AggregateCall

	buckets map[string]*bucketState
	order   []string
}

type bucketState struct {
	groupVals []value.Value
	args      [][]value.Value // args[i] holds every contributing value for Aggregates[i]
	versions  []uint64        // version of every row currently contributing to this bucket
	last      value.Row       // last emitted output row, so a changed bucket can retract it
	hasLast   bool
}

// NewAggregate builds an empty incremental aggregate operator.
func NewAggregate(groupBy []query.Expr, aggregates []query.AggregateCall) *Aggregate {
	return &Aggregate{GroupBy: groupBy, Aggregates: aggregates, buckets: make(map[string]*bucketState)}
}

func (a *Aggregate) Apply(in Batch) Batch {
	touched := make(map[string]bool)
	for _, d := range in {
		groupVals := make([]value.Value, len(a.GroupBy))
		var keyB []byte
		for i, g := range a.GroupBy {
			groupVals[i] = query.Eval(g, d.Row)
			keyB = append(keyB, []byte(groupVals[i].String())...)
			keyB = append(keyB, 0)
		}
		key := string(keyB)
		b, ok := a.buckets[key]
		if !ok {
			b = &bucketState{groupVals: groupVals, args: make([][]value.Value, len(a.Aggregates))}
			a.buckets[key] = b
			a.order = append(a.order, key)
		}
		for i, agg := range a.Aggregates {
			v := query.Eval(agg.Arg, d.Row)
			if d.Kind == Insert {
				b.args[i] = append(b.args[i], v)
			} else {
				b.args[i] = removeValue(b.args[i], v)
			}
		}
		if d.Kind == Insert {
			b.versions = append(b.versions, d.Row.Version)
		} else {
			b.versions = removeVersion(b.versions, d.Row.Version)
		}
		touched[key] = true
	}

	var out Batch
	for key := range touched {
		b := a.buckets[key]
		if b.hasLast {
			out = append(out, Deletion(b.last))
		}
		if bucketEmpty(b) {
			delete(a.buckets, key)
			continue
		}
		row := buildBucketRow(b, a.Aggregates)
		b.last, b.hasLast = row, true
		out = append(out, Insertion(row))
	}
	return out
}

// bucketEmpty reports whether every aggregate argument list in b has
// been fully retracted, meaning no row contributes to this group
// anymore and the bucket itself should disappear rather than emit a
// zero-valued row.
func bucketEmpty(b *bucketState) bool {
	for _, args := range b.args {
		if len(args) > 0 {
			return false
		}
	}
	return true
}

func buildBucketRow(b *bucketState, aggregates []query.AggregateCall) value.Row {
	vals := append([]value.Value(nil), b.groupVals...)
	for i, agg := range aggregates {
		state := newIncrementalAggState(agg.Func)
		for _, v := range b.args[i] {
			state.add(v)
		}
		vals = append(vals, state.result())
	}
	version := value.CombineVersions(b.versions...)
	return value.NewWithVersion(value.DummyRowID, version, vals)
}

func removeValue(vals []value.Value, target value.Value) []value.Value {
	for i, v := range vals {
		if value.Equal(v, target) {
			return append(vals[:i], vals[i+1:]...)
		}
	}
	return vals
}

func removeVersion(versions []uint64, target uint64) []uint64 {
	for i, v := range versions {
		if v == target {
			return append(versions[:i], versions[i+1:]...)
		}
	}
	return versions
}
