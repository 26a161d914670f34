// Package planner converts an optimized logical plan into a physical
// plan — one access method and join algorithm chosen per node — and
// executes it eagerly atop storage.RowStore, materializing each node's
// full output as a Relation before its parent runs.
package planner

import (
	"veloxdb/query"
	"veloxdb/value"
)

// JoinAlgorithm selects the physical join implementation.
type JoinAlgorithm int

const (
	JoinHash JoinAlgorithm = iota
	JoinSortMerge
	JoinNestedLoop
	JoinIndexNestedLoop
)

// PhysicalKind discriminates the variant a PhysicalPlan node holds.
type PhysicalKind int

const (
	PhysTableScan PhysicalKind = iota
	PhysIndexScan
	PhysIndexGet
	PhysIndexInGet
	PhysGinIndexScan
	PhysGinIndexScanMulti
	PhysFilter
	PhysProject
	PhysHashJoin
	PhysSortMergeJoin
	PhysNestedLoopJoin
	PhysIndexNestedLoopJoin
	PhysHashAggregate
	PhysSort
	PhysTopN
	PhysLimit
	PhysCrossProduct
	PhysNoOp
	PhysEmpty
)

// PhysicalPlan is one node of the physical plan tree: the same shape
// as LogicalPlan but with an access method and join algorithm already
// selected, ready for the executor to run.
type PhysicalPlan struct {
	Kind PhysicalKind

	Table string

	Index                    string
	RangeStart, RangeEnd     value.Value
	HasStart, HasEnd         bool
	IncludeStart, IncludeEnd bool
	Limit, Offset            int
	HasLimit, HasOffset      bool
	Reverse                  bool

	Key  value.Value
	Keys []value.Value

	GinKey       string
	GinValue     string
	HasGinValue  bool
	GinQueryType string
	GinPairs     []GinKV

	Input *PhysicalPlan
	Left  *PhysicalPlan
	Right *PhysicalPlan
	Outer *PhysicalPlan

	Predicate query.Expr
	Columns   []query.Expr

	Condition   query.Expr
	JoinKind    query.JoinType
	Algorithm   JoinAlgorithm
	InnerTable  string
	InnerIndex  string

	GroupBy    []query.Expr
	Aggregates []query.AggregateCall

	OrderBy []query.SortKey
}

// GinKV is a resolved (key, value-string) pair for a GinIndexScanMulti node.
type GinKV struct {
	Key, Value string
}

func TableScan(table string) *PhysicalPlan { return &PhysicalPlan{Kind: PhysTableScan, Table: table} }

func IndexGet(table, index string, key value.Value) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysIndexGet, Table: table, Index: index, Key: key}
}

func IndexInGet(table, index string, keys []value.Value) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysIndexInGet, Table: table, Index: index, Keys: keys}
}

func IndexScan(table, index string) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysIndexScan, Table: table, Index: index, IncludeStart: true, IncludeEnd: true}
}

func GinScan(table, index, key string, val string, hasVal bool, queryType string) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysGinIndexScan, Table: table, Index: index, GinKey: key, GinValue: val, HasGinValue: hasVal, GinQueryType: queryType}
}

func GinScanMulti(table, index string, pairs []GinKV) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysGinIndexScanMulti, Table: table, Index: index, GinPairs: pairs}
}

func Filter(input *PhysicalPlan, predicate query.Expr) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysFilter, Input: input, Predicate: predicate}
}

func Project(input *PhysicalPlan, columns []query.Expr) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysProject, Input: input, Columns: columns}
}

func HashJoin(left, right *PhysicalPlan, condition query.Expr, kind query.JoinType) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysHashJoin, Left: left, Right: right, Condition: condition, JoinKind: kind, Algorithm: JoinHash}
}

func SortMergeJoin(left, right *PhysicalPlan, condition query.Expr, kind query.JoinType) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysSortMergeJoin, Left: left, Right: right, Condition: condition, JoinKind: kind, Algorithm: JoinSortMerge}
}

func NestedLoopJoin(left, right *PhysicalPlan, condition query.Expr, kind query.JoinType) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysNestedLoopJoin, Left: left, Right: right, Condition: condition, JoinKind: kind, Algorithm: JoinNestedLoop}
}

func HashAggregate(input *PhysicalPlan, groupBy []query.Expr, aggregates []query.AggregateCall) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysHashAggregate, Input: input, GroupBy: groupBy, Aggregates: aggregates}
}

func Sort(input *PhysicalPlan, orderBy []query.SortKey) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysSort, Input: input, OrderBy: orderBy}
}

func TopN(input *PhysicalPlan, orderBy []query.SortKey, limit, offset int) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysTopN, Input: input, OrderBy: orderBy, Limit: limit, Offset: offset}
}

func LimitPlan(input *PhysicalPlan, limit, offset int) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysLimit, Input: input, Limit: limit, Offset: offset}
}

func CrossProductPlan(left, right *PhysicalPlan) *PhysicalPlan {
	return &PhysicalPlan{Kind: PhysCrossProduct, Left: left, Right: right}
}

func EmptyPlan() *PhysicalPlan { return &PhysicalPlan{Kind: PhysEmpty} }

// IsIncrementalizable reports whether dataflow can maintain this node's
// output incrementally under row-level deltas. Sort/Limit/TopN are
// order- and position-dependent and are excluded, matching the
// original's incrementalizability classification.
func (p *PhysicalPlan) IsIncrementalizable() bool {
	switch p.Kind {
	case PhysSort, PhysLimit, PhysTopN:
		return false
	case PhysNoOp:
		return p.Input.IsIncrementalizable()
	default:
		return true
	}
}

// Inputs returns the child plan(s) of this node.
func (p *PhysicalPlan) Inputs() []*PhysicalPlan {
	switch p.Kind {
	case PhysFilter, PhysProject, PhysHashAggregate, PhysSort, PhysTopN, PhysLimit, PhysNoOp:
		return []*PhysicalPlan{p.Input}
	case PhysHashJoin, PhysSortMergeJoin, PhysNestedLoopJoin, PhysCrossProduct:
		return []*PhysicalPlan{p.Left, p.Right}
	case PhysIndexNestedLoopJoin:
		return []*PhysicalPlan{p.Outer}
	default:
		return nil
	}
}
