package query

import "veloxdb/value"

// JoinType enumerates the join semantics a LogicalPlan.Join node may
// carry (and, once chosen, a PhysicalPlan join node).
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

// LogicalKind discriminates the variant a LogicalPlan node holds.
type LogicalKind int

const (
	LogScan LogicalKind = iota
	LogIndexScan
	LogIndexGet
	LogIndexInGet
	LogGinIndexScan
	LogGinIndexScanMulti
	LogFilter
	LogProject
	LogJoin
	LogAggregate
	LogSort
	LogLimit
	LogCrossProduct
	LogUnion
	LogEmpty
)

// LogicalPlan is one node of the logical query algebra: table access
// and the relational operators built atop it, before an access method
// or join algorithm has been chosen.
type LogicalPlan struct {
	Kind LogicalKind

	Table string // Scan/IndexScan/IndexGet/IndexInGet/GinIndexScan*

	Index                     string
	RangeStart, RangeEnd      value.Value
	HasStart, HasEnd          bool
	IncludeStart, IncludeEnd  bool
	Key                       value.Value
	Keys                      []value.Value
	Column                    string
	ColumnIndex               int
	Path                      string
	GinValue                  value.Value
	HasGinValue               bool
	QueryType                 string // "eq" | "contains" | "exists"
	Pairs                     []GinPair

	Input *LogicalPlan
	Left  *LogicalPlan
	Right *LogicalPlan

	Predicate Expr
	Columns   []Expr

	Condition Expr
	JoinKind  JoinType

	GroupBy    []Expr
	Aggregates []AggregateCall

	OrderBy []SortKey

	Limit, Offset    int
	HasLimit         bool

	UnionAll bool
}

// GinPair is one (JSON path, literal value) predicate folded into a
// GinIndexScanMulti node by IndexSelection.
type GinPair struct {
	Path  string
	Value value.Value
}

// AggregateCall pairs an aggregate function with the expression it
// aggregates over.
type AggregateCall struct {
	Func AggregateFunc
	Arg  Expr
}

// SortKey pairs a sort expression with its direction.
type SortKey struct {
	Expr  Expr
	Order SortOrder
}

// Scan builds a full table scan over table.
func Scan(table string) *LogicalPlan { return &LogicalPlan{Kind: LogScan, Table: table} }

// Filter builds input filtered by predicate.
func Filter(input *LogicalPlan, predicate Expr) *LogicalPlan {
	return &LogicalPlan{Kind: LogFilter, Input: input, Predicate: predicate}
}

// Project builds input projected onto columns.
func Project(input *LogicalPlan, columns []Expr) *LogicalPlan {
	return &LogicalPlan{Kind: LogProject, Input: input, Columns: columns}
}

// Join builds left JOIN right ON condition with the given semantics.
func Join(left, right *LogicalPlan, condition Expr, kind JoinType) *LogicalPlan {
	return &LogicalPlan{Kind: LogJoin, Left: left, Right: right, Condition: condition, JoinKind: kind}
}

// InnerJoinOn is a convenience constructor for the common inner-join case.
func InnerJoinOn(left, right *LogicalPlan, condition Expr) *LogicalPlan {
	return Join(left, right, condition, InnerJoin)
}

// LeftJoinOn is a convenience constructor for the common left-outer-join case.
func LeftJoinOn(left, right *LogicalPlan, condition Expr) *LogicalPlan {
	return Join(left, right, condition, LeftOuterJoin)
}

// CrossProduct builds the unconditional cross product of left and right.
func CrossProduct(left, right *LogicalPlan) *LogicalPlan {
	return &LogicalPlan{Kind: LogCrossProduct, Left: left, Right: right}
}

// Aggregate builds a group-by/aggregate node over input.
func Aggregate(input *LogicalPlan, groupBy []Expr, aggregates []AggregateCall) *LogicalPlan {
	return &LogicalPlan{Kind: LogAggregate, Input: input, GroupBy: groupBy, Aggregates: aggregates}
}

// Sort builds an order-by node over input.
func Sort(input *LogicalPlan, orderBy []SortKey) *LogicalPlan {
	return &LogicalPlan{Kind: LogSort, Input: input, OrderBy: orderBy}
}

// Limit builds a limit/offset node over input.
func Limit(input *LogicalPlan, limit, offset int) *LogicalPlan {
	return &LogicalPlan{Kind: LogLimit, Input: input, Limit: limit, Offset: offset, HasLimit: true}
}

// Union builds the union of left and right, deduplicating rows unless
// all is set.
func Union(left, right *LogicalPlan, all bool) *LogicalPlan {
	return &LogicalPlan{Kind: LogUnion, Left: left, Right: right, UnionAll: all}
}

// Empty builds a plan that always produces zero rows.
func Empty() *LogicalPlan { return &LogicalPlan{Kind: LogEmpty} }

// Clone performs a deep copy of the plan tree so optimizer passes never
// mutate a shared plan in place.
func (p *LogicalPlan) Clone() *LogicalPlan {
	if p == nil {
		return nil
	}
	c := *p
	c.Input = p.Input.Clone()
	c.Left = p.Left.Clone()
	c.Right = p.Right.Clone()
	c.Columns = append([]Expr(nil), p.Columns...)
	c.GroupBy = append([]Expr(nil), p.GroupBy...)
	c.Aggregates = append([]AggregateCall(nil), p.Aggregates...)
	c.OrderBy = append([]SortKey(nil), p.OrderBy...)
	c.Keys = append([]value.Value(nil), p.Keys...)
	c.Pairs = append([]GinPair(nil), p.Pairs...)
	return &c
}
