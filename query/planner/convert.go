package planner

import "veloxdb/query"

// FromLogical converts an already-optimized logical plan into a
// physical plan by choosing one join algorithm per Join node and
// carrying every other node across unchanged in shape. Scan variants
// translate one-to-one since IndexSelection already picked the access
// method at the logical level; only the join algorithm choice is a
// genuinely physical decision.
func FromLogical(plan *query.LogicalPlan) *PhysicalPlan {
	if plan == nil {
		return nil
	}
	switch plan.Kind {
	case query.LogScan:
		return TableScan(plan.Table)
	case query.LogIndexScan:
		return &PhysicalPlan{
			Kind: PhysIndexScan, Table: plan.Table, Index: plan.Index,
			RangeStart: plan.RangeStart, RangeEnd: plan.RangeEnd,
			HasStart: plan.HasStart, HasEnd: plan.HasEnd,
			IncludeStart: plan.IncludeStart, IncludeEnd: plan.IncludeEnd,
		}
	case query.LogIndexGet:
		return IndexGet(plan.Table, plan.Index, plan.Key)
	case query.LogIndexInGet:
		return IndexInGet(plan.Table, plan.Index, plan.Keys)
	case query.LogGinIndexScan:
		return GinScan(plan.Table, plan.Index, plan.Column, "", false, plan.QueryType)
	case query.LogGinIndexScanMulti:
		pairs := make([]GinKV, 0, len(plan.Pairs))
		for _, pr := range plan.Pairs {
			if s, ok := pr.Value.AsString(); ok {
				pairs = append(pairs, GinKV{Key: pr.Path, Value: s})
			}
		}
		return GinScanMulti(plan.Table, plan.Index, pairs)
	case query.LogFilter:
		return Filter(FromLogical(plan.Input), plan.Predicate)
	case query.LogProject:
		return Project(FromLogical(plan.Input), plan.Columns)
	case query.LogJoin:
		return chooseJoinAlgorithm(plan)
	case query.LogCrossProduct:
		return CrossProductPlan(FromLogical(plan.Left), FromLogical(plan.Right))
	case query.LogAggregate:
		return HashAggregate(FromLogical(plan.Input), plan.GroupBy, plan.Aggregates)
	case query.LogSort:
		return Sort(FromLogical(plan.Input), plan.OrderBy)
	case query.LogLimit:
		return LimitPlan(FromLogical(plan.Input), plan.Limit, plan.Offset)
	case query.LogEmpty:
		return EmptyPlan()
	default:
		return EmptyPlan()
	}
}

// chooseJoinAlgorithm picks an index nested-loop join for an equi-join
// where either side is an IndexGet, HashJoin for any other equi-join
// (the common, cheap case), SortMergeJoin for a range join between two
// already index-ordered scans, and falls back to NestedLoopJoin
// otherwise. No cost-based tie-break is applied, since no row-count
// estimate is threaded through this conversion step.
func chooseJoinAlgorithm(plan *query.LogicalPlan) *PhysicalPlan {
	left := FromLogical(plan.Left)
	right := FromLogical(plan.Right)
	cond := plan.Condition

	switch {
	case cond.IsEquiJoin():
		if left.Kind == PhysIndexGet || right.Kind == PhysIndexGet {
			return indexNestedLoop(left, right, cond, plan.JoinKind)
		}
		return HashJoin(left, right, cond, plan.JoinKind)
	case cond.IsRangeJoin() && left.Kind == PhysIndexScan && right.Kind == PhysIndexScan:
		return SortMergeJoin(left, right, cond, plan.JoinKind)
	default:
		return NestedLoopJoin(left, right, cond, plan.JoinKind)
	}
}

func indexNestedLoop(left, right *PhysicalPlan, cond query.Expr, kind query.JoinType) *PhysicalPlan {
	outer, inner := left, right
	if inner.Kind != PhysIndexGet {
		outer, inner = right, left
	}
	return &PhysicalPlan{
		Kind: PhysIndexNestedLoopJoin, Outer: outer, Condition: cond, JoinKind: kind,
		Algorithm: JoinIndexNestedLoop, InnerTable: inner.Table, InnerIndex: inner.Index,
	}
}
