package planner

import "veloxdb/query"

// OrderByIndexPass eliminates a Sort node whose single sort key is the
// leading column of an index already covering its input scan, by
// turning the scan into an IndexScan walked in the requested direction
// instead. This only fires for a Sort that TopNPushdown didn't already
// consume into a TopN (a bare ORDER BY with no LIMIT, or a sort key
// that doesn't match the limit's own access method).
func OrderByIndexPass(plan *PhysicalPlan, ctx *query.ExecutionContext) *PhysicalPlan {
	if plan == nil {
		return nil
	}
	plan.Input = OrderByIndexPass(plan.Input, ctx)
	plan.Left = OrderByIndexPass(plan.Left, ctx)
	plan.Right = OrderByIndexPass(plan.Right, ctx)
	plan.Outer = OrderByIndexPass(plan.Outer, ctx)

	if plan.Kind != PhysSort || len(plan.OrderBy) != 1 || plan.Input == nil {
		return plan
	}
	key := plan.OrderBy[0]
	if key.Expr.Kind != query.ExprColumn {
		return plan
	}

	scan := plan.Input
	if scan.Kind != PhysTableScan {
		return plan
	}

	idx, ok := ctx.IndexLeadingOn(scan.Table, key.Expr.Column.Column)
	if !ok {
		return plan
	}

	return &PhysicalPlan{
		Kind: PhysIndexScan, Table: scan.Table, Index: idx.Name,
		IncludeStart: true, IncludeEnd: true,
		Reverse: key.Order == query.Desc,
	}
}
