package optimizer

import "veloxdb/query"

// JoinReorder swaps an inner join's sides so the more heavily filtered
// side — the one more likely to produce fewer rows — ends up on the
// left, which the executor's join loop iterates as its outer side. This
// runs before table statistics are available, so it works off plan
// shape alone: a side wrapped in one or more Filter nodes is assumed
// more selective than a bare Scan. IndexSelection later refines the
// access method per side; this pass only orders them.
type JoinReorder struct{}

func (JoinReorder) Name() string { return "JoinReorder" }

func (p JoinReorder) Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
	if plan == nil {
		return nil
	}
	out := plan.Clone()
	out.Input = p.Optimize(plan.Input)
	out.Left = p.Optimize(plan.Left)
	out.Right = p.Optimize(plan.Right)

	if out.Kind != query.LogJoin || out.JoinKind != query.InnerJoin {
		return out
	}

	if filterDepth(out.Right) > filterDepth(out.Left) {
		left, right := out.Left, out.Right
		out.Left, out.Right = right, left
		out.Condition = swapSides(out.Condition)
	}
	return out
}

func filterDepth(plan *query.LogicalPlan) int {
	depth := 0
	for plan != nil && plan.Kind == query.LogFilter {
		depth++
		plan = plan.Input
	}
	return depth
}

// swapSides exchanges Left/Right in an equi/range join condition's two
// column references, since the join's physical sides have just been
// swapped and the condition's shape (left.col op right.col) must track
// which plan is now on which side.
func swapSides(cond query.Expr) query.Expr {
	if cond.Kind != query.ExprBinaryOp {
		return cond
	}
	l, r := *cond.Left, *cond.Right
	cond.Left, cond.Right = &r, &l
	switch cond.BinOp {
	case query.OpLt:
		cond.BinOp = query.OpGt
	case query.OpLe:
		cond.BinOp = query.OpGe
	case query.OpGt:
		cond.BinOp = query.OpLt
	case query.OpGe:
		cond.BinOp = query.OpLe
	}
	return cond
}
