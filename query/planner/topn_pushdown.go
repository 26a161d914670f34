package planner

// TopNPushdown rewrites a Limit directly above a Sort, or above a
// Project directly over a Sort, into a single TopN node (kept under the
// Project in the second case). The executor runs TopN as a stable sort
// of its whole input followed by the limit/offset trim; it does not keep
// a bounded heap. A Limit directly above an IndexScan or IndexGet
// instead has limit+offset folded into that access node. A Limit above
// anything else (a Filter, for instance) is left untouched.
func TopNPushdown(plan *PhysicalPlan) *PhysicalPlan {
	if plan == nil {
		return nil
	}
	plan.Input = TopNPushdown(plan.Input)
	plan.Left = TopNPushdown(plan.Left)
	plan.Right = TopNPushdown(plan.Right)
	plan.Outer = TopNPushdown(plan.Outer)

	if plan.Kind != PhysLimit {
		return plan
	}

	switch {
	case plan.Input != nil && plan.Input.Kind == PhysSort:
		sort := plan.Input
		return TopN(sort.Input, sort.OrderBy, plan.Limit, plan.Offset)

	case plan.Input != nil && plan.Input.Kind == PhysProject && plan.Input.Input != nil && plan.Input.Input.Kind == PhysSort:
		project := plan.Input
		sort := project.Input
		topn := TopN(sort.Input, sort.OrderBy, plan.Limit, plan.Offset)
		return Project(topn, project.Columns)

	case plan.Input != nil && (plan.Input.Kind == PhysIndexScan || plan.Input.Kind == PhysIndexGet):
		// The rows are already delivered in index order: fetch
		// limit+offset of them directly from the access method and
		// let the executor trim the leading `offset` rows, instead of
		// materializing the whole index range only to discard a
		// prefix and a suffix of it.
		scan := *plan.Input
		scan.HasLimit = true
		scan.Limit = plan.Limit + plan.Offset
		return &PhysicalPlan{Kind: PhysLimit, Input: &scan, Limit: plan.Limit, Offset: plan.Offset}

	default:
		return plan
	}
}
