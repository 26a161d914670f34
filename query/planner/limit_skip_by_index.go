package planner

// LimitSkipByIndexPass folds a Limit directly above an IndexScan or
// IndexGet into the scan node itself, so the executor stops walking
// the index as soon as it has produced limit+offset rows instead of
// materializing the whole range and discarding the tail. This runs
// after OrderByIndexPass, which is what turns a plain ordered scan
// into an IndexScan the Limit can fold into in the first place.
func LimitSkipByIndexPass(plan *PhysicalPlan) *PhysicalPlan {
	if plan == nil {
		return nil
	}
	plan.Input = LimitSkipByIndexPass(plan.Input)
	plan.Left = LimitSkipByIndexPass(plan.Left)
	plan.Right = LimitSkipByIndexPass(plan.Right)
	plan.Outer = LimitSkipByIndexPass(plan.Outer)

	if plan.Kind != PhysLimit || plan.Input == nil {
		return plan
	}
	switch plan.Input.Kind {
	case PhysIndexScan, PhysIndexGet:
		scan := *plan.Input
		scan.HasLimit = true
		scan.Limit = plan.Limit + plan.Offset
		return &PhysicalPlan{Kind: PhysLimit, Input: &scan, Limit: plan.Limit, Offset: plan.Offset}
	default:
		return plan
	}
}
