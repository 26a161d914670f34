package optimizer

import "veloxdb/query"

// CrossProductPass normalizes a chain of binary CrossProduct nodes
// built left-deep (the shape a naive FROM-clause translation
// produces) into the same left-deep binary tree ImplicitJoinsPass and
// JoinReorder both expect to walk: this pass is a no-op for the
// two-input shape LogicalPlan.CrossProduct already enforces and exists
// so a future multi-way FROM-list builder has a single place to fold
// N tables into N-1 binary nodes.
type CrossProductPass struct{}

func (CrossProductPass) Name() string { return "CrossProductPass" }

func (p CrossProductPass) Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
	if plan == nil {
		return nil
	}
	out := plan.Clone()
	out.Input = p.Optimize(plan.Input)
	out.Left = p.Optimize(plan.Left)
	out.Right = p.Optimize(plan.Right)
	return out
}
