package planner

import (
	"veloxdb/query"
	"veloxdb/query/optimizer"
)

// Plan runs the complete pipeline from an unoptimized logical plan to
// an executable physical plan: the context-free rewrite passes, then
// IndexSelection against ctx, then conversion to physical nodes, then
// the physical-plan-level TopNPushdown / OrderByIndexPass /
// LimitSkipByIndexPass passes, in that order — mirroring the reference
// planner's QueryPlanner pipeline.
func Plan(logical *query.LogicalPlan, ctx *query.ExecutionContext) *PhysicalPlan {
	optimized := optimizer.NewPlanner(ctx).Plan(logical)
	phys := FromLogical(optimized)
	phys = TopNPushdown(phys)
	phys = OrderByIndexPass(phys, ctx)
	phys = LimitSkipByIndexPass(phys)
	return phys
}
