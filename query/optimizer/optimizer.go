package optimizer

import "veloxdb/query"

// Optimize runs the full context-free rewrite pipeline over plan,
// returning the optimized logical tree. Use this when no table
// statistics are available yet (e.g. validating a plan shape in a
// test); production queries go through Planner.Plan instead, which
// also runs IndexSelection.
func Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
	return Run(StandardPipeline(), plan)
}

// Planner wires the context-free pipeline together with the
// context-aware IndexSelection pass that needs per-table statistics.
// Physical conversion and the physical-plan-level TopNPushdown/
// OrderByIndexPass/LimitSkipByIndexPass passes live in query/planner,
// which this package cannot import without a cycle (planner imports
// this package); callers chain Planner.Plan's
// output into planner.FromLogical themselves.
type Planner struct {
	Ctx *query.ExecutionContext
}

// NewPlanner builds a Planner backed by ctx.
func NewPlanner(ctx *query.ExecutionContext) *Planner {
	return &Planner{Ctx: ctx}
}

// Plan runs the standard context-free pipeline followed by
// IndexSelection, producing the fully logically-optimized plan ready
// for conversion to a physical plan.
func (p *Planner) Plan(plan *query.LogicalPlan) *query.LogicalPlan {
	plan = Optimize(plan)
	return IndexSelection{Ctx: p.Ctx}.Optimize(plan)
}
