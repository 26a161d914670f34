// Package optimizer rewrites a logical plan tree into an equivalent,
// cheaper-to-execute one through a fixed pipeline of independent
// passes, each grounded on one rewrite rule from the reference
// planner's optimizer crate.
package optimizer

import "veloxdb/query"

// Pass rewrites a logical plan into an equivalent one. Passes never
// mutate the plan they're given in place — they return a new tree
// built with query.LogicalPlan.Clone plus constructors, so a pass that
// turns out not to apply can simply hand back its input untouched.
type Pass interface {
	Optimize(plan *query.LogicalPlan) *query.LogicalPlan
	Name() string
}

// StandardPipeline is the fixed, context-free sequence of rewrite
// passes run before any index or table-statistics information is
// available. IndexSelection and the two limit/order passes below it
// need an ExecutionContext and run separately, after this pipeline.
func StandardPipeline() []Pass {
	return []Pass{
		NotSimplification{},
		AndPredicatePass{},
		CrossProductPass{},
		ImplicitJoinsPass{},
		OuterJoinSimplification{},
		PredicatePushdown{},
		JoinReorder{},
	}
}

// Run applies each pass in order, feeding each pass's output to the next.
func Run(passes []Pass, plan *query.LogicalPlan) *query.LogicalPlan {
	for _, p := range passes {
		plan = p.Optimize(plan)
	}
	return plan
}
