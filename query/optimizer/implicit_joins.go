package optimizer

import "veloxdb/query"

// ImplicitJoinsPass recognizes a Filter directly above a CrossProduct
// whose predicate is an equi- or range-join condition referencing
// exactly the cross product's two sides, and rewrites the pair into a
// single inner Join node. This is how a plan built from a naive
// `FROM a, b WHERE a.x = b.y` translation becomes executable as a hash
// or merge join instead of a full cross product plus a row-at-a-time
// filter.
type ImplicitJoinsPass struct{}

func (ImplicitJoinsPass) Name() string { return "ImplicitJoinsPass" }

func (p ImplicitJoinsPass) Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
	if plan == nil {
		return nil
	}
	out := plan.Clone()
	out.Input = p.Optimize(plan.Input)
	out.Left = p.Optimize(plan.Left)
	out.Right = p.Optimize(plan.Right)

	if out.Kind != query.LogFilter || out.Input == nil || out.Input.Kind != query.LogCrossProduct {
		return out
	}

	cp := out.Input
	conjuncts := splitConjuncts(out.Predicate)

	var joinCond *query.Expr
	var remaining []query.Expr
	for i := range conjuncts {
		c := conjuncts[i]
		if joinCond == nil && (c.IsEquiJoin() || c.IsRangeJoin()) && spansBothSides(c, cp) {
			joinCond = &c
			continue
		}
		remaining = append(remaining, c)
	}
	if joinCond == nil {
		return out
	}

	joined := query.InnerJoinOn(cp.Left, cp.Right, *joinCond)
	node := joined
	for _, c := range remaining {
		node = query.Filter(node, c)
	}
	return node
}

// spansBothSides reports whether cond's two column references name one
// table from each side of cp, the shape a genuine join predicate (as
// opposed to a single-table filter that merely survived AND-splitting
// next to the cross product) must have.
func spansBothSides(cond query.Expr, cp *query.LogicalPlan) bool {
	leftTables := planTables(cp.Left)
	rightTables := planTables(cp.Right)

	lt := cond.Left.Column.Table
	rt := cond.Right.Column.Table

	return (leftTables[lt] && rightTables[rt]) || (leftTables[rt] && rightTables[lt])
}

func planTables(plan *query.LogicalPlan) map[string]bool {
	out := make(map[string]bool)
	collectPlanTables(plan, out)
	return out
}

func collectPlanTables(plan *query.LogicalPlan, out map[string]bool) {
	if plan == nil {
		return
	}
	if plan.Table != "" {
		out[plan.Table] = true
	}
	collectPlanTables(plan.Input, out)
	collectPlanTables(plan.Left, out)
	collectPlanTables(plan.Right, out)
}
