package optimizer

import "veloxdb/query"

// AndPredicatePass splits a single Filter whose predicate is a chain of
// ANDs into nested Filter nodes, one conjunct each. Later passes
// (PredicatePushdown in particular) operate on whole Filter nodes, so
// breaking a wide AND into single-conjunct filters lets each conjunct
// be pushed independently instead of blocking on the least-pushable
// term in the chain.
type AndPredicatePass struct{}

func (AndPredicatePass) Name() string { return "AndPredicatePass" }

func (p AndPredicatePass) Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
	if plan == nil {
		return nil
	}
	out := plan.Clone()
	out.Input = p.Optimize(plan.Input)
	out.Left = p.Optimize(plan.Left)
	out.Right = p.Optimize(plan.Right)

	if out.Kind != query.LogFilter {
		return out
	}

	conjuncts := splitConjuncts(out.Predicate)
	if len(conjuncts) <= 1 {
		return out
	}

	// Rebuild as nested Filters, innermost conjunct closest to Input, so
	// a later pushdown pass hits the cheapest-to-discard term first.
	node := out.Input
	for _, c := range conjuncts {
		node = query.Filter(node, c)
	}
	return node
}

func splitConjuncts(e query.Expr) []query.Expr {
	if e.Kind == query.ExprBinaryOp && e.BinOp == query.OpAnd {
		return append(splitConjuncts(*e.Left), splitConjuncts(*e.Right)...)
	}
	return []query.Expr{e}
}
