package optimizer

import "veloxdb/query"

// PredicatePushdown moves a Filter as close to its source table(s) as
// possible: through Sort and Project unconditionally (neither changes
// which rows satisfy a predicate that only renames or reorders), and
// through Join according to the join's outer-null semantics — a filter
// referencing only one side of an inner join can run before the join
// at all, but a filter touching the nullable side of an outer join
// must stay above it or it would wrongly discard NULL-extended rows.
// OuterJoinSimplification runs earlier in StandardPipeline, so a join
// it already turned into an inner join is pushed through here as one.
type PredicatePushdown struct{}

func (PredicatePushdown) Name() string { return "PredicatePushdown" }

func (p PredicatePushdown) Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
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
	return p.pushInto(out.Predicate, out.Input)
}

// pushInto attempts to move pred below target, recursing as long as
// target is a Sort, Project, or a Join side pred is confined to.
func (p PredicatePushdown) pushInto(pred query.Expr, target *query.LogicalPlan) *query.LogicalPlan {
	if target == nil {
		return query.Filter(target, pred)
	}

	switch target.Kind {
	case query.LogSort, query.LogProject:
		pushed := p.pushInto(pred, target.Input)
		t := target.Clone()
		t.Input = pushed
		return t

	case query.LogJoin:
		tables := query.Tables(pred)
		onlyLeft := subsetOf(tables, planTables(target.Left))
		onlyRight := subsetOf(tables, planTables(target.Right))

		switch target.JoinKind {
		case query.InnerJoin, query.CrossJoin:
			if onlyLeft {
				t := target.Clone()
				t.Left = p.pushInto(pred, target.Left)
				return t
			}
			if onlyRight {
				t := target.Clone()
				t.Right = p.pushInto(pred, target.Right)
				return t
			}
		case query.LeftOuterJoin:
			// Safe to push to the preserved (left) side only; the
			// right side may still produce NULL-extended rows a
			// pushed-down filter there would wrongly suppress.
			if onlyLeft {
				t := target.Clone()
				t.Left = p.pushInto(pred, target.Left)
				return t
			}
		case query.RightOuterJoin:
			if onlyRight {
				t := target.Clone()
				t.Right = p.pushInto(pred, target.Right)
				return t
			}
		}
	}

	return query.Filter(target, pred)
}

func subsetOf(small map[string]struct{}, big map[string]bool) bool {
	if len(small) == 0 {
		return false
	}
	for t := range small {
		if !big[t] {
			return false
		}
	}
	return true
}
