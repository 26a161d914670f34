package optimizer

import "veloxdb/query"

// OuterJoinSimplification strengthens a LEFT/RIGHT/FULL OUTER JOIN to
// an INNER JOIN when a Filter sitting above it rejects NULL-extended
// rows on the nullable side — the classic "a WHERE clause on the
// outer side turns your outer join into an inner join" rewrite. A
// predicate that would reject a NULL (e.g. an equality, a NOT NULL
// column reference used in a comparison, an IS NOT NULL) on the side
// outer-extension would have filled with NULLs proves no extended row
// could ever survive the filter, so the outer semantics are dead code.
type OuterJoinSimplification struct{}

func (OuterJoinSimplification) Name() string { return "OuterJoinSimplification" }

func (p OuterJoinSimplification) Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
	if plan == nil {
		return nil
	}
	out := plan.Clone()
	out.Input = p.Optimize(plan.Input)
	out.Left = p.Optimize(plan.Left)
	out.Right = p.Optimize(plan.Right)

	if out.Kind != query.LogFilter || out.Input == nil || out.Input.Kind != query.LogJoin {
		return out
	}
	join := out.Input

	switch join.JoinKind {
	case query.LeftOuterJoin:
		if rejectsNullFrom(out.Predicate, planTables(join.Right)) {
			join = join.Clone()
			join.JoinKind = query.InnerJoin
			out.Input = join
		}
	case query.RightOuterJoin:
		if rejectsNullFrom(out.Predicate, planTables(join.Left)) {
			join = join.Clone()
			join.JoinKind = query.InnerJoin
			out.Input = join
		}
	case query.FullOuterJoin:
		rejectsLeft := rejectsNullFrom(out.Predicate, planTables(join.Left))
		rejectsRight := rejectsNullFrom(out.Predicate, planTables(join.Right))
		join = join.Clone()
		switch {
		case rejectsLeft && rejectsRight:
			join.JoinKind = query.InnerJoin
		case rejectsRight:
			join.JoinKind = query.RightOuterJoin
		case rejectsLeft:
			join.JoinKind = query.LeftOuterJoin
		}
		out.Input = join
	}
	return out
}

// rejectsNullFrom reports whether pred is null-rejecting for every
// column it references from the given side: an equality, ordering
// comparison, LIKE/MATCH, or IS NOT NULL test all evaluate to
// false/Null (never true) when the referenced column is NULL, which is
// exactly what an outer-extended non-matching row would supply.
func rejectsNullFrom(pred query.Expr, side map[string]bool) bool {
	switch pred.Kind {
	case query.ExprBinaryOp:
		switch pred.BinOp {
		case query.OpAnd:
			return rejectsNullFrom(*pred.Left, side) || rejectsNullFrom(*pred.Right, side)
		case query.OpOr:
			return rejectsNullFrom(*pred.Left, side) && rejectsNullFrom(*pred.Right, side)
		case query.OpEq, query.OpNe, query.OpLt, query.OpLe, query.OpGt, query.OpGe:
			return referencesSide(*pred.Left, side) || referencesSide(*pred.Right, side)
		}
	case query.ExprUnaryOp:
		if pred.UnOp == query.OpIsNotNull {
			return referencesSide(*pred.Inner, side)
		}
	case query.ExprLike, query.ExprMatch:
		return referencesSide(*pred.Inner, side)
	case query.ExprBetween:
		return referencesSide(*pred.Inner, side)
	case query.ExprIn:
		return referencesSide(*pred.Inner, side)
	}
	return false
}

func referencesSide(e query.Expr, side map[string]bool) bool {
	for t := range query.Tables(e) {
		if side[t] {
			return true
		}
	}
	return false
}
