package optimizer

import "veloxdb/query"

// NotSimplification pushes NOT inward via De Morgan's laws and
// collapses double negation, so downstream passes (which pattern-match
// on positive comparison/logical shapes) see canonical forms instead
// of having to handle a NOT wrapper at every call site.
type NotSimplification struct{}

func (NotSimplification) Name() string { return "NotSimplification" }

func (p NotSimplification) Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
	return mapExprs(plan, simplifyNot)
}

func simplifyNot(e query.Expr) query.Expr {
	switch e.Kind {
	case query.ExprBinaryOp:
		l := simplifyNot(*e.Left)
		r := simplifyNot(*e.Right)
		e.Left, e.Right = &l, &r
		return e
	case query.ExprUnaryOp:
		inner := simplifyNot(*e.Inner)
		if e.UnOp != query.OpNot {
			e.Inner = &inner
			return e
		}
		return pushNot(inner)
	case query.ExprBetween, query.ExprNotBetween:
		inner := simplifyNot(*e.Inner)
		low := simplifyNot(*e.Low)
		high := simplifyNot(*e.High)
		e.Inner, e.Low, e.High = &inner, &low, &high
		return e
	case query.ExprIn, query.ExprNotIn:
		inner := simplifyNot(*e.Inner)
		e.Inner = &inner
		list := make([]query.Expr, len(e.List))
		for i, item := range e.List {
			list[i] = simplifyNot(item)
		}
		e.List = list
		return e
	case query.ExprLike, query.ExprNotLike, query.ExprMatch, query.ExprNotMatch:
		inner := simplifyNot(*e.Inner)
		e.Inner = &inner
		return e
	default:
		return e
	}
}

// pushNot rewrites NOT(inner) using De Morgan's laws and the negated
// comparison operator, recursing through AND/OR so the NOT lands on
// the leaves; the caller has already normalized inner's own children.
func pushNot(inner query.Expr) query.Expr {
	switch inner.Kind {
	case query.ExprUnaryOp:
		if inner.UnOp == query.OpNot {
			// NOT NOT x -> x
			return *inner.Inner
		}
		if inner.UnOp == query.OpIsNull {
			return query.IsNotNull(*inner.Inner)
		}
		if inner.UnOp == query.OpIsNotNull {
			return query.IsNull(*inner.Inner)
		}
	case query.ExprBinaryOp:
		switch inner.BinOp {
		case query.OpAnd:
			// NOT (a AND b) -> NOT a OR NOT b
			return query.Or(pushNot(*inner.Left), pushNot(*inner.Right))
		case query.OpOr:
			// NOT (a OR b) -> NOT a AND NOT b
			return query.And(pushNot(*inner.Left), pushNot(*inner.Right))
		case query.OpEq:
			return query.Ne(*inner.Left, *inner.Right)
		case query.OpNe:
			return query.Eq(*inner.Left, *inner.Right)
		case query.OpLt:
			return query.Ge(*inner.Left, *inner.Right)
		case query.OpLe:
			return query.Gt(*inner.Left, *inner.Right)
		case query.OpGt:
			return query.Le(*inner.Left, *inner.Right)
		case query.OpGe:
			return query.Lt(*inner.Left, *inner.Right)
		}
	case query.ExprBetween:
		return query.NotBetweenExpr(*inner.Inner, *inner.Low, *inner.High)
	case query.ExprNotBetween:
		return query.BetweenExpr(*inner.Inner, *inner.Low, *inner.High)
	case query.ExprIn:
		e := inner
		e.Kind = query.ExprNotIn
		return e
	case query.ExprNotIn:
		e := inner
		e.Kind = query.ExprIn
		return e
	case query.ExprLike:
		e := inner
		e.Kind = query.ExprNotLike
		return e
	case query.ExprNotLike:
		e := inner
		e.Kind = query.ExprLike
		return e
	case query.ExprMatch:
		e := inner
		e.Kind = query.ExprNotMatch
		return e
	case query.ExprNotMatch:
		e := inner
		e.Kind = query.ExprMatch
		return e
	}
	return query.Not(inner)
}

// mapExprs rewrites every predicate/column/group-by/order-by/condition
// expression reachable from plan via f, recursing through every node
// kind that carries an Expr, and leaves non-expression fields alone.
func mapExprs(plan *query.LogicalPlan, f func(query.Expr) query.Expr) *query.LogicalPlan {
	if plan == nil {
		return nil
	}
	out := plan.Clone()
	out.Input = mapExprs(plan.Input, f)
	out.Left = mapExprs(plan.Left, f)
	out.Right = mapExprs(plan.Right, f)

	switch out.Kind {
	case query.LogFilter:
		out.Predicate = f(out.Predicate)
	case query.LogProject:
		for i, c := range out.Columns {
			out.Columns[i] = f(c)
		}
	case query.LogJoin:
		out.Condition = f(out.Condition)
	case query.LogAggregate:
		for i, c := range out.GroupBy {
			out.GroupBy[i] = f(c)
		}
		for i, a := range out.Aggregates {
			out.Aggregates[i].Arg = f(a.Arg)
		}
	case query.LogSort:
		for i, k := range out.OrderBy {
			out.OrderBy[i].Expr = f(k.Expr)
		}
	}
	return out
}
