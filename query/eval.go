package query

import (
	"regexp"
	"strings"

	"veloxdb/value"
)

// Row is the minimal row shape Eval needs: positional value access by
// column offset, matching both value.Row (single-table scans) and the
// wider combined rows a join produces.
type Row interface {
	Get(index int) value.Value
}

// Eval evaluates expr against row, returning Null if a referenced
// column or sub-expression cannot produce a value (mirroring the
// original's "missing column -> false/Null" behavior rather than a
// panic).
func Eval(expr Expr, row Row) value.Value {
	switch expr.Kind {
	case ExprColumn:
		return row.Get(expr.Column.Index)
	case ExprLiteral:
		return expr.Literal
	case ExprBinaryOp:
		return evalBinaryOp(expr, row)
	case ExprUnaryOp:
		return evalUnaryOp(expr, row)
	case ExprBetween:
		v := Eval(*expr.Inner, row)
		low := Eval(*expr.Low, row)
		high := Eval(*expr.High, row)
		return value.Boolean(value.Compare(v, low) >= 0 && value.Compare(v, high) <= 0)
	case ExprNotBetween:
		v := Eval(*expr.Inner, row)
		low := Eval(*expr.Low, row)
		high := Eval(*expr.High, row)
		return value.Boolean(!(value.Compare(v, low) >= 0 && value.Compare(v, high) <= 0))
	case ExprIn:
		return value.Boolean(evalInList(expr, row))
	case ExprNotIn:
		return value.Boolean(!evalInList(expr, row))
	case ExprLike:
		v := Eval(*expr.Inner, row)
		return value.Boolean(matchLike(v, expr.Pattern))
	case ExprNotLike:
		v := Eval(*expr.Inner, row)
		return value.Boolean(!matchLike(v, expr.Pattern))
	case ExprMatch:
		v := Eval(*expr.Inner, row)
		return value.Boolean(matchRegex(v, expr.Pattern))
	case ExprNotMatch:
		v := Eval(*expr.Inner, row)
		return value.Boolean(!matchRegex(v, expr.Pattern))
	case ExprFunction, ExprAggregate:
		// Aggregates are rewritten away by the HashAggregate executor
		// before Eval ever sees them; functions are resolved by the
		// planner (jsonb_contains/jsonb_exists become Gin*Scan nodes).
		return value.Null()
	default:
		return value.Null()
	}
}

func evalBinaryOp(expr Expr, row Row) value.Value {
	switch expr.BinOp {
	case OpAnd:
		l, lok := Eval(*expr.Left, row).AsBool()
		r, rok := Eval(*expr.Right, row).AsBool()
		return value.Boolean(lok && rok && l && r)
	case OpOr:
		l, lok := Eval(*expr.Left, row).AsBool()
		r, rok := Eval(*expr.Right, row).AsBool()
		return value.Boolean((lok && l) || (rok && r))
	}

	l := Eval(*expr.Left, row)
	r := Eval(*expr.Right, row)

	switch expr.BinOp {
	case OpEq:
		return value.Boolean(value.Equal(l, r))
	case OpNe:
		return value.Boolean(!value.Equal(l, r))
	case OpLt:
		return value.Boolean(value.Compare(l, r) < 0)
	case OpLe:
		return value.Boolean(value.Compare(l, r) <= 0)
	case OpGt:
		return value.Boolean(value.Compare(l, r) > 0)
	case OpGe:
		return value.Boolean(value.Compare(l, r) >= 0)
	default:
		return value.Null()
	}
}

func evalUnaryOp(expr Expr, row Row) value.Value {
	switch expr.UnOp {
	case OpNot:
		b, ok := Eval(*expr.Inner, row).AsBool()
		return value.Boolean(ok && !b)
	case OpIsNull:
		return value.Boolean(Eval(*expr.Inner, row).IsNull())
	case OpIsNotNull:
		return value.Boolean(!Eval(*expr.Inner, row).IsNull())
	default:
		return value.Null()
	}
}

func evalInList(expr Expr, row Row) bool {
	v := Eval(*expr.Inner, row)
	for _, item := range expr.List {
		if value.Equal(v, Eval(item, row)) {
			return true
		}
	}
	return false
}

// matchLike implements SQL LIKE with `%` (any run) and `_` (single
// char) wildcards translated to an anchored regexp.
func matchLike(v value.Value, pattern string) bool {
	s, ok := v.AsString()
	if !ok {
		return false
	}
	re := likeToRegexp(pattern)
	return re.MatchString(s)
}

func likeToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return regexp.MustCompile("$^") // matches nothing
	}
	return re
}

func matchRegex(v value.Value, pattern string) bool {
	s, ok := v.AsString()
	if !ok {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// Tables returns the set of table names expr references, used by
// predicate pushdown to decide which side of a join a filter belongs
// on.
func Tables(expr Expr) map[string]struct{} {
	out := make(map[string]struct{})
	collectTables(expr, out)
	return out
}

func collectTables(expr Expr, out map[string]struct{}) {
	switch expr.Kind {
	case ExprColumn:
		out[expr.Column.Table] = struct{}{}
	case ExprBinaryOp:
		collectTables(*expr.Left, out)
		collectTables(*expr.Right, out)
	case ExprUnaryOp:
		collectTables(*expr.Inner, out)
	case ExprFunction:
		for _, a := range expr.Args {
			collectTables(a, out)
		}
	case ExprAggregate:
		if expr.AggArg != nil {
			collectTables(*expr.AggArg, out)
		}
	case ExprBetween, ExprNotBetween:
		collectTables(*expr.Inner, out)
		collectTables(*expr.Low, out)
		collectTables(*expr.High, out)
	case ExprIn, ExprNotIn:
		collectTables(*expr.Inner, out)
		for _, item := range expr.List {
			collectTables(item, out)
		}
	case ExprLike, ExprNotLike, ExprMatch, ExprNotMatch:
		collectTables(*expr.Inner, out)
	}
}
