// Package query defines the expression tree, logical plan operators,
// and execution-context statistics that the optimizer and planner
// packages operate on: a single in-process expression language rather
// than a parsed SQL dialect.
package query

import "veloxdb/value"

// ColumnRef names one column of one table (or join-side alias) and its
// physical offset in that table's row, so evaluation never has to
// re-resolve a name at execution time.
type ColumnRef struct {
	Table  string
	Column string
	Index  int
}

// NormalizedName renders "table.column", the form used for dedup keys
// in predicate pushdown and implicit-join discovery.
func (c ColumnRef) NormalizedName() string {
	return c.Table + "." + c.Column
}

// BinaryOp enumerates the comparison, logical, arithmetic, and
// pattern/set operators an Expr.BinaryOp node may carry.
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLike
	OpIn
	OpBetween
)

// UnaryOp enumerates the single-operand operators an Expr.UnaryOp node
// may carry.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpIsNull
	OpIsNotNull
)

// AggregateFunc enumerates the aggregate functions Expr.Aggregate may
// apply.
type AggregateFunc int

const (
	AggCount AggregateFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
	AggDistinct
	AggStdDev
	AggGeoMean
)

// SortOrder is ascending or descending, used by both ORDER BY plan
// nodes and index scan direction selection.
type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

// ExprKind discriminates the variant an Expr node holds.
type ExprKind int

const (
	ExprColumn ExprKind = iota
	ExprLiteral
	ExprBinaryOp
	ExprUnaryOp
	ExprFunction
	ExprAggregate
	ExprBetween
	ExprNotBetween
	ExprIn
	ExprNotIn
	ExprLike
	ExprNotLike
	ExprMatch
	ExprNotMatch
)

// Expr is a single node of the expression tree used for predicates,
// projections, and sort/group keys. Rather than a Rust-style closed
// enum, each variant's payload lives in its own pointer-or-value field,
// left zero when unused; Kind says which fields are meaningful.
type Expr struct {
	Kind ExprKind

	Column  ColumnRef
	Literal value.Value

	Left  *Expr
	Right *Expr
	BinOp BinaryOp

	UnOp   UnaryOp
	Inner  *Expr
	Negate bool // never set or read: NotBetween/NotIn/NotLike/NotMatch are told apart by Kind

	FuncName string
	Args     []Expr

	AggFunc     AggregateFunc
	AggArg      *Expr
	AggDistinct bool

	Low, High *Expr // Between/NotBetween
	List      []Expr

	Pattern string // Like/NotLike/Match/NotMatch
}

// Col builds a column-reference expression.
func Col(table, column string, index int) Expr {
	return Expr{Kind: ExprColumn, Column: ColumnRef{Table: table, Column: column, Index: index}}
}

// Lit builds a literal expression.
func Lit(v value.Value) Expr { return Expr{Kind: ExprLiteral, Literal: v} }

func binop(op BinaryOp, left, right Expr) Expr {
	return Expr{Kind: ExprBinaryOp, BinOp: op, Left: &left, Right: &right}
}

func Eq(l, r Expr) Expr  { return binop(OpEq, l, r) }
func Ne(l, r Expr) Expr  { return binop(OpNe, l, r) }
func Lt(l, r Expr) Expr  { return binop(OpLt, l, r) }
func Le(l, r Expr) Expr  { return binop(OpLe, l, r) }
func Gt(l, r Expr) Expr  { return binop(OpGt, l, r) }
func Ge(l, r Expr) Expr  { return binop(OpGe, l, r) }
func And(l, r Expr) Expr { return binop(OpAnd, l, r) }
func Or(l, r Expr) Expr  { return binop(OpOr, l, r) }

// Not negates expr.
func Not(expr Expr) Expr { return Expr{Kind: ExprUnaryOp, UnOp: OpNot, Inner: &expr} }

// IsNull tests expr for Null.
func IsNull(expr Expr) Expr { return Expr{Kind: ExprUnaryOp, UnOp: OpIsNull, Inner: &expr} }

// IsNotNull tests expr for non-Null.
func IsNotNull(expr Expr) Expr { return Expr{Kind: ExprUnaryOp, UnOp: OpIsNotNull, Inner: &expr} }

// CountStar builds COUNT(*).
func CountStar() Expr { return Expr{Kind: ExprAggregate, AggFunc: AggCount} }

func agg(fn AggregateFunc, expr Expr) Expr {
	return Expr{Kind: ExprAggregate, AggFunc: fn, AggArg: &expr}
}

func Count(expr Expr) Expr { return agg(AggCount, expr) }
func Sum(expr Expr) Expr   { return agg(AggSum, expr) }
func Avg(expr Expr) Expr   { return agg(AggAvg, expr) }
func Min(expr Expr) Expr   { return agg(AggMin, expr) }
func Max(expr Expr) Expr   { return agg(AggMax, expr) }

// BetweenExpr builds expr BETWEEN low AND high.
func BetweenExpr(expr, low, high Expr) Expr {
	return Expr{Kind: ExprBetween, Inner: &expr, Low: &low, High: &high}
}

// NotBetweenExpr builds expr NOT BETWEEN low AND high.
func NotBetweenExpr(expr, low, high Expr) Expr {
	return Expr{Kind: ExprNotBetween, Inner: &expr, Low: &low, High: &high}
}

// InList builds expr IN (values...).
func InList(expr Expr, values []value.Value) Expr {
	list := make([]Expr, len(values))
	for i, v := range values {
		list[i] = Lit(v)
	}
	return Expr{Kind: ExprIn, Inner: &expr, List: list}
}

// NotInList builds expr NOT IN (values...).
func NotInList(expr Expr, values []value.Value) Expr {
	e := InList(expr, values)
	e.Kind = ExprNotIn
	return e
}

// LikeExpr builds expr LIKE pattern.
func LikeExpr(expr Expr, pattern string) Expr {
	return Expr{Kind: ExprLike, Inner: &expr, Pattern: pattern}
}

// NotLikeExpr builds expr NOT LIKE pattern.
func NotLikeExpr(expr Expr, pattern string) Expr {
	return Expr{Kind: ExprNotLike, Inner: &expr, Pattern: pattern}
}

// MatchExpr builds expr MATCH pattern (regex).
func MatchExpr(expr Expr, pattern string) Expr {
	return Expr{Kind: ExprMatch, Inner: &expr, Pattern: pattern}
}

// NotMatchExpr builds expr NOT MATCH pattern.
func NotMatchExpr(expr Expr, pattern string) Expr {
	return Expr{Kind: ExprNotMatch, Inner: &expr, Pattern: pattern}
}

// JsonbContains builds a `payload @> literal` containment predicate,
// recognized by IndexSelection as a GinIndexScanMulti opportunity.
func JsonbContains(expr Expr, literal value.Value) Expr {
	return Expr{Kind: ExprFunction, FuncName: "jsonb_contains", Args: []Expr{expr, Lit(literal)}}
}

// JsonbExists builds a `payload ? key` existence predicate, recognized
// by IndexSelection as a single-key GinIndexScan opportunity.
func JsonbExists(expr Expr, key string) Expr {
	return Expr{Kind: ExprFunction, FuncName: "jsonb_exists", Args: []Expr{expr, Lit(value.String(key))}}
}

// IsEquiJoin reports whether expr is `column = column`, the shape
// implicit-join discovery and hash/merge join selection look for.
func (e Expr) IsEquiJoin() bool {
	return e.Kind == ExprBinaryOp && e.BinOp == OpEq &&
		e.Left.Kind == ExprColumn && e.Right.Kind == ExprColumn
}

// IsRangeJoin reports whether expr is `column <op> column` for an
// ordering comparison operator (<, <=, > or >=).
func (e Expr) IsRangeJoin() bool {
	if e.Kind != ExprBinaryOp {
		return false
	}
	switch e.BinOp {
	case OpLt, OpLe, OpGt, OpGe:
	default:
		return false
	}
	return e.Left.Kind == ExprColumn && e.Right.Kind == ExprColumn
}
