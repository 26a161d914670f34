package optimizer

import (
	"veloxdb/jsonb"
	"veloxdb/query"
	"veloxdb/value"
)

// IndexSelection rewrites a Filter directly above a table Scan into an
// index-backed access method when the filter's conjuncts match an
// index registered in the execution context: a single-column equality
// against a unique index becomes an IndexGet, against any other index
// an IndexScan narrowed to a point range, an IN-list becomes an
// IndexInGet, and a jsonb_contains/jsonb_exists predicate becomes a
// GinIndexScanMulti/GinIndexScan (jsonb_contains only when its literal
// is an object whose top-level members are all scalars, one key/value
// pair each). Conjuncts the chosen index doesn't
// absorb stay behind as a Filter above the new access node. Unlike the
// context-free pipeline passes, this one needs per-query table
// statistics, so it runs as a separate step after StandardPipeline.
type IndexSelection struct {
	Ctx *query.ExecutionContext
}

func (IndexSelection) Name() string { return "IndexSelection" }

func (p IndexSelection) Optimize(plan *query.LogicalPlan) *query.LogicalPlan {
	if plan == nil {
		return nil
	}
	out := plan.Clone()
	out.Input = p.Optimize(plan.Input)
	out.Left = p.Optimize(plan.Left)
	out.Right = p.Optimize(plan.Right)

	if out.Kind != query.LogFilter || out.Input == nil || out.Input.Kind != query.LogScan {
		return out
	}
	table := out.Input.Table
	stats, ok := p.Ctx.Stats(table)
	if !ok {
		return out
	}

	conjuncts := splitConjuncts(out.Predicate)
	var consumed int
	var access *query.LogicalPlan

	for i, c := range conjuncts {
		if access != nil {
			break
		}
		switch {
		case c.IsEquiJoin():
			// column = column never resolves against a single-table
			// index; only a column = literal shape does.
		case c.Kind == query.ExprBinaryOp && c.BinOp == query.OpEq:
			if col, lit, ok := columnLiteral(c); ok {
				if idx, found := findIndexFor(stats, col.Column); found {
					access = buildEqAccess(table, idx, lit)
					consumed = i
				}
			}
		case c.Kind == query.ExprIn:
			if c.Inner.Kind == query.ExprColumn {
				if idx, found := findIndexFor(stats, c.Inner.Column.Column); found {
					access = &query.LogicalPlan{
						Kind: query.LogIndexInGet, Table: table, Index: idx.Name,
						Keys: literalsOf(c.List),
					}
					consumed = i
				}
			}
		case c.Kind == query.ExprFunction && c.FuncName == "jsonb_exists":
			if idx, found := findGinIndex(stats); found {
				if key, ok := literalString(c.Args[1]); ok {
					access = &query.LogicalPlan{Kind: query.LogGinIndexScan, Table: table, Index: idx.Name, Column: key, QueryType: "exists"}
					consumed = i
				}
			}
		case c.Kind == query.ExprFunction && c.FuncName == "jsonb_contains":
			if idx, found := findGinIndex(stats); found {
				raw, _ := c.Args[1].Literal.AsJsonb()
				doc, _, err := jsonb.Decode(raw)
				scalars := jsonb.TopLevelScalarPairs(doc)
				if err == nil && len(scalars) > 0 && len(scalars) == len(jsonb.TopLevelKeys(doc)) {
					pairs := make([]query.GinPair, len(scalars))
					for k, sp := range scalars {
						pairs[k] = query.GinPair{Path: sp[0], Value: value.String(sp[1])}
					}
					access = &query.LogicalPlan{Kind: query.LogGinIndexScanMulti, Table: table, Index: idx.Name, QueryType: "contains", HasGinValue: true, GinValue: c.Args[1].Literal, Pairs: pairs}
					consumed = i
				}
			}
		}
	}

	if access == nil {
		return out
	}

	node := access
	for i, c := range conjuncts {
		if i == consumed {
			continue
		}
		node = query.Filter(node, c)
	}
	return node
}

func columnLiteral(e query.Expr) (query.Expr, query.Expr, bool) {
	if e.Left.Kind == query.ExprColumn && e.Right.Kind == query.ExprLiteral {
		return *e.Left, *e.Right, true
	}
	if e.Right.Kind == query.ExprColumn && e.Left.Kind == query.ExprLiteral {
		return *e.Right, *e.Left, true
	}
	return query.Expr{}, query.Expr{}, false
}

func literalString(e query.Expr) (string, bool) {
	if e.Kind != query.ExprLiteral {
		return "", false
	}
	return e.Literal.AsString()
}

func literalsOf(exprs []query.Expr) []value.Value {
	out := make([]value.Value, 0, len(exprs))
	for _, e := range exprs {
		if e.Kind == query.ExprLiteral {
			out = append(out, e.Literal)
		}
	}
	return out
}

// findIndexFor returns the best single-column index on column to back
// an equality/IN predicate, when more than one candidate matches:
// primary key beats unique beats non-unique beats GIN (GIN never
// reaches here since it is excluded below and handled separately by
// findGinIndex), and candidates in the same tier are broken by lowest
// estimated Cost (fewest expected rows per key).
func findIndexFor(stats query.TableStats, column string) (query.IndexInfo, bool) {
	var best query.IndexInfo
	found := false
	for _, idx := range stats.Indexes {
		if idx.Gin || len(idx.Columns) == 0 || idx.Columns[0] != column {
			continue
		}
		if !found || indexPrecedence(idx) > indexPrecedence(best) ||
			(indexPrecedence(idx) == indexPrecedence(best) && costBetter(idx, best)) {
			best, found = idx, true
		}
	}
	return best, found
}

// indexPrecedence ranks an index for tie-breaking: PK > unique >
// non-unique.
func indexPrecedence(idx query.IndexInfo) int {
	switch {
	case idx.PK:
		return 2
	case idx.Unique:
		return 1
	default:
		return 0
	}
}

// costBetter reports whether a is a cheaper single-key lookup than b.
// A Cost of zero or less means unknown, which always loses to a known
// cost rather than being mistaken for a cheap one.
func costBetter(a, b query.IndexInfo) bool {
	switch {
	case a.Cost > 0 && b.Cost > 0:
		return a.Cost < b.Cost
	case a.Cost > 0:
		return true
	default:
		return false
	}
}

func findGinIndex(stats query.TableStats) (query.IndexInfo, bool) {
	for _, idx := range stats.Indexes {
		if idx.Gin {
			return idx, true
		}
	}
	return query.IndexInfo{}, false
}

func buildEqAccess(table string, idx query.IndexInfo, lit query.Expr) *query.LogicalPlan {
	if idx.Unique {
		return &query.LogicalPlan{Kind: query.LogIndexGet, Table: table, Index: idx.Name, Key: lit.Literal}
	}
	return &query.LogicalPlan{
		Kind: query.LogIndexScan, Table: table, Index: idx.Name,
		RangeStart: lit.Literal, RangeEnd: lit.Literal,
		HasStart: true, HasEnd: true, IncludeStart: true, IncludeEnd: true,
	}
}
