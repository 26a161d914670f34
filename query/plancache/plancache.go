// Package plancache caches the physical plan chosen for a logical
// query shape, so a materialized view or a repeated ad-hoc query
// doesn't re-run the full optimizer pipeline on every execution.
package plancache

import (
	"hash/fnv"
	"strconv"

	"github.com/elastic/go-freelru"

	"veloxdb/query"
	"veloxdb/query/planner"
)

// Fingerprint is the FNV-1a hash of a logical plan's structural shape
// (operator kinds, table/column/index names, and literal values),
// used as the cache key. Two calls that build an identical plan tree
// fingerprint identically regardless of allocation order.
type Fingerprint uint64

// Cache maps a plan fingerprint to its already-chosen physical plan.
// Capacity is bounded; the least-recently-used entry is evicted once
// the cache is full, matching go-freelru's fixed-capacity contract.
type Cache struct {
	lru *freelru.LRU[Fingerprint, *planner.PhysicalPlan]
}

func fingerprintHash(f Fingerprint) uint32 {
	return uint32(f) ^ uint32(f>>32)
}

// New builds a cache holding at most capacity plans.
func New(capacity uint32) (*Cache, error) {
	lru, err := freelru.New[Fingerprint, *planner.PhysicalPlan](capacity, fingerprintHash)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: lru}, nil
}

// GetOrPlan returns the cached physical plan for logical's fingerprint,
// running the full optimizer pipeline and caching the result on a miss.
func (c *Cache) GetOrPlan(logical *query.LogicalPlan, ctx *query.ExecutionContext) *planner.PhysicalPlan {
	fp := Fingerprint(Hash(logical))
	if cached, ok := c.lru.Get(fp); ok {
		return cached
	}
	phys := planner.Plan(logical, ctx)
	c.lru.Add(fp, phys)
	return phys
}

// Len reports how many plans are currently cached.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge empties the cache, used when a schema change invalidates every
// previously chosen access method.
func (c *Cache) Purge() { c.lru.Purge() }

// Hash computes plan's structural FNV-1a fingerprint.
func Hash(plan *query.LogicalPlan) uint64 {
	h := fnv.New64a()
	hashPlan(h, plan)
	return h.Sum64()
}

func hashPlan(h interface{ Write([]byte) (int, error) }, plan *query.LogicalPlan) {
	if plan == nil {
		writeStr(h, "nil")
		return
	}
	writeStr(h, "K"+strconv.Itoa(int(plan.Kind)))
	writeStr(h, "T"+plan.Table)
	writeStr(h, "I"+plan.Index)
	writeStr(h, "C"+plan.Column)
	for _, k := range plan.Keys {
		writeStr(h, "k"+k.String())
	}
	hashExpr(h, plan.Predicate)
	for _, c := range plan.Columns {
		hashExpr(h, c)
	}
	hashExpr(h, plan.Condition)
	writeStr(h, "J"+strconv.Itoa(int(plan.JoinKind)))
	for _, g := range plan.GroupBy {
		hashExpr(h, g)
	}
	for _, a := range plan.Aggregates {
		writeStr(h, "A"+strconv.Itoa(int(a.Func)))
		hashExpr(h, a.Arg)
	}
	for _, o := range plan.OrderBy {
		writeStr(h, "O"+strconv.Itoa(int(o.Order)))
		hashExpr(h, o.Expr)
	}
	if plan.HasLimit {
		writeStr(h, "L"+strconv.Itoa(plan.Limit)+","+strconv.Itoa(plan.Offset))
	}
	hashPlan(h, plan.Input)
	hashPlan(h, plan.Left)
	hashPlan(h, plan.Right)
}

func hashExpr(h interface{ Write([]byte) (int, error) }, e query.Expr) {
	writeStr(h, "e"+strconv.Itoa(int(e.Kind)))
	switch e.Kind {
	case query.ExprColumn:
		writeStr(h, e.Column.NormalizedName())
	case query.ExprLiteral:
		writeStr(h, e.Literal.String())
	case query.ExprBinaryOp:
		writeStr(h, strconv.Itoa(int(e.BinOp)))
		hashExpr(h, *e.Left)
		hashExpr(h, *e.Right)
	case query.ExprUnaryOp:
		writeStr(h, strconv.Itoa(int(e.UnOp)))
		hashExpr(h, *e.Inner)
	case query.ExprFunction:
		writeStr(h, e.FuncName)
		for _, a := range e.Args {
			hashExpr(h, a)
		}
	case query.ExprAggregate:
		writeStr(h, strconv.Itoa(int(e.AggFunc)))
		if e.AggArg != nil {
			hashExpr(h, *e.AggArg)
		}
	case query.ExprBetween, query.ExprNotBetween:
		hashExpr(h, *e.Inner)
		hashExpr(h, *e.Low)
		hashExpr(h, *e.High)
	case query.ExprIn, query.ExprNotIn:
		hashExpr(h, *e.Inner)
		for _, item := range e.List {
			hashExpr(h, item)
		}
	case query.ExprLike, query.ExprNotLike, query.ExprMatch, query.ExprNotMatch:
		hashExpr(h, *e.Inner)
		writeStr(h, e.Pattern)
	}
}

func writeStr(h interface{ Write([]byte) (int, error) }, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}
