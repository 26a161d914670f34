package planner

import (
	"sort"

	"veloxdb/indexing"
	"veloxdb/query"
	"veloxdb/storage"
	"veloxdb/value"
)

// Execute pulls the full output of plan as a materialized Relation.
// Execution is bottom-up and eager (no streaming/iterator protocol): a
// single query answer or a materialized-view refresh both want the
// complete result set at once, and the reference planner's own
// executor is likewise a plain function from PhysicalPlan to rows
// rather than a pull-iterator trait object.
func Execute(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	switch plan.Kind {
	case PhysTableScan:
		return execTableScan(plan, cache)
	case PhysIndexScan:
		return execIndexScan(plan, cache)
	case PhysIndexGet:
		return execIndexGet(plan, cache)
	case PhysIndexInGet:
		return execIndexInGet(plan, cache)
	case PhysGinIndexScan:
		return execGinScan(plan, cache)
	case PhysGinIndexScanMulti:
		return execGinScanMulti(plan, cache)
	case PhysFilter:
		return execFilter(plan, cache)
	case PhysProject:
		return execProject(plan, cache)
	case PhysHashJoin, PhysSortMergeJoin, PhysNestedLoopJoin:
		return execJoin(plan, cache)
	case PhysIndexNestedLoopJoin:
		return execIndexNestedLoopJoin(plan, cache)
	case PhysCrossProduct:
		return execCrossProduct(plan, cache)
	case PhysHashAggregate:
		return execHashAggregate(plan, cache)
	case PhysSort:
		return execSort(plan, cache)
	case PhysTopN:
		return execTopN(plan, cache)
	case PhysLimit:
		return execLimit(plan, cache)
	case PhysEmpty, PhysNoOp:
		return Relation{}, nil
	default:
		return Relation{}, nil
	}
}

func execTableScan(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	store, ok := cache.GetTable(plan.Table)
	if !ok {
		return Relation{}, nil
	}
	rows := store.Scan()
	entries := make([]RelationEntry, len(rows))
	for i, r := range rows {
		entries[i] = NewEntry(r, plan.Table, r.Version)
	}
	return Relation{Entries: entries}, nil
}

func execIndexScan(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	store, ok := cache.GetTable(plan.Table)
	if !ok {
		return Relation{}, nil
	}
	idx, ok := store.Index(plan.Index)
	if !ok {
		return Relation{}, nil
	}
	rangeIdx, ok := idx.(indexing.RangeIndex)
	if !ok {
		return Relation{}, nil
	}

	kr := keyRangeFor(plan)
	var limit *int
	if plan.HasLimit {
		l := plan.Limit
		limit = &l
	}
	ids := rangeIdx.GetRange(kr, plan.Reverse, 0, limit)
	return entriesFor(store, plan.Table, ids), nil
}

func keyRangeFor(plan *PhysicalPlan) indexing.KeyRange {
	switch {
	case plan.HasStart && plan.HasEnd:
		return indexing.Bound(indexing.Key{plan.RangeStart}, indexing.Key{plan.RangeEnd}, !plan.IncludeStart, !plan.IncludeEnd)
	case plan.HasStart:
		return indexing.LowerBound(indexing.Key{plan.RangeStart}, !plan.IncludeStart)
	case plan.HasEnd:
		return indexing.UpperBound(indexing.Key{plan.RangeEnd}, !plan.IncludeEnd)
	default:
		return indexing.All()
	}
}

func execIndexGet(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	store, ok := cache.GetTable(plan.Table)
	if !ok {
		return Relation{}, nil
	}
	idx, ok := store.Index(plan.Index)
	if !ok {
		return Relation{}, nil
	}
	ids := idx.Get(indexing.Key{plan.Key})
	return entriesFor(store, plan.Table, ids), nil
}

func execIndexInGet(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	store, ok := cache.GetTable(plan.Table)
	if !ok {
		return Relation{}, nil
	}
	idx, ok := store.Index(plan.Index)
	if !ok {
		return Relation{}, nil
	}
	var ids []value.RowID
	seen := make(map[value.RowID]bool)
	for _, k := range plan.Keys {
		for _, id := range idx.Get(indexing.Key{k}) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return entriesFor(store, plan.Table, ids), nil
}

func execGinScan(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	store, ok := cache.GetTable(plan.Table)
	if !ok {
		return Relation{}, nil
	}
	gin, ok := store.GinIndex(plan.Index)
	if !ok {
		return Relation{}, nil
	}
	var ids []value.RowID
	if plan.HasGinValue {
		ids = gin.GetByKeyValue(plan.GinKey, plan.GinValue)
	} else {
		ids = gin.GetByKey(plan.GinKey)
	}
	return entriesFor(store, plan.Table, ids), nil
}

func execGinScanMulti(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	store, ok := cache.GetTable(plan.Table)
	if !ok {
		return Relation{}, nil
	}
	gin, ok := store.GinIndex(plan.Index)
	if !ok {
		return Relation{}, nil
	}
	pairs := make([][2]string, len(plan.GinPairs))
	for i, p := range plan.GinPairs {
		pairs[i] = [2]string{p.Key, p.Value}
	}
	ids := gin.GetByKeyValuesAll(pairs)
	return entriesFor(store, plan.Table, ids), nil
}

func entriesFor(store *storage.RowStore, table string, ids []value.RowID) Relation {
	entries := make([]RelationEntry, 0, len(ids))
	for _, id := range ids {
		if row, ok := store.Get(id); ok {
			entries = append(entries, NewEntry(row, table, row.Version))
		}
	}
	return Relation{Entries: entries}
}

func execFilter(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	in, err := Execute(plan.Input, cache)
	if err != nil {
		return Relation{}, err
	}
	out := make([]RelationEntry, 0, len(in.Entries))
	for _, e := range in.Entries {
		if b, ok := query.Eval(plan.Predicate, e.Row).AsBool(); ok && b {
			out = append(out, e)
		}
	}
	return Relation{Entries: out}, nil
}

func execProject(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	in, err := Execute(plan.Input, cache)
	if err != nil {
		return Relation{}, err
	}
	out := make([]RelationEntry, len(in.Entries))
	for i, e := range in.Entries {
		vals := make([]value.Value, len(plan.Columns))
		for j, c := range plan.Columns {
			vals[j] = query.Eval(c, e.Row)
		}
		projected := value.NewWithVersion(value.DummyRowID, 0, vals)
		out[i] = RelationEntry{Row: projected, Tables: e.Tables, Versions: e.Versions}
	}
	return Relation{Entries: out}, nil
}

// combinedRow concatenates a left and right row's columns into one
// wider row, with the left row's columns at offsets [0,leftWidth) and
// the right row's at [leftWidth,leftWidth+rightWidth). A nil right
// value (the outer-join non-match case) reads as Null at every offset
// past leftWidth.
type combinedRow struct {
	left, right query.Row
	leftWidth   int
}

func (c combinedRow) Get(idx int) value.Value {
	if idx < c.leftWidth {
		if c.left == nil {
			return value.Null()
		}
		return c.left.Get(idx)
	}
	if c.right == nil {
		return value.Null()
	}
	return c.right.Get(idx - c.leftWidth)
}

// nullRow answers Null for every column offset, used as the left side
// of a combinedRow produced by a RIGHT/FULL OUTER JOIN's unmatched
// right-hand rows.
type nullRow struct{}

func (nullRow) Get(int) value.Value { return value.Null() }

func rowWidth(row query.Row) int {
	if r, ok := row.(value.Row); ok {
		return len(r.Values)
	}
	if cr, ok := row.(combinedRow); ok {
		return cr.leftWidth + rowWidth(cr.right)
	}
	return 0
}

func execJoin(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	left, err := Execute(plan.Left, cache)
	if err != nil {
		return Relation{}, err
	}
	right, err := Execute(plan.Right, cache)
	if err != nil {
		return Relation{}, err
	}

	var out []RelationEntry
	rightTables := tablesOf(right)

	for _, l := range left.Entries {
		matched := false
		leftWidth := rowWidth(l.Row)
		for _, r := range right.Entries {
			combined := combinedRow{left: l.Row, right: r.Row, leftWidth: leftWidth}
			if b, ok := query.Eval(plan.Condition, combined).AsBool(); ok && b {
				matched = true
				out = append(out, Combine(combined, l, r))
			}
		}
		if !matched && (plan.JoinKind == query.LeftOuterJoin || plan.JoinKind == query.FullOuterJoin) {
			combined := combinedRow{left: l.Row, right: nil, leftWidth: leftWidth}
			out = append(out, CombineOuterNull(combined, l, rightTables))
		}
	}

	if plan.JoinKind == query.RightOuterJoin || plan.JoinKind == query.FullOuterJoin {
		leftWidth := 0
		if len(left.Entries) > 0 {
			leftWidth = rowWidth(left.Entries[0].Row)
		}
		matchedRight := make(map[int]bool)
		for _, l := range left.Entries {
			for ri, r := range right.Entries {
				combined := combinedRow{left: l.Row, right: r.Row, leftWidth: rowWidth(l.Row)}
				if b, ok := query.Eval(plan.Condition, combined).AsBool(); ok && b {
					matchedRight[ri] = true
				}
			}
		}
		leftTables := tablesOf(left)
		for ri, r := range right.Entries {
			if matchedRight[ri] {
				continue
			}
			combined := combinedRow{left: nullRow{}, right: r.Row, leftWidth: leftWidth}
			out = append(out, CombineOuterNull(combined, r, leftTables))
		}
	}

	return Relation{Entries: out}, nil
}

func execIndexNestedLoopJoin(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	outer, err := Execute(plan.Outer, cache)
	if err != nil {
		return Relation{}, err
	}
	store, ok := cache.GetTable(plan.InnerTable)
	if !ok {
		return Relation{}, nil
	}
	idx, ok := store.Index(plan.InnerIndex)
	if !ok {
		return Relation{}, nil
	}

	var out []RelationEntry
	for _, o := range outer.Entries {
		leftWidth := rowWidth(o.Row)
		probe := probeKey(plan.Condition, o.Row, leftWidth)
		if probe == nil {
			continue
		}
		for _, id := range idx.Get(indexing.Key{*probe}) {
			inner, ok := store.Get(id)
			if !ok {
				continue
			}
			combined := combinedRow{left: o.Row, right: inner, leftWidth: leftWidth}
			innerEntry := NewEntry(inner, plan.InnerTable, inner.Version)
			out = append(out, Combine(combined, o, innerEntry))
		}
	}
	return Relation{Entries: out}, nil
}

// probeKey evaluates the side of an equi-join condition that refers to
// the already-computed outer row, giving the literal key to probe the
// inner table's index with.
func probeKey(cond query.Expr, outerRow query.Row, leftWidth int) *value.Value {
	if cond.Left.Column.Index < leftWidth {
		v := query.Eval(*cond.Left, outerRow)
		return &v
	}
	v := query.Eval(*cond.Right, outerRow)
	return &v
}

func tablesOf(r Relation) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.Entries {
		for _, t := range e.Tables {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func execCrossProduct(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	left, err := Execute(plan.Left, cache)
	if err != nil {
		return Relation{}, err
	}
	right, err := Execute(plan.Right, cache)
	if err != nil {
		return Relation{}, err
	}
	var out []RelationEntry
	for _, l := range left.Entries {
		leftWidth := rowWidth(l.Row)
		for _, r := range right.Entries {
			combined := combinedRow{left: l.Row, right: r.Row, leftWidth: leftWidth}
			out = append(out, Combine(combined, l, r))
		}
	}
	return Relation{Entries: out}, nil
}

func execSort(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	in, err := Execute(plan.Input, cache)
	if err != nil {
		return Relation{}, err
	}
	entries := append([]RelationEntry(nil), in.Entries...)
	sortEntries(entries, plan.OrderBy)
	return Relation{Entries: entries}, nil
}

func sortEntries(entries []RelationEntry, orderBy []query.SortKey) {
	sort.SliceStable(entries, func(i, j int) bool {
		for _, k := range orderBy {
			a := query.Eval(k.Expr, entries[i].Row)
			b := query.Eval(k.Expr, entries[j].Row)
			c := value.Compare(a, b)
			if c == 0 {
				continue
			}
			if k.Order == query.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func execTopN(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	in, err := Execute(plan.Input, cache)
	if err != nil {
		return Relation{}, err
	}
	entries := append([]RelationEntry(nil), in.Entries...)
	sortEntries(entries, plan.OrderBy)
	return Relation{Entries: trimLimitOffset(entries, plan.Limit, plan.Offset)}, nil
}

func execLimit(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	in, err := Execute(plan.Input, cache)
	if err != nil {
		return Relation{}, err
	}
	return Relation{Entries: trimLimitOffset(in.Entries, plan.Limit, plan.Offset)}, nil
}

func trimLimitOffset(entries []RelationEntry, limit, offset int) []RelationEntry {
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit >= 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

func execHashAggregate(plan *PhysicalPlan, cache *storage.TableCache) (Relation, error) {
	in, err := Execute(plan.Input, cache)
	if err != nil {
		return Relation{}, err
	}

	type bucket struct {
		key    string
		groupV []value.Value
		states []aggState
		tables []string
		vsum   uint64
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, e := range in.Entries {
		groupV := make([]value.Value, len(plan.GroupBy))
		var keyB []byte
		for i, g := range plan.GroupBy {
			groupV[i] = query.Eval(g, e.Row)
			keyB = append(keyB, []byte(groupV[i].String())...)
			keyB = append(keyB, 0)
		}
		key := string(keyB)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key, groupV: groupV, states: make([]aggState, len(plan.Aggregates)), tables: e.Tables}
			for i, agg := range plan.Aggregates {
				b.states[i] = newAggState(agg.Func)
			}
			buckets[key] = b
			order = append(order, key)
		}
		for i, agg := range plan.Aggregates {
			b.states[i].add(query.Eval(agg.Arg, e.Row))
		}
		var evsum uint64
		for _, v := range e.Versions {
			evsum += v
		}
		b.vsum += evsum
	}

	entries := make([]RelationEntry, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		vals := append([]value.Value(nil), b.groupV...)
		for _, s := range b.states {
			vals = append(vals, s.result())
		}
		row := value.New(value.DummyRowID, vals)
		entries = append(entries, RelationEntry{Row: row, Tables: b.tables, Versions: []uint64{b.vsum}})
	}
	return Relation{Entries: entries}, nil
}
