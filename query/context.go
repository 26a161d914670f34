package query

// IndexInfo summarizes one index available on a table for planning
// purposes: its name, the columns it covers in order, whether it backs
// the table's primary key, whether it enforces uniqueness (a unique
// single-column index on an equality predicate becomes an IndexGet
// rather than an IndexScan), and an estimated per-key cost used to
// break ties between two indexes of the same precedence tier.
type IndexInfo struct {
	Name    string
	Columns []string
	PK      bool
	Unique  bool
	Gin     bool

	// Cost approximates index.Cost(Only(key)): the expected number of
	// rows a single-key lookup returns (1 for a PK/unique index, a
	// distinct-key-count-derived estimate otherwise). Zero means
	// unknown, which IndexSelection treats as worst-case.
	Cost int
}

// NewIndexInfo builds an IndexInfo for a non-GIN index.
func NewIndexInfo(name string, columns []string, unique bool) IndexInfo {
	return IndexInfo{Name: name, Columns: columns, Unique: unique}
}

// TableStats is the planner-visible shape of one table: enough to pick
// an access method and to decide whether a sort can be satisfied by an
// index instead of an explicit Sort node.
type TableStats struct {
	RowCount int
	IsSorted bool
	Indexes  []IndexInfo
}

// ExecutionContext is the per-query snapshot of table statistics the
// context-aware optimizer passes (IndexSelection, OrderByIndexPass,
// LimitSkipByIndexPass) consult. It carries no reference to live
// storage so that planning never sees a state the row store didn't
// have at snapshot time.
type ExecutionContext struct {
	tables map[string]TableStats
}

// NewExecutionContext returns an empty context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{tables: make(map[string]TableStats)}
}

// RegisterTable records table's stats, overwriting any prior entry.
func (c *ExecutionContext) RegisterTable(table string, stats TableStats) {
	c.tables[table] = stats
}

// Stats returns the recorded stats for table, if any.
func (c *ExecutionContext) Stats(table string) (TableStats, bool) {
	s, ok := c.tables[table]
	return s, ok
}

// IndexOn returns the first index covering exactly columns (in order),
// used by IndexSelection to recognize a composite-key equality match.
func (c *ExecutionContext) IndexOn(table string, columns []string) (IndexInfo, bool) {
	stats, ok := c.tables[table]
	if !ok {
		return IndexInfo{}, false
	}
	for _, idx := range stats.Indexes {
		if columnsEqual(idx.Columns, columns) {
			return idx, true
		}
	}
	return IndexInfo{}, false
}

// IndexLeadingOn returns the first index whose leading column is
// column, used to recognize a single-column prefix match for ORDER BY
// and range predicates over a composite index.
func (c *ExecutionContext) IndexLeadingOn(table, column string) (IndexInfo, bool) {
	stats, ok := c.tables[table]
	if !ok {
		return IndexInfo{}, false
	}
	for _, idx := range stats.Indexes {
		if len(idx.Columns) > 0 && idx.Columns[0] == column {
			return idx, true
		}
	}
	return IndexInfo{}, false
}

func columnsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
