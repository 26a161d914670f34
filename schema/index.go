package schema

// IndexType selects the runtime index shape backing an IndexDef.
type IndexType uint8

const (
	IndexBTree IndexType = iota
	IndexHash
	IndexGin
)

func (t IndexType) String() string {
	switch t {
	case IndexBTree:
		return "btree"
	case IndexHash:
		return "hash"
	case IndexGin:
		return "gin"
	default:
		return "unknown"
	}
}

// Order selects ascending or descending collation for one column of a
// composite index key.
type Order uint8

const (
	Asc Order = iota
	Desc
)

// IndexColumn names one column participating in an index key, with its
// per-column ordering.
type IndexColumn struct {
	Name  string
	Order Order
}

// IndexDef describes a secondary (or primary-key) index: its name, the
// columns forming its composite key, uniqueness, and runtime shape.
// Jsonb columns always force IndexGin.
type IndexDef struct {
	Name    string
	Columns []IndexColumn
	Unique  bool
	Type    IndexType
}

// ColumnNames returns just the column names of the index key, in order.
func (d IndexDef) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}
