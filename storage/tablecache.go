package storage

import (
	"sort"

	"veloxdb/dberr"
	"veloxdb/internal/idgen"
	"veloxdb/schema"
)

// TableCache is the process-wide catalog of RowStores, keyed by table
// name. It is the sole owner of every RowStore; a Transaction borrows
// it mutably for the span of its active calls.
type TableCache struct {
	tables   map[string]*RowStore
	rowAlloc *idgen.RowAllocator
}

// processRowAlloc is the process-wide row-id allocator every TableCache
// draws from.
var processRowAlloc = idgen.NewRowAllocator()

// NewTableCache returns an empty catalog sharing the process-wide
// row-id allocator across every table it will hold.
func NewTableCache() *TableCache {
	return &TableCache{
		tables:   make(map[string]*RowStore),
		rowAlloc: processRowAlloc,
	}
}

// CreateTable registers a new RowStore for tbl. tbl must already carry
// a primary key (enforced by schema.Builder.Build).
func (c *TableCache) CreateTable(tbl *schema.Table) (*RowStore, error) {
	if _, exists := c.tables[tbl.Name]; exists {
		return nil, &dberr.InvalidSchemaError{Entity: "table", Name: tbl.Name, Message: "table already exists"}
	}
	store := NewRowStore(tbl, c.rowAlloc)
	c.tables[tbl.Name] = store
	return store, nil
}

// GetTable returns the store for name, for read-only use.
func (c *TableCache) GetTable(name string) (*RowStore, bool) {
	s, ok := c.tables[name]
	return s, ok
}

// GetTableMut returns the store for name for mutation. The cache does
// not itself enforce exclusivity; concurrent mutable use from two
// transactions at once is a programming error per the engine's single-
// writer-at-a-time contract.
func (c *TableCache) GetTableMut(name string) (*RowStore, bool) {
	s, ok := c.tables[name]
	return s, ok
}

// DropTable removes a table and its store entirely.
func (c *TableCache) DropTable(name string) {
	delete(c.tables, name)
}

// TableNames returns every registered table name in sorted order, so
// that constraint-checking passes which must scan "every table
// referencing this one" iterate deterministically.
func (c *TableCache) TableNames() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
