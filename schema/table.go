package schema

import (
	"veloxdb/dberr"
	"veloxdb/value"
)

// Table is the full schema description of one RowStore: its columns in
// declaration order, its indexes (including the mandatory primary key),
// its constraints, and a PersistentIndex flag. The engine itself never
// persists to disk, and no code in this module reads PersistentIndex:
// setting it changes no index or scan behavior.
type Table struct {
	Name            string
	Columns         []Column
	Indexes         []IndexDef
	Constraints     *Constraints
	PersistentIndex bool

	columnIndex map[string]int
}

// GetColumn returns the column definition by name.
func (t *Table) GetColumn(name string) (Column, bool) {
	idx, ok := t.columnIndex[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[idx], true
}

// GetColumnIndex returns the physical offset of a column by name.
func (t *Table) GetColumnIndex(name string) (int, bool) {
	idx, ok := t.columnIndex[name]
	return idx, ok
}

// PrimaryKey returns the table's primary-key index definition. Every
// valid Table has exactly one (enforced by the builder).
func (t *Table) PrimaryKey() IndexDef {
	for _, idx := range t.Indexes {
		if idx.Name == "pk_"+t.Name {
			return idx
		}
	}
	// Fall back to the first unique index if no canonical pk name was
	// used (e.g. a caller assembled the Table by hand).
	for _, idx := range t.Indexes {
		if idx.Unique {
			return idx
		}
	}
	return IndexDef{}
}

// GetIndex returns an index definition by name.
func (t *Table) GetIndex(name string) (IndexDef, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexDef{}, false
}

// Builder assembles a Table incrementally and validates it once on
// Build(), rather than validating each mutator call.
type Builder struct {
	table *Table
	err   error
}

// NewBuilder starts a Table definition. name must already be a legal
// identifier; this is checked at Build() time, not here, so multiple
// builder calls can be chained before the first error is surfaced.
func NewBuilder(name string) *Builder {
	return &Builder{
		table: &Table{
			Name:        name,
			Constraints: NewConstraints(),
			columnIndex: make(map[string]int),
		},
	}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// AddColumn appends a column of the given data kind, assigning it the
// next physical position.
func (b *Builder) AddColumn(name string, kind value.Kind, opts ...ColumnOption) *Builder {
	if b.err != nil {
		return b
	}
	col := Column{Name: name, Type: kind, Nullable: true, Position: len(b.table.Columns)}
	for _, opt := range opts {
		opt(&col)
	}
	if err := validateColumn(col); err != nil {
		return b.fail(err)
	}
	if _, exists := b.table.columnIndex[name]; exists {
		return b.fail(&dberr.InvalidSchemaError{Entity: "table", Name: b.table.Name, Message: "duplicate column " + name})
	}
	if !col.Nullable {
		b.table.Constraints.MarkNotNullable(name)
	}
	b.table.columnIndex[name] = len(b.table.Columns)
	b.table.Columns = append(b.table.Columns, col)
	return b
}

// ColumnOption mutates a Column during AddColumn.
type ColumnOption func(*Column)

// NotNull marks the column as not-nullable.
func NotNull() ColumnOption { return func(c *Column) { c.Nullable = false } }

// UniqueColumn marks the column as carrying a single-column unique
// constraint.
func UniqueColumn() ColumnOption { return func(c *Column) { c.Unique = true } }

// AddIndex attaches a secondary index definition. Jsonb columns force
// Gin regardless of the requested type.
func (b *Builder) AddIndex(def IndexDef) *Builder {
	if b.err != nil {
		return b
	}
	for _, ic := range def.Columns {
		col, ok := b.table.GetColumn(ic.Name)
		if !ok {
			return b.fail(&dberr.ColumnNotFoundError{Table: b.table.Name, Column: ic.Name})
		}
		if !col.Indexable() {
			return b.fail(&dberr.InvalidSchemaError{Entity: "index", Name: def.Name, Message: "column " + ic.Name + " is not indexable"})
		}
		if col.Type == value.KindJsonb {
			def.Type = IndexGin
		}
	}
	b.table.Indexes = append(b.table.Indexes, def)
	return b
}

// AddPrimaryKey declares the primary key over the given columns. A
// table must have exactly one primary key, and it is required to be
// present and unique.
func (b *Builder) AddPrimaryKey(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	cols := make([]IndexColumn, len(columns))
	for i, name := range columns {
		cols[i] = IndexColumn{Name: name, Order: Asc}
		if col, ok := b.table.GetColumn(name); ok {
			b.table.Constraints.MarkNotNullable(col.Name)
			for j := range b.table.Columns {
				if b.table.Columns[j].Name == col.Name {
					b.table.Columns[j].Nullable = false
				}
			}
		}
	}
	return b.AddIndex(IndexDef{Name: "pk_" + b.table.Name, Columns: cols, Unique: true, Type: IndexBTree})
}

// AddForeignKey declares a foreign-key constraint on this table (as
// child).
func (b *Builder) AddForeignKey(fk ForeignKey) *Builder {
	if b.err != nil {
		return b
	}
	b.table.Constraints.AddForeignKey(fk)
	return b
}

// Build validates and returns the finished Table.
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !ValidName(b.table.Name) {
		return nil, &dberr.InvalidSchemaError{Entity: "table", Name: b.table.Name, Message: "name must match [A-Za-z_][A-Za-z0-9_]*"}
	}
	if len(b.table.Columns) == 0 {
		return nil, &dberr.InvalidSchemaError{Entity: "table", Name: b.table.Name, Message: "table has no columns"}
	}
	pkCount := 0
	for _, idx := range b.table.Indexes {
		if idx.Name == "pk_"+b.table.Name {
			pkCount++
		}
	}
	if pkCount == 0 {
		return nil, &dberr.InvalidSchemaError{Entity: "table", Name: b.table.Name, Message: "table requires a primary key"}
	}
	if pkCount > 1 {
		return nil, &dberr.InvalidSchemaError{Entity: "table", Name: b.table.Name, Message: "table has more than one primary key"}
	}
	return b.table, nil
}
