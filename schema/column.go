// Package schema models the table/column/index/constraint definitions
// that describe the shape of data in a RowStore: a set of plain structs
// assembled by a builder and validated once at creation time.
package schema

import (
	"regexp"

	"veloxdb/dberr"
	"veloxdb/value"
)

// nameRe matches the identifier grammar required of table and column
// names: [A-Za-z_][A-Za-z0-9_]*.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether s is a legal table/column/index name.
func ValidName(s string) bool { return nameRe.MatchString(s) }

// Column describes one field of a table.
type Column struct {
	Name     string
	Type     value.Kind
	Nullable bool
	Unique   bool
	Position int
}

// Indexable reports whether this column's type may back a secondary
// index. Every variant is indexable except the zero/unset kind.
func (c Column) Indexable() bool {
	switch c.Type {
	case value.KindBoolean, value.KindInt32, value.KindInt64, value.KindFloat64,
		value.KindString, value.KindDateTime, value.KindBytes, value.KindJsonb:
		return true
	default:
		return false
	}
}

func validateColumn(c Column) error {
	if !ValidName(c.Name) {
		return &dberr.InvalidSchemaError{Entity: "column", Name: c.Name, Message: "name must match [A-Za-z_][A-Za-z0-9_]*"}
	}
	return nil
}
