// Package dberr defines the typed error taxonomy shared by the storage
// and query layers. Each kind is a small struct implementing error
// rather than a single opaque error code; callers branch on kind with
// errors.As.
package dberr

import "fmt"

// InvalidSchemaError is returned at table/column/index creation time:
// bad naming, duplicate columns, a non-indexable type under an index,
// auto-increment on a non-integer column, and similar schema-shape
// violations.
type InvalidSchemaError struct {
	Entity  string
	Name    string
	Message string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("invalid schema: %s %q: %s", e.Entity, e.Name, e.Message)
}

// DuplicateKeyError is returned by insert/update when a unique index
// already contains the key being written.
type DuplicateKeyError struct {
	Table string
	Index string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key in %s.%s: %s", e.Table, e.Index, e.Key)
}

// NullConstraintError is returned when a Null is stored in a
// not-nullable column.
type NullConstraintError struct {
	Table  string
	Column string
}

func (e *NullConstraintError) Error() string {
	return fmt.Sprintf("null constraint violated: %s.%s", e.Table, e.Column)
}

// ForeignKeyViolationError is returned when an insert, update, or delete
// would break a foreign-key relationship.
type ForeignKeyViolationError struct {
	Constraint string
	Message    string
}

func (e *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("foreign key violation (%s): %s", e.Constraint, e.Message)
}

// TableNotFoundError is returned when an operation names a table that
// does not exist in the TableCache.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table not found: %s", e.Table)
}

// ColumnNotFoundError is returned when an operation names a column that
// does not exist on a table.
type ColumnNotFoundError struct {
	Table  string
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %s.%s", e.Table, e.Column)
}

// NotFoundError is returned by point lookups (e.g. get_by_pk) that miss.
type NotFoundError struct {
	Table string
	Key   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found in %s: %s", e.Table, e.Key)
}

// InvalidOperationError covers operations used outside their valid
// state: a transaction call after commit/rollback, an unsupported plan
// node reaching the executor, and similar programmer errors.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation: %s", e.Message)
}
