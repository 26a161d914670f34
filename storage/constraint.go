package storage

import (
	"fmt"

	"veloxdb/dberr"
	"veloxdb/schema"
	"veloxdb/value"
)

// ConstraintChecker holds no state; its methods validate a schema's
// not-null and foreign-key constraints against a TableCache. Deferred-
// timed foreign keys are skipped by the Immediate-timed insert/delete/
// update checks that run inline on each mutation, and are instead run
// once more at commit with ConstraintTiming = Deferred.
type ConstraintChecker struct{}

// CheckNotNull validates row against tbl's not-nullable columns.
func (ConstraintChecker) CheckNotNull(tbl *schema.Table, row value.Row) error {
	for _, name := range tbl.Constraints.NotNullableColumns() {
		pos, ok := tbl.GetColumnIndex(name)
		if !ok {
			continue
		}
		if row.Get(pos).IsNull() {
			return &dberr.NullConstraintError{Table: tbl.Name, Column: name}
		}
	}
	return nil
}

// CheckForeignKeysForInsert verifies, for every fk on tbl at the given
// timing, that each row's child-column value already exists as a
// primary key in the referenced parent table (Null values are exempt).
func (ConstraintChecker) CheckForeignKeysForInsert(cache *TableCache, tbl *schema.Table, rows []value.Row, timing schema.ConstraintTiming) error {
	for _, fk := range tbl.Constraints.ForeignKeys() {
		if fk.Timing != timing {
			continue
		}
		parent, ok := cache.GetTable(fk.ParentTable)
		if !ok {
			return &dberr.TableNotFoundError{Table: fk.ParentTable}
		}
		childIdx, ok := tbl.GetColumnIndex(fk.ChildColumn)
		if !ok {
			return &dberr.ColumnNotFoundError{Table: tbl.Name, Column: fk.ChildColumn}
		}
		for _, row := range rows {
			v := row.Get(childIdx)
			if v.IsNull() {
				continue
			}
			if !parent.PKExists(v) {
				return &dberr.ForeignKeyViolationError{
					Constraint: fk.Name,
					Message:    fmt.Sprintf("referenced key %s does not exist in %s", v.String(), fk.ParentTable),
				}
			}
		}
	}
	return nil
}

// CheckForeignKeysForDelete verifies that no child table still
// references any of the given (about to be deleted) parent rows,
// across every table in cache that declares a matching foreign key at
// the given timing.
func (ConstraintChecker) CheckForeignKeysForDelete(cache *TableCache, tbl *schema.Table, rows []value.Row, timing schema.ConstraintTiming) error {
	for _, childName := range cache.TableNames() {
		childStore, _ := cache.GetTable(childName)
		childSchema := childStore.Schema
		for _, fk := range childSchema.Constraints.ForeignKeys() {
			if fk.ParentTable != tbl.Name || fk.Timing != timing {
				continue
			}
			parentIdx, ok := tbl.GetColumnIndex(fk.ParentColumn)
			if !ok {
				return &dberr.ColumnNotFoundError{Table: tbl.Name, Column: fk.ParentColumn}
			}
			childIdx, ok := childSchema.GetColumnIndex(fk.ChildColumn)
			if !ok {
				return &dberr.ColumnNotFoundError{Table: childName, Column: fk.ChildColumn}
			}
			for _, row := range rows {
				pk := row.Get(parentIdx)
				if len(matchingChildRows(childStore, childIdx, pk)) > 0 {
					return &dberr.ForeignKeyViolationError{
						Constraint: fk.Name,
						Message:    fmt.Sprintf("cannot delete: referenced by rows in %s", childName),
					}
				}
			}
		}
	}
	return nil
}

// CheckForeignKeysForUpdate re-validates modified rows both as child
// (their own FK columns must still resolve) and as parent (if the
// referenced column's value changed, no existing child may still point
// at the old value).
func (ConstraintChecker) CheckForeignKeysForUpdate(cache *TableCache, tbl *schema.Table, mods []Modification, timing schema.ConstraintTiming) error {
	for _, fk := range tbl.Constraints.ForeignKeys() {
		if fk.Timing != timing {
			continue
		}
		parent, ok := cache.GetTable(fk.ParentTable)
		if !ok {
			return &dberr.TableNotFoundError{Table: fk.ParentTable}
		}
		childIdx, ok := tbl.GetColumnIndex(fk.ChildColumn)
		if !ok {
			return &dberr.ColumnNotFoundError{Table: tbl.Name, Column: fk.ChildColumn}
		}
		for _, m := range mods {
			if m.New == nil {
				continue
			}
			v := m.New.Get(childIdx)
			if v.IsNull() {
				continue
			}
			if !parent.PKExists(v) {
				return &dberr.ForeignKeyViolationError{
					Constraint: fk.Name,
					Message:    fmt.Sprintf("referenced key %s does not exist in %s", v.String(), fk.ParentTable),
				}
			}
		}
	}

	for _, childName := range cache.TableNames() {
		childStore, _ := cache.GetTable(childName)
		childSchema := childStore.Schema
		for _, fk := range childSchema.Constraints.ForeignKeys() {
			if fk.ParentTable != tbl.Name || fk.Timing != timing {
				continue
			}
			parentIdx, ok := tbl.GetColumnIndex(fk.ParentColumn)
			if !ok {
				return &dberr.ColumnNotFoundError{Table: tbl.Name, Column: fk.ParentColumn}
			}
			childIdx, ok := childSchema.GetColumnIndex(fk.ChildColumn)
			if !ok {
				return &dberr.ColumnNotFoundError{Table: childName, Column: fk.ChildColumn}
			}
			for _, m := range mods {
				if m.Old == nil || m.New == nil {
					continue
				}
				oldVal := m.Old.Get(parentIdx)
				newVal := m.New.Get(parentIdx)
				if value.Compare(oldVal, newVal) == 0 {
					continue
				}
				if len(matchingChildRows(childStore, childIdx, oldVal)) > 0 {
					return &dberr.ForeignKeyViolationError{
						Constraint: fk.Name,
						Message:    fmt.Sprintf("cannot update: referenced by rows in %s", childName),
					}
				}
			}
		}
	}
	return nil
}

// ApplyDeleteAction carries out the ON DELETE action declared by every
// foreign key in cache that references tbl, for the rows about to be
// removed. Restrict is enforced by CheckForeignKeysForDelete and never
// reaches here; Cascade removes the referencing child rows, SetNull
// nulls their child column, and NoAction performs no corrective work
// (the caller is expected to have already confirmed no child exists,
// e.g. via a Restrict-equivalent check upstream).
func (ConstraintChecker) ApplyDeleteAction(cache *TableCache, tbl *schema.Table, rows []value.Row) error {
	for _, childName := range cache.TableNames() {
		childStore, _ := cache.GetTable(childName)
		childSchema := childStore.Schema
		for _, fk := range childSchema.Constraints.ForeignKeys() {
			if fk.ParentTable != tbl.Name {
				continue
			}
			if fk.OnDeleteAction != schema.Cascade && fk.OnDeleteAction != schema.SetNull {
				continue
			}
			parentIdx, ok := tbl.GetColumnIndex(fk.ParentColumn)
			if !ok {
				continue
			}
			childIdx, ok := childSchema.GetColumnIndex(fk.ChildColumn)
			if !ok {
				continue
			}
			for _, row := range rows {
				pk := row.Get(parentIdx)
				childRows := matchingChildRows(childStore, childIdx, pk)
				for _, childRow := range childRows {
					switch fk.OnDeleteAction {
					case schema.Cascade:
						if _, err := childStore.Delete(childRow.ID); err != nil {
							return err
						}
					case schema.SetNull:
						newValues := append([]value.Value(nil), childRow.Values...)
						newValues[childIdx] = value.Null()
						if err := childStore.Update(childRow.ID, value.New(childRow.ID, newValues)); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}

// matchingChildRows scans childStore for rows whose value at childIdx
// equals key. Cascade/SetNull touch a bounded number of rows per
// delete in practice, so a linear scan here (rather than requiring a
// secondary index on every foreign key's child column) keeps the
// contract simple.
func matchingChildRows(childStore *RowStore, childIdx int, key value.Value) []value.Row {
	var out []value.Row
	for _, row := range childStore.Scan() {
		if value.Compare(row.Get(childIdx), key) == 0 {
			out = append(out, row)
		}
	}
	return out
}
