package storage

import (
	"sort"

	"veloxdb/dberr"
	"veloxdb/internal/idgen"
	"veloxdb/schema"
	"veloxdb/value"
)

// TransactionState is the state machine a Transaction moves through:
// Active is the only state that accepts mutating calls.
type TransactionState uint8

const (
	Active TransactionState = iota
	Committed
	RolledBack
)

// Transaction borrows a TableCache mutably for the span of its active
// calls. It never auto-rolls-back on error: a failed Insert/Update/
// Delete leaves the transaction Active so the caller can retry or
// explicitly roll back.
type Transaction struct {
	id      uint64
	journal *Journal
	state   TransactionState
}

var txnAlloc = idgen.NewTxnAllocator()

// checker runs every constraint validation a Transaction needs. It
// holds no state, so one package-level instance serves every
// transaction.
var checker ConstraintChecker

// Begin starts a new transaction, drawing its id from the process-wide
// transaction-id allocator.
func Begin() *Transaction {
	return &Transaction{id: txnAlloc.Next(), journal: NewJournal(), state: Active}
}

// ID returns the transaction's id.
func (t *Transaction) ID() uint64 { return t.id }

// State returns the transaction's current state.
func (t *Transaction) State() TransactionState { return t.state }

// IsActive reports whether the transaction still accepts mutations.
func (t *Transaction) IsActive() bool { return t.state == Active }

func (t *Transaction) checkActive() error {
	if t.state != Active {
		return &dberr.InvalidOperationError{Message: "transaction is not active"}
	}
	return nil
}

// Insert validates row against tbl's not-null and Immediate-timed
// foreign-key constraints, performs the insert against cache, and
// records it in the journal. A Deferred-timed foreign key is left for
// Commit to re-check.
func (t *Transaction) Insert(cache *TableCache, table string, row value.Row) (value.RowID, error) {
	if err := t.checkActive(); err != nil {
		return 0, err
	}
	store, ok := cache.GetTableMut(table)
	if !ok {
		return 0, &dberr.TableNotFoundError{Table: table}
	}
	if err := checker.CheckNotNull(store.Schema, row); err != nil {
		return 0, err
	}
	if err := checker.CheckForeignKeysForInsert(cache, store.Schema, []value.Row{row}, schema.Immediate); err != nil {
		return 0, err
	}
	id, err := store.Insert(row)
	if err != nil {
		return 0, err
	}
	t.journal.RecordInsert(table, row)
	return id, nil
}

// Update validates newRow against tbl's not-null and Immediate-timed
// foreign-key constraints (both as child and, if it is itself
// referenced, as parent), performs the update against cache, and
// records it in the journal.
func (t *Transaction) Update(cache *TableCache, table string, rowID value.RowID, newRow value.Row) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	store, ok := cache.GetTableMut(table)
	if !ok {
		return &dberr.TableNotFoundError{Table: table}
	}
	old, ok := store.Get(rowID)
	if !ok {
		return &dberr.NotFoundError{Table: table, Key: "row"}
	}
	if err := checker.CheckNotNull(store.Schema, newRow); err != nil {
		return err
	}
	mods := []Modification{{Old: &old, New: &newRow}}
	if err := checker.CheckForeignKeysForUpdate(cache, store.Schema, mods, schema.Immediate); err != nil {
		return err
	}
	if err := store.Update(rowID, newRow); err != nil {
		return err
	}
	updated, _ := store.Get(rowID)
	t.journal.RecordUpdate(table, old, updated)
	return nil
}

// Delete applies every Cascade/SetNull action declared against table
// (so those child rows no longer reference it), then checks that no
// remaining Immediate-timed foreign key still points at the row, then
// performs the delete against cache and records it in the journal.
// Cascaded child mutations land directly in their own store, outside
// this transaction's journal, so they are not undone by Rollback and
// are not included in the returned row's own journal entry.
func (t *Transaction) Delete(cache *TableCache, table string, rowID value.RowID) (value.Row, error) {
	if err := t.checkActive(); err != nil {
		return value.Row{}, err
	}
	store, ok := cache.GetTableMut(table)
	if !ok {
		return value.Row{}, &dberr.TableNotFoundError{Table: table}
	}
	row, ok := store.Get(rowID)
	if !ok {
		return value.Row{}, &dberr.NotFoundError{Table: table, Key: "row"}
	}
	if err := checker.ApplyDeleteAction(cache, store.Schema, []value.Row{row}); err != nil {
		return value.Row{}, err
	}
	if err := checker.CheckForeignKeysForDelete(cache, store.Schema, []value.Row{row}, schema.Immediate); err != nil {
		return value.Row{}, err
	}
	deleted, err := store.Delete(rowID)
	if err != nil {
		return value.Row{}, err
	}
	t.journal.RecordDelete(table, deleted)
	return deleted, nil
}

// Commit re-validates every Deferred-timed foreign key touched by this
// transaction against the final, post-mutation state of every table
// involved, then finalizes the transaction and returns its journal
// entries so the caller can build the per-table changed-id set for the
// view registry. A failed deferred check leaves the transaction Active,
// matching Insert/Update/Delete's own failure contract.
func (t *Transaction) Commit(cache *TableCache) ([]JournalEntry, error) {
	if err := t.checkActive(); err != nil {
		return nil, err
	}
	if err := t.checkDeferredConstraints(cache); err != nil {
		return nil, err
	}
	t.state = Committed
	return t.journal.Commit(), nil
}

// checkDeferredConstraints re-runs every Deferred-timed foreign-key
// check against the net diff this transaction recorded per table, so
// that a row edited more than once is only checked once against its
// final value.
func (t *Transaction) checkDeferredConstraints(cache *TableCache) error {
	diffs := t.journal.AllDiffs()
	tables := make([]string, 0, len(diffs))
	for name := range diffs {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	for _, table := range tables {
		store, ok := cache.GetTableMut(table)
		if !ok {
			continue
		}
		diff := diffs[table]

		if added := diff.Added(); len(added) > 0 {
			rows := make([]value.Row, 0, len(added))
			for _, row := range added {
				rows = append(rows, row)
			}
			if err := checker.CheckForeignKeysForInsert(cache, store.Schema, rows, schema.Deferred); err != nil {
				return err
			}
		}
		if modified := diff.Modified(); len(modified) > 0 {
			mods := make([]Modification, 0, len(modified))
			for _, pair := range modified {
				old, new := pair[0], pair[1]
				mods = append(mods, Modification{Old: &old, New: &new})
			}
			if err := checker.CheckForeignKeysForUpdate(cache, store.Schema, mods, schema.Deferred); err != nil {
				return err
			}
		}
		if deleted := diff.Deleted(); len(deleted) > 0 {
			rows := make([]value.Row, 0, len(deleted))
			for _, row := range deleted {
				rows = append(rows, row)
			}
			if err := checker.CheckForeignKeysForDelete(cache, store.Schema, rows, schema.Deferred); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rollback reverses every recorded mutation against cache, in reverse
// order, and marks the transaction RolledBack.
func (t *Transaction) Rollback(cache *TableCache) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	t.state = RolledBack
	t.journal.Rollback(cache)
	return nil
}

// Journal exposes the transaction's journal for inspection (tests, and
// callers building a changed-id set ahead of commit).
func (t *Transaction) Journal() *Journal { return t.journal }
