package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloxdb/value"
)

func row(id int64, name string) value.Row {
	return value.New(value.RowID(id), []value.Value{value.Int64(id), value.String(name)})
}

func TestTableDiffAddThenDeleteCancels(t *testing.T) {
	d := NewTableDiff("t")
	d.Add(row(1, "a"))
	d.Delete(row(1, "a"))

	assert.True(t, d.IsEmpty())
}

func TestTableDiffAddThenModifyCollapsesToAdd(t *testing.T) {
	d := NewTableDiff("t")
	d.Add(row(1, "a"))
	d.Modify(row(1, "a"), row(1, "b"))

	assert.Len(t, d.Added(), 1)
	assert.Equal(t, "b", d.Added()[1].Values[1].String())
	assert.Empty(t, d.Modified())
}

func TestTableDiffModifyThenDeleteCollapsesToDeleteOfOriginal(t *testing.T) {
	d := NewTableDiff("t")
	d.Modify(row(1, "a"), row(1, "b"))
	d.Delete(row(1, "b"))

	require.Len(t, d.Deleted(), 1)
	assert.Equal(t, "a", d.Deleted()[1].Values[1].String())
}

func TestTableDiffRepeatedModifyKeepsOriginalOld(t *testing.T) {
	d := NewTableDiff("t")
	d.Modify(row(1, "a"), row(1, "b"))
	d.Modify(row(1, "b"), row(1, "c"))

	pair := d.Modified()[1]
	assert.Equal(t, "a", pair[0].Values[1].String())
	assert.Equal(t, "c", pair[1].Values[1].String())
}

func TestTableDiffReverse(t *testing.T) {
	d := NewTableDiff("t")
	d.Add(row(1, "a"))
	d.Delete(row(2, "b"))

	rev := d.Reverse()
	assert.Contains(t, rev.Deleted(), value.RowID(1))
	assert.Contains(t, rev.Added(), value.RowID(2))
}

func TestJournalRecordAndCommit(t *testing.T) {
	j := NewJournal()
	j.RecordInsert("users", row(1, "a"))
	j.RecordDelete("users", row(2, "b"))

	entries := j.Commit()
	assert.Len(t, entries, 2)
	assert.True(t, j.IsEmpty())

	diff, ok := j.TableDiff("users")
	assert.False(t, ok)
	assert.Nil(t, diff)
}

func TestTableDiffChangedRowIDsSorted(t *testing.T) {
	d := NewTableDiff("t")
	d.Add(row(5, "a"))
	d.Add(row(1, "b"))
	d.Delete(row(3, "c"))

	assert.Equal(t, []value.RowID{1, 3, 5}, d.ChangedRowIDs())
}
