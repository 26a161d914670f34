package schema

// ConstraintTiming controls whether a foreign key is validated on every
// mutating call (Immediate) or deferred to commit time (Deferred).
type ConstraintTiming uint8

const (
	Immediate ConstraintTiming = iota
	Deferred
)

// ForeignKeyAction selects what happens to child rows when the
// referenced parent row is deleted or its key is updated.
type ForeignKeyAction uint8

const (
	Restrict ForeignKeyAction = iota
	Cascade
	SetNull
	NoAction
)

// ForeignKey describes a parent/child column relationship between two
// tables.
type ForeignKey struct {
	Name          string
	ChildColumn   string
	ParentTable   string
	ParentColumn  string
	Timing        ConstraintTiming
	OnDeleteAction ForeignKeyAction
	OnUpdateAction ForeignKeyAction
}

// Constraints bundles the constraint surface of a table: which columns
// are not-nullable (beyond what Column.Nullable already encodes — kept
// for constraints declared independently of column definitions) and
// which foreign keys reference other tables. Primary-key and unique
// constraints are represented as IndexDefs (a unique index doubles as
// the constraint).
type Constraints struct {
	notNullable  map[string]bool
	foreignKeys  []ForeignKey
}

// NewConstraints returns an empty constraint set.
func NewConstraints() *Constraints {
	return &Constraints{notNullable: make(map[string]bool)}
}

// MarkNotNullable records that column must never hold Null.
func (c *Constraints) MarkNotNullable(column string) {
	c.notNullable[column] = true
}

// NotNullable reports whether column is covered by a not-null
// constraint.
func (c *Constraints) NotNullable(column string) bool {
	return c.notNullable[column]
}

// NotNullableColumns returns every column name under a not-null
// constraint.
func (c *Constraints) NotNullableColumns() []string {
	out := make([]string, 0, len(c.notNullable))
	for name := range c.notNullable {
		out = append(out, name)
	}
	return out
}

// AddForeignKey registers a foreign-key constraint.
func (c *Constraints) AddForeignKey(fk ForeignKey) {
	c.foreignKeys = append(c.foreignKeys, fk)
}

// ForeignKeys returns every foreign key declared on this table (as
// child).
func (c *Constraints) ForeignKeys() []ForeignKey {
	return c.foreignKeys
}
