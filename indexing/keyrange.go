// Package indexing implements the index shapes a RowStore keeps atop its
// rows: ordered (B-tree), equality-only (Hash), and inverted (GIN) over
// Jsonb columns. Every index shares the Index/RangeIndex contract, one
// surface per concern, and lets concrete types satisfy it.
package indexing

import (
	"strconv"
	"strings"

	"veloxdb/value"
)

// Key is a composite index key: one value per indexed column, compared
// lexicographically.
type Key []value.Value

// String renders a composite key as a comma-joined display form, used
// in duplicate-key error messages.
func (k Key) String() string {
	s := ""
	for i, v := range k {
		if i > 0 {
			s += ","
		}
		s += v.String()
	}
	return s
}

// Encode renders a composite key as a length-prefixed, kind-tagged
// string suitable for use as a Go map key — unlike String, it is
// injective across both value kind and embedded separator characters,
// which a plain comma-joined display string is not (a String column
// containing a comma would otherwise collide with a different tuple).
func (k Key) Encode() string {
	var b strings.Builder
	for _, v := range k {
		s := v.String()
		b.WriteString(strconv.Itoa(int(v.Kind())))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}

// CompareKeys orders two composite keys column by column, using
// value.Compare for each component.
func CompareKeys(a, b Key) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := value.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// rangeKind discriminates the variants of KeyRange.
type rangeKind uint8

const (
	rangeAll rangeKind = iota
	rangeOnly
	rangeLower
	rangeUpper
	rangeBound
)

// KeyRange describes a contiguous (or unbounded) span of composite keys
// for a range-index query. The zero value is not meaningful; construct
// with All/Only/LowerBound/UpperBound/Bound.
type KeyRange struct {
	kind           rangeKind
	lower, upper   Key
	lowerEx, upperEx bool
}

// All matches every key.
func All() KeyRange { return KeyRange{kind: rangeAll} }

// Only matches exactly one key (an equality lookup).
func Only(key Key) KeyRange { return KeyRange{kind: rangeOnly, lower: key} }

// LowerBound matches keys >= value (or > value when exclusive).
func LowerBound(key Key, exclusive bool) KeyRange {
	return KeyRange{kind: rangeLower, lower: key, lowerEx: exclusive}
}

// UpperBound matches keys <= value (or < value when exclusive).
func UpperBound(key Key, exclusive bool) KeyRange {
	return KeyRange{kind: rangeUpper, upper: key, upperEx: exclusive}
}

// Bound matches keys between lower and upper, each independently
// inclusive or exclusive.
func Bound(lower, upper Key, lowerEx, upperEx bool) KeyRange {
	return KeyRange{kind: rangeBound, lower: lower, upper: upper, lowerEx: lowerEx, upperEx: upperEx}
}

// IsAll reports whether r is the unbounded range.
func (r KeyRange) IsAll() bool { return r.kind == rangeAll }

// IsOnly reports whether r is a single-key equality range.
func (r KeyRange) IsOnly() bool { return r.kind == rangeOnly }

// OnlyKey returns the equality key of an Only range.
func (r KeyRange) OnlyKey() Key { return r.lower }

// Contains reports whether key falls within r.
func (r KeyRange) Contains(key Key) bool {
	switch r.kind {
	case rangeAll:
		return true
	case rangeOnly:
		return CompareKeys(key, r.lower) == 0
	case rangeLower:
		c := CompareKeys(key, r.lower)
		if r.lowerEx {
			return c > 0
		}
		return c >= 0
	case rangeUpper:
		c := CompareKeys(key, r.upper)
		if r.upperEx {
			return c < 0
		}
		return c <= 0
	case rangeBound:
		lc := CompareKeys(key, r.lower)
		lowOK := lc > 0
		if !r.lowerEx {
			lowOK = lc >= 0
		}
		uc := CompareKeys(key, r.upper)
		upOK := uc < 0
		if !r.upperEx {
			upOK = uc <= 0
		}
		return lowOK && upOK
	default:
		return false
	}
}

// Overlaps reports whether r and other share at least one key, mirroring
// the predicate-pushdown/index-selection passes' need to know whether
// two pushed-down ranges on the same index can be merged.
func (r KeyRange) Overlaps(other KeyRange) bool {
	if r.IsAll() || other.IsAll() {
		return true
	}
	switch {
	case r.kind == rangeOnly && other.kind == rangeOnly:
		return CompareKeys(r.lower, other.lower) == 0
	case r.kind == rangeOnly:
		return other.Contains(r.lower)
	case other.kind == rangeOnly:
		return r.Contains(other.lower)
	case r.kind == rangeLower && other.kind == rangeLower:
		return true
	case r.kind == rangeUpper && other.kind == rangeUpper:
		return true
	case r.kind == rangeLower && other.kind == rangeUpper:
		return lowerUpperOverlap(r, other)
	case r.kind == rangeUpper && other.kind == rangeLower:
		return lowerUpperOverlap(other, r)
	case r.kind == rangeBound && other.kind == rangeBound:
		firstBeforeSecond := boundedBefore(r.upper, r.upperEx, other.lower, other.lowerEx)
		secondBeforeFirst := boundedBefore(other.upper, other.upperEx, r.lower, r.lowerEx)
		return !firstBeforeSecond && !secondBeforeFirst
	case r.kind == rangeBound && other.kind == rangeLower:
		return boundLowerOverlap(r, other)
	case r.kind == rangeLower && other.kind == rangeBound:
		return boundLowerOverlap(other, r)
	case r.kind == rangeBound && other.kind == rangeUpper:
		return boundUpperOverlap(r, other)
	case r.kind == rangeUpper && other.kind == rangeBound:
		return boundUpperOverlap(other, r)
	default:
		return true
	}
}

func lowerUpperOverlap(lower, upper KeyRange) bool {
	if lower.lowerEx || upper.upperEx {
		return lower.lower != nil && upper.upper != nil && CompareKeys(lower.lower, upper.upper) < 0
	}
	return CompareKeys(lower.lower, upper.upper) <= 0
}

// boundedBefore reports whether a Bound range ending at (upper, upperEx)
// lies entirely before one starting at (lower, lowerEx).
func boundedBefore(upper Key, upperEx bool, lower Key, lowerEx bool) bool {
	if upperEx || lowerEx {
		return CompareKeys(upper, lower) <= 0
	}
	return CompareKeys(upper, lower) < 0
}

func boundLowerOverlap(bound, lower KeyRange) bool {
	if bound.upperEx || lower.lowerEx {
		return CompareKeys(bound.upper, lower.lower) > 0
	}
	return CompareKeys(bound.upper, lower.lower) >= 0
}

func boundUpperOverlap(bound, upper KeyRange) bool {
	if bound.lowerEx || upper.upperEx {
		return CompareKeys(bound.lower, upper.upper) < 0
	}
	return CompareKeys(bound.lower, upper.upper) <= 0
}
