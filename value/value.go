// Package value defines the tagged scalar type stored in every database
// cell, along with its total ordering and equality rules.
package value

import (
	"fmt"
	"math"
)

// Kind tags the variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInt32
	KindInt64
	KindFloat64
	KindString
	KindDateTime
	KindBytes
	KindJsonb
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindDateTime:
		return "datetime"
	case KindBytes:
		return "bytes"
	case KindJsonb:
		return "jsonb"
	default:
		return "unknown"
	}
}

// Value is a sum type over the scalar/bytes/JSONB variants a row cell can
// hold. DateTime is milliseconds since the Unix epoch; Jsonb carries an
// opaque, already-encoded binary blob (see package jsonb for the codec).
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	bytes []byte
}

func Null() Value                { return Value{kind: KindNull} }
func Boolean(b bool) Value        { return Value{kind: KindBoolean, b: b} }
func Int32(i int32) Value         { return Value{kind: KindInt32, i: int64(i)} }
func Int64(i int64) Value         { return Value{kind: KindInt64, i: i} }
func Float64(f float64) Value     { return Value{kind: KindFloat64, f: f} }
func String(s string) Value       { return Value{kind: KindString, s: s} }
func DateTime(ms int64) Value     { return Value{kind: KindDateTime, i: ms} }
func Bytes(b []byte) Value        { return Value{kind: KindBytes, bytes: append([]byte(nil), b...)} }
func Jsonb(encoded []byte) Value  { return Value{kind: KindJsonb, bytes: append([]byte(nil), encoded...)} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

func (v Value) AsInt32() (int32, bool) {
	if v.kind != KindInt32 {
		return 0, false
	}
	return int32(v.i), true
}

func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInt64 {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindFloat64 {
		return 0, false
	}
	return v.f, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsDateTime() (int64, bool) {
	if v.kind != KindDateTime {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.bytes, true
}

func (v Value) AsJsonb() ([]byte, bool) {
	if v.kind != KindJsonb {
		return nil, false
	}
	return v.bytes, true
}

// DefaultForKind returns the zero value for a data type, used when a
// column default is unspecified but the column is non-nullable.
func DefaultForKind(k Kind) Value {
	switch k {
	case KindBoolean:
		return Boolean(false)
	case KindInt32:
		return Int32(0)
	case KindInt64:
		return Int64(0)
	case KindFloat64:
		return Float64(0)
	case KindString:
		return String("")
	case KindDateTime:
		return DateTime(0)
	case KindBytes, KindJsonb:
		return Null()
	default:
		return Null()
	}
}

// Equal implements value equality with a NaN==NaN override: two
// Float64 NaNs compare equal to each other, unlike IEEE 754 comparison.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindInt32, KindInt64, KindDateTime:
		return a.i == b.i
	case KindFloat64:
		if math.IsNaN(a.f) && math.IsNaN(b.f) {
			return true
		}
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindBytes, KindJsonb:
		return bytesEqual(a.bytes, b.bytes)
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Compare defines a total order: Null sorts least, then a fixed type
// order, with numeric promotion across Int32/Int64/Float64 and NaN
// sorting greatest among floats.
func Compare(a, b Value) int {
	if a.kind == KindNull && b.kind == KindNull {
		return 0
	}
	if a.kind == KindNull {
		return -1
	}
	if b.kind == KindNull {
		return 1
	}

	if isNumeric(a.kind) && isNumeric(b.kind) {
		return compareNumeric(a, b)
	}

	if a.kind != b.kind {
		return compareInt(int(a.kind), int(b.kind))
	}

	switch a.kind {
	case KindBoolean:
		return compareBool(a.b, b.b)
	case KindString:
		return compareStr(a.s, b.s)
	case KindDateTime:
		return compareInt64(a.i, b.i)
	case KindBytes, KindJsonb:
		return compareBytes(a.bytes, b.bytes)
	default:
		return 0
	}
}

func isNumeric(k Kind) bool {
	return k == KindInt32 || k == KindInt64 || k == KindFloat64
}

// compareNumeric promotes Int32/Int64 to float64 for cross-type
// comparison against Float64, with NaN sorted greatest.
func compareNumeric(a, b Value) int {
	if a.kind == KindFloat64 || b.kind == KindFloat64 {
		af, bf := numericAsFloat(a), numericAsFloat(b)
		aNaN, bNaN := a.kind == KindFloat64 && math.IsNaN(a.f), b.kind == KindFloat64 && math.IsNaN(b.f)
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		default:
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	// Both Int32/Int64: promote to int64.
	return compareInt64(numericAsInt64(a), numericAsInt64(b))
}

func numericAsFloat(v Value) float64 {
	switch v.kind {
	case KindInt32, KindInt64:
		return float64(v.i)
	case KindFloat64:
		return v.f
	default:
		return 0
	}
}

func numericAsInt64(v Value) int64 {
	switch v.kind {
	case KindInt32, KindInt64:
		return v.i
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func compareStr(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return compareInt(len(a), len(b))
}

// Less reports whether a sorts before b under Compare.
func Less(a, b Value) bool { return Compare(a, b) < 0 }

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBoolean:
		return fmt.Sprintf("%t", v.b)
	case KindInt32, KindInt64:
		return fmt.Sprintf("%d", v.i)
	case KindFloat64:
		return fmt.Sprintf("%v", v.f)
	case KindString:
		return v.s
	case KindDateTime:
		return fmt.Sprintf("dt:%d", v.i)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bytes))
	case KindJsonb:
		return fmt.Sprintf("jsonb(%d)", len(v.bytes))
	default:
		return "?"
	}
}
