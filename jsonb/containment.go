package jsonb

import "fmt"

// Contains implements the `@>` containment operator (e.g.
// `payload @> {status:"active", kind:"user"}`): outer contains inner
// iff every member of inner (recursively) is present with an equal
// value in outer. Arrays contain an inner array iff every element of
// inner has a matching element in outer (order-independent).
func Contains(outer, inner Value) bool {
	switch inner.Kind {
	case KindObject:
		if outer.Kind != KindObject {
			return false
		}
		for _, im := range inner.Object {
			ov, ok := lookup(outer, im.Key)
			if !ok || !Contains(ov, im.Value) {
				return false
			}
		}
		return true
	case KindArray:
		if outer.Kind != KindArray {
			return false
		}
		for _, ie := range inner.Array {
			found := false
			for _, oe := range outer.Array {
				if Contains(oe, ie) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return Equal(outer, inner)
	}
}

func lookup(obj Value, key string) (Value, bool) {
	for _, m := range obj.Object {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports scalar/structural equality between two decoded values.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindString:
		return a.Str == b.Str
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.Object) != len(b.Object) {
			return false
		}
		for i := range a.Object {
			if a.Object[i].Key != b.Object[i].Key || !Equal(a.Object[i].Value, b.Object[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ScalarString renders a scalar Value the way GIN's key_value_index
// expects its (key, value) pair components: a display string, not a
// re-parseable encoding.
func ScalarString(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindNumber:
		return fmt.Sprintf("%v", v.Number)
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// TopLevelKeys returns the immediate member keys of a top-level object,
// the set GIN's key_index populates for the `?` existence operator.
func TopLevelKeys(v Value) []string {
	if v.Kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.Object))
	for i, m := range v.Object {
		keys[i] = m.Key
	}
	return keys
}

// TopLevelScalarPairs returns (key, value) pairs for every top-level
// member whose value is a scalar, the set GIN's key_value_index
// populates for the `@>` containment operator on single-level objects.
func TopLevelScalarPairs(v Value) [][2]string {
	if v.Kind != KindObject {
		return nil
	}
	var pairs [][2]string
	for _, m := range v.Object {
		switch m.Value.Kind {
		case KindNull, KindBool, KindNumber, KindString:
			pairs = append(pairs, [2]string{m.Key, ScalarString(m.Value)})
		}
	}
	return pairs
}
