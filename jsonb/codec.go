// Package jsonb implements the binary encoding used by value.Jsonb
// cells: a deterministic, tag-prefixed format where object keys are
// stored in ascending UTF-8 byte order so that binary equality implies
// semantic equality. This package implements only the wire codec and
// the containment primitive GIN indexing needs, not a standalone
// JSONPath query language.
package jsonb

import (
	"encoding/binary"
	"errors"
	"math"
	"sort"
)

// Tag bytes identifying each encoded value's shape.
const (
	TagNull   byte = 0x00
	TagFalse  byte = 0x01
	TagTrue   byte = 0x02
	TagNumber byte = 0x03
	TagString byte = 0x04
	TagArray  byte = 0x05
	TagObject byte = 0x06
)

// Kind discriminates the decoded shape of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a decoded JSONB document (or sub-document).
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Array  []Value
	Object []Member // sorted by Key, ascending UTF-8 byte order
}

// Member is one key/value pair of a decoded object.
type Member struct {
	Key   string
	Value Value
}

var errTruncated = errors.New("jsonb: truncated encoding")

// Encode serializes v into the deterministic binary form. Object
// members are re-sorted by key so that two semantically equal documents
// always encode identically.
func Encode(v Value) []byte {
	var buf []byte
	return appendValue(buf, v)
}

func appendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindNull:
		return append(buf, TagNull)
	case KindBool:
		if v.Bool {
			return append(buf, TagTrue)
		}
		return append(buf, TagFalse)
	case KindNumber:
		buf = append(buf, TagNumber)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.Number))
		return append(buf, b[:]...)
	case KindString:
		buf = append(buf, TagString)
		buf = appendVarint(buf, uint64(len(v.Str)))
		return append(buf, v.Str...)
	case KindArray:
		buf = append(buf, TagArray)
		buf = appendVarint(buf, uint64(len(v.Array)))
		for _, elem := range v.Array {
			buf = appendValue(buf, elem)
		}
		return buf
	case KindObject:
		members := append([]Member(nil), v.Object...)
		sort.Slice(members, func(i, j int) bool { return members[i].Key < members[j].Key })
		buf = append(buf, TagObject)
		buf = appendVarint(buf, uint64(len(members)))
		for _, m := range members {
			buf = appendVarint(buf, uint64(len(m.Key)))
			buf = append(buf, m.Key...)
			buf = appendValue(buf, m.Value)
		}
		return buf
	default:
		return append(buf, TagNull)
	}
}

// Decode parses a single JSONB document from the start of b, returning
// the decoded value and the number of bytes consumed.
func Decode(b []byte) (Value, int, error) {
	if len(b) == 0 {
		return Value{}, 0, errTruncated
	}
	tag := b[0]
	switch tag {
	case TagNull:
		return Value{Kind: KindNull}, 1, nil
	case TagFalse:
		return Value{Kind: KindBool, Bool: false}, 1, nil
	case TagTrue:
		return Value{Kind: KindBool, Bool: true}, 1, nil
	case TagNumber:
		if len(b) < 9 {
			return Value{}, 0, errTruncated
		}
		bits := binary.LittleEndian.Uint64(b[1:9])
		return Value{Kind: KindNumber, Number: math.Float64frombits(bits)}, 9, nil
	case TagString:
		n, consumed, err := readVarint(b[1:])
		if err != nil {
			return Value{}, 0, err
		}
		start := 1 + consumed
		end := start + int(n)
		if end > len(b) {
			return Value{}, 0, errTruncated
		}
		return Value{Kind: KindString, Str: string(b[start:end])}, end, nil
	case TagArray:
		count, consumed, err := readVarint(b[1:])
		if err != nil {
			return Value{}, 0, err
		}
		pos := 1 + consumed
		elems := make([]Value, 0, count)
		for i := uint64(0); i < count; i++ {
			elem, n, err := Decode(b[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			elems = append(elems, elem)
			pos += n
		}
		return Value{Kind: KindArray, Array: elems}, pos, nil
	case TagObject:
		count, consumed, err := readVarint(b[1:])
		if err != nil {
			return Value{}, 0, err
		}
		pos := 1 + consumed
		members := make([]Member, 0, count)
		for i := uint64(0); i < count; i++ {
			keyLen, n, err := readVarint(b[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			pos += n
			keyEnd := pos + int(keyLen)
			if keyEnd > len(b) {
				return Value{}, 0, errTruncated
			}
			key := string(b[pos:keyEnd])
			pos = keyEnd
			val, n, err := Decode(b[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			pos += n
			members = append(members, Member{Key: key, Value: val})
		}
		return Value{Kind: KindObject, Object: members}, pos, nil
	default:
		return Value{}, 0, errTruncated
	}
}

func appendVarint(buf []byte, n uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	w := binary.PutUvarint(tmp[:], n)
	return append(buf, tmp[:w]...)
}

func readVarint(b []byte) (uint64, int, error) {
	n, w := binary.Uvarint(b)
	if w <= 0 {
		return 0, 0, errTruncated
	}
	return n, w, nil
}
