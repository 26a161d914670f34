package jsonb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripScalars(t *testing.T) {
	cases := []Value{
		{Kind: KindNull},
		{Kind: KindBool, Bool: true},
		{Kind: KindBool, Bool: false},
		{Kind: KindNumber, Number: 3.5},
		{Kind: KindString, Str: "hello"},
	}
	for _, v := range cases {
		enc := Encode(v)
		dec, n, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		assert.True(t, Equal(v, dec))
	}
}

func TestEncodeDecodeArray(t *testing.T) {
	v := Value{Kind: KindArray, Array: []Value{
		{Kind: KindNumber, Number: 1},
		{Kind: KindString, Str: "a"},
	}}
	enc := Encode(v)
	dec, n, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.True(t, Equal(v, dec))
}

func TestEncodeObjectSortsKeys(t *testing.T) {
	v := Value{Kind: KindObject, Object: []Member{
		{Key: "zeta", Value: Value{Kind: KindNumber, Number: 1}},
		{Key: "alpha", Value: Value{Kind: KindNumber, Number: 2}},
	}}
	enc := Encode(v)
	dec, _, err := Decode(enc)
	require.NoError(t, err)
	require.Len(t, dec.Object, 2)
	assert.Equal(t, "alpha", dec.Object[0].Key)
	assert.Equal(t, "zeta", dec.Object[1].Key)
}

func TestEncodeIsDeterministicAcrossMemberOrder(t *testing.T) {
	a := Value{Kind: KindObject, Object: []Member{
		{Key: "a", Value: Value{Kind: KindBool, Bool: true}},
		{Key: "b", Value: Value{Kind: KindNull}},
	}}
	b := Value{Kind: KindObject, Object: []Member{
		{Key: "b", Value: Value{Kind: KindNull}},
		{Key: "a", Value: Value{Kind: KindBool, Bool: true}},
	}}
	assert.Equal(t, Encode(a), Encode(b))
}

func TestDecodeTruncatedReturnsError(t *testing.T) {
	_, _, err := Decode([]byte{TagNumber, 1, 2})
	assert.Error(t, err)
}
