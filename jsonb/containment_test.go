package jsonb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func obj(members ...Member) Value { return Value{Kind: KindObject, Object: members} }
func str(s string) Value          { return Value{Kind: KindString, Str: s} }

func TestContainsObjectSubset(t *testing.T) {
	outer := obj(
		Member{Key: "status", Value: str("active")},
		Member{Key: "kind", Value: str("user")},
	)
	inner := obj(Member{Key: "status", Value: str("active")})

	assert.True(t, Contains(outer, inner))
}

func TestContainsObjectMissingKeyFails(t *testing.T) {
	outer := obj(Member{Key: "status", Value: str("active")})
	inner := obj(Member{Key: "kind", Value: str("user")})

	assert.False(t, Contains(outer, inner))
}

func TestContainsObjectValueMismatchFails(t *testing.T) {
	outer := obj(Member{Key: "status", Value: str("closed")})
	inner := obj(Member{Key: "status", Value: str("active")})

	assert.False(t, Contains(outer, inner))
}

func TestTopLevelKeysAndPairs(t *testing.T) {
	doc := obj(
		Member{Key: "status", Value: str("active")},
		Member{Key: "kind", Value: str("user")},
	)

	assert.ElementsMatch(t, []string{"status", "kind"}, TopLevelKeys(doc))
	assert.ElementsMatch(t, [][2]string{{"status", "active"}, {"kind", "user"}}, TopLevelScalarPairs(doc))
}
