package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenListIdempotentOnFlat(t *testing.T) {
	in := []any{1, 2, 3}
	assert.Equal(t, in, FlattenList(in))
	assert.Equal(t, FlattenList(in), FlattenList(FlattenList(in)))
}

func TestFlattenListPreservesOrderOnNested(t *testing.T) {
	in := []any{1, []any{2, 3}, []any{[]any{4}, 5}, 6}
	assert.Equal(t, []any{1, 2, 3, 4, 5, 6}, FlattenList(in))
}

func TestFlattenListEmpty(t *testing.T) {
	assert.Empty(t, FlattenList(nil))
	assert.Empty(t, FlattenList([]any{}))
}

func TestDictProductEnumeratesAllCombinations(t *testing.T) {
	got := DictProduct(map[string][]any{"a": {1, 2}})
	assert.ElementsMatch(t, []map[string]any{{"a": 1}, {"a": 2}}, got)
}

func TestDictProductTwoKeys(t *testing.T) {
	got := DictProduct(map[string][]any{"a": {1, 2}, "b": {"x", "y"}})
	assert.Len(t, got, 4)
	assert.Contains(t, got, map[string]any{"a": 1, "b": "x"})
	assert.Contains(t, got, map[string]any{"a": 2, "b": "y"})
}

func TestDictProductEmpty(t *testing.T) {
	assert.Nil(t, DictProduct(map[string][]any{}))
}
