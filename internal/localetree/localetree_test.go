package localetree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetNestedPaths(t *testing.T) {
	t.Parallel()

	tree := New()
	require.True(t, tree.Set("a.b.c", "hello"))

	v, ok := tree.Get("a.b.c")
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestSetCollisionLeafThenSubtree(t *testing.T) {
	t.Parallel()

	tree := New()
	require.True(t, tree.Set("a.b", "leaf"))
	require.False(t, tree.Set("a.b.c", "nested"), "a.b is already a leaf")
}

func TestSetCollisionFinalSegmentExists(t *testing.T) {
	t.Parallel()

	tree := New()
	require.True(t, tree.Set("a.b", "one"))
	require.False(t, tree.Set("a.b", "two"), "a.b already has a value")
}

func TestMergeNonConflicting(t *testing.T) {
	t.Parallel()

	target := New()
	target.Set("a.b", "1")

	source := New()
	source.Set("a.c", "2")

	var collisions []string
	Merge(target, source, func(path string) { collisions = append(collisions, path) })

	require.Empty(t, collisions)

	v, ok := target.Get("a.c")
	require.True(t, ok)
	require.Equal(t, "2", v)
}

func TestMergeCollisionBothLeaves(t *testing.T) {
	t.Parallel()

	target := New()
	target.Set("a.b", "1")

	source := New()
	source.Set("a.b", "2")

	var collisions []string
	Merge(target, source, func(path string) { collisions = append(collisions, path) })

	require.Equal(t, []string{"a.b"}, collisions)

	v, _ := target.Get("a.b")
	require.Equal(t, "1", v, "target wins on collision")
}

func TestMergeCollisionLeafVsSubtree(t *testing.T) {
	t.Parallel()

	target := New()
	target.Set("a.b", "1")

	source := New()
	source.Set("a.b.c", "nested")

	var collisions []string
	Merge(target, source, func(path string) { collisions = append(collisions, path) })

	require.Equal(t, []string{"a.b"}, collisions)
}

func TestToMap(t *testing.T) {
	t.Parallel()

	tree := New()
	tree.Set("a.b", "1")
	tree.Set("a.c", "2")

	m := tree.ToMap()
	sub, ok := m["a"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "1", sub["b"])
	require.Equal(t, "2", sub["c"])
}
