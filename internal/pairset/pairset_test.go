package pairset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAndQuery(t *testing.T) {
	t.Parallel()

	s := New()
	s.Add("a.html", "app.a.t0")
	s.Add("b.html", "app.a.t0")

	keys := s.Keys("app.a.t0")
	sort.Strings(keys)
	require.Equal(t, []string{"a.html", "b.html"}, keys)

	require.True(t, s.IsKnownByOther("app.a.t0", "a.html"))
	require.True(t, s.IsKnownByOther("app.a.t0", "b.html"))
	require.True(t, s.IsKnownByOther("app.a.t0", "c.html"))
}

func TestRemoveKeyPrunesEmptyEntries(t *testing.T) {
	t.Parallel()

	s := New()
	s.Add("a.html", "app.a.t0")

	s.RemoveKey("a.html", "app.a.t0")

	require.Nil(t, s.Keys("app.a.t0"))
	require.Nil(t, s.FilesOf("a.html"))
}

func TestRemoveFile(t *testing.T) {
	t.Parallel()

	s := New()
	s.Add("a.html", "app.a.t0")
	s.Add("a.html", "app.a.t1")
	s.Add("b.html", "app.a.t0")

	s.RemoveFile("a.html")

	require.Nil(t, s.FilesOf("a.html"))
	require.Equal(t, []string{"b.html"}, s.Keys("app.a.t0"))
	require.Nil(t, s.Keys("app.a.t1"))
}
