package tattr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBareKey(t *testing.T) {
	t.Parallel()

	a, err := Parse("app.view.t0")
	require.NoError(t, err)

	key, ok := a.Get(Text)
	require.True(t, ok)
	require.Equal(t, "app.view.t0", key)
}

func TestParseGroupedAttributes(t *testing.T) {
	t.Parallel()

	a, err := Parse("[title,aria-label]app.view.t1;app.view.t2")
	require.NoError(t, err)

	title, _ := a.Get("title")
	aria, _ := a.Get("aria-label")
	text, _ := a.Get(Text)

	require.Equal(t, "app.view.t1", title)
	require.Equal(t, "app.view.t1", aria)
	require.Equal(t, "app.view.t2", text)
}

func TestParseDuplicateTargetFails(t *testing.T) {
	t.Parallel()

	_, err := Parse("[title]app.a;[title]app.b")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseInvalidKeyFails(t *testing.T) {
	t.Parallel()

	_, err := Parse("bad key with spaces")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestSetEnforcesTextHTMLExclusivity(t *testing.T) {
	t.Parallel()

	a := New()
	a.Set(Text, "app.a.t0")
	a.Set(HTML, "app.a.t1")

	_, hasText := a.Get(Text)
	html, hasHTML := a.Get(HTML)

	require.False(t, hasText)
	require.True(t, hasHTML)
	require.Equal(t, "app.a.t1", html)
}

func TestStringRoundTripGrouping(t *testing.T) {
	t.Parallel()

	a := New()
	a.Set("title", "app.a.t0")
	a.Set("aria-label", "app.a.t0")
	a.Set(Text, "app.a.t1")

	require.Equal(t, "[title,aria-label]app.a.t0;app.a.t1", a.String())
}

func TestStringBareTextKey(t *testing.T) {
	t.Parallel()

	a := New()
	a.Set(Text, "app.a.t0")

	require.Equal(t, "app.a.t0", a.String())
}

func TestParseWhitespaceTolerance(t *testing.T) {
	t.Parallel()

	a, err := Parse(" [ title , aria-label ] app.a.t0 ; app.a.t1 ")
	require.NoError(t, err)

	title, _ := a.Get("title")
	require.Equal(t, "app.a.t0", title)

	text, _ := a.Get(Text)
	require.Equal(t, "app.a.t1", text)
}
