package transdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codeberg.org/locoforge/locoforge/internal/diag"
)

func TestUpdateKeysAddsAndRemoves(t *testing.T) {
	t.Parallel()

	db := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	changed := db.UpdateKeys("a.html", []ExtractedKey{{Key: "app.a.t0", Content: "hello"}}, now)
	require.True(t, changed)

	fr, ok := db.FileRecord("a.html")
	require.True(t, ok)
	ts, ok := fr.Get("app.a.t0")
	require.True(t, ok)
	require.Equal(t, "hello", ts.SourceContent)

	later := now.Add(time.Hour)
	changed = db.UpdateKeys("a.html", nil, later)
	require.True(t, changed)

	fr, ok = db.FileRecord("a.html")
	require.True(t, ok)
	require.True(t, fr.Empty())
}

func TestUpdateKeysRemovalPushesObsoleteOnlyWithTranslations(t *testing.T) {
	t.Parallel()

	db := New()
	now := time.Now().UTC()

	db.UpdateKeys("a.html", []ExtractedKey{{Key: "app.a.t0", Content: "hello"}}, now)

	fr, _ := db.FileRecord("a.html")
	ts, _ := fr.Get("app.a.t0")
	ts.Translations["de"] = Locale{Content: "hallo", LastModified: now}

	db.UpdateKeys("a.html", nil, now.Add(time.Hour))

	require.Len(t, db.Obsolete, 1)
	require.Equal(t, "hello", db.Obsolete[0].Content)
	require.Equal(t, "hallo", db.Obsolete[0].Translations["de"])
}

func TestCopyTranslationsFromSameFile(t *testing.T) {
	t.Parallel()

	db := New()
	now := time.Now().UTC()

	db.UpdateKeys("b.html", []ExtractedKey{{Key: "app.test.t0", Content: "test"}}, now)
	fr, _ := db.FileRecord("b.html")
	ts, _ := fr.Get("app.test.t0")
	ts.Translations["de"] = Locale{Content: "Test", LastModified: now}

	ok := db.CopyTranslations("b.html", "app.test.t0", "app.test.t1", nil, now.Add(time.Hour))
	require.True(t, ok)

	fr, _ = db.FileRecord("b.html")
	clone, ok := fr.Get("app.test.t1")
	require.True(t, ok)
	require.Equal(t, "Test", clone.Translations["de"].Content)
	require.True(t, clone.SourceLastModified.After(ts.SourceLastModified))
}

func TestCopyTranslationsFromHintFile(t *testing.T) {
	t.Parallel()

	db := New()
	now := time.Now().UTC()

	db.UpdateKeys("a.html", []ExtractedKey{{Key: "app.test.t0", Content: "test"}}, now)
	fr, _ := db.FileRecord("a.html")
	ts, _ := fr.Get("app.test.t0")
	ts.Translations["de"] = Locale{Content: "Test", LastModified: now}

	ok := db.CopyTranslations("b.html", "app.test.t0", "app.test.t1", []string{"a.html"}, now)
	require.True(t, ok)

	frB, ok := db.FileRecord("b.html")
	require.True(t, ok)
	clone, ok := frB.Get("app.test.t1")
	require.True(t, ok)
	require.Equal(t, "Test", clone.Translations["de"].Content)
}

func TestDeleteFilePushesObsolete(t *testing.T) {
	t.Parallel()

	db := New()
	now := time.Now().UTC()

	db.UpdateKeys("a.html", []ExtractedKey{{Key: "app.a.t0", Content: "hello"}}, now)
	fr, _ := db.FileRecord("a.html")
	ts, _ := fr.Get("app.a.t0")
	ts.Translations["de"] = Locale{Content: "hallo", LastModified: now}

	db.DeleteFile("a.html")

	_, ok := db.FileRecord("a.html")
	require.False(t, ok)
	require.Len(t, db.Obsolete, 1)
}

func TestCompileEmitsMissingAndOutdated(t *testing.T) {
	t.Parallel()

	db := New()
	now := time.Now().UTC()

	db.UpdateKeys("a.html", []ExtractedKey{{Key: "app.a.t0", Content: "hello"}, {Key: "app.a.t1", Content: "world"}}, now)

	fr, _ := db.FileRecord("a.html")
	ts0, _ := fr.Get("app.a.t0")
	ts0.Translations["de"] = Locale{Content: "hallo", LastModified: now.Add(time.Hour)}

	ts1, _ := fr.Get("app.a.t1")
	ts1.Translations["de"] = Locale{Content: "stale", LastModified: now.Add(-time.Hour)}

	var kinds []diag.Kind

	bus := diag.NewBus()
	bus.Subscribe(func(d diag.Diagnostic) { kinds = append(kinds, d.Kind) })

	trees := Compile(db, CompileConfig{SourceLocale: "en", Locales: []string{"en", "de"}}, bus)

	v, ok := trees["en"].Get("app.a.t0")
	require.True(t, ok)
	require.Equal(t, "hello", v)

	v, ok = trees["de"].Get("app.a.t0")
	require.True(t, ok)
	require.Equal(t, "hallo", v)

	_, ok = trees["de"].Get("app.a.t1")
	require.False(t, ok, "outdated translation is not emitted")

	require.Contains(t, kinds, diag.OutdatedTranslation)
}

func TestCompileUnknownLocale(t *testing.T) {
	t.Parallel()

	db := New()
	now := time.Now().UTC()

	db.UpdateKeys("a.html", []ExtractedKey{{Key: "app.a.t0", Content: "hello"}}, now)
	fr, _ := db.FileRecord("a.html")
	ts, _ := fr.Get("app.a.t0")
	ts.Translations["fr"] = Locale{Content: "bonjour", LastModified: now}

	var kinds []diag.Kind

	bus := diag.NewBus()
	bus.Subscribe(func(d diag.Diagnostic) { kinds = append(kinds, d.Kind) })

	Compile(db, CompileConfig{SourceLocale: "en", Locales: []string{"en"}}, bus)

	require.Contains(t, kinds, diag.UnknownLocale)
}
