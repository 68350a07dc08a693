package project

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codeberg.org/locoforge/locoforge/config"
	"codeberg.org/locoforge/locoforge/internal/diag"
)

// loadTestConfig writes a minimal YAML config rooted at dir and loads it
// through config.Load, so tests exercise the same compiled-lookup-table
// path production does rather than hand-poking Config's unexported fields.
func loadTestConfig(t *testing.T, dir string) *config.Config {
	t.Helper()

	doc := fmt.Sprintf(`
src: %s
translationData: %s
output: %s
prefix: "app."
locales: [en]
localize:
  div:
    content: text
whitespace:
  "*": Preserve
`, dir, filepath.Join(t.TempDir(), "i18n.json"), filepath.Join(t.TempDir(), "[locale].json"))

	path := filepath.Join(t.TempDir(), "i18n-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	return cfg
}

func TestDerivePrefixBasicFile(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Prefix: "app."}
	src := "/project/src"

	got := derivePrefix(cfg, src, filepath.Join(src, "components", "userCard.html"))
	require.Equal(t, "app.user-card.", got)
}

func TestDerivePrefixIndexUsesParentDir(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Prefix: "app."}
	src := "/project/src"

	got := derivePrefix(cfg, src, filepath.Join(src, "pages", "settings", "index.html"))
	require.Equal(t, "app.settings.", got)
}

func TestDerivePrefixIndexAtRootKeepsIndex(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Prefix: "app."}
	src := "/project/src"

	got := derivePrefix(cfg, src, filepath.Join(src, "index.html"))
	require.Equal(t, "app.index.", got)
}

func TestDerivePrefixSanitizesNonIdentChars(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Prefix: ""}
	src := "/project/src"

	got := derivePrefix(cfg, src, filepath.Join(src, "my cool@page!.html"))
	require.Equal(t, "my-cool-page-.", got)
}

func TestDeduplicateModuleFilenamesKeepsDeepestNested(t *testing.T) {
	t.Parallel()

	paths := []string{
		"/repo/node_modules/pkg-a/locales/en.json",
		"/repo/node_modules/pkg-b/node_modules/pkg-a/locales/en.json",
		"/repo/src/standalone/en.json",
	}

	got := deduplicateModuleFilenames(paths)
	require.Contains(t, got, "/repo/node_modules/pkg-b/node_modules/pkg-a/locales/en.json")
	require.NotContains(t, got, "/repo/node_modules/pkg-a/locales/en.json")
	require.Contains(t, got, "/repo/src/standalone/en.json")
}

func TestUpdateSourceAndProcessJustifiesTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := loadTestConfig(t, dir)

	bus := diag.NewBus()

	var reported []diag.Diagnostic
	bus.Subscribe(func(d diag.Diagnostic) { reported = append(reported, d) })

	proj := New(cfg, bus, true)

	filename := filepath.Join(dir, "home.html")
	now := time.Now()

	proj.updateSource(filename, []byte(`<div>Welcome</div>`), now)
	require.Len(t, proj.unprocessedOrder, 1)

	proj.processSources(now)
	require.Empty(t, proj.unprocessedOrder)

	src := proj.sources[filename]
	require.NotNil(t, src)
	require.Contains(t, string(src.Bytes()), `t="`)
	require.Contains(t, string(src.Bytes()), "app.home.t0")

	require.True(t, proj.modifiedSources[filename])
}

func TestDeleteSourceClearsAllState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := loadTestConfig(t, dir)

	bus := diag.NewBus()
	proj := New(cfg, bus, true)

	filename := filepath.Join(dir, "home.html")
	now := time.Now()

	proj.updateSource(filename, []byte(`<div t="app.greeting">Hi</div>`), now)
	require.Contains(t, proj.sources, filename)
	require.NotEmpty(t, proj.pairs.FilesOf(filename))

	proj.deleteSource(filename)
	require.NotContains(t, proj.sources, filename)
	require.Empty(t, proj.pairs.FilesOf(filename))
	require.Empty(t, proj.unprocessedOrder)
}

func TestHandleModifiedProductionDoesNotReReportAcrossCycles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := loadTestConfig(t, dir)

	bus := diag.NewBus()

	var reported []diag.Diagnostic
	bus.Subscribe(func(d diag.Diagnostic) { reported = append(reported, d) })

	proj := New(cfg, bus, false)

	filename := filepath.Join(dir, "home.html")
	now := time.Now()

	proj.updateSource(filename, []byte(`<div>Welcome</div>`), now)
	proj.processSources(now)

	require.NoError(t, proj.handleModified(Hooks{}))
	firstCount := len(reported)
	require.NotZero(t, firstCount)

	// Nothing changed since the last cycle: a second call must not
	// re-report the same file/DB modification.
	proj.processSources(now)
	require.NoError(t, proj.handleModified(Hooks{}))
	require.Len(t, reported, firstCount)
}

func TestProcessSourcesAllocatesDistinctGeneratedKeysInInsertionOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := loadTestConfig(t, dir)

	bus := diag.NewBus()
	proj := New(cfg, bus, true)

	first := filepath.Join(dir, "first", "view.html")
	second := filepath.Join(dir, "second", "view.html")
	now := time.Now()

	// Both files derive the prefix "app.view." and neither names an existing
	// key, so both compete for the same counter-generated key
	// ("app.view.t0"); insertion order decides who gets it.
	proj.updateSource(first, []byte(`<div>First</div>`), now)
	proj.updateSource(second, []byte(`<div>Second</div>`), now)

	proj.processSources(now)

	firstBytes := string(proj.sources[first].Bytes())
	secondBytes := string(proj.sources[second].Bytes())

	require.Contains(t, firstBytes, `t="app.view.t0"`)
	require.Contains(t, secondBytes, `t="app.view.t1"`)
}
