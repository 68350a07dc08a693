package template

import (
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/source"
	"codeberg.org/locoforge/locoforge/internal/tattr"
)

func divTextConfig(tag string) (source.LocalizedElement, bool) {
	if tag == "div" {
		return source.LocalizedElement{Content: tattr.Text}, true
	}

	return source.LocalizedElement{}, false
}

func baseCfg(prefix string) source.JustifyConfig {
	return source.JustifyConfig{
		Prefix:              prefix,
		GetLocalizedElement: divTextConfig,
		IsReserved:          func(string) bool { return false },
	}
}

func TestJustifyS1InitialAllocation(t *testing.T) {
	t.Parallel()

	src := New("src/view.html", []byte(`<template><div>test</div></template>`))

	bus := diag.NewBus()
	result := src.Justify(baseCfg("app.view."), bus)

	require.True(t, result.Modified)
	require.Equal(t, `<template><div t="app.view.t0">test</div></template>`, string(result.NewBytes))
}

func TestJustifyS2MixedContentDiagnosticNoChange(t *testing.T) {
	t.Parallel()

	src := New("src/view.html", []byte(`<div>foo<span>bar</span></div>`))

	var kinds []diag.Kind

	bus := diag.NewBus()
	bus.Subscribe(func(d diag.Diagnostic) { kinds = append(kinds, d.Kind) })

	result := src.Justify(baseCfg("app.view."), bus)

	require.Contains(t, kinds, diag.MixedContent)
	require.Contains(t, string(result.NewBytes), `t="app.view.t0"`)
	require.Contains(t, string(result.NewBytes), `>foo<span>bar</span></div>`, "the element's text is left unchanged")
}

func TestJustifyS3ReservedKeyAcrossFiles(t *testing.T) {
	t.Parallel()

	src := New("src/b.html", []byte(`<div t="app.test.t0">test</div>`))

	cfg := baseCfg("app.test.")
	cfg.IsReserved = func(k string) bool { return k == "app.test.t0" }

	bus := diag.NewBus()
	result := src.Justify(cfg, bus)

	require.True(t, result.Modified)
	require.Equal(t, `<div t="app.test.t1">test</div>`, string(result.NewBytes))
	require.True(t, result.ReplacedKeys["app.test.t0"]["app.test.t1"])
}

func TestJustifyS4WrongPrefixReplacement(t *testing.T) {
	t.Parallel()

	src := New("src/x.html", []byte(`<div t="foo.t7">test</div>`))

	bus := diag.NewBus()
	result := src.Justify(baseCfg("test."), bus)

	require.Equal(t, `<div t="test.t0">test</div>`, string(result.NewBytes))
	require.True(t, result.ReplacedKeys["foo.t7"]["test.t0"])
}

func TestJustifyS5WhitespaceCollapseExtraction(t *testing.T) {
	t.Parallel()

	src := New("src/x.html", []byte(`<div t="t0">  foo  1  </div>`))

	bus := diag.NewBus()

	kvs := src.Extract(bus, nil, nil, func(tag, target string) source.WhitespacePolicy {
		return source.Collapse
	})

	require.Len(t, kvs, 1)
	require.Equal(t, " foo 1 ", kvs[0].Content)
}

func TestJustifyIdempotentOnSecondRun(t *testing.T) {
	t.Parallel()

	src := New("src/view.html", []byte(`<div>test</div>`))

	bus := diag.NewBus()
	first := src.Justify(baseCfg("app.view."), bus)
	require.True(t, first.Modified)

	second := src.Justify(baseCfg("app.view."), bus)
	require.False(t, second.Modified)
}

func TestJustifyDisallowedTAttributeOnUnconfiguredElement(t *testing.T) {
	t.Parallel()

	src := New("src/x.html", []byte(`<span t="app.x.t0">hi</span>`))

	var kinds []diag.Kind

	bus := diag.NewBus()
	bus.Subscribe(func(d diag.Diagnostic) { kinds = append(kinds, d.Kind) })

	cfg := source.JustifyConfig{Prefix: "app.x.", GetLocalizedElement: func(string) (source.LocalizedElement, bool) { return source.LocalizedElement{}, false }}
	src.Justify(cfg, bus)

	require.Contains(t, kinds, diag.DisallowedTAttribute)
}

func TestJustifyPreservesIndentedWhitespacePrefix(t *testing.T) {
	t.Parallel()

	src := New("src/x.html", []byte("<div\n    t=\"foo.t7\"\n>test</div>"))

	bus := diag.NewBus()
	result := src.Justify(baseCfg("test."), bus)

	require.Equal(t, "<div\n    t=\"test.t0\"\n>test</div>", string(result.NewBytes))
}

func TestJustifyDiagnosticsOnlyDoesNotMutateBytes(t *testing.T) {
	t.Parallel()

	orig := []byte(`<div>test</div>`)
	src := New("src/x.html", append([]byte(nil), orig...))

	cfg := baseCfg("app.x.")
	cfg.DiagnosticsOnly = true

	bus := diag.NewBus()
	result := src.Justify(cfg, bus)

	require.True(t, result.Modified)
	require.Equal(t, orig, src.Bytes(), "diagnostics-only mode must not adopt the new bytes")
}
