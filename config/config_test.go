// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/source"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "src", cfg.Src)
	require.Equal(t, []string{"en"}, cfg.Locales)
	require.Equal(t, "en", cfg.SourceLocale())
}

func TestLoadRejectsMissingSrc(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "i18n-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("src: \"\"\n"), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, errNoSrc)
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "i18n-config.yaml")
	doc := "src: templates\ntranslationData: i18n.json\noutput: locales/[locale].json\nprefix: app.\nlocales: [en, de]\nlocalize:\n  div:\n    content: text\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "templates", cfg.Src)
	require.Equal(t, []string{"en", "de"}, cfg.Locales)

	le, ok := cfg.GetLocalizedElement("div")
	require.True(t, ok)
	require.Equal(t, source.LocalizedElement{Content: "text"}, le)
}

func TestLoadFromJSONExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "i18n-config.json")
	doc := `{"src": "templates", "locales": ["en"]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "templates", cfg.Src)
}

func TestGetWhitespaceHandlingFallsBackToWildcard(t *testing.T) {
	t.Parallel()

	cfg := &Config{Whitespace: map[string]string{"*": "Collapse"}}
	cfg.compile()

	require.Equal(t, source.Collapse, cfg.GetWhitespaceHandling("div", "text"))
}

func TestDiagnosticsPolicyDefaultsToWarnFallback(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.compile()

	require.NotNil(t, cfg.DiagnosticsPolicy())
	require.Equal(t, diag.Warn, cfg.DiagnosticsPolicy().Resolve(diag.MissingTranslation))
}
