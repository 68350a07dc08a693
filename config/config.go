// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"strings"

	"github.com/rs/zerolog/log"

	_ "codeberg.org/locoforge/locoforge/core/audit" // setup better logging format
	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/source"
)

// Global exposes the resolved project configuration.
var Global Config

// LocalizedElementConfig is one `localize` table entry: which content
// target (if any) an element takes, and which attribute names may
// additionally carry a t-attribute binding.
type LocalizedElementConfig struct {
	Content    string   `yaml:"content" json:"content"`
	Attributes []string `yaml:"attributes" json:"attributes"`
}

// ExternalLocaleConfig names one third-party-shipped locale file to merge
// into a configured locale at compile time.
type ExternalLocaleConfig struct {
	Locale   string `yaml:"locale" json:"locale"`
	Filename string `yaml:"filename" json:"filename"`
}

// Config holds the resolved project configuration: the fields loaded from
// the config file / environment / CLI flags, plus the closures and lookup
// tables compiled from them once at Load time, keyed by tag name and
// attribute name, so that per-element lookups never re-resolve the raw
// configuration.
type Config struct {
	Build buildInfo `yaml:"-" json:"-"`

	Src             string                             `env:"LOCOFORGE_SRC,overwrite" yaml:"src" json:"src"`
	TranslationData string                             `env:"LOCOFORGE_TRANSLATION_DATA,overwrite" yaml:"translationData" json:"translationData"`
	Output          string                             `env:"LOCOFORGE_OUTPUT,overwrite" yaml:"output" json:"output"`
	Prefix          string                             `env:"LOCOFORGE_PREFIX,overwrite" yaml:"prefix" json:"prefix"`
	Locales         []string                           `env:"LOCOFORGE_LOCALES,overwrite" yaml:"locales" json:"locales"`
	Ignore          []string                           `env:"LOCOFORGE_IGNORE,overwrite" yaml:"ignore" json:"ignore"`
	Localize        map[string]LocalizedElementConfig `yaml:"localize" json:"localize"`
	Whitespace      map[string]string                 `yaml:"whitespace" json:"whitespace"`
	Diagnostics     map[string]string                 `yaml:"diagnostics" json:"diagnostics"`
	ExternalLocales []ExternalLocaleConfig             `yaml:"externalLocales" json:"externalLocales"`

	Log struct {
		Level string `env:"LOCOFORGE_LOG_LEVEL,overwrite" yaml:"level" json:"level"`
	} `yaml:"log" json:"log"`

	// CLI-only surface, never persisted.
	Dev     bool `yaml:"-" json:"-"`
	Watch   bool `yaml:"-" json:"-"`
	Verbose bool `yaml:"-" json:"-"`

	compiled compiledConfig
}

type compiledConfig struct {
	ignoreElement map[string]bool
	localize      map[string]source.LocalizedElement
	whitespace    map[string]source.WhitespacePolicy
	diagPolicy    *diag.Policy
}

// SourceLocale is the first entry of Locales — the locale extraction and
// justification read source content in.
func (cfg *Config) SourceLocale() string {
	if len(cfg.Locales) == 0 {
		return ""
	}

	return cfg.Locales[0]
}

// IgnoreElement reports whether tagName's entire subtree is excluded from
// extraction/justification.
func (cfg *Config) IgnoreElement(tagName string) bool {
	return cfg.compiled.ignoreElement[strings.ToLower(tagName)]
}

// GetLocalizedElement resolves tagName's localize configuration, falling
// back to the "*" wildcard entry.
func (cfg *Config) GetLocalizedElement(tagName string) (source.LocalizedElement, bool) {
	if le, ok := cfg.compiled.localize[strings.ToLower(tagName)]; ok {
		return le, true
	}

	le, ok := cfg.compiled.localize["*"]

	return le, ok
}

// GetWhitespaceHandling resolves the whitespace policy for tagName, falling
// back to the "*" wildcard, then Preserve. The whitespace policy applies to
// the whole extracted string per §4.5.3, so target is currently unused; it
// is kept in the signature so a future per-attribute override doesn't need
// to change every call site.
func (cfg *Config) GetWhitespaceHandling(tagName, target string) source.WhitespacePolicy {
	_ = target

	tag := strings.ToLower(tagName)

	if pol, ok := cfg.compiled.whitespace[tag]; ok {
		return pol
	}

	if pol, ok := cfg.compiled.whitespace["*"]; ok {
		return pol
	}

	return source.Preserve
}

// DiagnosticsPolicy returns the compiled Kind -> Handling policy.
func (cfg *Config) DiagnosticsPolicy() *diag.Policy {
	return cfg.compiled.diagPolicy
}

// Load resolves the full configuration: defaults, then the config file
// (YAML or JSON, detected by extension), then environment variable
// overrides, then compiles the closures/lookup tables derived from it.
func Load(configFilePath string) (*Config, error) {
	cfg := &Config{}
	cfg.Build.load()
	cfg.SetDefaults()

	if err := cfg.readConfigFile(configFilePath); err != nil {
		return nil, err
	}

	if err := useDotEnv(); err != nil {
		return nil, err
	}

	if err := readEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validateAndSet(); err != nil {
		return nil, err
	}

	cfg.compile()

	return cfg, nil
}

func (cfg *Config) compile() {
	cfg.compiled.ignoreElement = make(map[string]bool, len(cfg.Ignore))
	for _, tag := range cfg.Ignore {
		cfg.compiled.ignoreElement[strings.ToLower(tag)] = true
	}

	// script and style are always excluded: their content is never markup
	// to localize, matching the HTML tree view's non-scripting-mode intent.
	cfg.compiled.ignoreElement["script"] = true
	cfg.compiled.ignoreElement["style"] = true

	cfg.compiled.localize = make(map[string]source.LocalizedElement, len(cfg.Localize))
	for tag, le := range cfg.Localize {
		cfg.compiled.localize[strings.ToLower(tag)] = source.LocalizedElement{
			Content:    strings.ToLower(le.Content),
			Attributes: le.Attributes,
		}
	}

	cfg.compiled.whitespace = make(map[string]source.WhitespacePolicy, len(cfg.Whitespace))

	for tag, name := range cfg.Whitespace {
		if pol, ok := parseWhitespacePolicy(name); ok {
			cfg.compiled.whitespace[strings.ToLower(tag)] = pol
		} else {
			log.Warn().Str("tag", tag).Str("value", name).Msg("unknown whitespace policy, defaulting to Preserve")
		}
	}

	cfg.compiled.diagPolicy = compileDiagnosticsPolicy(cfg.Diagnostics)
}

func parseWhitespacePolicy(name string) (source.WhitespacePolicy, bool) {
	switch strings.ToLower(name) {
	case "preserve":
		return source.Preserve, true
	case "trim":
		return source.Trim, true
	case "collapse":
		return source.Collapse, true
	case "trimcollapse":
		return source.TrimCollapse, true
	default:
		return source.Preserve, false
	}
}

func compileDiagnosticsPolicy(raw map[string]string) *diag.Policy {
	byKind := make(map[diag.Kind]diag.Handling, len(raw))

	fallback := diag.Handling("")

	for name, handlingName := range raw {
		handling := diag.Handling(strings.ToLower(handlingName))
		if strings.EqualFold(name, "all") {
			fallback = handling

			continue
		}

		byKind[diag.Kind(name)] = handling
	}

	return diag.NewPolicy(byKind, fallback)
}
