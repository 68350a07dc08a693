// Package source defines the shared abstractions a project's live source
// set is built from: something with a filename and bytes, that can extract
// localization keys, and — for template sources only — be justified in
// place.
package source

import (
	"regexp"

	"codeberg.org/locoforge/locoforge/internal/diag"
)

// InterpolationMarker matches the `${...}` interpolation syntax that makes
// an attribute value or text node non-localizable.
var InterpolationMarker = regexp.MustCompile(`\$\{.*\}`)

// Source is any file the project tracks: a template or a JSON resource.
type Source interface {
	Filename() string
	Bytes() []byte
}

// KV is one extracted (key, content) pair, in extraction order.
type KV struct {
	Key     string
	Content string
}

// Extractor is the single-argument extraction shape: walk the source's own
// structure and return the keys it currently defines. Neither concrete
// source satisfies it: template.Source.Extract also takes the element-ignore,
// text-ignore and whitespace lookups, and jsonsource.Source.Extract takes the
// key prefix. The template extractor lets later keys overwrite earlier ones
// for duplicates found within a single extraction.
type Extractor interface {
	Extract(bus *diag.Bus) []KV
}

// JustifyResult reports the outcome of running justification on a
// template's current tree and bytes.
type JustifyResult struct {
	Modified     bool
	NewBytes     []byte
	ReplacedKeys map[string]map[string]bool // oldKey -> set of newKey
}

// Justifier is implemented only by template sources: JSON-resource sources
// are read-only with respect to key allocation.
type Justifier interface {
	Justify(cfg JustifyConfig, bus *diag.Bus) JustifyResult
}

// WhitespacePolicy controls how extracted/justified content whitespace is
// normalized.
type WhitespacePolicy int

const (
	Preserve WhitespacePolicy = iota
	Trim
	Collapse
	TrimCollapse
)

// LocalizedElement describes how one tag name participates in
// localization: which content target ("text", "html", or "" for none) it
// takes, and which attribute names may additionally carry a t-attribute
// binding.
type LocalizedElement struct {
	Content    string // "text", "html", or ""
	Attributes []string
}

// JustifyConfig bundles the per-file inputs justification needs beyond the
// tree and bytes themselves.
type JustifyConfig struct {
	Prefix              string
	IsReserved          func(key string) bool
	GetLocalizedElement func(tagName string) (LocalizedElement, bool)
	GetWhitespace       func(tagName, target string) WhitespacePolicy
	IgnoreElement       func(tagName string) bool
	IgnoreAttrValue     func(value string) bool
	DiagnosticsOnly     bool
}
