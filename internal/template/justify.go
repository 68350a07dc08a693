package template

import (
	"fmt"
	"strings"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/htmltree"
	"codeberg.org/locoforge/locoforge/internal/source"
	"codeberg.org/locoforge/locoforge/internal/tattr"
)

type edit struct {
	start, end  int
	replacement string
}

type candidate struct {
	elem       *htmltree.Element
	elemConfig source.LocalizedElement
	hasText    bool
	hasElements bool
	textValue  string
	original   *tattr.Attr // nil if the element had no (or an ignored) t attribute
}

// Justify runs the full discovery/allocation/rewrite/prefix-diagnostic/
// apply pipeline and returns the resulting bytes and replaced-key map.
func (s *Source) Justify(cfg source.JustifyConfig, bus *diag.Bus) source.JustifyResult {
	knownKeys := make(map[string]bool)

	var candidates []candidate

	htmltree.Walk(s.doc.Roots, cfg.IgnoreElement, func(e *htmltree.Element) bool {
		tag := strings.ToLower(e.TagName)

		elemConfig, hasConfig := cfg.GetLocalizedElement(tag)

		analysis := htmltree.AnalyzeContent(e, nil)

		var original *tattr.Attr

		if tRaw, ok := e.Attr("t"); ok && !ignoreAttrValueOrEmpty(tRaw) {
			parsed, err := tattr.Parse(tRaw)
			if err != nil {
				bus.Report(diag.Diagnostic{
					Kind:     diag.InvalidTAttribute,
					Location: elemLocation(s, e, "t"),
					Details:  diag.InvalidTAttributeDetails{Reason: err.Error()},
				})
			} else {
				original = parsed

				for _, n := range parsed.Names() {
					k, _ := parsed.Get(n)
					knownKeys[k] = true
				}
			}
		}

		if hasConfig {
			candidates = append(candidates, candidate{
				elem:        e,
				elemConfig:  elemConfig,
				hasText:     analysis.HasText,
				hasElements: analysis.HasElements,
				textValue:   analysis.Text,
				original:    original,
			})

			if analysis.HasText && analysis.HasElements {
				bus.Report(diag.Diagnostic{Kind: diag.MixedContent, Location: elemLocation(s, e, ""), Details: diag.ElementDetails{Tag: tag}})
			}
		} else {
			if analysis.HasText {
				bus.Report(diag.Diagnostic{Kind: diag.UnlocalizedText, Location: elemLocation(s, e, ""), Details: diag.ElementDetails{Tag: tag}})
			}

			if original != nil {
				bus.Report(diag.Diagnostic{Kind: diag.DisallowedTAttribute, Location: elemLocation(s, e, "t"), Details: diag.ElementDetails{Tag: tag}})
			}
		}

		return true
	})

	// Pass B: key allocation.
	next := 0
	generatedKeys := make(map[string]bool)
	replacedKeys := make(map[string]map[string]bool)

	mustReplace := func(k string) bool {
		return !strings.HasPrefix(k, cfg.Prefix) || (cfg.IsReserved != nil && cfg.IsReserved(k))
	}

	unique := func(preferredKey string) string {
		if preferredKey != "" && !mustReplace(preferredKey) && !generatedKeys[preferredKey] {
			knownKeys[preferredKey] = true
			generatedKeys[preferredKey] = true

			return preferredKey
		}

		var newKey string

		for {
			newKey = fmt.Sprintf("%st%d", cfg.Prefix, next)
			next++

			if !knownKeys[newKey] && !mustReplace(newKey) {
				break
			}
		}

		if preferredKey != "" {
			if replacedKeys[preferredKey] == nil {
				replacedKeys[preferredKey] = make(map[string]bool)
			}

			replacedKeys[preferredKey][newKey] = true
		}

		knownKeys[newKey] = true
		generatedKeys[newKey] = true

		return newKey
	}

	var edits []edit

	for _, c := range candidates {
		tag := strings.ToLower(c.elem.TagName)

		newAttr := tattr.New()

		var existingText, existingHTML string

		if c.original != nil {
			existingText, _ = c.original.Get(tattr.Text)
			existingHTML, _ = c.original.Get(tattr.HTML)
		}

		if c.elemConfig.Content == tattr.Text || c.elemConfig.Content == tattr.HTML {
			if c.hasText || existingText != "" || existingHTML != "" {
				preferred := existingHTML
				if preferred == "" {
					preferred = existingText
				}

				newAttr.Set(c.elemConfig.Content, unique(preferred))
			}
		} else {
			contentStart, contentEnd := c.elem.ContentRange()
			contentLoc := &diag.Location{Filename: s.filename, Start: offsetPos(s.bytes, contentStart), End: offsetPos(s.bytes, contentEnd)}

			if existingHTML != "" {
				newAttr.Set(tattr.HTML, existingHTML)
				bus.Report(diag.Diagnostic{Kind: diag.DisallowedContent, Location: contentLoc, Details: diag.ElementDetails{Tag: tag}})
			} else if existingText != "" {
				newAttr.Set(tattr.Text, existingText)
				bus.Report(diag.Diagnostic{Kind: diag.DisallowedContent, Location: contentLoc, Details: diag.ElementDetails{Tag: tag}})
			} else if c.hasText {
				bus.Report(diag.Diagnostic{Kind: diag.DisallowedContent, Location: contentLoc, Details: diag.ElementDetails{Tag: tag}})
			}
		}

		attrSet := make(map[string]bool, len(c.elemConfig.Attributes))
		for _, a := range c.elemConfig.Attributes {
			attrSet[strings.ToLower(a)] = true

			val, ok := c.elem.Attr(a)
			if !ok || ignoreAttrValueOrEmpty(val) {
				continue
			}

			var preferred string
			if c.original != nil {
				preferred, _ = c.original.Get(a)
			}

			newAttr.Set(a, unique(preferred))
		}

		if c.original != nil {
			for _, n := range c.original.Names() {
				if n == tattr.Text || n == tattr.HTML || attrSet[n] {
					continue
				}

				bus.Report(diag.Diagnostic{Kind: diag.DisallowedLocalizedAttribute, Location: elemLocation(s, c.elem, "t"), Details: diag.AttributeDetails{Tag: tag, Name: n}})
			}
		}

		edits = append(edits, buildTAttrEdit(s.bytes, c.elem, newAttr))
	}

	// Pass D: prefix diagnostics for known-but-unreplaced keys.
	for k := range knownKeys {
		if generatedKeys[k] {
			continue
		}

		if wasReplaced(replacedKeys, k) {
			continue
		}

		if !strings.HasPrefix(k, cfg.Prefix) {
			bus.Report(diag.Diagnostic{Kind: diag.WrongPrefix, Location: &diag.Location{Filename: s.filename}, Details: diag.KeyDetails{Key: k}})
		}
	}

	newBytes, modified := applyEdits(s.bytes, edits)

	result := source.JustifyResult{Modified: modified, NewBytes: newBytes, ReplacedKeys: replacedKeys}

	if !cfg.DiagnosticsOnly && modified {
		s.bytes = newBytes
		s.reparse()
	}

	return result
}

func wasReplaced(replacedKeys map[string]map[string]bool, k string) bool {
	_, ok := replacedKeys[k]

	return ok
}

// buildTAttrEdit computes the byte edit that installs newAttr on e,
// preserving the exact whitespace prefix of a pre-existing t attribute
// (scanning left through whitespace) or inserting one space before the
// closing '>' of the start tag when none existed.
func buildTAttrEdit(src []byte, e *htmltree.Element, newAttr *tattr.Attr) edit {
	rendered := newAttr.String()

	original := e.AttrRef("t")
	if original != nil {
		start := original.FullStart

		for start > 0 && isTagWhitespace(src[start-1]) {
			start--
		}

		if rendered == "" {
			return edit{start: start, end: original.FullEnd, replacement: ""}
		}

		prefix := string(src[start:original.FullStart])

		return edit{start: start, end: original.FullEnd, replacement: prefix + "t=\"" + rendered + "\""}
	}

	if rendered == "" {
		return edit{start: e.StartTagEnd, end: e.StartTagEnd, replacement: ""}
	}

	insertAt := e.StartTagEnd - 1

	return edit{start: insertAt, end: insertAt, replacement: " t=\"" + rendered + "\""}
}

func isTagWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// applyEdits splices edits (sorted by ascending start) into src, returning
// the new bytes and whether anything actually changed.
func applyEdits(src []byte, edits []edit) ([]byte, bool) {
	if len(edits) == 0 {
		return src, false
	}

	sortEdits(edits)

	var b strings.Builder

	cursor := 0
	changed := false

	for _, e := range edits {
		if e.start < cursor {
			// Overlapping edits should not occur; skip defensively rather
			// than corrupt the splice.
			continue
		}

		b.Write(src[cursor:e.start])
		b.WriteString(e.replacement)

		if string(src[e.start:e.end]) != e.replacement {
			changed = true
		}

		cursor = e.end
	}

	b.Write(src[cursor:])

	return []byte(b.String()), changed
}

func sortEdits(edits []edit) {
	for i := 1; i < len(edits); i++ {
		for j := i; j > 0 && edits[j-1].start > edits[j].start; j-- {
			edits[j-1], edits[j] = edits[j], edits[j-1]
		}
	}
}
