// Package template implements the template source: HTML-like files that
// support both key extraction and key justification.
package template

import (
	"strings"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/htmltree"
	"codeberg.org/locoforge/locoforge/internal/source"
	"codeberg.org/locoforge/locoforge/internal/tattr"
)

// Source is a parsed HTML-like template: current bytes plus the tree
// parsed from them.
type Source struct {
	filename string
	bytes    []byte
	doc      *htmltree.Document
}

// New parses bytes into a Source for filename.
func New(filename string, bytes []byte) *Source {
	return &Source{filename: filename, bytes: bytes, doc: htmltree.Parse(bytes)}
}

func (s *Source) Filename() string { return s.filename }
func (s *Source) Bytes() []byte    { return s.bytes }

// reparse rebuilds the tree from s.bytes; called after justification
// replaces the bytes wholesale.
func (s *Source) reparse() {
	s.doc = htmltree.Parse(s.bytes)
}

func ignoreAttrValue(cfg source.JustifyConfig, v string) bool {
	if cfg.IgnoreAttrValue != nil {
		return cfg.IgnoreAttrValue(v)
	}

	return source.InterpolationMarker.MatchString(v)
}

// Extract walks the tree for every non-ignored element, reading its
// t attribute and pulling content per binding.
func (s *Source) Extract(bus *diag.Bus, ignore func(tagName string) bool, textIgnore func(string) bool, whitespace func(tagName, target string) source.WhitespacePolicy) []source.KV {
	var out []source.KV

	htmltree.Walk(s.doc.Roots, ignore, func(e *htmltree.Element) bool {
		tRaw, ok := e.Attr("t")
		if !ok || ignoreAttrValueOrEmpty(tRaw) {
			return true
		}

		attr, err := tattr.Parse(tRaw)
		if err != nil {
			bus.Report(diag.Diagnostic{
				Kind:     diag.InvalidTAttribute,
				Location: elemLocation(s, e, "t"),
				Details:  diag.InvalidTAttributeDetails{Reason: err.Error()},
			})

			return true
		}

		analysis := htmltree.AnalyzeContent(e, textIgnore)

		for _, name := range attr.Names() {
			key, _ := attr.Get(name)

			var content string

			if name == tattr.Text || name == tattr.HTML {
				content = analysis.Text
			} else {
				val, ok := e.Attr(name)
				if !ok || (source.InterpolationMarker.MatchString(val)) {
					continue
				}

				content = val
			}

			pol := source.Preserve
			if whitespace != nil {
				pol = whitespace(strings.ToLower(e.TagName), name)
			}

			content = source.ApplyWhitespace(content, pol)

			out = append(out, source.KV{Key: key, Content: content})
		}

		return true
	})

	// Later keys overwrite earlier ones on duplicate within one file.
	dedup := make(map[string]int, len(out))
	result := make([]source.KV, 0, len(out))

	for _, kv := range out {
		if idx, ok := dedup[kv.Key]; ok {
			result[idx] = kv

			continue
		}

		dedup[kv.Key] = len(result)
		result = append(result, kv)
	}

	return result
}

func ignoreAttrValueOrEmpty(v string) bool {
	return strings.TrimSpace(v) == "" || source.InterpolationMarker.MatchString(v)
}

func elemLocation(s *Source, e *htmltree.Element, attrName string) *diag.Location {
	if attrName != "" {
		if a := e.AttrRef(attrName); a != nil {
			start, end := a.AttrRange()

			return &diag.Location{Filename: s.filename, Start: offsetPos(s.bytes, start), End: offsetPos(s.bytes, end)}
		}
	}

	start, end := e.StartTagRange()

	return &diag.Location{Filename: s.filename, Start: offsetPos(s.bytes, start), End: offsetPos(s.bytes, end)}
}

// offsetPos resolves a byte offset to a 1-based line/column.
func offsetPos(src []byte, offset int) diag.Position {
	line, col := 1, 1

	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return diag.Position{Offset: offset, Line: line, Col: col}
}
