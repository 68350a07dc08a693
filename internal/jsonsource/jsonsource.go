// Package jsonsource implements the JSON-resource source: a locale-tree
// shaped JSON file that supports extraction only.
package jsonsource

import (
	"strings"

	"github.com/tidwall/gjson"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/source"
)

// Source is a JSON-resource file: read-only with respect to key
// allocation, so it has an Extract method but does not implement
// source.Justifier.
type Source struct {
	filename string
	bytes    []byte
}

// New wraps filename/bytes as a JSON-resource Source. Parsing is deferred
// to Extract, which walks lazily via gjson rather than materializing an
// intermediate tree — the source itself is read-only, so there is no
// mutation to stage a persistent tree for.
func New(filename string, bytes []byte) *Source {
	return &Source{filename: filename, bytes: bytes}
}

func (s *Source) Filename() string { return s.filename }
func (s *Source) Bytes() []byte    { return s.bytes }

// Extract walks the JSON document with a path stack: a non-object at any
// node is InvalidJsonData; a path segment containing "."
// is InvalidJsonPartName (it would alias with nested keys in storage);
// strings become (prefix + path.join("."), value).
func (s *Source) Extract(bus *diag.Bus, prefix string) []source.KV {
	if !gjson.ValidBytes(s.bytes) {
		bus.Report(diag.Diagnostic{
			Kind:     diag.InvalidJSONData,
			Location: &diag.Location{Filename: s.filename},
			Details:  diag.InvalidJSONDataDetails{Path: ""},
		})

		return nil
	}

	root := gjson.ParseBytes(s.bytes)

	if !root.IsObject() {
		bus.Report(diag.Diagnostic{
			Kind:     diag.InvalidJSONData,
			Location: &diag.Location{Filename: s.filename},
			Details:  diag.InvalidJSONDataDetails{Path: ""},
		})

		return nil
	}

	var out []source.KV

	walk(s, bus, root, nil, prefix, &out)

	return out
}

func walk(s *Source, bus *diag.Bus, node gjson.Result, path []string, prefix string, out *[]source.KV) {
	switch {
	case node.Type == gjson.String:
		*out = append(*out, source.KV{Key: prefix + strings.Join(path, "."), Content: node.String()})

	case node.IsObject():
		node.ForEach(func(seg, child gjson.Result) bool {
			name := seg.String()

			if strings.Contains(name, ".") {
				bus.Report(diag.Diagnostic{
					Kind:     diag.InvalidJSONPartName,
					Location: &diag.Location{Filename: s.filename},
					Details:  diag.InvalidJSONPartNameDetails{Path: strings.Join(path, "."), Part: name},
				})

				return true
			}

			walk(s, bus, child, append(append([]string(nil), path...), name), prefix, out)

			return true
		})

	default:
		bus.Report(diag.Diagnostic{
			Kind:     diag.InvalidJSONData,
			Location: &diag.Location{Filename: s.filename},
			Details:  diag.InvalidJSONDataDetails{Path: strings.Join(path, ".")},
		})
	}
}
