package transdb

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrInvalidDB wraps every structural failure encountered while parsing a
// translation-data document: these are fatal errors returned to the
// caller rather than reported to the diagnostics bus.
type ErrInvalidDB struct {
	Reason string
}

func (e *ErrInvalidDB) Error() string {
	return fmt.Sprintf("invalid translation database: %s", e.Reason)
}

// Parse decodes a v1 or v2 translation-data document. Version is detected
// by the presence of a top-level "version": 2 field; a v1 document is the
// files mapping directly at the root. Relative filenames stored in the
// document are joined with basePath; absolute filenames are rejected.
func Parse(data []byte, basePath string) (*DB, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ErrInvalidDB{Reason: "malformed JSON"}
	}

	root := gjson.ParseBytes(data)

	db := New()

	filesNode := root
	if v := root.Get("version"); v.Exists() && v.Int() == 2 {
		db.ParsedVersion = 2
		filesNode = root.Get("files")

		if obs := root.Get("obsolete"); obs.Exists() {
			var err error

			db.Obsolete, err = parseObsolete(obs)
			if err != nil {
				return nil, err
			}
		}
	} else {
		db.ParsedVersion = 1
		filesNode = root
	}

	if !filesNode.IsObject() {
		return nil, &ErrInvalidDB{Reason: "files is not an object"}
	}

	var parseErr error

	filesNode.ForEach(func(relPath, fileVal gjson.Result) bool {
		rel := relPath.String()
		if filepath.IsAbs(rel) {
			parseErr = &ErrInvalidDB{Reason: fmt.Sprintf("absolute filename in database: %q", rel)}

			return false
		}

		abs := filepath.Join(basePath, filepath.FromSlash(rel))

		fr := newFileRecord()

		contentNode := fileVal.Get("content")
		contentNode.ForEach(func(key, tsVal gjson.Result) bool {
			ts, err := parseTranslationSet(tsVal)
			if err != nil {
				parseErr = err

				return false
			}

			fr.set(key.String(), ts)

			return true
		})

		if parseErr != nil {
			return false
		}

		db.files[abs] = fr
		db.fileOrder = append(db.fileOrder, abs)

		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	return db, nil
}

func parseObsolete(node gjson.Result) ([]Obsolete, error) {
	var out []Obsolete

	var err error

	node.ForEach(func(_, entry gjson.Result) bool {
		o := Obsolete{
			Content:      entry.Get("content").String(),
			Translations: make(map[string]string),
		}

		entry.Get("translations").ForEach(func(locale, val gjson.Result) bool {
			o.Translations[locale.String()] = val.String()

			return true
		})

		out = append(out, o)

		return true
	})

	return out, err
}

func parseTranslationSet(node gjson.Result) (*TranslationSet, error) {
	lastMod, err := parseISO8601(node.Get("lastModified").String())
	if err != nil {
		return nil, &ErrInvalidDB{Reason: fmt.Sprintf("invalid lastModified: %v", err)}
	}

	ts := &TranslationSet{
		SourceContent:      node.Get("content").String(),
		SourceLastModified: lastMod,
		Translations:       make(map[string]Locale),
	}

	ts.SourceIgnoreSpelling, err = parseIgnoreSpelling(node.Get("ignoreSpelling"))
	if err != nil {
		return nil, err
	}

	var innerErr error

	node.Get("translations").ForEach(func(locale, val gjson.Result) bool {
		trMod, e := parseISO8601(val.Get("lastModified").String())
		if e != nil {
			innerErr = &ErrInvalidDB{Reason: fmt.Sprintf("invalid lastModified for locale %q: %v", locale.String(), e)}

			return false
		}

		ig, e := parseIgnoreSpelling(val.Get("ignoreSpelling"))
		if e != nil {
			innerErr = e

			return false
		}

		ts.Translations[locale.String()] = Locale{
			Content:        val.Get("content").String(),
			LastModified:   trMod,
			IgnoreSpelling: ig,
		}

		return true
	})

	if innerErr != nil {
		return nil, innerErr
	}

	return ts, nil
}

func parseIgnoreSpelling(node gjson.Result) ([]string, error) {
	if !node.Exists() {
		return nil, nil
	}

	if !node.IsArray() {
		return nil, &ErrInvalidDB{Reason: "ignoreSpelling must be an array of strings"}
	}

	var out []string

	var err error

	node.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.String {
			err = &ErrInvalidDB{Reason: "ignoreSpelling must be an array of strings"}

			return false
		}

		out = append(out, v.String())

		return true
	})

	return out, err
}

func parseISO8601(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// FormatJSON renders db as a byte-exact v2 document: root key order
// version/files/obsolete, tab indentation, LF newlines, no trailing
// newline, lexicographic sorting of filenames/keys/locales, ISO-8601 UTC
// timestamps, and obsolete entries deduplicated by exact JSON equality.
//
// This is hand-rolled rather than built on a generic encoder: no JSON
// library in the retrieval pack lets a caller pin field order, key sorting,
// and indentation character simultaneously, and byte-exact output is the
// contract downstream tooling (and this package's own round-trip property)
// depends on.
func FormatJSON(db *DB, basePath string) []byte {
	var buf bytes.Buffer

	buf.WriteString("{\n")
	buf.WriteString("\t\"version\": 2,\n")
	buf.WriteString("\t\"files\": ")
	writeFiles(&buf, db, basePath, 1)
	buf.WriteString(",\n")
	buf.WriteString("\t\"obsolete\": ")
	writeObsolete(&buf, db.Obsolete, 1)
	buf.WriteString("\n}")

	return buf.Bytes()
}

func indent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteByte('\t')
	}
}

func writeFiles(buf *bytes.Buffer, db *DB, basePath string, depth int) {
	type relEntry struct {
		rel string
		fr  *FileRecord
	}

	entries := make([]relEntry, 0, len(db.files))

	for abs, fr := range db.files {
		rel, err := filepath.Rel(basePath, abs)
		if err != nil {
			rel = abs
		}

		entries = append(entries, relEntry{rel: strings.ReplaceAll(rel, `\`, "/"), fr: fr})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	if len(entries) == 0 {
		buf.WriteString("{}")

		return
	}

	buf.WriteString("{\n")

	for i, e := range entries {
		indent(buf, depth+1)
		writeJSONString(buf, e.rel)
		buf.WriteString(": {\n")
		indent(buf, depth+2)
		buf.WriteString("\"content\": ")
		writeContent(buf, e.fr, depth+2)
		buf.WriteString("\n")
		indent(buf, depth+1)
		buf.WriteString("}")

		if i < len(entries)-1 {
			buf.WriteString(",")
		}

		buf.WriteString("\n")
	}

	indent(buf, depth)
	buf.WriteString("}")
}

func writeContent(buf *bytes.Buffer, fr *FileRecord, depth int) {
	keys := fr.Keys()
	sort.Strings(keys)

	if len(keys) == 0 {
		buf.WriteString("{}")

		return
	}

	buf.WriteString("{\n")

	for i, k := range keys {
		ts, _ := fr.Get(k)
		indent(buf, depth+1)
		writeJSONString(buf, k)
		buf.WriteString(": ")
		writeTranslationSet(buf, ts, depth+1)

		if i < len(keys)-1 {
			buf.WriteString(",")
		}

		buf.WriteString("\n")
	}

	indent(buf, depth)
	buf.WriteString("}")
}

func writeTranslationSet(buf *bytes.Buffer, ts *TranslationSet, depth int) {
	buf.WriteString("{\n")
	indent(buf, depth+1)
	buf.WriteString("\"content\": ")
	writeJSONString(buf, ts.SourceContent)
	buf.WriteString(",\n")
	indent(buf, depth+1)
	buf.WriteString("\"lastModified\": ")
	writeJSONString(buf, formatISO8601(ts.SourceLastModified))
	buf.WriteString(",\n")
	indent(buf, depth+1)
	buf.WriteString("\"ignoreSpelling\": ")
	writeStringArray(buf, ts.SourceIgnoreSpelling)
	buf.WriteString(",\n")
	indent(buf, depth+1)
	buf.WriteString("\"translations\": ")
	writeTranslations(buf, ts.Translations, depth+1)
	buf.WriteString("\n")
	indent(buf, depth)
	buf.WriteString("}")
}

func writeTranslations(buf *bytes.Buffer, translations map[string]Locale, depth int) {
	locales := make([]string, 0, len(translations))
	for l := range translations {
		locales = append(locales, l)
	}

	sort.Strings(locales)

	if len(locales) == 0 {
		buf.WriteString("{}")

		return
	}

	buf.WriteString("{\n")

	for i, l := range locales {
		tr := translations[l]
		indent(buf, depth+1)
		writeJSONString(buf, l)
		buf.WriteString(": {\n")
		indent(buf, depth+2)
		buf.WriteString("\"content\": ")
		writeJSONString(buf, tr.Content)
		buf.WriteString(",\n")
		indent(buf, depth+2)
		buf.WriteString("\"lastModified\": ")
		writeJSONString(buf, formatISO8601(tr.LastModified))
		buf.WriteString(",\n")
		indent(buf, depth+2)
		buf.WriteString("\"ignoreSpelling\": ")
		writeStringArray(buf, tr.IgnoreSpelling)
		buf.WriteString("\n")
		indent(buf, depth+1)
		buf.WriteString("}")

		if i < len(locales)-1 {
			buf.WriteString(",")
		}

		buf.WriteString("\n")
	}

	indent(buf, depth)
	buf.WriteString("}")
}

func writeObsolete(buf *bytes.Buffer, obsolete []Obsolete, depth int) {
	dedup := dedupObsolete(obsolete)

	if len(dedup) == 0 {
		buf.WriteString("[]")

		return
	}

	buf.WriteString("[\n")

	for i, o := range dedup {
		indent(buf, depth+1)
		buf.WriteString("{\n")
		indent(buf, depth+2)
		buf.WriteString("\"content\": ")
		writeJSONString(buf, o.Content)
		buf.WriteString(",\n")
		indent(buf, depth+2)
		buf.WriteString("\"translations\": ")
		writeStringMap(buf, o.Translations, depth+2)
		buf.WriteString("\n")
		indent(buf, depth+1)
		buf.WriteString("}")

		if i < len(dedup)-1 {
			buf.WriteString(",")
		}

		buf.WriteString("\n")
	}

	indent(buf, depth)
	buf.WriteString("]")
}

// dedupObsolete collapses exact duplicates (same content and translation
// map) into a single occurrence, comparing by the rendered JSON form so
// that locale-key order never affects the equality check.
func dedupObsolete(obsolete []Obsolete) []Obsolete {
	seen := make(map[string]struct{}, len(obsolete))

	out := make([]Obsolete, 0, len(obsolete))

	for _, o := range obsolete {
		var b bytes.Buffer

		writeJSONString(&b, o.Content)
		b.WriteByte('|')
		writeStringMap(&b, o.Translations, 0)

		sig := b.String()
		if _, dup := seen[sig]; dup {
			continue
		}

		seen[sig] = struct{}{}
		out = append(out, o)
	}

	return out
}

func writeStringArray(buf *bytes.Buffer, ss []string) {
	if len(ss) == 0 {
		buf.WriteString("[]")

		return
	}

	buf.WriteString("[")

	for i, s := range ss {
		if i > 0 {
			buf.WriteString(", ")
		}

		writeJSONString(buf, s)
	}

	buf.WriteString("]")
}

func writeStringMap(buf *bytes.Buffer, m map[string]string, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	if len(keys) == 0 {
		buf.WriteString("{}")

		return
	}

	buf.WriteString("{\n")

	for i, k := range keys {
		indent(buf, depth+1)
		writeJSONString(buf, k)
		buf.WriteString(": ")
		writeJSONString(buf, m[k])

		if i < len(keys)-1 {
			buf.WriteString(",")
		}

		buf.WriteString("\n")
	}

	indent(buf, depth)
	buf.WriteString("}")
}

func formatISO8601(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// writeJSONString writes s as a double-quoted JSON string literal with the
// minimal escaping the encoding/json encoder itself performs, so that
// round-tripping through gjson.Parse always recovers exactly s.
func writeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}

	buf.WriteByte('"')
}
