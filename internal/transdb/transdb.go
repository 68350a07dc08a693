// Package transdb implements the canonical translation database: the
// per-file, per-key record of source content, per-locale translations,
// modification timestamps, and the obsolete ledger those translations flow
// into once a key or file leaves the live source set.
package transdb

import (
	"time"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/localetree"
)

// Locale is one localized copy of a TranslationSet's content.
type Locale struct {
	Content        string
	LastModified   time.Time
	IgnoreSpelling []string
}

// TranslationSet is the per-key record: the source-locale content it was
// extracted with, and the translations keyed by locale id.
type TranslationSet struct {
	SourceContent        string
	SourceLastModified   time.Time
	SourceIgnoreSpelling []string
	Translations         map[string]Locale
}

func newTranslationSet(content string, now time.Time) *TranslationSet {
	return &TranslationSet{
		SourceContent:      content,
		SourceLastModified: now,
		Translations:       make(map[string]Locale),
	}
}

// HasTranslations reports whether ts carries at least one locale entry.
func (ts *TranslationSet) HasTranslations() bool {
	return len(ts.Translations) > 0
}

func (ts *TranslationSet) clone() *TranslationSet {
	out := &TranslationSet{
		SourceContent:        ts.SourceContent,
		SourceLastModified:   ts.SourceLastModified,
		SourceIgnoreSpelling: append([]string(nil), ts.SourceIgnoreSpelling...),
		Translations:         make(map[string]Locale, len(ts.Translations)),
	}

	for k, v := range ts.Translations {
		v.IgnoreSpelling = append([]string(nil), v.IgnoreSpelling...)
		out.Translations[k] = v
	}

	return out
}

// FileRecord is one file's key → TranslationSet mapping, ordered by key
// insertion so that iteration reflects extraction/discovery order.
type FileRecord struct {
	order   []string
	content map[string]*TranslationSet
}

func newFileRecord() *FileRecord {
	return &FileRecord{content: make(map[string]*TranslationSet)}
}

// Keys returns the record's keys in insertion order.
func (fr *FileRecord) Keys() []string {
	out := make([]string, len(fr.order))
	copy(out, fr.order)

	return out
}

// Get returns the TranslationSet bound to key, if any.
func (fr *FileRecord) Get(key string) (*TranslationSet, bool) {
	ts, ok := fr.content[key]

	return ts, ok
}

// Empty reports whether the record has no keys, making it eligible for
// deletion from the DB.
func (fr *FileRecord) Empty() bool {
	return len(fr.order) == 0
}

func (fr *FileRecord) set(key string, ts *TranslationSet) {
	if _, exists := fr.content[key]; !exists {
		fr.order = append(fr.order, key)
	}

	fr.content[key] = ts
}

func (fr *FileRecord) remove(key string) *TranslationSet {
	ts, ok := fr.content[key]
	if !ok {
		return nil
	}

	delete(fr.content, key)

	for i, k := range fr.order {
		if k == key {
			fr.order = append(fr.order[:i], fr.order[i+1:]...)

			break
		}
	}

	return ts
}

// Obsolete is a ledger entry left behind by a translation set with at least
// one translation that leaves the live DB.
type Obsolete struct {
	Content      string
	Translations map[string]string // localeId -> content
}

// DB is the canonical translation database: one FileRecord per known
// filename, plus the append-only obsolete ledger.
//
// Not safe for concurrent use; the project orchestrator serializes access
// through its single-writer processing cycle.
type DB struct {
	fileOrder []string
	files     map[string]*FileRecord
	Obsolete  []Obsolete

	// ParsedVersion is 1 when the DB was loaded from a v1 (no top-level
	// "version"/"obsolete" fields) document. A v1 load always leaves the DB
	// considered modified so the next write upgrades it to v2.
	ParsedVersion int
}

// New returns an empty v2 DB.
func New() *DB {
	return &DB{files: make(map[string]*FileRecord), ParsedVersion: 2}
}

// Files returns the known filenames in insertion order.
func (db *DB) Files() []string {
	out := make([]string, len(db.fileOrder))
	copy(out, db.fileOrder)

	return out
}

// FileRecord returns the record for filename, if any.
func (db *DB) FileRecord(filename string) (*FileRecord, bool) {
	fr, ok := db.files[filename]

	return fr, ok
}

func (db *DB) ensureFile(filename string) *FileRecord {
	fr, ok := db.files[filename]
	if !ok {
		fr = newFileRecord()
		db.files[filename] = fr
		db.fileOrder = append(db.fileOrder, filename)
	}

	return fr
}

// ExtractedKey is one (key, content) pair produced by a source's extraction
// pass, in the order the extractor produced it.
type ExtractedKey struct {
	Key     string
	Content string
}

// UpdateKeys aligns filename's record to extractedKeys: new keys are added
// with LastModified = now; changed content bumps LastModified; keys no
// longer present are removed, flowing any translations to the obsolete
// ledger. Returns true iff the record changed. If filename had no record
// and extractedKeys is empty, no record is created.
func (db *DB) UpdateKeys(filename string, extractedKeys []ExtractedKey, now time.Time) bool {
	fr, existed := db.files[filename]
	if !existed && len(extractedKeys) == 0 {
		return false
	}

	if fr == nil {
		fr = db.ensureFile(filename)
	}

	changed := false

	seen := make(map[string]struct{}, len(extractedKeys))

	for _, ek := range extractedKeys {
		seen[ek.Key] = struct{}{}

		ts, ok := fr.Get(ek.Key)
		if !ok {
			fr.set(ek.Key, newTranslationSet(ek.Content, now))
			changed = true

			continue
		}

		if ts.SourceContent != ek.Content {
			ts.SourceContent = ek.Content
			ts.SourceLastModified = now
			changed = true
		}
	}

	for _, k := range fr.Keys() {
		if _, ok := seen[k]; ok {
			continue
		}

		ts := fr.remove(k)
		changed = true

		if ts.HasTranslations() {
			db.pushObsolete(ts)
		}
	}

	return changed
}

func (db *DB) pushObsolete(ts *TranslationSet) {
	translations := make(map[string]string, len(ts.Translations))
	for locale, tr := range ts.Translations {
		translations[locale] = tr.Content
	}

	db.Obsolete = append(db.Obsolete, Obsolete{Content: ts.SourceContent, Translations: translations})
}

// CopyTranslations clones oldKey's TranslationSet under newKey within
// filename's record if oldKey has translations there; otherwise it scans
// hintFilenames in order for the first record holding oldKey with
// translations and clones from there. The clone's SourceLastModified is set
// to now so its translations read as outdated until re-verified. Returns
// whether a copy happened.
func (db *DB) CopyTranslations(filename, oldKey, newKey string, hintFilenames []string, now time.Time) bool {
	if fr, ok := db.files[filename]; ok {
		if ts, ok := fr.Get(oldKey); ok && ts.HasTranslations() {
			clone := ts.clone()
			clone.SourceLastModified = now
			fr.set(newKey, clone)

			return true
		}
	}

	for _, hint := range hintFilenames {
		fr, ok := db.files[hint]
		if !ok {
			continue
		}

		ts, ok := fr.Get(oldKey)
		if !ok || !ts.HasTranslations() {
			continue
		}

		clone := ts.clone()
		clone.SourceLastModified = now
		db.ensureFile(filename).set(newKey, clone)

		return true
	}

	return false
}

// DeleteFile removes filename's record entirely, flowing every translation
// set with at least one translation to the obsolete ledger.
func (db *DB) DeleteFile(filename string) {
	fr, ok := db.files[filename]
	if !ok {
		return
	}

	for _, k := range fr.Keys() {
		ts, _ := fr.Get(k)
		if ts.HasTranslations() {
			db.pushObsolete(ts)
		}
	}

	delete(db.files, filename)

	for i, f := range db.fileOrder {
		if f == filename {
			db.fileOrder = append(db.fileOrder[:i], db.fileOrder[i+1:]...)

			break
		}
	}
}

// Sweep deletes any file record whose filename is not in liveFilenames or
// whose content is empty, flowing removed translated sets to obsolete. It
// is called once at the end of a processSources pass.
func (db *DB) Sweep(liveFilenames map[string]struct{}) {
	for _, f := range db.Files() {
		fr := db.files[f]

		_, live := liveFilenames[f]
		if !live || fr.Empty() {
			db.DeleteFile(f)
		}
	}
}

// CompileConfig carries the locale set and configured source locale needed
// to compile a DB into per-locale trees.
type CompileConfig struct {
	SourceLocale string
	Locales      []string
}

// Compile builds one locale tree per configured locale from the DB's
// current content, reporting diagnostics for duplicate keys, outdated
// translations, unknown locales, and missing translations.
func Compile(db *DB, cfg CompileConfig, bus *diag.Bus) map[string]*localetree.Tree {
	trees := make(map[string]*localetree.Tree, len(cfg.Locales))
	for _, l := range cfg.Locales {
		trees[l] = localetree.New()
	}

	configured := make(map[string]struct{}, len(cfg.Locales))
	for _, l := range cfg.Locales {
		configured[l] = struct{}{}
	}

	type presence struct {
		hasTranslation map[string]bool
	}

	seenKeys := make(map[string]*presence)

	for _, filename := range db.Files() {
		fr := db.files[filename]

		for _, key := range fr.Keys() {
			ts, _ := fr.Get(key)

			srcTree, ok := trees[cfg.SourceLocale]
			if ok {
				if !srcTree.Set(key, ts.SourceContent) {
					bus.Report(diag.Diagnostic{
						Kind: diag.DuplicateKey,
						Location: &diag.Location{
							Filename: filename,
						},
						Details: diag.KeyDetails{Key: key},
					})
				}
			}

			pr, ok := seenKeys[key]
			if !ok {
				pr = &presence{hasTranslation: make(map[string]bool)}
				seenKeys[key] = pr
			}

			for localeID, tr := range ts.Translations {
				if _, known := configured[localeID]; !known {
					bus.Report(diag.Diagnostic{
						Kind:     diag.UnknownLocale,
						Location: &diag.Location{Filename: filename},
						Details:  diag.LocaleKeyDetails{Locale: localeID, Key: key},
					})

					continue
				}

				if localeID == cfg.SourceLocale {
					continue
				}

				pr.hasTranslation[localeID] = true

				if !tr.LastModified.Before(ts.SourceLastModified) {
					trees[localeID].Set(key, tr.Content)
				} else {
					bus.Report(diag.Diagnostic{
						Kind:     diag.OutdatedTranslation,
						Location: &diag.Location{Filename: filename},
						Details:  diag.LocaleKeyDetails{Locale: localeID, Key: key},
					})
				}
			}
		}
	}

	for key, pr := range seenKeys {
		for _, localeID := range cfg.Locales {
			if localeID == cfg.SourceLocale {
				continue
			}

			if !pr.hasTranslation[localeID] {
				bus.Report(diag.Diagnostic{
					Kind:    diag.MissingTranslation,
					Details: diag.LocaleKeyDetails{Locale: localeID, Key: key},
				})
			}
		}
	}

	return trees
}
