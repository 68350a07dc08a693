// Package project implements the orchestrator: the reconciliation loop that
// turns a live set of template/JSON-resource sources plus a translation
// database into compiled per-locale outputs.
package project

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"codeberg.org/locoforge/locoforge/config"
	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/jsonsource"
	"codeberg.org/locoforge/locoforge/internal/localetree"
	"codeberg.org/locoforge/locoforge/internal/pairset"
	"codeberg.org/locoforge/locoforge/internal/source"
	"codeberg.org/locoforge/locoforge/internal/template"
	"codeberg.org/locoforge/locoforge/internal/transdb"
)

// Project holds every piece of state one reconciliation cycle reads or
// mutates: the live source set, the pair-set index, the unprocessed and
// modified-sources sets, the translation DB and its dirty flag, and the
// external locale trees. Not safe for concurrent use — callers serialize
// access through a single-writer queue (internal/watch does this for watch
// mode; one-shot mode never needs it).
type Project struct {
	cfg *config.Config
	bus *diag.Bus
	dev bool

	sources map[string]source.Source

	unprocessedOrder []string
	unprocessedSet   map[string]bool

	modifiedSources map[string]bool
	dbModified      bool

	db    *transdb.DB
	pairs *pairset.Set

	externalLocales map[string]*localetree.Tree

	// srcAbs is the absolute form of cfg.Src: every live filename and every
	// transdb key is an absolute path, so this is the fixed point relative
	// prefixes and relative-path serialization (transdb.FormatJSON) are
	// computed against.
	srcAbs string
}

// New constructs an empty Project. dev enables development-mode semantics:
// justification write-back and DB/source flush instead of diagnostic-only
// reporting.
func New(cfg *config.Config, bus *diag.Bus, dev bool) *Project {
	srcAbs, err := filepath.Abs(cfg.Src)
	if err != nil {
		srcAbs = cfg.Src
	}

	return &Project{
		cfg:             cfg,
		bus:             bus,
		dev:             dev,
		sources:         make(map[string]source.Source),
		unprocessedSet:  make(map[string]bool),
		modifiedSources: make(map[string]bool),
		db:              transdb.New(),
		pairs:           pairset.New(),
		externalLocales: make(map[string]*localetree.Tree),
		srcAbs:          srcAbs,
	}
}

// SetDB replaces the project's translation DB wholesale — used at load time
// (parsing an existing i18n.json) and on watch-mode reload of that file.
func (p *Project) SetDB(db *transdb.DB) {
	p.db = db

	if db.ParsedVersion == 1 {
		p.dbModified = true
	}
}

// DB returns the project's current translation DB.
func (p *Project) DB() *transdb.DB { return p.db }

func newSourceForFile(filename string, data []byte) source.Source {
	if strings.EqualFold(filepathExt(filename), ".json") {
		return jsonsource.New(filename, data)
	}

	return template.New(filename, data)
}

func filepathExt(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i:]
	}

	return ""
}

func textIgnore(s string) bool {
	return source.InterpolationMarker.MatchString(s)
}

// extractKeys runs the appropriate Extract method for src's concrete type
// and returns the result as transdb.ExtractedKey, in extraction order.
func (p *Project) extractKeys(filename string, src source.Source) []transdb.ExtractedKey {
	prefix := derivePrefix(p.cfg, p.srcAbs, filename)

	var kvs []source.KV

	switch s := src.(type) {
	case *template.Source:
		kvs = s.Extract(p.bus, p.cfg.IgnoreElement, textIgnore, p.cfg.GetWhitespaceHandling)
	case *jsonsource.Source:
		kvs = s.Extract(p.bus, prefix)
	}

	out := make([]transdb.ExtractedKey, len(kvs))
	for i, kv := range kvs {
		out[i] = transdb.ExtractedKey{Key: kv.Key, Content: kv.Content}
	}

	return out
}

func (p *Project) markUnprocessed(filename string) {
	if p.unprocessedSet[filename] {
		return
	}

	p.unprocessedSet[filename] = true
	p.unprocessedOrder = append(p.unprocessedOrder, filename)
}

// syncPairSet reconciles the pair-set index for filename against the keys
// it currently extracts to.
func (p *Project) syncPairSet(filename string, keys []transdb.ExtractedKey) {
	next := make(map[string]bool, len(keys))
	for _, k := range keys {
		next[k.Key] = true
	}

	for _, k := range p.pairs.FilesOf(filename) {
		if !next[k] {
			p.pairs.RemoveKey(filename, k)
		}
	}

	for k := range next {
		p.pairs.Add(filename, k)
	}
}

// updateSource stores a new or changed source, marks it unprocessed, and
// eagerly extracts its keys into the DB so that other files' justification
// passes see an accurate knownKeys/reservation picture.
func (p *Project) updateSource(filename string, data []byte, now time.Time) {
	if existing, ok := p.sources[filename]; ok && bytes.Equal(existing.Bytes(), data) {
		return
	}

	src := newSourceForFile(filename, data)
	p.sources[filename] = src
	p.markUnprocessed(filename)

	keys := p.extractKeys(filename, src)
	if p.db.UpdateKeys(filename, keys, now) {
		p.dbModified = true
	}

	p.syncPairSet(filename, keys)
}

// deleteSource drops filename from every piece of live-source state. The DB
// record itself is reclaimed later, by processSources' sweep — deletion
// here only removes it from the *live* set.
func (p *Project) deleteSource(filename string) {
	delete(p.sources, filename)
	delete(p.modifiedSources, filename)
	p.pairs.RemoveFile(filename)

	if p.unprocessedSet[filename] {
		delete(p.unprocessedSet, filename)

		for i, f := range p.unprocessedOrder {
			if f == filename {
				p.unprocessedOrder = append(p.unprocessedOrder[:i], p.unprocessedOrder[i+1:]...)

				break
			}
		}
	}
}

// processSources runs one reconciliation pass: justify every unprocessed
// template in insertion order (so the first file to claim a duplicated key
// keeps it), then sweep the DB of records whose source no longer exists.
func (p *Project) processSources(now time.Time) {
	order := p.unprocessedOrder
	p.unprocessedOrder = nil
	p.unprocessedSet = make(map[string]bool)

	for _, filename := range order {
		src, ok := p.sources[filename]
		if !ok {
			continue
		}

		tsrc, ok := src.(*template.Source)
		if !ok {
			continue
		}

		p.justifyOne(filename, tsrc, now)
	}

	live := make(map[string]struct{}, len(p.sources))
	for f := range p.sources {
		live[f] = struct{}{}
	}

	filesBefore := len(p.db.Files())
	p.db.Sweep(live)

	if len(p.db.Files()) != filesBefore {
		p.dbModified = true
	}
}

func (p *Project) justifyOne(filename string, tsrc *template.Source, now time.Time) {
	prefix := derivePrefix(p.cfg, p.srcAbs, filename)

	isReserved := func(key string) bool {
		return p.pairs.IsKnownByOther(key, filename)
	}

	cfg := source.JustifyConfig{
		Prefix:              prefix,
		IsReserved:          isReserved,
		GetLocalizedElement: p.cfg.GetLocalizedElement,
		GetWhitespace:       p.cfg.GetWhitespaceHandling,
		IgnoreElement:       p.cfg.IgnoreElement,
		DiagnosticsOnly:     !p.dev,
	}

	result := tsrc.Justify(cfg, p.bus)
	if !result.Modified {
		return
	}

	for oldKey, newKeys := range result.ReplacedKeys {
		hint := p.pairs.Keys(oldKey)
		for newKey := range newKeys {
			p.db.CopyTranslations(filename, oldKey, newKey, hint, now)
		}
	}

	keys := p.extractKeys(filename, tsrc)
	if p.db.UpdateKeys(filename, keys, now) {
		p.dbModified = true
	}

	p.syncPairSet(filename, keys)
	p.modifiedSources[filename] = true
}

// Hooks are the I/O side effects handleModified and the output-writing step
// invoke, kept separate from Project's in-memory state so tests can supply
// fakes without touching a filesystem.
type Hooks struct {
	WriteSource          func(filename string, data []byte) error
	WriteTranslationData func(data []byte) error
	WriteLocaleOutput    func(locale string, data []byte) error
}

// handleModified flushes in-development-mode changes through hooks, or —
// in production — turns them into diagnostics without ever calling hooks.
func (p *Project) handleModified(hooks Hooks) error {
	if !p.dev {
		for filename := range p.modifiedSources {
			p.bus.Report(diag.Diagnostic{Kind: diag.ModifiedSource, Details: diag.FileDetails{Filename: filename}})
		}

		if p.dbModified {
			p.bus.Report(diag.Diagnostic{Kind: diag.ModifiedTranslation, Details: diag.EmptyDetails{}})
		}
	} else {
		for filename := range p.modifiedSources {
			src := p.sources[filename]
			if src == nil {
				continue
			}

			if err := hooks.WriteSource(filename, src.Bytes()); err != nil {
				return err
			}
		}

		if p.dbModified {
			data := transdb.FormatJSON(p.db, p.srcAbs)
			if err := hooks.WriteTranslationData(data); err != nil {
				return err
			}
		}
	}

	// Each cycle only reports/flushes what changed since the last one —
	// reset here, after a successful report or flush, in both branches.
	p.modifiedSources = make(map[string]bool)
	p.dbModified = false

	return nil
}

// compileLocales compiles the DB into per-locale trees and merges in every
// external locale, creating the locale's tree via a deep clone when it was
// not otherwise configured.
func (p *Project) compileLocales() map[string]*localetree.Tree {
	trees := transdb.Compile(p.db, transdb.CompileConfig{
		SourceLocale: p.cfg.SourceLocale(),
		Locales:      p.cfg.Locales,
	}, p.bus)

	for locale, ext := range p.externalLocales {
		target, ok := trees[locale]
		if !ok {
			trees[locale] = ext.Clone()

			continue
		}

		localetree.Merge(target, ext, func(path string) {
			p.bus.Report(diag.Diagnostic{Kind: diag.DuplicateKeyOrPath, Details: diag.PathDetails{Path: path}})
		})
	}

	return trees
}

// canonicalLocale normalizes a locale identifier for matching an external
// locale's declared id against a configured one (e.g. "en_US" vs "en-US"),
// via BCP 47 canonicalization. Falls back to a case-insensitive compare of
// the raw string when either side fails to parse as a tag.
func canonicalLocale(id string) string {
	tag, err := language.Parse(id)
	if err != nil {
		return strings.ToLower(id)
	}

	return tag.String()
}
