package project

import (
	"path/filepath"
	"time"

	"codeberg.org/locoforge/locoforge/internal/localetree"
	"codeberg.org/locoforge/locoforge/internal/transdb"
)

// UpdateKind distinguishes a watch-mode filesystem event's effect.
type UpdateKind int

const (
	// UpdateWrite carries newly-read bytes for a created or modified file.
	UpdateWrite UpdateKind = iota
	// UpdateRemove signals filename no longer exists.
	UpdateRemove
)

// Update is one filesystem change internal/watch has already debounced and
// batched. Filename is absolute.
type Update struct {
	Filename string
	Kind     UpdateKind
	Data     []byte
}

// Apply is the single entry point watch mode drives: it folds one batch of
// filesystem updates into the project's state, then runs the full
// reconcile → flush → compile → write cycle. Exactly one Apply call may be
// in flight at a time — internal/watch's single-writer queue is what
// guarantees that; Apply itself does no locking.
func (p *Project) Apply(hooks Hooks, updates []Update, now time.Time) error {
	translationDataPath := p.translationDataAbs()

	for _, u := range updates {
		switch {
		case u.Filename == translationDataPath:
			p.applyTranslationDataUpdate(u)
		case p.externalLocaleFile(u.Filename) != "":
			p.applyExternalLocaleUpdate(u)
		default:
			if u.Kind == UpdateRemove {
				p.deleteSource(u.Filename)
			} else {
				p.updateSource(u.Filename, u.Data, now)
			}
		}
	}

	return p.runCycle(hooks, now)
}

func (p *Project) applyTranslationDataUpdate(u Update) {
	if u.Kind == UpdateRemove {
		p.db = transdb.New()
		p.dbModified = false

		return
	}

	db, err := transdb.Parse(u.Data, p.srcAbs)
	if err != nil {
		// A malformed translation-data file on disk is a structural failure,
		// but watch mode must survive it rather than tear down the queue:
		// keep the in-memory DB and let the next successful edit recover.
		return
	}

	p.SetDB(db)
}

// externalLocaleFile returns the locale id u's filename is configured
// under, or "" if it does not match any configured external-locale glob.
func (p *Project) externalLocaleFile(filename string) string {
	for _, ext := range p.cfg.ExternalLocales {
		matches, err := filepath.Glob(ext.Filename)
		if err != nil {
			continue
		}

		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err == nil && abs == filename {
				return canonicalLocale(ext.Locale)
			}
		}
	}

	return ""
}

func (p *Project) applyExternalLocaleUpdate(u Update) {
	locale := p.externalLocaleFile(u.Filename)
	if locale == "" {
		return
	}

	if u.Kind == UpdateRemove {
		delete(p.externalLocales, locale)

		return
	}

	tree := p.externalLocales[locale]
	if tree == nil {
		tree = localetree.New()
		p.externalLocales[locale] = tree
	}

	mergeFlatJSONIntoTree(tree, u.Data, p.bus)
}
