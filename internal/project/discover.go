package project

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/localetree"
	"codeberg.org/locoforge/locoforge/internal/transdb"
)

// LoadAll enumerates every file under srcAbs concurrently — bounded by
// GOMAXPROCS — and feeds the results into updateSource sequentially, in the
// deterministic order the walk discovered them. This preserves the
// insertion-order invariant (first file to claim a duplicated key wins)
// while parallelizing only the I/O-bound read.
func (p *Project) LoadAll(ctx context.Context, now time.Time) error {
	filenames, err := discoverFiles(p.srcAbs)
	if err != nil {
		return err
	}

	contents := make([][]byte, len(filenames))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, filename := range filenames {
		i, filename := i, filename

		group.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("reading %s: %w", filename, err)
			}

			contents[i] = data

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for i, filename := range filenames {
		p.updateSource(filename, contents[i], now)
	}

	return nil
}

// discoverFiles walks srcAbs and returns every regular file's absolute
// path, in a deterministic (lexicographic, directory-by-directory) order.
func discoverFiles(srcAbs string) ([]string, error) {
	var out []string

	err := filepath.WalkDir(srcAbs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}

		if d.IsDir() {
			return nil
		}

		out = append(out, path)

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)

	return out, nil
}

// LoadTranslationData reads and parses the configured translation-data file
// if it exists; a missing file is not an error (a fresh project starts with
// an empty DB).
func (p *Project) LoadTranslationData() error {
	path := p.translationDataAbs()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	db, err := transdb.Parse(data, p.srcAbs)
	if err != nil {
		return err
	}

	p.SetDB(db)

	return nil
}

// translationDataAbs resolves cfg.TranslationData to an absolute path,
// relative to the working directory when not already absolute — the same
// resolution filepath.Abs applies to cfg.Src.
func (p *Project) translationDataAbs() string {
	if filepath.IsAbs(p.cfg.TranslationData) {
		return p.cfg.TranslationData
	}

	abs, err := filepath.Abs(p.cfg.TranslationData)
	if err != nil {
		return p.cfg.TranslationData
	}

	return abs
}

// LoadExternalLocales enumerates the configured external-locale files,
// deduplicating paths nested inside multiple copies of node_modules, and
// parses each as a flat locale-tree JSON document.
func (p *Project) LoadExternalLocales() {
	byLocale := make(map[string][]string)

	for _, ext := range p.cfg.ExternalLocales {
		matches, err := filepath.Glob(ext.Filename)
		if err != nil || len(matches) == 0 {
			continue
		}

		abs := make([]string, 0, len(matches))

		for _, m := range matches {
			a, err := filepath.Abs(m)
			if err != nil {
				a = m
			}

			abs = append(abs, a)
		}

		locale := canonicalLocale(ext.Locale)
		byLocale[locale] = append(byLocale[locale], deduplicateModuleFilenames(abs)...)
	}

	for locale, files := range byLocale {
		files = deduplicateModuleFilenames(files)
		sort.Strings(files)

		tree := localetree.New()

		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				continue
			}

			mergeFlatJSONIntoTree(tree, data, p.bus)
		}

		p.externalLocales[locale] = tree
	}
}

// mergeFlatJSONIntoTree parses data as a JSON object of arbitrarily nested
// string leaves and folds it into tree, the same shape jsonsource walks —
// external locales are shipped pre-compiled, so no key-generation or
// t-attribute parsing applies here.
func mergeFlatJSONIntoTree(tree *localetree.Tree, data []byte, bus *diag.Bus) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return
	}

	setFlat(tree, nil, raw, bus)
}

func setFlat(tree *localetree.Tree, path []string, node map[string]any, bus *diag.Bus) {
	for k, v := range node {
		key := append(append([]string(nil), path...), k)

		switch val := v.(type) {
		case string:
			if !tree.Set(strings.Join(key, "."), val) {
				bus.Report(diag.Diagnostic{Kind: diag.DuplicateKeyOrPath, Details: diag.PathDetails{Path: strings.Join(key, ".")}})
			}
		case map[string]any:
			setFlat(tree, key, val, bus)
		}
	}
}

// deduplicateModuleFilenames collapses paths that share the same tail
// beyond their last "node_modules/" segment — a shim package can end up
// vendored at multiple depths under node_modules, and the deepest
// (longest) absolute path wins, matching npm's own resolution order. Paths
// with no "node_modules" segment are never deduplicated against anything.
func deduplicateModuleFilenames(paths []string) []string {
	bestByTail := make(map[string]string)

	var order []string

	for _, p := range paths {
		tail := nodeModulesTail(p)
		if tail == "" {
			order = append(order, p)
			bestByTail[p] = p

			continue
		}

		if cur, ok := bestByTail[tail]; !ok || len(p) > len(cur) {
			if !ok {
				order = append(order, tail)
			}

			bestByTail[tail] = p
		}
	}

	out := make([]string, 0, len(order))
	for _, key := range order {
		out = append(out, bestByTail[key])
	}

	return out
}

func nodeModulesTail(p string) string {
	marker := "node_modules" + string(filepath.Separator)

	idx := strings.LastIndex(p, marker)
	if idx == -1 {
		return ""
	}

	return p[idx+len(marker):]
}
