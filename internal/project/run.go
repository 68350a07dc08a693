package project

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// runCycle is the reconcile → flush → compile → write sequence shared by
// one-shot and watch-mode runs.
func (p *Project) runCycle(hooks Hooks, now time.Time) error {
	p.processSources(now)

	if err := p.handleModified(hooks); err != nil {
		return err
	}

	trees := p.compileLocales()

	for _, locale := range p.cfg.Locales {
		tree, ok := trees[locale]
		if !ok {
			continue
		}

		data, err := json.Marshal(tree.ToMap())
		if err != nil {
			return err
		}

		if err := hooks.WriteLocaleOutput(locale, data); err != nil {
			return err
		}
	}

	return nil
}

// RunOnce drives one full one-shot pass: load an existing translation
// database if present, enumerate sources, populate external locales unless
// disabled, then reconcile/flush/compile/write.
func (p *Project) RunOnce(ctx context.Context, hooks Hooks, loadExternalLocales bool, now time.Time) error {
	if err := p.LoadTranslationData(); err != nil {
		return err
	}

	if err := p.LoadAll(ctx, now); err != nil {
		return err
	}

	if loadExternalLocales {
		p.LoadExternalLocales()
	}

	return p.runCycle(hooks, now)
}

// OutputPath renders cfg.Output for locale by substituting the
// "[locale]" placeholder.
func (p *Project) OutputPath(locale string) string {
	return strings.ReplaceAll(p.cfg.Output, "[locale]", locale)
}

// NewOSHooks returns Hooks backed directly by the filesystem: source
// rewrites and translation-data writes land at their live paths, and
// compiled locale output is written to cfg.Output with [locale]
// substituted, creating intermediate directories as needed.
func (p *Project) NewOSHooks() Hooks {
	return Hooks{
		WriteSource: func(filename string, data []byte) error {
			return writeFileCreatingDirs(filename, data)
		},
		WriteTranslationData: func(data []byte) error {
			return writeFileCreatingDirs(p.translationDataAbs(), data)
		},
		WriteLocaleOutput: func(locale string, data []byte) error {
			return writeFileCreatingDirs(p.OutputPath(locale), data)
		},
	}
}

func writeFileCreatingDirs(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
