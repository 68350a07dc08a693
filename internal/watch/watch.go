// Package watch adapts fsnotify into the batched, debounced update stream
// internal/project.Apply expects: a thin external collaborator over
// project's single-writer update queue, with no opinion on what the
// updates mean.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/project"
)

// debounceWindow is the idle period after the last event in a burst before
// the accumulated batch is flushed.
const debounceWindow = 300 * time.Millisecond

// Apply is called with one already-batched, deduplicated slice of updates
// per debounce window. The next batch is only read once Apply returns —
// callers can rely on never seeing two Apply calls in flight at once.
type Apply func(updates []project.Update) error

// Watcher owns an fsnotify.Watcher and the debounce/dispatch loop over it.
type Watcher struct {
	fsw      *fsnotify.Watcher
	apply    Apply
	exitFlag *diag.ExitFlag
}

// New creates a Watcher over every directory reachable from paths (files
// are resolved to their containing directory — fsnotify watches
// directories, not individual files) and every subdirectory beneath any
// path that is itself a directory. exitFlag is set whenever apply returns
// an error, the same way diag.Policy.Subscriber sets it for error-level
// diagnostics — a failed Apply inside a debounce cycle should flip the
// process exit code just as an error-level diagnostic does. exitFlag may
// be nil, in which case apply failures are only logged.
func New(paths []string, apply Apply, exitFlag *diag.ExitFlag) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := make(map[string]struct{})

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			dirs[filepath.Dir(p)] = struct{}{}

			continue
		}

		if !info.IsDir() {
			dirs[filepath.Dir(p)] = struct{}{}

			continue
		}

		_ = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // best-effort watch registration
			}

			if d.IsDir() {
				dirs[path] = struct{}{}
			}

			return nil
		})
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to watch directory")
		}
	}

	return &Watcher{fsw: fsw, apply: apply, exitFlag: exitFlag}, nil
}

// Run blocks, dispatching debounced update batches to Watcher.apply until
// ctx is cancelled or the underlying fsnotify.Watcher's event channel
// closes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]project.Update)

	var timer *time.Timer

	timerC := func() <-chan time.Time {
		if timer == nil {
			return nil
		}

		return timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			w.recordEvent(pending, ev)

			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				if !timer.Stop() {
					<-timerC()
				}

				timer.Reset(debounceWindow)
			}

		case <-timerC():
			timer = nil

			w.flush(pending)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) recordEvent(pending map[string]project.Update, ev fsnotify.Event) {
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		abs = ev.Name
	}

	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		pending[abs] = project.Update{Filename: abs, Kind: project.UpdateRemove}

		return
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		// The file may have been removed between the event firing and the
		// read (or briefly be a directory during a rename); a later event
		// will correct the picture.
		return
	}

	pending[abs] = project.Update{Filename: abs, Kind: project.UpdateWrite, Data: data}
}

func (w *Watcher) flush(pending map[string]project.Update) {
	if len(pending) == 0 {
		return
	}

	updates := make([]project.Update, 0, len(pending))
	for _, u := range pending {
		updates = append(updates, u)
	}

	clear(pending)

	if err := w.apply(updates); err != nil {
		log.Error().Err(err).Msg("applying watch update batch failed")

		if w.exitFlag != nil {
			w.exitFlag.Set()
		}
	}
}
