package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/project"
)

var errApplyFailed = errors.New("apply failed")

func TestRecordEventWriteReadsFileContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.html")
	require.NoError(t, os.WriteFile(file, []byte("<div>hi</div>"), 0o600))

	w := &Watcher{}
	pending := make(map[string]project.Update)

	w.recordEvent(pending, fsnotify.Event{Name: file, Op: fsnotify.Write})

	got, ok := pending[file]
	require.True(t, ok)
	require.Equal(t, project.UpdateWrite, got.Kind)
	require.Equal(t, []byte("<div>hi</div>"), got.Data)
}

func TestRecordEventRemoveMarksDeletion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "gone.html")

	w := &Watcher{}
	pending := make(map[string]project.Update)

	w.recordEvent(pending, fsnotify.Event{Name: file, Op: fsnotify.Remove})

	got, ok := pending[file]
	require.True(t, ok)
	require.Equal(t, project.UpdateRemove, got.Kind)
	require.Nil(t, got.Data)
}

func TestFlushCallsApplyAndClearsPending(t *testing.T) {
	t.Parallel()

	var got []project.Update

	w := &Watcher{apply: func(updates []project.Update) error {
		got = updates

		return nil
	}}

	pending := map[string]project.Update{
		"/a": {Filename: "/a", Kind: project.UpdateWrite},
		"/b": {Filename: "/b", Kind: project.UpdateRemove},
	}

	w.flush(pending)

	require.Len(t, got, 2)
	require.Empty(t, pending)
}

func TestFlushNoopOnEmptyPending(t *testing.T) {
	t.Parallel()

	called := false
	w := &Watcher{apply: func(updates []project.Update) error {
		called = true

		return nil
	}}

	w.flush(map[string]project.Update{})
	require.False(t, called)
}

func TestFlushSetsExitFlagOnApplyError(t *testing.T) {
	t.Parallel()

	exitFlag := &diag.ExitFlag{}
	w := &Watcher{
		apply: func(updates []project.Update) error {
			return errApplyFailed
		},
		exitFlag: exitFlag,
	}

	w.flush(map[string]project.Update{"/a": {Filename: "/a", Kind: project.UpdateWrite}})

	require.True(t, exitFlag.Dirty())
}

func TestFlushToleratesNilExitFlag(t *testing.T) {
	t.Parallel()

	w := &Watcher{apply: func(updates []project.Update) error {
		return errApplyFailed
	}}

	require.NotPanics(t, func() {
		w.flush(map[string]project.Update{"/a": {Filename: "/a", Kind: project.UpdateWrite}})
	})
}
