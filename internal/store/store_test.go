package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/sidenote/internal/config"
	sqldb "github.com/hpungsan/sidenote/internal/db"
	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/identity"
	"github.com/hpungsan/sidenote/internal/index"
	"github.com/hpungsan/sidenote/internal/note"
)

// fakeMirror keeps payloads in memory, keyed by location.
type fakeMirror struct {
	data map[string]string
	fail bool
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{data: map[string]string{}}
}

func (f *fakeMirror) Write(_ context.Context, payload, location string) error {
	if f.fail {
		return errors.NewMirrorUnavailable("mirror down")
	}
	f.data[location] = payload
	return nil
}

func (f *fakeMirror) Read(_ context.Context, location string) (string, error) {
	if f.fail {
		return "", errors.NewMirrorUnavailable("mirror down")
	}
	return f.data[location], nil
}

func (f *fakeMirror) Clear(_ context.Context, location string) error {
	if f.fail {
		return errors.NewMirrorUnavailable("mirror down")
	}
	delete(f.data, location)
	return nil
}

// failingIndex rejects every operation as unavailable.
type failingIndex struct{}

func (failingIndex) Upsert(*note.Note, string) error          { return errors.NewStoreUnavailable() }
func (failingIndex) Find(string) (*note.Record, error)        { return nil, errors.NewStoreUnavailable() }
func (failingIndex) Exists(string) (bool, error)              { return false, errors.NewStoreUnavailable() }
func (failingIndex) Remove(string) error                      { return errors.NewStoreUnavailable() }
func (failingIndex) Available() bool                          { return false }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeMirror) {
	t.Helper()
	database, err := sqldb.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	idx := index.New(database, identity.NewResolver())
	mir := newFakeMirror()
	coord := New(idx, mir, &config.Config{}, quietLogger())
	return coord, mir
}

func newTestFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0600))
	return path
}

func TestSaveAndLoad(t *testing.T) {
	coord, mir := newTestCoordinator(t)
	ctx := context.Background()
	path := newTestFile(t, t.TempDir(), "a.txt")

	err := coord.Save(ctx, &note.Note{Title: "Shopping", Body: "milk, eggs"}, path)
	require.NoError(t, err)

	got, err := coord.Load(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "Shopping", got.Title)
	require.Equal(t, "milk, eggs", got.Body)

	// Both channels carry the note
	require.Contains(t, mir.data[path], "sidenote/1")
	require.Contains(t, mir.data[path], "milk, eggs")
}

func TestSaveEmptyNoteDeletes(t *testing.T) {
	coord, mir := newTestCoordinator(t)
	ctx := context.Background()
	path := newTestFile(t, t.TempDir(), "a.txt")

	require.NoError(t, coord.Save(ctx, &note.Note{Title: "x", Body: "y"}, path))

	// Whitespace-only content is empty-equivalent
	require.NoError(t, coord.Save(ctx, &note.Note{Title: "  ", Body: "\n\t"}, path))

	_, err := coord.Load(ctx, path)
	require.True(t, errors.Is(err, errors.ErrNotFound))
	require.Empty(t, mir.data[path])
}

func TestLifecycleAcrossRename(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	ctx := context.Background()
	dir := t.TempDir()
	before := newTestFile(t, dir, "draft.txt")
	after := filepath.Join(dir, "final.txt")

	require.NoError(t, coord.Save(ctx, &note.Note{Title: "Review", Body: "check figures"}, before))

	ok, err := coord.Exists(ctx, before)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.Rename(before, after))

	got, err := coord.Load(ctx, after)
	require.NoError(t, err)
	require.Equal(t, "Review", got.Title)
	require.Equal(t, "check figures", got.Body)

	require.NoError(t, coord.Delete(ctx, after))

	ok, err = coord.Exists(ctx, after)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteIdempotent(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	ctx := context.Background()
	path := newTestFile(t, t.TempDir(), "a.txt")

	require.NoError(t, coord.Delete(ctx, path))

	require.NoError(t, coord.Save(ctx, &note.Note{Title: "x"}, path))
	require.NoError(t, coord.Delete(ctx, path))
	require.NoError(t, coord.Delete(ctx, path))
}

func TestSaveSurvivesMirrorFailure(t *testing.T) {
	coord, mir := newTestCoordinator(t)
	ctx := context.Background()
	path := newTestFile(t, t.TempDir(), "a.txt")

	mir.fail = true
	require.NoError(t, coord.Save(ctx, &note.Note{Title: "x", Body: "y"}, path))

	mir.fail = false
	got, err := coord.Load(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "x", got.Title)
}

func TestSaveSurvivesStoreFailure(t *testing.T) {
	mir := newFakeMirror()
	coord := New(failingIndex{}, mir, &config.Config{}, quietLogger())
	ctx := context.Background()

	// Record store never initialized: the mirror alone keeps the
	// process functional.
	require.NoError(t, coord.Save(ctx, &note.Note{Title: "x", Body: "y"}, "/tmp/a.txt"))

	got, err := coord.Load(ctx, "/tmp/a.txt")
	require.NoError(t, err)
	require.Equal(t, "x", got.Title)
	require.Equal(t, "y", got.Body)

	ok, err := coord.Exists(ctx, "/tmp/a.txt")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, coord.Delete(ctx, "/tmp/a.txt"))

	ok, err = coord.Exists(ctx, "/tmp/a.txt")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveFailsWhenBothChannelsFail(t *testing.T) {
	mir := newFakeMirror()
	mir.fail = true
	coord := New(failingIndex{}, mir, &config.Config{}, quietLogger())

	err := coord.Save(context.Background(), &note.Note{Title: "x"}, "/tmp/a.txt")
	require.True(t, errors.Is(err, errors.ErrSaveFailed), "got %v", err)
}

func TestLoadSynthesizesFromMirror(t *testing.T) {
	coord, mir := newTestCoordinator(t)
	ctx := context.Background()
	path := newTestFile(t, t.TempDir(), "a.txt")

	// Payload written by another machine: present on the object but
	// absent from this machine's record store.
	mir.data[path] = note.Encode(&note.Note{Title: "Remote", Body: "from elsewhere"})

	got, err := coord.Load(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "Remote", got.Title)
	require.Equal(t, "from elsewhere", got.Body)
}

func TestLoadLegacyMirrorPayload(t *testing.T) {
	coord, mir := newTestCoordinator(t)
	ctx := context.Background()
	path := newTestFile(t, t.TempDir(), "a.txt")

	// Pre-framing payloads are bare body text
	mir.data[path] = "just a plain comment"

	got, err := coord.Load(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "", got.Title)
	require.Equal(t, "just a plain comment", got.Body)
}

func TestDuplicatedOffByDefault(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	ctx := context.Background()
	dir := t.TempDir()
	src := newTestFile(t, dir, "src.txt")
	dst := newTestFile(t, dir, "dst.txt")

	require.NoError(t, coord.Save(ctx, &note.Note{Title: "x"}, src))
	require.NoError(t, coord.Duplicated(ctx, src, dst))

	ok, err := coord.Exists(ctx, dst)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDuplicatedPropagates(t *testing.T) {
	database, err := sqldb.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	idx := index.New(database, identity.NewResolver())
	coord := New(idx, newFakeMirror(), &config.Config{PropagateDuplicates: true}, quietLogger())
	ctx := context.Background()
	dir := t.TempDir()
	src := newTestFile(t, dir, "src.txt")
	dst := newTestFile(t, dir, "dst.txt")

	require.NoError(t, coord.Save(ctx, &note.Note{Title: "x", Body: "y"}, src))
	require.NoError(t, coord.Duplicated(ctx, src, dst))

	got, err := coord.Load(ctx, dst)
	require.NoError(t, err)
	require.Equal(t, "x", got.Title)

	// Source unaffected
	got, err = coord.Load(ctx, src)
	require.NoError(t, err)
	require.Equal(t, "y", got.Body)

	// Duplicating an unannotated file is a no-op
	plain := newTestFile(t, dir, "plain.txt")
	require.NoError(t, coord.Duplicated(ctx, plain, dst))
}

func TestSaveFailedMessageCarriesLocation(t *testing.T) {
	mir := newFakeMirror()
	mir.fail = true
	coord := New(failingIndex{}, mir, &config.Config{}, quietLogger())

	err := coord.Save(context.Background(), &note.Note{Title: "x"}, "/tmp/target.txt")
	require.Error(t, err)
	require.Equal(t, fmt.Sprintf("%s: save failed: /tmp/target.txt", errors.ErrSaveFailed), err.Error())
}
