package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/xattr"

	"github.com/hpungsan/sidenote/internal/config"
	"github.com/hpungsan/sidenote/internal/errors"
)

// fakeRunner returns canned results and records every invocation.
type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.out, f.err
}

// testHelper is a minimal indexed-channel helper for tests.
func testHelper() *helper {
	return &helper{
		writeArgs:   func(path, payload string) []string { return []string{"write", path, payload} },
		readArgs:    func(path string) []string { return []string{"read", path} },
		parseRead:   func(out string) (string, bool) { return out, out != "" },
		clearArgs:   func(path string) []string { return []string{"clear", path} },
		reindexArgs: func(path string) []string { return []string{"reindex", path} },
	}
}

func newTestMirror(runner Runner, h *helper) *Mirror {
	return &Mirror{
		attr:    config.DefaultMirrorAttr,
		timeout: 5 * time.Second,
		runner:  runner,
		helper:  h,
	}
}

// newAttrFile creates a file and skips the test when the filesystem
// does not support extended attributes.
func newAttrFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("content"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := xattr.Set(path, "user.sidenote.probe", []byte("x")); err != nil {
		t.Skipf("extended attributes unsupported here: %v", err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	m := New(&config.Config{})
	if m.attr != config.DefaultMirrorAttr {
		t.Errorf("attr = %q, want default", m.attr)
	}
	if m.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", m.timeout)
	}
}

func TestWritePrefersHelper(t *testing.T) {
	runner := &fakeRunner{}
	m := newTestMirror(runner, testHelper())

	// Path does not exist: a raw attribute write would fail, so a
	// successful Write proves the helper handled it.
	if err := m.Write(context.Background(), "payload", "/nonexistent/file"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "write" {
		t.Errorf("calls = %v, want single helper write", runner.calls)
	}
}

func TestWriteFallsBackToRawAttr(t *testing.T) {
	path := newAttrFile(t)
	runner := &fakeRunner{err: fmt.Errorf("helper broken")}
	m := newTestMirror(runner, testHelper())

	if err := m.Write(context.Background(), "payload", path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := xattr.Get(path, m.attr)
	if err != nil {
		t.Fatalf("attribute missing after fallback write: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("attribute = %q, want payload", data)
	}

	// Raw writes bypass the indexer, so a reindex must be requested
	last := runner.calls[len(runner.calls)-1]
	if last[0] != "reindex" {
		t.Errorf("last call = %v, want reindex", last)
	}
}

func TestWriteNoChannel(t *testing.T) {
	m := newTestMirror(&fakeRunner{err: fmt.Errorf("no helper")}, nil)

	err := m.Write(context.Background(), "payload", "/nonexistent/file")
	if !errors.Is(err, errors.ErrMirrorUnavailable) {
		t.Errorf("Write = %v, want MIRROR_UNAVAILABLE", err)
	}
}

func TestReadHelperHit(t *testing.T) {
	runner := &fakeRunner{out: "indexed payload"}
	m := newTestMirror(runner, testHelper())

	got, err := m.Read(context.Background(), "/nonexistent/file")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "indexed payload" {
		t.Errorf("Read = %q, want indexed payload", got)
	}
}

// An empty indexed result must not be trusted: the raw attribute may
// still hold the payload (the index lags after moves and fresh writes).
func TestReadEmptyIndexFallsThrough(t *testing.T) {
	path := newAttrFile(t)
	m := newTestMirror(&fakeRunner{out: ""}, testHelper())

	if err := xattr.Set(path, m.attr, []byte("raw payload")); err != nil {
		t.Fatal(err)
	}

	got, err := m.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "raw payload" {
		t.Errorf("Read = %q, want raw attribute payload", got)
	}
}

func TestReadNoAttribute(t *testing.T) {
	path := newAttrFile(t)
	m := newTestMirror(&fakeRunner{out: ""}, testHelper())

	got, err := m.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read = %v, want empty success", err)
	}
	if got != "" {
		t.Errorf("Read = %q, want empty", got)
	}
}

func TestClear(t *testing.T) {
	path := newAttrFile(t)
	m := newTestMirror(&fakeRunner{err: fmt.Errorf("helper broken")}, testHelper())

	if err := xattr.Set(path, m.attr, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	if err := m.Clear(context.Background(), path); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, err := xattr.Get(path, m.attr); err == nil {
		t.Error("attribute still present after Clear")
	}
}

func TestClearIdempotent(t *testing.T) {
	path := newAttrFile(t)
	m := newTestMirror(&fakeRunner{err: fmt.Errorf("helper broken")}, testHelper())

	// Nothing stored: still success
	if err := m.Clear(context.Background(), path); err != nil {
		t.Errorf("Clear on bare file = %v, want nil", err)
	}
	if err := m.Clear(context.Background(), path); err != nil {
		t.Errorf("second Clear = %v, want nil", err)
	}
}

func TestRoundTripRawOnly(t *testing.T) {
	path := newAttrFile(t)
	m := newTestMirror(&fakeRunner{}, nil)

	payload := "sidenote/1\n-- title --\nShopping\n-- body --\nmilk, eggs\n"
	if err := m.Write(context.Background(), payload, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := m.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != payload {
		t.Errorf("Read = %q, want written payload", got)
	}
}
