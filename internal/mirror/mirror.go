// Package mirror writes note payloads through the host's own
// out-of-band metadata channel so annotations stay visible in the
// host's UI independent of the record store. The mirror is
// best-effort and never the sole source of truth for a new write.
package mirror

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/xattr"

	"github.com/hpungsan/sidenote/internal/config"
	"github.com/hpungsan/sidenote/internal/errors"
)

// Runner executes an external helper command, returning its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

// helper describes the platform's indexed metadata commands. A nil
// helper means the platform has no indexed path and only the raw
// attribute strategies apply.
type helper struct {
	// writeArgs builds the argv for the primary write path, which
	// notifies the platform indexer itself.
	writeArgs func(path, payload string) []string

	// readArgs builds the argv for the fast indexed read.
	readArgs func(path string) []string

	// parseRead extracts the payload from the indexed read's stdout.
	// ok=false means the index had nothing for the object.
	parseRead func(out string) (payload string, ok bool)

	// clearArgs builds the argv for the primary clear path.
	clearArgs func(path string) []string

	// reindexArgs builds the argv that asks the indexer to revisit the
	// object after a raw attribute write, which does not notify it.
	reindexArgs func(path string) []string
}

// Mirror is the side-channel adapter.
type Mirror struct {
	attr    string
	timeout time.Duration
	runner  Runner
	helper  *helper
}

// New creates the platform mirror for the configured attribute.
func New(cfg *config.Config) *Mirror {
	attr := cfg.MirrorAttr
	if attr == "" {
		attr = config.DefaultMirrorAttr
	}
	timeout := time.Duration(cfg.MirrorTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Mirror{
		attr:    attr,
		timeout: timeout,
		runner:  execRunner{},
		helper:  platformHelper(),
	}
}

// run executes a helper command under the configured timeout.
// The helper process might hang; the store must not.
func (m *Mirror) run(ctx context.Context, argv []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.runner.Run(ctx, argv[0], argv[1:]...)
}

// Write stores the encoded payload on the object. The primary helper
// path is preferred because it notifies the platform indexer; the raw
// attribute fallback does not, so it is followed by a reindex nudge.
func (m *Mirror) Write(ctx context.Context, payload, location string) error {
	if m.helper != nil {
		if argv := m.helper.writeArgs(location, payload); len(argv) > 0 {
			if _, err := m.run(ctx, argv); err == nil {
				return nil
			}
		}
	}

	if err := xattr.Set(location, m.attr, []byte(payload)); err != nil {
		return errors.NewMirrorUnavailable("mirror write failed: " + err.Error())
	}
	m.requestReindex(ctx, location)

	return nil
}

// Read returns the payload stored on the object, or "" when none.
//
// The indexed path transiently reports nothing for newly created or
// just-moved objects even though the attribute itself is present, so
// a raw attribute read always follows an empty indexed result.
// Returning early here loses notes after a move.
func (m *Mirror) Read(ctx context.Context, location string) (string, error) {
	if m.helper != nil {
		if argv := m.helper.readArgs(location); len(argv) > 0 {
			if out, err := m.run(ctx, argv); err == nil {
				if payload, ok := m.helper.parseRead(out); ok && payload != "" {
					return payload, nil
				}
			}
		}
	}

	data, err := xattr.Get(location, m.attr)
	if err != nil {
		if isNoAttr(err) {
			return "", nil
		}
		return "", errors.NewMirrorUnavailable("mirror read failed: " + err.Error())
	}

	return string(data), nil
}

// Clear removes the payload from the object. Clearing an object that
// carries no payload is success, not failure.
func (m *Mirror) Clear(ctx context.Context, location string) error {
	if m.helper != nil {
		if argv := m.helper.clearArgs(location); len(argv) > 0 {
			if _, err := m.run(ctx, argv); err == nil {
				return nil
			}
		}
	}

	if err := xattr.Remove(location, m.attr); err != nil {
		if isNoAttr(err) {
			return nil
		}
		return errors.NewMirrorUnavailable("mirror clear failed: " + err.Error())
	}

	return nil
}

// requestReindex asks the platform indexer to revisit the object.
// Fire-and-forget: failures are irrelevant, the raw attribute is
// already in place.
func (m *Mirror) requestReindex(ctx context.Context, location string) {
	if m.helper == nil {
		return
	}
	argv := m.helper.reindexArgs(location)
	if len(argv) == 0 {
		return
	}
	_, _ = m.run(ctx, argv)
}

// isNoAttr reports whether err means "attribute or object absent".
func isNoAttr(err error) bool {
	if stderrors.Is(err, xattr.ENOATTR) || os.IsNotExist(err) {
		return true
	}
	// Some kernels report unsupported filesystems on Get of a missing
	// attribute; treat an unsupported channel as empty too.
	return strings.Contains(err.Error(), "not supported")
}
