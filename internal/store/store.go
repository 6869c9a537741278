// Package store is the storage coordinator: the only surface callers
// use. It merges the indexed record store (required, fast path) and
// the side-channel mirror (best-effort, host-visible) into one
// consistent save/load/exists/delete API and defines what success
// means when the two channels disagree.
package store

import (
	"context"
	"log/slog"

	"github.com/hpungsan/sidenote/internal/config"
	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/note"
)

// Index is the indexed record store channel.
type Index interface {
	Upsert(n *note.Note, location string) error
	Find(location string) (*note.Record, error)
	Exists(location string) (bool, error)
	Remove(location string) error
	Available() bool
}

// Mirror is the side-channel metadata channel.
type Mirror interface {
	Write(ctx context.Context, payload, location string) error
	Read(ctx context.Context, location string) (string, error)
	Clear(ctx context.Context, location string) error
}

// Coordinator orchestrates the two storage channels.
type Coordinator struct {
	index     Index
	mirror    Mirror
	log       *slog.Logger
	propagate bool
}

// New creates a Coordinator. logger may be nil.
func New(index Index, mirror Mirror, cfg *config.Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	propagate := false
	if cfg != nil {
		propagate = cfg.PropagateDuplicates
	}
	return &Coordinator{
		index:     index,
		mirror:    mirror,
		log:       logger,
		propagate: propagate,
	}
}

// Save stores a note at a location through both channels.
//
// An empty-equivalent note is a delete, not a write: the invariant is
// that a note with no content never persists. Success means at least
// one channel accepted the write; the record store is the preferred
// channel and a mirror-only failure is logged, never surfaced.
func (c *Coordinator) Save(ctx context.Context, n *note.Note, location string) error {
	if n.IsEmpty() {
		return c.Delete(ctx, location)
	}

	idxErr := c.index.Upsert(n, location)
	mirErr := c.mirror.Write(ctx, note.Encode(n), location)

	switch {
	case idxErr == nil && mirErr == nil:
		return nil
	case idxErr == nil:
		c.log.Warn("mirror write failed", "location", location, "error", mirErr)
		return nil
	case mirErr == nil:
		c.log.Warn("record store write failed, mirror only", "location", location, "error", idxErr)
		return nil
	default:
		c.log.Error("save failed on both channels", "location", location,
			"index_error", idxErr, "mirror_error", mirErr)
		return errors.NewSaveFailed(location)
	}
}

// Load returns the note at a location. The record store is consulted
// first; on a miss the mirror payload, if any, is decoded into a
// synthesized note. Mirror-only content is not written back into the
// record store here.
func (c *Coordinator) Load(ctx context.Context, location string) (*note.Note, error) {
	r, err := c.index.Find(location)
	if err == nil {
		return r.Note(), nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		c.log.Warn("record store lookup failed", "location", location, "error", err)
	}

	payload, err := c.mirror.Read(ctx, location)
	if err != nil {
		c.log.Warn("mirror read failed", "location", location, "error", err)
	}
	if payload == "" {
		return nil, errors.NewNotFound(location)
	}

	title, body := note.Decode(payload)
	return &note.Note{Title: title, Body: body}, nil
}

// Exists reports whether either channel holds a note for the location.
func (c *Coordinator) Exists(ctx context.Context, location string) (bool, error) {
	ok, err := c.index.Exists(location)
	if err == nil && ok {
		return true, nil
	}
	if err != nil && !errors.Is(err, errors.ErrStoreUnavailable) {
		return false, err
	}

	payload, err := c.mirror.Read(ctx, location)
	if err != nil {
		c.log.Warn("mirror read failed", "location", location, "error", err)
		return false, nil
	}
	return payload != "", nil
}

// Delete removes the note from both channels. Absence in a channel is
// success in that channel. A record store that never initialized has
// nothing deletable, so its unavailability does not fail the delete;
// any other channel failure does.
func (c *Coordinator) Delete(ctx context.Context, location string) error {
	idxErr := c.index.Remove(location)
	if idxErr != nil && errors.Is(idxErr, errors.ErrStoreUnavailable) {
		c.log.Warn("record store unavailable during delete", "location", location)
		idxErr = nil
	}

	mirErr := c.mirror.Clear(ctx, location)

	if idxErr != nil || mirErr != nil {
		c.log.Error("delete failed", "location", location,
			"index_error", idxErr, "mirror_error", mirErr)
		if idxErr != nil {
			return idxErr
		}
		return mirErr
	}

	return nil
}

// Duplicated propagates the record for src to its duplicate at dst
// when the propagate-duplicates policy is on. The platform copies the
// mirror attribute with the file on its own; the record store, keyed
// by identity, never inherits a record automatically because the
// duplicate is a different object.
func (c *Coordinator) Duplicated(ctx context.Context, src, dst string) error {
	if !c.propagate {
		return nil
	}

	r, err := c.index.Find(src)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil
		}
		return err
	}

	return c.Save(ctx, &note.Note{Title: r.Title, Body: r.Body}, dst)
}
