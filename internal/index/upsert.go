package index

import (
	"time"

	"github.com/hpungsan/sidenote/internal/db"
	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/note"
)

// Upsert stores note content for a location, updating the existing
// record for the same underlying object when one exists.
//
// Matching order is the core correctness rule: identity token beats
// path. The path column is only a cache of "where was it last seen";
// the token survives rename/move, so when both the location's token
// and a stored token are available they decide which record is "the
// same object". Path matching is the fallback for objects whose
// identity could not be captured.
func (s *Store) Upsert(n *note.Note, location string) error {
	if !s.Available() {
		return errors.NewStoreUnavailable()
	}
	if n.IsEmpty() {
		return errors.NewInvalidRequest("refusing to store an empty note")
	}

	path, err := cleanPath(location)
	if err != nil {
		return err
	}

	// Best effort: absence of a token degrades to path matching.
	ident := s.capture(path)

	if ident != nil {
		if existing, err := db.GetByIdentityHash(s.db, ident.Token); err == nil {
			existing.Path = path
			existing.IdentityRef = ident.Ref
			existing.IdentityHash = &ident.Token
			existing.Title = n.Title
			existing.Body = n.Body
			return db.UpdateByID(s.db, existing)
		} else if !errors.Is(err, errors.ErrNotFound) {
			return err
		}
	}

	if existing, err := db.GetByPath(s.db, path); err == nil {
		existing.Title = n.Title
		existing.Body = n.Body
		if ident != nil {
			existing.IdentityRef = ident.Ref
			existing.IdentityHash = &ident.Token
		}
		return db.UpdateByID(s.db, existing)
	} else if !errors.Is(err, errors.ErrNotFound) {
		return err
	}

	id, err := generateULID()
	if err != nil {
		return errors.NewInternal(err)
	}

	now := time.Now().Unix()
	r := &note.Record{
		ID:         id,
		Path:       path,
		Title:      n.Title,
		Body:       n.Body,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if ident != nil {
		r.IdentityRef = ident.Ref
		r.IdentityHash = &ident.Token
	}

	return db.Insert(s.db, r)
}
