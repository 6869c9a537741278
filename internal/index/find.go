package index

import (
	"github.com/hpungsan/sidenote/internal/db"
	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/note"
)

// Find looks up the record for a location. Path lookup runs first
// (cheap); on a miss the location's current identity token is captured
// and matched against stored tokens, which recovers records whose
// object was renamed or moved since the last save. When that happens
// the stored path is rewritten to the now-current one, so the next
// lookup takes the cheap route again.
func (s *Store) Find(location string) (*note.Record, error) {
	if !s.Available() {
		return nil, errors.NewStoreUnavailable()
	}

	path, err := cleanPath(location)
	if err != nil {
		return nil, err
	}

	if r, err := db.GetByPath(s.db, path); err == nil {
		s.backfillIdentity(r)
		return r, nil
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	ident := s.capture(path)
	if ident == nil {
		return nil, errors.NewNotFound(location)
	}

	r, err := db.GetByIdentityHash(s.db, ident.Token)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewNotFound(location)
		}
		return nil, err
	}

	// Self-healing cache: remember where the object lives now.
	if r.Path != path {
		if err := db.UpdatePath(s.db, r.ID, path); err == nil {
			r.Path = path
		}
	}

	return r, nil
}

// Exists reports whether a record exists for the location.
func (s *Store) Exists(location string) (bool, error) {
	_, err := s.Find(location)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// backfillIdentity fills in the identity of a record saved while
// identity capture was unavailable (common right after file creation).
// Failures are ignored; the next lookup tries again.
func (s *Store) backfillIdentity(r *note.Record) {
	if r.IdentityHash != nil {
		return
	}
	ident := s.capture(r.Path)
	if ident == nil {
		return
	}
	if err := db.UpdateIdentity(s.db, r.ID, ident.Ref, ident.Token); err == nil {
		r.IdentityRef = ident.Ref
		r.IdentityHash = &ident.Token
	}
}
