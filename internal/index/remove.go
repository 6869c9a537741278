package index

import (
	"github.com/hpungsan/sidenote/internal/db"
	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/note"
)

// Remove deletes the record for a location. Resolution follows Find:
// path first, then identity token, then the stored relocatable
// reference. Removing a location with no record is idempotent success.
func (s *Store) Remove(location string) error {
	if !s.Available() {
		return errors.NewStoreUnavailable()
	}

	path, err := cleanPath(location)
	if err != nil {
		return err
	}

	if r, err := db.GetByPath(s.db, path); err == nil {
		return db.DeleteByID(s.db, r.ID)
	} else if !errors.Is(err, errors.ErrNotFound) {
		return err
	}

	if ident := s.capture(path); ident != nil {
		if r, err := db.GetByIdentityHash(s.db, ident.Token); err == nil {
			return db.DeleteByID(s.db, r.ID)
		} else if !errors.Is(err, errors.ErrNotFound) {
			return err
		}
	}

	// The object itself may be gone (capture fails), but a stored
	// reference can still resolve to the record's current location.
	if r := s.findByReference(path); r != nil {
		return db.DeleteByID(s.db, r.ID)
	}

	return nil
}

// findByReference scans stored references for one that resolves to the
// given path. Slow path; only reached when both cheap lookups missed.
func (s *Store) findByReference(path string) *note.Record {
	records, err := db.List(s.db, referenceScanLimit, 0)
	if err != nil {
		return nil
	}

	for _, r := range records {
		if len(r.IdentityRef) == 0 {
			continue
		}
		resolved, err := s.res.Resolve(r.IdentityRef)
		if err != nil {
			continue
		}
		if resolved == path {
			return r
		}
	}

	return nil
}

// referenceScanLimit bounds the reference scan; an annotation store
// holding more live records than this is out of scope for the slow path.
const referenceScanLimit = 10000
