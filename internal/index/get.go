package index

import (
	"github.com/hpungsan/sidenote/internal/db"
	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/note"
)

// Get retrieves a record by its id. Used by read-only surfaces that
// address records directly rather than by location.
func (s *Store) Get(id string) (*note.Record, error) {
	if !s.Available() {
		return nil, errors.NewStoreUnavailable()
	}
	return db.GetByID(s.db, id)
}
