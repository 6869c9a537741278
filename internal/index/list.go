package index

import (
	"github.com/hpungsan/sidenote/internal/db"
	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/note"
)

// Pagination limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ListOutput contains one page of records plus paging metadata.
type ListOutput struct {
	Records []*note.Record
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// List returns stored records ordered by most recent modification.
func (s *Store) List(limit, offset int) (*ListOutput, error) {
	if !s.Available() {
		return nil, errors.NewStoreUnavailable()
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, err := db.List(s.db, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := db.Count(s.db)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Records: records,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(records) < total,
	}, nil
}
