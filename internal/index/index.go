// Package index implements the indexed record store: the durable,
// queryable table of annotation records and the authoritative fast
// path for lookups. Records are matched by identity token first and
// by cached path second.
package index

import (
	"crypto/rand"
	"database/sql"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/identity"
)

// Store wraps the database handle and the identity resolver.
// A nil database handle means initialization failed; every operation
// then reports STORE_UNAVAILABLE instead of crashing, and the
// coordinator keeps working through the mirror alone.
type Store struct {
	db  *sql.DB
	res identity.Resolver
}

// New creates a Store. db may be nil (degraded mode).
func New(db *sql.DB, res identity.Resolver) *Store {
	return &Store{db: db, res: res}
}

// Available reports whether the underlying engine opened successfully.
func (s *Store) Available() bool {
	return s.db != nil
}

// DB exposes the underlying handle for read-only surfaces (web viewer).
func (s *Store) DB() *sql.DB {
	return s.db
}

// capture runs identity capture for a path, treating unavailability as
// a soft miss (nil identity, no error).
func (s *Store) capture(path string) *identity.Identity {
	id, err := s.res.Capture(path)
	if err != nil {
		return nil
	}
	return id
}

// cleanPath makes the location comparable: records store absolute,
// cleaned paths so equal locations hash to equal keys.
func cleanPath(location string) (string, error) {
	if location == "" {
		return "", errors.NewInvalidRequest("location must not be empty")
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", errors.NewInvalidRequest("location is not a usable path: " + location)
	}
	return filepath.Clean(abs), nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
