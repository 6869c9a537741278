package db

import (
	"database/sql"
	"time"

	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/note"
)

const recordColumns = `id, path, identity_reference, identity_hash, title, body, created_at, modified_at`

// Insert stores a new record in the database.
func Insert(db *sql.DB, r *note.Record) error {
	query := `
		INSERT INTO records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		r.ID, r.Path, toNullBytes(r.IdentityRef), toNullString(r.IdentityHash),
		r.Title, r.Body, r.CreatedAt, r.ModifiedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetByPath retrieves the record whose cached path matches exactly.
// Path is a cache, not an identity: a miss here does not mean the
// object is unannotated, only that it was last seen elsewhere.
func GetByPath(db *sql.DB, path string) (*note.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE path = ?
		ORDER BY modified_at DESC
		LIMIT 1
	`

	r, err := scanRecord(db.QueryRow(query, path))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(path)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return r, nil
}

// GetByID retrieves a record by its ULID.
func GetByID(db *sql.DB, id string) (*note.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE id = ?
	`

	r, err := scanRecord(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return r, nil
}

// GetByIdentityHash retrieves the record matching a stable identity token.
// This lookup takes precedence over path matching after a rename/move.
func GetByIdentityHash(db *sql.DB, hash string) (*note.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE identity_hash = ?
		ORDER BY modified_at DESC
		LIMIT 1
	`

	r, err := scanRecord(db.QueryRow(query, hash))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(hash)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return r, nil
}

// UpdateByID rewrites a record's content and location fields in place.
// Sets modified_at to the current timestamp. Does NOT change: id, created_at.
func UpdateByID(db *sql.DB, r *note.Record) error {
	now := time.Now().Unix()

	query := `
		UPDATE records
		SET path = ?, identity_reference = ?, identity_hash = ?,
			title = ?, body = ?, modified_at = ?
		WHERE id = ?
	`

	result, err := db.Exec(query,
		r.Path, toNullBytes(r.IdentityRef), toNullString(r.IdentityHash),
		r.Title, r.Body, now,
		r.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(r.ID)
	}

	r.ModifiedAt = now

	return nil
}

// UpdatePath rewrites only the cached path of a record. Used by the
// self-healing lookup after identity resolution finds the record under
// a stale path. Does not touch modified_at: the note content is unchanged.
func UpdatePath(db *sql.DB, id, path string) error {
	result, err := db.Exec(`UPDATE records SET path = ? WHERE id = ?`, path, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// UpdateIdentity backfills the identity reference and hash of a record
// whose identity could not be captured when it was first saved.
func UpdateIdentity(db *sql.DB, id string, ref []byte, hash string) error {
	_, err := db.Exec(
		`UPDATE records SET identity_reference = ?, identity_hash = ? WHERE id = ?`,
		toNullBytes(ref), sql.NullString{String: hash, Valid: hash != ""}, id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteByID removes a record. Deleting an absent record is not an error.
func DeleteByID(db *sql.DB, id string) error {
	if _, err := db.Exec(`DELETE FROM records WHERE id = ?`, id); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// List returns records ordered by most recently modified.
func List(db *sql.DB, limit, offset int) ([]*note.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		ORDER BY modified_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.Query(query, limit, offset)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var records []*note.Record
	for rows.Next() {
		r, err := scanRecordRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return records, nil
}

// Count returns the number of stored records.
func Count(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// scanner abstracts *sql.Row and *sql.Rows for record scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a Record struct.
func scanRecord(row *sql.Row) (*note.Record, error) {
	return scanRecordRows(row)
}

func scanRecordRows(s scanner) (*note.Record, error) {
	var (
		r            note.Record
		identityRef  []byte
		identityHash sql.NullString
	)

	err := s.Scan(
		&r.ID, &r.Path, &identityRef, &identityHash,
		&r.Title, &r.Body, &r.CreatedAt, &r.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	r.IdentityRef = identityRef
	r.IdentityHash = fromNullString(identityHash)

	return &r, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// toNullBytes maps an empty blob to NULL.
func toNullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
