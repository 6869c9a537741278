package note

import "strings"

// Note is an annotation attached to a file-system object.
type Note struct {
	// ID is a ULID that uniquely identifies this note
	ID string

	// Title is the short annotation text shown in listings
	Title string

	// Body is the free-form annotation text
	Body string

	// CreatedAt is the Unix timestamp when the note was created
	CreatedAt int64

	// ModifiedAt is the Unix timestamp when the note content last changed
	ModifiedAt int64
}

// IsEmpty reports whether the note carries no content.
// An empty note is never stored; saving one is equivalent to deleting.
func (n *Note) IsEmpty() bool {
	return n == nil || (strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Body) == "")
}

// Record is the row stored by the indexed record store for one
// annotated file-system object.
type Record struct {
	// ID is a ULID that uniquely identifies this record
	ID string

	// Path is the best-known path of the object. It is a cache of
	// "where was it last seen", not an identity.
	Path string

	// IdentityRef is an opaque relocatable reference blob that the
	// identity resolver can turn back into a live path (nullable)
	IdentityRef []byte

	// IdentityHash is a stable token derived from the object's
	// underlying identity, used as the secondary lookup key (nullable)
	IdentityHash *string

	// Title is the note title
	Title string

	// Body is the note body
	Body string

	// CreatedAt is the Unix timestamp when the record was created
	CreatedAt int64

	// ModifiedAt is the Unix timestamp when the note content last changed
	ModifiedAt int64
}

// Note returns the annotation content held by the record.
func (r *Record) Note() *Note {
	return &Note{
		ID:         r.ID,
		Title:      r.Title,
		Body:       r.Body,
		CreatedAt:  r.CreatedAt,
		ModifiedAt: r.ModifiedAt,
	}
}
