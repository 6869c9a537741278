// Package identity recovers "the same file" after it has been renamed
// or moved within a volume. Paths are not stable identifiers; this
// package isolates the one platform-dependent piece of logic that is,
// so the rest of the system works purely in terms of paths in/out.
package identity

import "errors"

// ErrUnavailable reports that the platform could not produce an
// identity for the object (vanished, permissions, unsupported FS).
// Callers degrade to path-only matching, they do not fail.
var ErrUnavailable = errors.New("identity unavailable")

// ErrNotFound reports that a relocatable reference no longer resolves
// to a live object.
var ErrNotFound = errors.New("referenced object not found")

// Identity pairs the stable token with the relocatable reference blob
// captured for one object.
type Identity struct {
	// Token is a stable value identifying the underlying object
	// independent of its path. Equal tokens mean the same object.
	Token string

	// Ref is an opaque blob that Resolve can later turn back into a
	// live path even after the object moved.
	Ref []byte
}

// Resolver captures and resolves file identities.
type Resolver interface {
	// Capture returns the identity of the object at path.
	// Returns ErrUnavailable (wrapped or bare) when the platform cannot
	// produce one; callers must treat that as soft failure.
	Capture(path string) (*Identity, error)

	// Resolve turns a previously captured reference back into a live
	// path. Returns ErrNotFound when the reference is stale, never a
	// bogus path.
	Resolve(ref []byte) (string, error)
}

// NewResolver returns the platform resolver.
func NewResolver() Resolver {
	return platformResolver{}
}
