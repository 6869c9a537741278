//go:build !windows

package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// reference is the serialized form of the relocatable reference blob.
// The dev/ino pair is the identity; the path is the hint Resolve
// starts from when the object has moved.
type reference struct {
	Dev  uint64 `json:"dev"`
	Ino  uint64 `json:"ino"`
	Path string `json:"path"`
}

type platformResolver struct{}

// Capture derives the identity token from the object's device and
// inode numbers. Rename and move within a volume keep both.
func (platformResolver) Capture(path string) (*Identity, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	dev, ino, err := statIdentity(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ref, err := json.Marshal(reference{Dev: dev, Ino: ino, Path: abs})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Identity{
		Token: tokenFor(dev, ino),
		Ref:   ref,
	}, nil
}

// Resolve checks the reference's recorded path first; if the object is
// no longer there, it scans the recorded parent directory for an entry
// with the same identity (rename within a directory). Moves out of the
// directory report ErrNotFound and are recovered by identity-token
// lookups on the store side instead.
func (platformResolver) Resolve(refBlob []byte) (string, error) {
	var ref reference
	if err := json.Unmarshal(refBlob, &ref); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if dev, ino, err := statIdentity(ref.Path); err == nil && dev == ref.Dev && ino == ref.Ino {
		return ref.Path, nil
	}

	dir := filepath.Dir(ref.Path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ErrNotFound
	}

	for _, entry := range entries {
		candidate := filepath.Join(dir, entry.Name())
		if dev, ino, err := statIdentity(candidate); err == nil && dev == ref.Dev && ino == ref.Ino {
			return candidate, nil
		}
	}

	return "", ErrNotFound
}

// statIdentity returns the device and inode numbers of the object at path.
func statIdentity(path string) (dev, ino uint64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, fmt.Errorf("no stat identity for %s", path)
	}

	return uint64(st.Dev), uint64(st.Ino), nil
}

// tokenFor hashes the dev/ino pair into the stored identity token.
func tokenFor(dev, ino uint64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d", dev, ino)))
	return hex.EncodeToString(sum[:16])
}
