//go:build windows

package identity

type platformResolver struct{}

// Capture reports unavailable on Windows: there is no inode-style
// identity to derive a token from, so the store matches by path only.
func (platformResolver) Capture(path string) (*Identity, error) {
	return nil, ErrUnavailable
}

// Resolve reports not-found; no references are captured on Windows.
func (platformResolver) Resolve(ref []byte) (string, error) {
	return "", ErrNotFound
}
