//go:build !darwin

package mirror

// platformHelper returns nil: no indexed metadata channel here, the
// raw attribute strategies are both the primary and the fallback.
func platformHelper() *helper {
	return nil
}
