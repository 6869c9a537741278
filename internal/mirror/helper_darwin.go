//go:build darwin

package mirror

import "strings"

// platformHelper wires the macOS metadata commands: Finder comments
// via osascript (which notifies Spotlight itself), indexed reads via
// mdls, and mdimport as the reindex nudge after a raw xattr write.
func platformHelper() *helper {
	return &helper{
		writeArgs: func(path, payload string) []string {
			return []string{
				"osascript",
				"-e", "on run argv",
				"-e", `tell application "Finder" to set comment of (POSIX file (item 1 of argv) as alias) to (item 2 of argv)`,
				"-e", "end run",
				path, payload,
			}
		},
		readArgs: func(path string) []string {
			return []string{"mdls", "-raw", "-name", "kMDItemFinderComment", path}
		},
		parseRead: func(out string) (string, bool) {
			out = strings.TrimSpace(out)
			if out == "" || out == "(null)" {
				return "", false
			}
			return out, true
		},
		clearArgs: func(path string) []string {
			return []string{
				"osascript",
				"-e", "on run argv",
				"-e", `tell application "Finder" to set comment of (POSIX file (item 1 of argv) as alias) to ""`,
				"-e", "end run",
				path,
			}
		},
		reindexArgs: func(path string) []string {
			return []string{"mdimport", path}
		},
	}
}
