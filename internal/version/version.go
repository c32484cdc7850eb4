// Package version provides build-time version information.
package version

import "strings"

// Set via ldflags. Defaults are used for builds without the Makefile (e.g. go install).
var (
	Version = "dev"
	Commit  = "unknown" // e.g. "1234567" or "1234567-dirty"
)

// Get returns a display version derived from Version, which is expected to
// look like `git describe --tags --long`'s output:
// "v<version>-<commits>-<hash>[-dirty|-broken]". A tagged commit with no
// local modifications returns the bare version; anything else is reported as
// a dev build against its commit hash.
func Get() string {
	v := strings.TrimPrefix(Version, "v")

	parts := strings.Split(v, "-")
	if len(parts) < 3 {
		return v
	}

	version, commits, hash := parts[0], parts[1], parts[2]
	modified := len(parts) > 3 && (parts[3] == "dirty" || parts[3] == "broken")

	if commits == "0" && !modified {
		return version
	}
	return version + "-dev." + hash
}
