package version

import "fmt"

// Build metadata, overridden via -ldflags "-X ..." by the release build.
// The defaults identify an untagged local build.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the short git SHA the binary was built from.
	Commit = "local"
	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full renders the version with commit and build time for CLI output.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
