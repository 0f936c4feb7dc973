// Package version holds build metadata, set with ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/Dota-Draft-Companion/internal/version.Version=v1.2.3"
package version

import "fmt"

// Build metadata. Defaults apply to untagged local builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// String returns the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("draft-companion %s (commit %s, built %s)", Version, Commit, Date)
}
