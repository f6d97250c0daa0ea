package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/encap/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/encap/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/encap/internal/version.Date={{.Date}}
)

// String returns the multi-line version banner printed by "encap version".
func String() string {
	return fmt.Sprintf("encap version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
