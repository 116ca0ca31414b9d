// Package version exposes build metadata stamped at link time via
// -ldflags "-X github.com/catalogix/askdex/internal/version.Version=...".
package version

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
