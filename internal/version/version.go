// Package version holds the build-time version string, overridable with
// -ldflags "-X github.com/vanvugt/journal-gatewayd/internal/version.Version=...".
package version

// Version is the gateway's release version.
var Version = "dev"
