// Package version exposes build information for the running binary.
package version

// Version is the application version. Overridden at build time via
// -ldflags "-X github.com/stockbucket/backend/internal/version.Version=x.y.z".
var Version = "dev"
