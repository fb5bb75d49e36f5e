// Package version holds build version info, overridable at link time.
package version

// Version is set via -ldflags "-X github.com/vigil-app/vigil/internal/version.Version=..."
var Version = "0.3.0"
