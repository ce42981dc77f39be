// Package version exposes build metadata for the itemsearch binaries.
// The values are overridden at link time, e.g.:
//
//	go build -ldflags "-X github.com/pickstack/itemsearch/internal/version.Version=v1.2.0"
package version

var (
	// Version is the release version of the build.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)
