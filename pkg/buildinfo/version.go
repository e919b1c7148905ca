// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/gitpkg/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/gitpkg/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/gitpkg/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the multi-line form printed by `gitpkg version`.
func String() string {
	return fmt.Sprintf("gitpkg %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// Labels returns the build info as metric labels.
func Labels() map[string]string {
	return map[string]string{"version": Version, "commit": Commit, "date": Date}
}
