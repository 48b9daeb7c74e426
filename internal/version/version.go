// Package version carries build metadata set with -ldflags, for example:
//
//	go build -ldflags "-X github.com/banshee-data/hexlink/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Banner returns the one-line identification printed when a tool starts.
func Banner(tool string) string {
	sha := GitSHA
	if len(sha) > 7 {
		sha = sha[:7]
	}
	return fmt.Sprintf("%s %s (%s, built %s)", tool, Version, sha, BuildTime)
}
