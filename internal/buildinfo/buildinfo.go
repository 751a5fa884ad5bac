// Package buildinfo holds release metadata set at link time:
//
//	go build -ldflags "-X github.com/jfschaefer/GLIFcore/internal/buildinfo.Version=v1.2.0"
package buildinfo

// Empty for local builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
