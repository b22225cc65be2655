// Package buildinfo exposes the version stamped into tsvisio at build time.
//
//	go build -ldflags "-X github.com/zimmermanw84/ts-visio-sub000/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/zimmermanw84/ts-visio-sub000/pkg/buildinfo.Commit=$(git rev-parse HEAD)"
package buildinfo

import "fmt"

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp as reported by the API.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String returns the build stamp on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
