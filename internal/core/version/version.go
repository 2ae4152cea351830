// Package version reports the build version stamped at link time
package version

// BuildInfo holds version information about a circlesync binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set via -ldflags "-X 'circlesync/internal/core/version.version=v0.1.0'
// -X 'circlesync/internal/core/version.commit=abcd' -X 'circlesync/internal/core/version.date=2025-09-02'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information for the named service
func Info(service string) BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}
