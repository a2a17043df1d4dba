// Package version exposes build metadata injected at build time.
package version

import "runtime"

var (
	// Version is the semantic version, injected via -ldflags
	Version = "dev"
	// GitCommit is the git commit hash, injected at build time
	GitCommit = "unknown"
	// BuildDate is the build timestamp, injected at build time
	BuildDate = "unknown"
	// GoVersion is the Go compiler version
	GoVersion = runtime.Version()
	// Platform is the OS/Arch
	Platform = runtime.GOOS + "/" + runtime.GOARCH
)

// BuildInfo contains metadata about the build
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}
}
