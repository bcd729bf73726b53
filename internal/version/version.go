// Package version holds the build version, overridden with -ldflags at release time.
package version

// Version is the current scenesculpt release.
var Version = "dev"
