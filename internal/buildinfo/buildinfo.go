// Package buildinfo holds version information set via ldflags.
package buildinfo

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)
