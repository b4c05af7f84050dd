// Package buildinfo exposes version information stamped at build time.
package buildinfo

import "runtime"

// Version is overridden with -ldflags "-X trimmer/internal/buildinfo.Version=...".
var Version = "dev"

// Commit is the VCS revision the binary was built from, if known.
var Commit = "unknown"

// Runtime identifies the Go runtime the binary was built with.
func Runtime() string {
	return runtime.Version()
}
