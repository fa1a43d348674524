// Package buildinfo carries the version stamped in with -ldflags.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Resolved returns Version, falling back to the module version recorded by
// `go install` when nothing was stamped.
func Resolved() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

func String() string {
	return fmt.Sprintf("numlab %s (commit=%s, date=%s, %s/%s)", Resolved(), Commit, Date, runtime.GOOS, runtime.GOARCH)
}
