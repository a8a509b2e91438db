// Package version exposes build metadata stamped at link time.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the one-line version banner printed by the version command.
func String() string {
	return fmt.Sprintf("intervuai %s (commit=%s, date=%s, go=%s)", Version, Commit, Date, runtime.Version())
}
