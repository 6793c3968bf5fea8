// Package version holds build metadata, set with -ldflags "-X".
package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-03-11T18:42:00Z
	GoVersion = runtime.Version()               // go version
)

// String is the one-line build summary logged at startup.
func String() string {
	return Version + " (commit=" + Commit + ", built=" + BuildDate + ", go=" + GoVersion + ")"
}
