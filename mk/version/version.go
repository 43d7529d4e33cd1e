// Package version records the build version of ndn-traffic-push.
package version

import (
	"strconv"
	"time"
)

// Assigned via -ldflags -X.
var (
	commit string
	date   string
	dirty  string
)

// Get returns the version string of this build.
// Unstamped builds report "development".
func Get() string {
	dt, e := strconv.ParseInt(date, 10, 64)
	if e != nil || len(commit) != 40 {
		return "development"
	}
	suffix := ""
	if dirty != "" {
		suffix = "-dirty"
	}
	return "v0.0.0-" + time.Unix(dt, 0).UTC().Format("20060102150405") + "-" + commit[:12] + suffix
}
