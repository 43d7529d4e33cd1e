// Package trafficpush publishes NDN Data packets described by a set of traffic patterns.
// Each pattern runs an independent fixed-phase emission loop; all loops share
// one uplink and one global send quota.
package trafficpush

import (
	"github.com/ndntg/ndn-traffic-push/core/logging"
)

var logger = logging.New("TrafficPush")
