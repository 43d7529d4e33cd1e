package trafficpush

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ndntg/ndn-traffic-push/core/events"
)

// Registration tracker events.
const (
	evtRegisterFailed = "register-failed"
	evtAllFailed      = "all-failed"
)

// registrationTracker records per-pattern advertisement outcomes.
// Individual failures are recoverable; when every pattern has failed, the
// tracker emits evtAllFailed exactly once.
type registrationTracker struct {
	emitter *events.Emitter
	total   int32
	nFailed int32
}

func newRegistrationTracker(total int) *registrationTracker {
	return &registrationTracker{
		emitter: events.NewEmitter(),
		total:   int32(total),
	}
}

// OnFailure creates the registration failure callback for one pattern.
// id is the zero-based pattern index, captured by value.
func (t *registrationTracker) OnFailure(id int, name string) func(reason error) {
	return func(reason error) {
		logger.Error("prefix registration failed",
			zap.Int("pattern", id+1),
			zap.String("name", name),
			zap.Error(reason),
		)
		t.emitter.EmitSync(evtRegisterFailed, id, reason)
		if atomic.AddInt32(&t.nFailed, 1) == t.total {
			t.emitter.EmitSync(evtAllFailed)
		}
	}
}

// NFailed returns how many patterns have failed registration so far.
func (t *registrationTracker) NFailed() int {
	return int(atomic.LoadInt32(&t.nFailed))
}
