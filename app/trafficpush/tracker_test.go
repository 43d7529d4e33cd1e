package trafficpush

import (
	"errors"
	"testing"
)

func TestRegistrationTracker(t *testing.T) {
	assert, _ := makeAR(t)

	tracker := newRegistrationTracker(3)
	nFailedEvents, nAllFailed := 0, 0
	tracker.emitter.On(evtRegisterFailed, func(id int, reason error) { nFailedEvents++ })
	tracker.emitter.On(evtAllFailed, func() { nAllFailed++ })

	reason := errors.New("no route")
	tracker.OnFailure(0, "/a")(reason)
	tracker.OnFailure(2, "/c")(reason)
	assert.Equal(2, tracker.NFailed())
	assert.Equal(2, nFailedEvents)
	assert.Zero(nAllFailed)

	tracker.OnFailure(1, "/b")(reason)
	assert.Equal(3, tracker.NFailed())
	assert.Equal(3, nFailedEvents)
	assert.Equal(1, nAllFailed)
}
