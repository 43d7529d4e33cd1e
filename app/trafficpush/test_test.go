package trafficpush

import (
	"github.com/ndntg/ndn-traffic-push/core/nnduration"
	"github.com/ndntg/ndn-traffic-push/core/testenv"
)

var makeAR = testenv.MakeAR

func nnMicroseconds(v uint64) *nnduration.Microseconds {
	d := nnduration.Microseconds(v)
	return &d
}

func nnMilliseconds(v uint64) *nnduration.Milliseconds {
	d := nnduration.Milliseconds(v)
	return &d
}
