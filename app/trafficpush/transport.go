package trafficpush

import (
	"io"

	"github.com/usnistgov/ndn-dpdk/ndn"
)

// RegisteredPrefix is a handle of one advertised prefix.
// Closing it withdraws the advertisement.
type RegisteredPrefix interface {
	io.Closer
}

// Transport is the boundary toward the forwarding plane.
//
// Register advertises a name prefix. Registration failure is reported
// asynchronously through onFailure; success has no callback. The returned
// handle withdraws the advertisement when closed.
//
// Send transmits one signed Data packet. Send may be invoked from multiple
// emission loops, but never concurrently for the same logical emission.
type Transport interface {
	io.Closer

	Register(name ndn.Name, onFailure func(reason error)) RegisteredPrefix

	Send(data ndn.Data) error
}
