package trafficpush

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/usnistgov/ndn-dpdk/core/gqlclient"
	"github.com/usnistgov/ndn-dpdk/ndn"
	"github.com/usnistgov/ndn-dpdk/ndn/l3"
	"github.com/usnistgov/ndn-dpdk/ndn/mgmt"
	"github.com/usnistgov/ndn-dpdk/ndn/mgmt/gqlmgmt"
	"github.com/usnistgov/ndn-dpdk/ndn/mgmt/nfdmgmt"
)

// Uplink error conditions.
var (
	ErrNoAdvertise  = errors.New("management face does not support prefix advertisement")
	ErrUplinkClosed = errors.New("uplink is closed")
)

// UplinkConfig selects the forwarder management endpoint.
type UplinkConfig struct {
	// GqlServer is the GraphQL endpoint of the NDN-DPDK daemon.
	// This is used unless Nfd is set.
	GqlServer string

	// Nfd selects NFD management over the socket named in the
	// NDN_CLIENT_TRANSPORT environment variable.
	Nfd bool
}

// Uplink is a Transport backed by a forwarder management connection.
// Data packets are pushed directly on the face TX channel; the l3.Forwarder
// only carries management traffic.
type Uplink struct {
	client mgmt.Client
	mface  mgmt.Face
	fwFace l3.FwFace
	adv    l3.ReadvertiseDestination
	tx     chan<- ndn.L3Packet
	closed chan struct{}
}

var _ Transport = (*Uplink)(nil)

// OpenUplink connects to the forwarder and prepares prefix advertisement.
func OpenUplink(cfg UplinkConfig) (u *Uplink, e error) {
	u = &Uplink{closed: make(chan struct{})}
	if cfg.Nfd {
		u.client, e = nfdmgmt.New()
	} else {
		u.client, e = gqlmgmt.New(gqlclient.Config{HTTPUri: cfg.GqlServer})
	}
	if e != nil {
		return nil, e
	}

	if u.mface, e = u.client.OpenFace(); e != nil {
		u.client.Close()
		return nil, e
	}

	adv, ok := u.mface.(l3.ReadvertiseDestination)
	if !ok {
		u.mface.Close()
		u.client.Close()
		return nil, ErrNoAdvertise
	}
	u.adv = adv

	l3face := u.mface.Face()
	u.tx = l3face.Tx()

	fw := l3.GetDefaultForwarder()
	if u.fwFace, e = fw.AddFace(l3face); e != nil {
		u.mface.Close()
		u.client.Close()
		return nil, e
	}
	fw.AddReadvertiseDestination(adv)

	if nfd, ok := u.client.(*nfdmgmt.Client); ok {
		// NFD management is in-band: route the command prefix to the uplink
		u.fwFace.AddRoute(nfd.Prefix)
	}

	logger.Info("uplink opened")
	return u, nil
}

// Register advertises a prefix. Failure is reported through onFailure;
// closing the returned handle withdraws the advertisement.
func (u *Uplink) Register(name ndn.Name, onFailure func(reason error)) RegisteredPrefix {
	go func() {
		if e := u.adv.Advertise(name); e != nil {
			onFailure(e)
		}
	}()
	return &registeredPrefix{u: u, name: name}
}

// Send pushes one Data packet to the forwarder.
func (u *Uplink) Send(data ndn.Data) error {
	select {
	case <-u.closed:
		return ErrUplinkClosed
	case u.tx <- data:
		return nil
	}
}

// Close withdraws nothing by itself; callers must close RegisteredPrefix
// handles and stop all emission loops first.
func (u *Uplink) Close() error {
	close(u.closed)
	return multierr.Combine(
		u.fwFace.Close(),
		u.mface.Close(),
		u.client.Close(),
	)
}

type registeredPrefix struct {
	u    *Uplink
	name ndn.Name
}

func (rp *registeredPrefix) Close() error {
	select {
	case <-rp.u.closed:
		return nil
	default:
	}
	return rp.u.adv.Withdraw(rp.name)
}
