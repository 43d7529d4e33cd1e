package trafficpush

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/usnistgov/ndn-dpdk/ndn"
)

// pushLoop is the emission loop of one traffic pattern.
// It owns the local counter; the Runner owns the global counter and quota.
type pushLoop struct {
	id      int // zero-based pattern index
	pattern Pattern
	name    ndn.Name
	signer  ndn.Signer
	r       *Runner
	nSent   uint64 // local counter; written by the loop goroutine only
}

func newPushLoop(id int, pattern Pattern, r *Runner) *pushLoop {
	return &pushLoop{
		id:      id,
		pattern: pattern,
		name:    ndn.ParseName(pattern.Name),
		r:       r,
	}
}

// NSent returns the local emission counter.
func (pl *pushLoop) NSent() uint64 {
	return atomic.LoadUint64(&pl.nSent)
}

// loop runs until the global quota is exhausted, a fatal error occurs, or
// ctx is canceled. Ticks advance in fixed phase: each deadline is the
// previous deadline plus GenerationInterval, independent of how long the
// send took.
func (pl *pushLoop) loop(ctx context.Context) {
	interval := pl.pattern.Interval.Duration()
	deadline := time.Now().Add(interval)
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		switch ok, e := pl.fire(); {
		case e != nil:
			pl.r.fail(e)
			return
		case !ok: // quota exhausted
			return
		}

		if interval <= 0 {
			// zero GenerationInterval is single shot
			return
		}
		deadline = deadline.Add(interval)
		timer.Reset(time.Until(deadline))
	}
}

// fire performs one emission: synthesize, sign, delay, transmit.
// ok=false indicates the global quota was exhausted before this emission.
func (pl *pushLoop) fire() (ok bool, e error) {
	globalID, ok := pl.r.claim()
	if !ok {
		return false, nil
	}

	data := ndn.MakeData(pl.name, makeContent(pl.pattern, pl.NSent()))
	if pl.pattern.Freshness != nil {
		data.Freshness = pl.pattern.Freshness.Duration()
	}
	if pl.pattern.ContentType != nil {
		data.ContentType = ndn.ContentType(*pl.pattern.ContentType)
	}
	if e := pl.signer.Sign(&data); e != nil {
		return false, fmt.Errorf("signing error: %w", e)
	}

	localID := atomic.AddUint64(&pl.nSent, 1)
	if !pl.r.cfg.Quiet {
		logger.Info("sending Data",
			zap.Int("pattern", pl.id+1),
			zap.Uint64("globalID", globalID),
			zap.Uint64("localID", localID),
			zap.Stringer("name", pl.name),
		)
	}

	// deliberate throttles: content is generated and signed before the
	// delay, transmitted after
	if d := pl.pattern.ContentDelay; d != nil && d.Duration() > 0 {
		time.Sleep(d.Duration())
	}
	if d := pl.r.cfg.ContentDelay; d > 0 {
		time.Sleep(d)
	}

	if e := pl.r.transport.Send(data); e != nil {
		return false, fmt.Errorf("transport error: %w", e)
	}

	if pl.r.cfg.Quiet {
		logger.Info("sent Data",
			zap.Uint64("globalID", globalID),
			zap.Uint64("localID", localID),
			zap.Stringer("name", pl.name),
		)
	} else {
		logger.Info("sent Data",
			zap.Int("pattern", pl.id+1),
			zap.Uint64("globalID", globalID),
			zap.Uint64("localID", localID),
			zap.Stringer("name", pl.name),
		)
	}

	pl.r.noteSent(globalID)
	return true, nil
}
