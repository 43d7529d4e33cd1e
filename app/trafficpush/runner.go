package trafficpush

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Config contains Runner options.
type Config struct {
	// Patterns is the ordered traffic pattern list.
	Patterns []Pattern

	// Count is the global send quota across all patterns. Zero causes the
	// run to print the configuration and statistics without sending
	// anything.
	Count uint64

	// ContentDelay is an additional wait applied before every transmission,
	// regardless of pattern.
	ContentDelay time.Duration

	// Quiet suppresses pre-send log lines and shortens post-send lines.
	Quiet bool

	// Report receives the human-readable configuration and statistics.
	// Default is os.Stdout.
	Report io.Writer
}

// Runner drives one emission loop per pattern against a shared Transport.
type Runner struct {
	cfg       Config
	transport Transport
	loops     []*pushLoop
	tracker   *registrationTracker

	nSent    uint64 // global counter; monotonic, never exceeds cfg.Count
	hasError uint32 // sticky fatal flag

	stopOnce sync.Once
	stopped  chan struct{}
	fatal    error // written inside stopOnce, read after stopped is closed
}

// NewRunner creates a Runner.
// transport may be nil when cfg.Count is zero.
func NewRunner(cfg Config, transport Transport) *Runner {
	r := &Runner{
		cfg:       cfg,
		transport: transport,
		tracker:   newRegistrationTracker(len(cfg.Patterns)),
		stopped:   make(chan struct{}),
	}
	for i, p := range cfg.Patterns {
		r.loops = append(r.loops, newPushLoop(i, p, r))
	}
	return r
}

// NSent returns the global emission counter.
func (r *Runner) NSent() uint64 {
	return atomic.LoadUint64(&r.nSent)
}

// HasError reports whether a fatal condition occurred. Once set, it is
// never cleared.
func (r *Runner) HasError() bool {
	return atomic.LoadUint32(&r.hasError) != 0
}

// claim reserves the next global sequence slot.
// ok=false indicates the quota is exhausted; the counter never exceeds it.
func (r *Runner) claim() (globalID uint64, ok bool) {
	for {
		cur := atomic.LoadUint64(&r.nSent)
		if cur >= r.cfg.Count {
			return 0, false
		}
		if atomic.CompareAndSwapUint64(&r.nSent, cur, cur+1) {
			return cur + 1, true
		}
	}
}

// noteSent records a completed transmission and stops the run when it was
// the last one under the quota.
func (r *Runner) noteSent(globalID uint64) {
	if globalID == r.cfg.Count {
		logger.Info("quota reached", zap.Uint64("count", r.cfg.Count))
		r.stop(nil)
	}
}

func (r *Runner) quotaSatisfied() bool {
	return atomic.LoadUint64(&r.nSent) >= r.cfg.Count
}

// interrupted handles an external stop request (signal or context
// cancellation). At or beyond the quota the run still completes cleanly;
// before the quota it is a runtime failure.
func (r *Runner) interrupted(cause error) {
	if r.quotaSatisfied() {
		r.stop(nil)
		return
	}
	r.fail(cause)
}

// fail records a fatal condition and requests a global stop.
func (r *Runner) fail(e error) {
	atomic.StoreUint32(&r.hasError, 1)
	r.stop(e)
}

func (r *Runner) stop(e error) {
	r.stopOnce.Do(func() {
		r.fatal = e
		close(r.stopped)
	})
}

// Run executes the traffic run and blocks until completion.
// A nil return means clean completion (quota reached, or nothing to send);
// a *ConfigError means invalid configuration; any other error is a runtime
// failure. Statistics are written on every termination path after the
// configuration was accepted.
func (r *Runner) Run(ctx context.Context) error {
	if e := ValidatePatterns(r.cfg.Patterns); e != nil {
		return &ConfigError{Err: e}
	}

	r.printConfiguration()
	if r.cfg.Count == 0 {
		r.printStatistics()
		return nil
	}
	defer r.printStatistics()

	for _, pl := range r.loops {
		signer, e := MakeSigner(pl.pattern.SigningInfo)
		if e != nil {
			r.fail(e)
			return fmt.Errorf("pattern %d: %w", pl.id+1, e)
		}
		pl.signer = signer
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cancelAllFailed := r.tracker.emitter.Once(evtAllFailed, func() {
		r.fail(ErrRegistration)
	})
	defer cancelAllFailed()

	// the handler must be in place before registration so that an early
	// signal still reaches the statistics flush
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	logger.Info("registering prefixes", zap.Int("patterns", len(r.loops)))
	handles := make([]RegisteredPrefix, len(r.loops))
	for i, pl := range r.loops {
		handles[i] = r.transport.Register(pl.name, r.tracker.OnFailure(pl.id, pl.pattern.Name))
	}

	var wg sync.WaitGroup
	for _, pl := range r.loops {
		wg.Add(1)
		go func(pl *pushLoop) {
			defer wg.Done()
			pl.loop(ctx)
		}(pl)
	}
	loopsDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(loopsDone)
	}()

	select {
	case <-loopsDone:
		// every loop finished on its own; with single-shot patterns this
		// can happen below quota
		r.stop(nil)
	case sig := <-interrupt:
		logger.Info("received signal", zap.String("signal", sig.String()))
		r.interrupted(fmt.Errorf("terminated by signal %s before quota", sig))
	case <-ctx.Done():
		r.interrupted(ctx.Err())
	case <-r.stopped:
	}

	cancel()
	wg.Wait()

	for i, h := range handles {
		if e := h.Close(); e != nil {
			logger.Debug("prefix withdraw failed",
				zap.Int("pattern", i+1), zap.Error(e))
		}
	}

	if r.fatal != nil {
		logger.Error("run failed", zap.Error(r.fatal))
	}
	return r.fatal
}

func (r *Runner) report() io.Writer {
	if r.cfg.Report != nil {
		return r.cfg.Report
	}
	return os.Stdout
}

func (r *Runner) printConfiguration() {
	w := r.report()
	fmt.Fprintf(w, "Traffic configuration processing completed.\n\n")
	for i, pl := range r.loops {
		fmt.Fprintf(w, "Traffic Pattern Type #%d\n", i+1)
		fmt.Fprintf(w, "%s\n\n", pl.pattern)
	}
}

func (r *Runner) printStatistics() {
	w := r.report()
	fmt.Fprintf(w, "\n== Data Traffic Report ==\n\n")
	fmt.Fprintf(w, "Total Traffic Pattern Types = %d\n", len(r.loops))
	fmt.Fprintf(w, "Total Data Packets Sent     = %d\n", r.NSent())
	for i, pl := range r.loops {
		fmt.Fprintf(w, "\nTraffic Pattern Type #%d\n", i+1)
		fmt.Fprintf(w, "%s\n", pl.pattern)
		fmt.Fprintf(w, "Total Data Packets Sent     = %d\n", pl.NSent())
	}
}
