package trafficpush

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/usnistgov/ndn-dpdk/ndn"
)

type mockTransport struct {
	mu           sync.Mutex
	sent         []ndn.Data
	withdrawn    int
	failRegister bool
	sendErr      error
	registerHook func()
}

var _ Transport = (*mockTransport)(nil)

func (t *mockTransport) Register(name ndn.Name, onFailure func(reason error)) RegisteredPrefix {
	if t.registerHook != nil {
		t.registerHook()
	}
	if t.failRegister {
		onFailure(errors.New("no route to forwarder"))
	}
	return mockPrefix{t}
}

func (t *mockTransport) Send(data ndn.Data) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, data)
	return nil
}

func (t *mockTransport) Close() error {
	return nil
}

func (t *mockTransport) Sent() []ndn.Data {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]ndn.Data{}, t.sent...)
}

type mockPrefix struct {
	t *mockTransport
}

func (p mockPrefix) Close() error {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	p.t.withdrawn++
	return nil
}

func TestRunnerQuota(t *testing.T) {
	assert, require := makeAR(t)

	contentLen := 20
	transport := &mockTransport{}
	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{{
			Name:       "/a",
			Interval:   nnMicroseconds(1000),
			ContentLen: &contentLen,
		}},
		Count:  3,
		Report: &report,
	}, transport)

	require.NoError(r.Run(context.Background()))
	assert.False(r.HasError())

	assert.EqualValues(3, r.NSent())
	assert.EqualValues(3, r.loops[0].NSent())

	sent := transport.Sent()
	require.Len(sent, 3)
	for _, data := range sent {
		assert.Equal("/8=a", data.Name.String())
		assert.Len(data.Content, 20)
		assert.NotNil(data.SigInfo)
	}

	assert.Contains(report.String(), "== Data Traffic Report ==")
	assert.Contains(report.String(), "Total Data Packets Sent     = 3")
	assert.Equal(1, transport.withdrawn)
}

func TestRunnerZeroQuota(t *testing.T) {
	assert, require := makeAR(t)

	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{{Name: "/a", Interval: nnMicroseconds(1000)}},
		Report:   &report,
	}, nil)

	require.NoError(r.Run(context.Background()))
	assert.Zero(r.NSent())
	assert.False(r.HasError())
	assert.Contains(report.String(), "Traffic Pattern Type #1")
	assert.Contains(report.String(), "Total Data Packets Sent     = 0")
}

func TestRunnerCountersLockstep(t *testing.T) {
	assert, require := makeAR(t)

	transport := &mockTransport{}
	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{
			{Name: "/a", Interval: nnMicroseconds(1000)},
			{Name: "/b", Interval: nnMicroseconds(1500)},
			{Name: "/c", Interval: nnMicroseconds(2000)},
		},
		Count:  10,
		Report: &report,
	}, transport)

	require.NoError(r.Run(context.Background()))

	var localSum uint64
	for _, pl := range r.loops {
		assert.LessOrEqual(pl.NSent(), r.NSent())
		localSum += pl.NSent()
	}
	assert.EqualValues(10, r.NSent())
	assert.Equal(localSum, r.NSent())
	assert.Len(transport.Sent(), 10)
	assert.Equal(3, transport.withdrawn)
}

func TestRunnerAllRegistrationsFailed(t *testing.T) {
	assert, _ := makeAR(t)

	transport := &mockTransport{failRegister: true}
	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{
			{Name: "/a", Interval: nnMicroseconds(50000)},
			{Name: "/b", Interval: nnMicroseconds(50000)},
		},
		Count:  5,
		Report: &report,
	}, transport)

	assert.ErrorIs(r.Run(context.Background()), ErrRegistration)
	assert.True(r.HasError())
	assert.Zero(r.NSent())
	assert.Empty(transport.Sent())
	assert.Contains(report.String(), "Total Data Packets Sent     = 0")
}

func TestRunnerTransportError(t *testing.T) {
	assert, _ := makeAR(t)

	transport := &mockTransport{sendErr: errors.New("link down")}
	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{{Name: "/a", Interval: nnMicroseconds(1000)}},
		Count:    5,
		Report:   &report,
	}, transport)

	e := r.Run(context.Background())
	assert.Error(e)
	assert.Contains(e.Error(), "transport error")
	assert.True(r.HasError())
	assert.Contains(report.String(), "== Data Traffic Report ==")
}

func TestRunnerConfigError(t *testing.T) {
	assert, _ := makeAR(t)

	r := NewRunner(Config{}, nil)
	var ce *ConfigError
	assert.ErrorAs(r.Run(context.Background()), &ce)
}

func TestRunnerCancelBeforeQuota(t *testing.T) {
	assert, _ := makeAR(t)

	transport := &mockTransport{}
	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{{Name: "/a", Interval: nnMicroseconds(5000)}},
		Count:    1 << 30,
		Report:   &report,
	}, transport)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.Error(r.Run(ctx))
	assert.True(r.HasError())
	assert.Less(r.NSent(), uint64(1<<30))
}

func TestRunnerInterrupted(t *testing.T) {
	assert, _ := makeAR(t)

	transport := &mockTransport{}
	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{{Name: "/a", Interval: nnMicroseconds(2000)}},
		Count:    1 << 30,
		Report:   &report,
	}, transport)

	go func() {
		time.Sleep(30 * time.Millisecond)
		syscall.Kill(os.Getpid(), syscall.SIGINT)
	}()
	assert.Error(r.Run(context.Background()))
	assert.True(r.HasError())
	assert.Equal(uint64(len(transport.Sent())), r.NSent())
}

func TestRunnerInterruptDisposition(t *testing.T) {
	assert, _ := makeAR(t)

	cause := errors.New("terminated by signal")
	patterns := []Pattern{{Name: "/a", Interval: nnMicroseconds(1000)}}

	// at quota: the signal does not spoil a completed run
	r := NewRunner(Config{Patterns: patterns, Count: 2}, nil)
	atomic.StoreUint64(&r.nSent, 2)
	r.interrupted(cause)
	assert.False(r.HasError())
	assert.NoError(r.fatal)

	// before quota: runtime failure
	r = NewRunner(Config{Patterns: patterns, Count: 2}, nil)
	atomic.StoreUint64(&r.nSent, 1)
	r.interrupted(cause)
	assert.True(r.HasError())
	assert.ErrorIs(r.fatal, cause)
}

func TestRunnerInterruptedDuringRegistration(t *testing.T) {
	assert, _ := makeAR(t)

	// a signal arriving while prefixes register must still end with a
	// statistics flush, not the default signal disposition
	transport := &mockTransport{registerHook: func() {
		syscall.Kill(os.Getpid(), syscall.SIGINT)
	}}
	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{{Name: "/a", Interval: nnMicroseconds(5000)}},
		Count:    1 << 30,
		Report:   &report,
	}, transport)

	assert.Error(r.Run(context.Background()))
	assert.True(r.HasError())
	assert.Contains(report.String(), "== Data Traffic Report ==")
}

func TestRunnerFixedPhase(t *testing.T) {
	assert, require := makeAR(t)

	// with drift-free scheduling the per-send content delay does not push
	// back subsequent deadlines
	delay := nnMicroseconds(30000)
	transport := &mockTransport{}
	var report bytes.Buffer
	r := NewRunner(Config{
		Patterns: []Pattern{{
			Name:         "/a",
			Interval:     nnMicroseconds(40000),
			ContentDelay: delay,
		}},
		Count:  3,
		Report: &report,
	}, transport)

	t0 := time.Now()
	require.NoError(r.Run(context.Background()))
	elapsed := time.Since(t0)

	// fixed phase: last tick at 3*40ms, plus one 30ms delay =~ 150ms;
	// relative-to-now rescheduling would need >=210ms
	assert.GreaterOrEqual(elapsed, 145*time.Millisecond)
	assert.Less(elapsed, 200*time.Millisecond)
}
