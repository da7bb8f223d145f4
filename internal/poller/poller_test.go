// internal/poller/poller_test.go
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/license-console/internal/config"
)

func TestPoller_RunsImmediatelyAndOnTicks(t *testing.T) {
	p := New(config.PollingConfig{Interval: time.Second})
	var runs int32
	require.NoError(t, p.Register("app_installs", func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	}))

	p.Start()
	defer p.Close()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, 500*time.Millisecond, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestPoller_RegisterTwice(t *testing.T) {
	p := New(config.PollingConfig{Interval: time.Second})
	noop := func(ctx context.Context) {}

	require.NoError(t, p.Register("licenses", noop))
	assert.Error(t, p.Register("licenses", noop))
}

func TestPoller_StopHaltsTicks(t *testing.T) {
	p := New(config.PollingConfig{Interval: time.Second})
	var runs int32
	require.NoError(t, p.Register("licenses", func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	}))

	p.Start()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, 500*time.Millisecond, 10*time.Millisecond)

	<-p.Stop().Done()
	stopped := atomic.LoadInt32(&runs)
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&runs))
}

func TestPoller_StopWaitsForInFlightFetch(t *testing.T) {
	p := New(config.PollingConfig{Interval: time.Second})
	started := make(chan struct{})
	var once sync.Once
	release := make(chan struct{})
	var finished int32

	require.NoError(t, p.Register("slow", func(ctx context.Context) {
		once.Do(func() { close(started) })
		<-release
		atomic.StoreInt32(&finished, 1)
	}))

	p.Start()
	<-started
	stopped := p.Stop()

	select {
	case <-stopped.Done():
		t.Fatal("stop context done while the first fetch was still running")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped.Done():
	case <-time.After(time.Second):
		t.Fatal("stop context not done after the fetch finished")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
	p.Close()
}

func TestPoller_CloseDoesNotCancelRunningFetch(t *testing.T) {
	p := New(config.PollingConfig{Interval: time.Second})
	started := make(chan struct{})
	var once sync.Once
	release := make(chan struct{})
	var cancelled int32

	require.NoError(t, p.Register("slow", func(ctx context.Context) {
		once.Do(func() { close(started) })
		<-release
		if ctx.Err() != nil {
			atomic.StoreInt32(&cancelled, 1)
		}
	}))

	p.Start()
	<-started

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a fetch was still running")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the fetch finished")
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&cancelled))
}

func TestPoller_RegisterWhileStartedRunsImmediately(t *testing.T) {
	p := New(config.PollingConfig{Interval: time.Second})
	p.Start()

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	require.NoError(t, p.Register("late", func(ctx context.Context) {
		once.Do(func() { close(started) })
		<-release
	}))
	<-started

	stopped := p.Stop()
	select {
	case <-stopped.Done():
		t.Fatal("stop context done while the late fetch was still running")
	case <-time.After(100 * time.Millisecond):
	}
	close(release)
	<-stopped.Done()
	p.Close()
}

func TestPoller_OverlapAllowedByDefault(t *testing.T) {
	p := New(config.PollingConfig{Interval: time.Second})
	release := make(chan struct{})
	var concurrent, maxConcurrent int32

	require.NoError(t, p.Register("slow", func(ctx context.Context) {
		n := atomic.AddInt32(&concurrent, 1)
		for {
			m := atomic.LoadInt32(&maxConcurrent)
			if n <= m || atomic.CompareAndSwapInt32(&maxConcurrent, m, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&concurrent, -1)
	}))

	p.Start()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&maxConcurrent) >= 2 }, 3*time.Second, 50*time.Millisecond)
	close(release)
	p.Close()
}

func TestPoller_SkipIfRunning(t *testing.T) {
	p := New(config.PollingConfig{Interval: time.Second, SkipIfRunning: true})
	release := make(chan struct{})
	var concurrent, maxConcurrent, runs int32

	require.NoError(t, p.Register("slow", func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
		if n := atomic.AddInt32(&concurrent, 1); n > atomic.LoadInt32(&maxConcurrent) {
			atomic.StoreInt32(&maxConcurrent, n)
		}
		<-release
		atomic.AddInt32(&concurrent, -1)
	}))

	p.Start()
	time.Sleep(2500 * time.Millisecond)
	close(release)
	p.Close()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxConcurrent))
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}
