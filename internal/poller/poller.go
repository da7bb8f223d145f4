// internal/poller/poller.go
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-console/internal/config"
	"github.com/javajoker/license-console/internal/metrics"
)

// FetchFunc refreshes one projection. It reports its own failures.
type FetchFunc func(ctx context.Context)

// Poller runs the registered fetches once on Start and then on every tick
// until Stop. Ticks may overlap a fetch that is still running unless
// SkipIfRunning is configured.
type Poller struct {
	interval      time.Duration
	skipIfRunning bool
	cron          *cron.Cron
	ctx           context.Context
	cancel        context.CancelFunc

	mu      sync.Mutex
	jobs    map[string]cron.Job
	started bool
	// running tracks the immediate runs started outside the cron scheduler.
	running sync.WaitGroup
}

func New(cfg config.PollingConfig) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		interval:      cfg.Interval,
		skipIfRunning: cfg.SkipIfRunning,
		cron:          cron.New(),
		ctx:           ctx,
		cancel:        cancel,
		jobs:          make(map[string]cron.Job),
	}
}

func (p *Poller) Register(name string, fetch FetchFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.jobs[name]; exists {
		return fmt.Errorf("poll job %q already registered", name)
	}

	var job cron.Job = cron.FuncJob(func() {
		metrics.RecordPoll(name, "run")
		start := time.Now()
		fetch(p.ctx)
		logrus.WithFields(logrus.Fields{
			"job":      name,
			"duration": time.Since(start).Milliseconds(),
		}).Debug("Poll completed")
	})
	if p.skipIfRunning {
		job = cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(logrus.StandardLogger()))).Then(job)
	}

	p.cron.Schedule(cron.Every(p.interval), job)
	p.jobs[name] = job

	if p.started {
		p.runNow(job)
	}
	return nil
}

// runNow must be called with p.mu held and the poller started.
func (p *Poller) runNow(job cron.Job) {
	p.running.Add(1)
	go func() {
		defer p.running.Done()
		job.Run()
	}()
}

// Start fetches every projection immediately, then on each tick.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true

	for _, job := range p.jobs {
		p.runNow(job)
	}
	p.cron.Start()

	logrus.WithFields(logrus.Fields{
		"interval": p.interval.String(),
		"jobs":     len(p.jobs),
	}).Info("Poller started")
}

// Stop cancels future ticks. In-flight fetches keep running; the returned
// context is done once they have finished, including the immediate runs
// made by Start and Register.
func (p *Poller) Stop() context.Context {
	p.mu.Lock()
	p.started = false
	scheduled := p.cron.Stop()
	p.mu.Unlock()

	ctx, done := context.WithCancel(context.Background())
	go func() {
		<-scheduled.Done()
		p.running.Wait()
		done()
	}()

	logrus.Info("Poller stopped")
	return ctx
}

// Close stops the poller, waits for in-flight fetches and then cancels the
// context handed to fetches.
func (p *Poller) Close() {
	<-p.Stop().Done()
	p.cancel()
}
