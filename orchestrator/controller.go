package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/emotion-session/clients"
	"github.com/maastricht-university/emotion-session/frames"
)

const DefaultInterval = 3 * time.Second

// Ticker is the periodic task source driving capture cycles.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func NewRealTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

type Options struct {
	Interval  time.Duration
	NewTicker func(time.Duration) Ticker
	Archiver  Archiver // optional
	Advisor   Advisor  // optional
	Log       logrus.FieldLogger
}

// Controller owns the session lifecycle and every write to session state.
// A tick that arrives while the previous cycle is still in flight is skipped.
// Stop cancels scheduling only; in-flight classification, archival and
// suggestion calls run to completion and still apply their effects.
type Controller struct {
	id         string
	source     FrameSource
	classifier Classifier
	archiver   Archiver
	advisor    Advisor
	agg        *Aggregator
	interval   time.Duration
	newTicker  func(time.Duration) Ticker
	log        logrus.FieldLogger

	// base outlives scheduling; remote calls bound themselves.
	base context.Context

	mu          sync.Mutex
	state       State
	status      string
	suggestions []string
	cycles      int
	skipped     int
	cancelLoop  context.CancelFunc
	suggestGen  uint64
	closed      bool

	inFlight atomic.Bool
	tasks    sync.WaitGroup
}

func NewController(src FrameSource, cls Classifier, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewRealTicker
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	id := uuid.NewString()
	return &Controller{
		id:         id,
		source:     src,
		classifier: cls,
		archiver:   opts.Archiver,
		advisor:    opts.Advisor,
		agg:        NewAggregator(),
		interval:   opts.Interval,
		newTicker:  opts.NewTicker,
		log:        opts.Log.WithField("session_id", id),
		base:       context.Background(),
		state:      Idle,
		status:     StatusReady,
	}
}

func (c *Controller) ID() string { return c.id }

// Start begins periodic capture. It is a no-op while already running or
// after Close.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.log.Warn("start after close ignored")
		return
	}
	if c.state == Running {
		return
	}
	c.state = Running
	c.status = StatusDetecting

	ctx, cancel := context.WithCancel(c.base)
	c.cancelLoop = cancel
	t := c.newTicker(c.interval)

	c.tasks.Add(1)
	go c.loop(ctx, t)
	c.log.WithField("interval", c.interval).Info("analysis started")
}

// Stop ends scheduling and requests suggestions for the current table.
// From Idle it only moves to Stopped; while already stopped it does nothing.
func (c *Controller) Stop() {
	c.mu.Lock()
	switch c.state {
	case Stopped:
		c.mu.Unlock()
		return
	case Idle:
		c.state = Stopped
		c.status = StatusStopped
		c.mu.Unlock()
		return
	}
	c.state = Stopped
	c.status = StatusStopped
	c.cancelLoop()
	c.cancelLoop = nil
	table := c.agg.Snapshot()
	c.suggestGen++
	gen := c.suggestGen
	c.mu.Unlock()

	c.log.WithField("observations", table.Total()).Info("analysis stopped")
	if c.advisor == nil {
		return
	}
	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		c.fetchSuggestions(gen, table)
	}()
}

// Close stops the session for good and waits for every in-flight task.
// Later Start calls are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Stop()
	c.tasks.Wait()
}

// Wait blocks until in-flight tasks drain without changing state.
func (c *Controller) Wait() { c.tasks.Wait() }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Table() FrequencyTable { return c.agg.Snapshot() }

func (c *Controller) Suggestions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneStrings(c.suggestions)
}

func (c *Controller) Snapshot() Snapshot {
	table := c.agg.Snapshot()
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		SessionID:   c.id,
		State:       c.state.String(),
		Status:      c.status,
		Table:       table,
		Suggestions: cloneStrings(c.suggestions),
		Cycles:      c.cycles,
		Skipped:     c.skipped,
	}
}

func (c *Controller) loop(ctx context.Context, t Ticker) {
	defer c.tasks.Done()
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if ctx.Err() != nil {
				return
			}
			c.tick()
		}
	}
}

func (c *Controller) tick() {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.mu.Lock()
		c.skipped++
		c.mu.Unlock()
		c.log.Debug("previous cycle still in flight, skipping tick")
		return
	}
	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		c.cycle(c.base)
		c.inFlight.Store(false)
		c.mu.Lock()
		c.cycles++
		c.mu.Unlock()
	}()
}

// cycle runs capture -> classify -> aggregate once.
func (c *Controller) cycle(ctx context.Context) {
	frame, err := c.source.Next(ctx)
	if err != nil {
		if !errors.Is(err, frames.ErrNoFrame) {
			c.log.WithError(err).Debug("frame source failed")
		}
		return
	}

	out := c.classifier.Classify(ctx, frame)
	label := ""
	if out.Kind == clients.Detected {
		label = NormalizeLabel(out.Label)
	}

	switch {
	case out.Kind == clients.TransportError:
		c.log.WithError(out.Err).Warn("classification failed")
		c.setStatus(StatusError)
	case label == "":
		c.setStatus(StatusNoFace)
	default:
		c.setStatus(label)
		c.archive(frame, label)
		c.agg.RecordLabel(label)
		c.log.WithField("label", label).Debug("emotion recorded")
	}
}

// setStatus is last-write-wins while running; once stopped the terminal
// status is kept even if a late cycle completes.
func (c *Controller) setStatus(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		c.status = s
	}
}

func (c *Controller) archive(f frames.Frame, label string) {
	if c.archiver == nil {
		return
	}
	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		if err := c.archiver.Archive(c.base, f, label); err != nil {
			c.log.WithError(err).WithField("label", label).Warn("archive frame failed")
		}
	}()
}

// fetchSuggestions installs the reply only if no later stop has been issued
// meanwhile.
func (c *Controller) fetchSuggestions(gen uint64, table FrequencyTable) {
	list, err := c.advisor.Suggestions(c.base, toPayload(table))
	if err != nil {
		c.log.WithError(err).Warn("suggestions unavailable, keeping previous list")
		return
	}
	if list == nil {
		list = []string{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.suggestGen {
		c.log.WithField("generation", gen).Debug("discarding suggestions from an earlier stop")
		return
	}
	c.suggestions = cloneStrings(list)
	c.log.WithField("count", len(list)).Info("suggestions updated")
}
