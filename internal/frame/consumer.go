package frame

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval matches a 100 Hz display refresh.
const DefaultPollInterval = 10 * time.Millisecond

// Publisher receives complete frames. The slice is owned by the publisher
// once Publish is called.
type Publisher interface {
	Publish(frame []RGB) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(frame []RGB) error

func (f PublisherFunc) Publish(frame []RGB) error { return f(frame) }

// Stats are the consumer's running counters.
type Stats struct {
	Commands      int64
	Frames        int64
	Dropped       int64
	PublishErrors int64
}

// Consumer assembles queued commands into frames for a Publisher.
type Consumer struct {
	drainer *Drainer
	pub     Publisher
	log     *slog.Logger

	buffer []RGB
	redraw bool

	mu        sync.Mutex
	published []RGB

	commands      atomic.Int64
	frames        atomic.Int64
	dropped       atomic.Int64
	publishErrors atomic.Int64
}

// NewConsumer claims q and prepares a buffer of units colors, all black.
func NewConsumer(q *Queue, units int, pub Publisher, logger *slog.Logger) (*Consumer, error) {
	d, err := q.Claim()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		drainer:   d,
		pub:       pub,
		log:       logger,
		buffer:    make([]RGB, units),
		published: make([]RGB, units),
	}, nil
}

// Tick drains the commands waiting right now and publishes the buffer if a
// Flush was among them. It reports whether a frame was published.
func (c *Consumer) Tick() (bool, error) {
	n := c.drainer.Drain(c.apply)
	c.commands.Add(int64(n))
	if !c.redraw {
		return false, nil
	}
	c.redraw = false

	out := make([]RGB, len(c.buffer))
	copy(out, c.buffer)
	if c.pub != nil {
		if err := c.pub.Publish(out); err != nil {
			c.publishErrors.Add(1)
			return false, err
		}
	}

	snapshot := make([]RGB, len(c.buffer))
	copy(snapshot, c.buffer)
	c.mu.Lock()
	c.published = snapshot
	c.mu.Unlock()
	c.frames.Add(1)
	return true, nil
}

func (c *Consumer) apply(cmd Command) {
	if cmd.IsFlush() {
		c.redraw = true
		return
	}
	if cmd.Unit < 0 || cmd.Unit >= len(c.buffer) {
		c.dropped.Add(1)
		c.log.Warn("frame: command for unknown unit dropped", "unit", cmd.Unit, "units", len(c.buffer))
		return
	}
	c.buffer[cmd.Unit] = cmd.Color
}

// Run ticks every interval until ctx is done. A tick in progress always
// completes. Publish failures are logged and the loop keeps going.
func (c *Consumer) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.log.Info("frame: consumer running", "units", len(c.buffer), "interval", interval)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("frame: consumer stopped", "frames", c.frames.Load())
			return ctx.Err()
		case <-ticker.C:
			if _, err := c.Tick(); err != nil {
				c.log.Error("frame: publish failed", "err", err)
			}
		}
	}
}

// Published returns a copy of the last published frame.
func (c *Consumer) Published() []RGB {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RGB, len(c.published))
	copy(out, c.published)
	return out
}

func (c *Consumer) Units() int { return len(c.buffer) }

func (c *Consumer) Stats() Stats {
	return Stats{
		Commands:      c.commands.Load(),
		Frames:        c.frames.Load(),
		Dropped:       c.dropped.Load(),
		PublishErrors: c.publishErrors.Load(),
	}
}
