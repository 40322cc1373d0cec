// Package animation is the frame producer: it reads the show configuration,
// computes a color for every unit and streams the changes into a
// frame.Queue, closing each tick with a Flush.
package animation

import (
	"context"
	"log/slog"
	"time"

	"github.com/chase3718/lou-dome/internal/frame"
	"github.com/chase3718/lou-dome/internal/show"
)

// DefaultTick is the producer rate, 40 frames per second.
const DefaultTick = 25 * time.Millisecond

// Engine renders the show into a queue. It is not safe for concurrent use;
// run one Engine per producer goroutine.
type Engine struct {
	cfg   *show.Configuration
	queue *frame.Queue
	log   *slog.Logger

	next   []frame.RGB
	last   []frame.RGB
	primed bool
	clock  float64
	seq    uint64
	cmds   []frame.Command
}

func NewEngine(cfg *show.Configuration, q *frame.Queue, units int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:   cfg,
		queue: q,
		log:   logger,
		next:  make([]frame.RGB, units),
		last:  make([]frame.RGB, units),
	}
}

// Step advances the animation clock by dt scaled by the show's speed,
// renders, and enqueues a SetColor for every unit whose color changed since
// the previous step, followed by one Flush. The first step sends every unit.
// It returns the number of SetColor commands sent.
func (e *Engine) Step(dt time.Duration) (int, error) {
	e.clock += dt.Seconds() * e.cfg.Speed()
	Render(e.next, e.clock, e.cfg.EnabledColors(), e.cfg.Brightness(), e.cfg.Mode())

	e.cmds = e.cmds[:0]
	for i, c := range e.next {
		if e.primed && e.last[i] == c {
			continue
		}
		e.cmds = append(e.cmds, frame.SetColor(i, c))
	}
	e.cmds = append(e.cmds, frame.Flush())

	if err := e.queue.Enqueue(e.cmds...); err != nil {
		// The frame was not sent, so leave last untouched and retry the
		// full diff next tick.
		return 0, err
	}
	e.last, e.next = e.next, e.last
	e.primed = true
	e.seq++
	changed := len(e.cmds) - 1
	e.log.Debug("animation: frame queued", "seq", e.seq, "changed", changed, "mode", e.cfg.Mode())
	return changed, nil
}

// Run steps every tick until ctx is done.
func (e *Engine) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = DefaultTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	e.log.Info("animation: engine running", "units", len(e.next), "tick", tick)
	prev := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.log.Info("animation: engine stopped", "frames", e.seq)
			return ctx.Err()
		case now := <-ticker.C:
			if _, err := e.Step(now.Sub(prev)); err != nil {
				e.log.Warn("animation: frame skipped", "err", err)
			}
			prev = now
		}
	}
}
