package midi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/chase3718/lou-dome/internal/binding"
)

// DefaultRescanInterval is how often the watcher lists the driver's inputs.
const DefaultRescanInterval = time.Second

// Options select the input a Watcher connects to.
type Options struct {
	// Preferred names are fuzzy-matched against the input list in order;
	// the first pattern with a match wins. With no match the watcher only
	// connects when exactly one input is available.
	Preferred []string
	// Inputs containing any Excluded pattern (case-insensitive) are never
	// auto-connected.
	Excluded []string
	// Channel filters decoded events, AnyChannel for all.
	Channel int
	Rescan  time.Duration
}

// DefaultOptions skips the usual virtual ports.
func DefaultOptions() Options {
	return Options{
		Excluded: []string{"Midi Through", "Through Port", "Dummy"},
		Channel:  AnyChannel,
		Rescan:   DefaultRescanInterval,
	}
}

// Watcher monitors a driver's inputs and keeps a connection to the
// preferred one.
//
// onEvent is called from the driver's listener goroutine for every decoded
// event. onDisconnect is called from its own goroutine when the active input
// disappears.
type Watcher struct {
	mu           sync.Mutex
	drv          drivers.Driver
	opts         Options
	log          *slog.Logger
	inPort       drivers.In
	stopFn       func()
	connected    bool
	selectedName string
	lastRescanAt time.Time

	onEvent      func(binding.Event)
	onDisconnect func()
}

func NewWatcher(drv drivers.Driver, opts Options, onEvent func(binding.Event), onDisconnect func(), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Rescan <= 0 {
		opts.Rescan = DefaultRescanInterval
	}
	return &Watcher{
		drv:          drv,
		opts:         opts,
		log:          logger,
		onEvent:      onEvent,
		onDisconnect: onDisconnect,
	}
}

// Close drops the active connection. The driver stays open; it belongs to
// the caller.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeConn()
}

// Connected reports the active input, if any.
func (w *Watcher) Connected() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedName, w.connected
}

// Tick scans for inputs at most once per rescan interval, connects to the
// preferred one and notices when it goes away.
func (w *Watcher) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if !w.lastRescanAt.IsZero() && now.Sub(w.lastRescanAt) < w.opts.Rescan {
		return
	}
	w.lastRescanAt = now

	inputs, err := Inputs(w.drv)
	if err != nil {
		w.log.Error("midi: list inputs failed", "err", err)
		return
	}
	inputs = FilterExcluded(inputs, w.opts.Excluded)
	w.log.Debug("midi: inputs found", "count", len(inputs), "devices", strings.Join(inputs, ", "))

	if w.connected {
		for _, n := range inputs {
			if n == w.selectedName {
				return
			}
		}
		w.log.Warn("midi: device disappeared", "device", w.selectedName)
		w.dropLocked()
		return
	}

	cand, ok := PickPreferred(inputs, w.opts.Preferred)
	if !ok {
		return
	}
	if err := w.openByName(cand); err != nil {
		w.log.Error("midi: connect failed", "device", cand, "err", err)
	}
}

// Run ticks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Rescan)
	defer ticker.Stop()
	defer w.Close()

	w.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick()
		}
	}
}

// Inputs lists the names of every input port of drv.
func Inputs(drv drivers.Driver) ([]string, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

// FilterExcluded drops every name containing one of the patterns.
func FilterExcluded(names, patterns []string) []string {
	var out []string
	for _, name := range names {
		excluded := false
		for _, pat := range patterns {
			if containsCI(name, pat) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, name)
		}
	}
	return out
}

// PickPreferred returns the best input for the first preferred pattern that
// matches anything. Without a match a lone input is taken.
func PickPreferred(inputs, preferred []string) (string, bool) {
	for _, pat := range preferred {
		for _, name := range inputs {
			if containsCI(name, pat) {
				return name, true
			}
		}
		if matches := fuzzy.Find(pat, inputs); len(matches) > 0 {
			return matches[0].Str, true
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (w *Watcher) closeConn() {
	if w.stopFn != nil {
		w.stopFn()
		w.stopFn = nil
	}
	if w.inPort != nil {
		_ = w.inPort.Close()
		w.inPort = nil
	}
	w.connected = false
	w.selectedName = ""
}

// dropLocked closes the connection and schedules an immediate rescan.
func (w *Watcher) dropLocked() {
	w.closeConn()
	w.lastRescanAt = time.Time{}
	if w.onDisconnect != nil {
		go w.onDisconnect()
	}
}

func (w *Watcher) openByName(name string) error {
	ins, err := w.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	stop, err := midi.ListenTo(found, w.handle, midi.HandleError(func(listenErr error) {
		w.log.Warn("midi: listener error", "device", name, "err", listenErr)
		// closeConn stops the listener, so it cannot run on the listener's
		// own goroutine.
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.connected && w.selectedName == name {
				w.dropLocked()
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	w.inPort = found
	w.stopFn = stop
	w.connected = true
	w.selectedName = name
	w.log.Info("midi: connected", "device", name)
	return nil
}

func (w *Watcher) handle(msg midi.Message, _ int32) {
	ev, ok := Decode(msg, w.opts.Channel)
	if !ok {
		w.log.Debug("midi: unhandled message", "msg", msg.String())
		return
	}
	w.log.Debug("midi: event", "type", ev.Type, "index", ev.Index, "value", ev.Value)
	if w.onEvent != nil {
		w.onEvent(ev)
	}
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
