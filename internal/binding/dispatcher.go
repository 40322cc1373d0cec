package binding

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chase3718/lou-dome/internal/show"
)

// Dispatcher routes events to the bindings registered for their command
// type. It is safe for concurrent use.
type Dispatcher struct {
	log *slog.Logger

	mu      sync.RWMutex
	buckets map[CommandType][]Binding
	count   int
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		log:     logger,
		buckets: make(map[CommandType][]Binding),
	}
}

// Register appends bindings to their type buckets. Registration order is
// invocation order.
func (d *Dispatcher) Register(bindings ...Binding) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range bindings {
		d.buckets[b.Key.Type] = append(d.buckets[b.Key.Type], b)
		d.count++
	}
}

// Replace drops every registered binding and registers bindings instead.
func (d *Dispatcher) Replace(bindings []Binding) {
	buckets := make(map[CommandType][]Binding)
	for _, b := range bindings {
		buckets[b.Key.Type] = append(buckets[b.Key.Type], b)
	}

	d.mu.Lock()
	d.buckets = buckets
	d.count = len(bindings)
	d.mu.Unlock()
	d.log.Info("binding: active set replaced", "bindings", len(bindings))
}

// Attach instantiates configs against cfg and makes them the active set.
// The previous set stays active if any config fails.
func (d *Dispatcher) Attach(cfg *show.Configuration, configs []Config) error {
	bindings, err := Instantiate(cfg, configs)
	if err != nil {
		return err
	}
	d.Replace(bindings)
	return nil
}

// Len reports the number of registered bindings.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}

// Dispatch invokes every binding of ev.Type with ev's index and value. An
// unknown type is a no-op. A failing or panicking callback does not stop the
// remaining ones; failures are logged and returned joined.
func (d *Dispatcher) Dispatch(ev Event) error {
	d.mu.RLock()
	bucket := d.buckets[ev.Type]
	d.mu.RUnlock()

	var errs []error
	for _, b := range bucket {
		if err := invoke(b, ev); err != nil {
			d.log.Error("binding: callback failed",
				"key", b.Key.String(),
				"index", ev.Index,
				"value", ev.Value,
				"err", err,
			)
			errs = append(errs, fmt.Errorf("binding %s: %w", b.Key, err))
		}
	}
	return errors.Join(errs...)
}

func invoke(b Binding, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	return b.Callback(ev.Index, ev.Value)
}
