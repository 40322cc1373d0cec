package sink

import (
	"errors"
	"fmt"

	"github.com/chase3718/lou-dome/internal/frame"
)

// Fanout publishes every frame to each of its publishers in order. One
// publisher failing does not keep the frame from the others.
type Fanout []frame.Publisher

func (f Fanout) Publish(colors []frame.RGB) error {
	var errs []error
	for i, p := range f {
		out := colors
		if i < len(f)-1 {
			out = make([]frame.RGB, len(colors))
			copy(out, colors)
		}
		if err := p.Publish(out); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
