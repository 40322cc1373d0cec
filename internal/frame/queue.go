package frame

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrConsumerClaimed is returned by Claim once the consumer token has
	// been handed out.
	ErrConsumerClaimed = errors.New("frame: queue consumer already claimed")

	// ErrConcurrentDrain is the panic value raised when two drains overlap.
	// Two consumer loops were started; there is no way to recover from that.
	ErrConcurrentDrain = errors.New("frame: concurrent drain")

	// ErrQueueFull is returned by Enqueue on a bounded queue at capacity.
	ErrQueueFull = errors.New("frame: queue full")
)

const initialQueueSize = 256

// Queue is a FIFO of Commands. Any number of goroutines may Enqueue; only
// the holder of the Drainer returned by Claim may take commands out.
type Queue struct {
	mu       sync.Mutex
	buf      []Command
	head     int
	size     int
	capacity int

	claimed atomic.Bool
}

type Option func(*Queue)

// WithCapacity bounds the queue. Enqueue fails with ErrQueueFull instead of
// growing once n commands are waiting.
func WithCapacity(n int) Option {
	return func(q *Queue) { q.capacity = n }
}

func NewQueue(opts ...Option) *Queue {
	q := &Queue{}
	for _, opt := range opts {
		opt(q)
	}
	size := initialQueueSize
	if q.capacity > 0 && q.capacity < size {
		size = q.capacity
	}
	q.buf = make([]Command, size)
	return q
}

// Enqueue appends cmds in order. Commands of one call stay contiguous. It
// never blocks; on a bounded queue either all of cmds are accepted or none.
func (q *Queue) Enqueue(cmds ...Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && q.size+len(cmds) > q.capacity {
		return fmt.Errorf("%w: %d waiting, capacity %d", ErrQueueFull, q.size, q.capacity)
	}
	if need := q.size + len(cmds); need > len(q.buf) {
		q.grow(need)
	}
	for _, c := range cmds {
		q.buf[(q.head+q.size)%len(q.buf)] = c
		q.size++
	}
	return nil
}

// Len is the number of waiting commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Claim hands out the consumer token. It succeeds once per queue.
func (q *Queue) Claim() (*Drainer, error) {
	if !q.claimed.CompareAndSwap(false, true) {
		return nil, ErrConsumerClaimed
	}
	return &Drainer{q: q}, nil
}

func (q *Queue) grow(need int) {
	n := len(q.buf) * 2
	if n == 0 {
		n = initialQueueSize
	}
	for n < need {
		n *= 2
	}
	buf := make([]Command, n)
	for i := 0; i < q.size; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}

// take moves up to n commands into dst.
func (q *Queue) take(dst []Command, n int) []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > q.size {
		n = q.size
	}
	for i := 0; i < n; i++ {
		dst = append(dst, q.buf[q.head])
		q.buf[q.head] = Command{}
		q.head = (q.head + 1) % len(q.buf)
		q.size--
	}
	return dst
}

// Drainer is the single consumer's handle on a Queue.
type Drainer struct {
	q        *Queue
	draining atomic.Bool
	scratch  []Command
}

// Drain passes the commands waiting when it starts to fn, oldest first, and
// returns how many it passed. Commands enqueued meanwhile wait for the next
// drain. Overlapping calls panic with ErrConcurrentDrain.
func (d *Drainer) Drain(fn func(Command)) int {
	if !d.draining.CompareAndSwap(false, true) {
		panic(ErrConcurrentDrain)
	}
	defer d.draining.Store(false)

	n := d.q.Len()
	if n == 0 {
		return 0
	}
	d.scratch = d.q.take(d.scratch[:0], n)
	if len(d.scratch) != n {
		panic(fmt.Errorf("%w: %d of %d commands vanished", ErrConcurrentDrain, n-len(d.scratch), n))
	}
	for _, c := range d.scratch {
		fn(c)
	}
	return n
}
