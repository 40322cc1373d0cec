package frame

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

const (
	red   RGB = 0xff0000
	green RGB = 0x00ff00
	blue  RGB = 0x0000ff
)

type recorder struct {
	mu     sync.Mutex
	frames [][]RGB
	err    error
}

func (r *recorder) Publish(frame []RGB) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, frame)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func newTestConsumer(t *testing.T, units int) (*Queue, *Consumer, *recorder) {
	t.Helper()
	q := NewQueue()
	rec := &recorder{}
	c, err := NewConsumer(q, units, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	return q, c, rec
}

func TestFlushPublishesFrame(t *testing.T) {
	q, c, rec := newTestConsumer(t, 4)

	_ = q.Enqueue(SetColor(2, blue), SetColor(3, blue), Flush())
	if _, err := c.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	_ = q.Enqueue(SetColor(0, red), SetColor(1, green), Flush())
	published, err := c.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !published {
		t.Fatal("Tick() did not publish after a flush")
	}

	want := []RGB{red, green, blue, blue}
	got := c.Published()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unit %d = %v, want %v", i, got[i], want[i])
		}
	}
	if rec.count() != 2 {
		t.Errorf("publisher saw %d frames, want 2", rec.count())
	}
}

func TestNoFlushKeepsPublishedFrame(t *testing.T) {
	q, c, rec := newTestConsumer(t, 2)

	_ = q.Enqueue(SetColor(0, red), Flush())
	_, _ = c.Tick()

	_ = q.Enqueue(SetColor(0, green), SetColor(1, blue))
	published, err := c.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if published {
		t.Error("Tick() published without a flush")
	}
	if got := c.Published(); got[0] != red || got[1] != 0 {
		t.Errorf("published frame = %v, want [red black]", got)
	}
	if rec.count() != 1 {
		t.Errorf("publisher saw %d frames, want 1", rec.count())
	}

	// The buffered commands show up with the next flush.
	_ = q.Enqueue(Flush())
	_, _ = c.Tick()
	if got := c.Published(); got[0] != green || got[1] != blue {
		t.Errorf("published frame = %v, want [green blue]", got)
	}
}

func TestEmptyTickDoesNotPublish(t *testing.T) {
	_, c, rec := newTestConsumer(t, 2)
	if published, _ := c.Tick(); published {
		t.Error("empty Tick() published")
	}
	if rec.count() != 0 {
		t.Errorf("publisher saw %d frames, want 0", rec.count())
	}
}

func TestPublishedFrameIsACopy(t *testing.T) {
	q, c, rec := newTestConsumer(t, 1)
	_ = q.Enqueue(SetColor(0, red), Flush())
	_, _ = c.Tick()

	rec.frames[0][0] = blue
	if got := c.Published()[0]; got != red {
		t.Errorf("publisher mutation leaked into consumer: %v", got)
	}
	_ = q.Enqueue(SetColor(0, green))
	_, _ = c.Tick()
	if got := rec.frames[0][0]; got != blue {
		t.Errorf("consumer buffer aliases a published frame: %v", got)
	}
}

func TestUnknownUnitDropped(t *testing.T) {
	q, c, _ := newTestConsumer(t, 2)
	_ = q.Enqueue(SetColor(5, red), SetColor(-1, red), SetColor(1, green), Flush())
	if _, err := c.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	st := c.Stats()
	if st.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", st.Dropped)
	}
	if st.Commands != 4 || st.Frames != 1 {
		t.Errorf("stats = %+v, want 4 commands and 1 frame", st)
	}
	if got := c.Published(); got[1] != green {
		t.Errorf("unit 1 = %v, want green", got[1])
	}
}

func TestPublishErrorKeepsPreviousFrame(t *testing.T) {
	q, c, rec := newTestConsumer(t, 1)
	_ = q.Enqueue(SetColor(0, red), Flush())
	_, _ = c.Tick()

	rec.err = errors.New("port gone")
	_ = q.Enqueue(SetColor(0, green), Flush())
	if _, err := c.Tick(); err == nil {
		t.Fatal("Tick() err = nil, want publish failure")
	}
	if got := c.Published()[0]; got != red {
		t.Errorf("published = %v after failed publish, want red", got)
	}
	if c.Stats().PublishErrors != 1 {
		t.Errorf("PublishErrors = %d, want 1", c.Stats().PublishErrors)
	}
}

func TestSecondConsumerRejected(t *testing.T) {
	q := NewQueue()
	if _, err := NewConsumer(q, 1, nil, nil); err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	if _, err := NewConsumer(q, 1, nil, nil); !errors.Is(err, ErrConsumerClaimed) {
		t.Errorf("second NewConsumer err = %v, want ErrConsumerClaimed", err)
	}
}

func TestRunPublishesUntilCancelled(t *testing.T) {
	q, c, rec := newTestConsumer(t, 1)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx, time.Millisecond) }()

	_ = q.Enqueue(SetColor(0, red), Flush())
	deadline := time.After(2 * time.Second)
	for rec.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no frame published within 2s")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() err = %v, want context.Canceled", err)
	}
}

func TestConcurrentProducersThroughConsumer(t *testing.T) {
	q, c, _ := newTestConsumer(t, 100)
	var wg sync.WaitGroup
	for p := 0; p < 2; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_ = q.Enqueue(SetColor(i%100, RGB(i)))
			}
			_ = q.Enqueue(Flush())
		}()
	}
	wg.Wait()
	for q.Len() > 0 {
		_, _ = c.Tick()
	}
	if got := c.Stats().Commands; got != 2002 {
		t.Errorf("Commands = %d, want 2002", got)
	}
}
