package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingDeadLetter struct {
	mu   sync.Mutex
	seen []string
}

func (d *recordingDeadLetter) Record(_ context.Context, p Payload, _ error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, p.ImportJobID)
}

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	done := make(map[string]bool)
	handler := func(_ context.Context, p Payload) error {
		mu.Lock()
		defer mu.Unlock()
		done[p.ImportJobID] = true
		return nil
	}
	q := New(2, 10, handler, &recordingDeadLetter{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, Payload{ImportJobID: id, UserID: "u1"}); err != nil {
			t.Fatal(err)
		}
	}
	go func() {
		deadline := time.After(2 * time.Second)
		for {
			mu.Lock()
			n := len(done)
			mu.Unlock()
			if n == 3 {
				cancel()
				return
			}
			select {
			case <-deadline:
				cancel()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}()
	q.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(done) != 3 {
		t.Errorf("processed %d jobs, want 3", len(done))
	}
}

func TestQueueFull(t *testing.T) {
	q := New(1, 1, func(context.Context, Payload) error { return nil }, &recordingDeadLetter{}, zerolog.Nop())
	ctx := context.Background()
	if err := q.Enqueue(ctx, Payload{ImportJobID: "a"}); err != nil {
		t.Fatal(err)
	}
	// No worker is draining; the second enqueue must not block.
	if err := q.Enqueue(ctx, Payload{ImportJobID: "b"}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("err = %v, want ErrQueueFull", err)
	}
}

func TestQueueDeadLetter(t *testing.T) {
	dl := &recordingDeadLetter{}
	handler := func(_ context.Context, p Payload) error {
		if p.ImportJobID == "bad" {
			return errors.New("handler failed")
		}
		return nil
	}
	q := New(1, 10, handler, dl, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	_ = q.Enqueue(ctx, Payload{ImportJobID: "good"})
	_ = q.Enqueue(ctx, Payload{ImportJobID: "bad"})
	go func() {
		deadline := time.After(2 * time.Second)
		for {
			dl.mu.Lock()
			n := len(dl.seen)
			dl.mu.Unlock()
			if n == 1 {
				cancel()
				return
			}
			select {
			case <-deadline:
				cancel()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}()
	q.Run(ctx)

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if len(dl.seen) != 1 || dl.seen[0] != "bad" {
		t.Errorf("dead letters = %v, want [bad]", dl.seen)
	}
}

func TestEnqueueCancelledContext(t *testing.T) {
	q := New(1, 1, func(context.Context, Payload) error { return nil }, &recordingDeadLetter{}, zerolog.Nop())
	if err := q.Enqueue(context.Background(), Payload{ImportJobID: "a"}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Queue is full and the context is done; either outcome is an error.
	if err := q.Enqueue(ctx, Payload{ImportJobID: "b"}); err == nil {
		t.Error("enqueue on a full queue with a dead context must fail")
	}
}
