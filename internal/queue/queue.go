// Package queue runs import jobs on a bounded worker pool. Retry and
// dead-letter policy live outside the pipeline: a handler error is
// passed to the DeadLetter sink untouched.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Payload is the enqueue contract shared with the upload tier.
type Payload struct {
	ImportJobID string
	UserID      string
}

// Handler processes one job payload. Each job runs on exactly one
// worker at a time.
type Handler func(ctx context.Context, p Payload) error

// DeadLetter receives payloads whose handler failed.
type DeadLetter interface {
	Record(ctx context.Context, p Payload, err error)
}

// LogDeadLetter is the default sink: it only logs. Production wiring
// substitutes the shared dead-letter table owned by the job-queue
// infrastructure.
type LogDeadLetter struct {
	Log zerolog.Logger
}

func (d LogDeadLetter) Record(_ context.Context, p Payload, err error) {
	d.Log.Error().Err(err).
		Str("job_id", p.ImportJobID).
		Str("user_id", p.UserID).
		Msg("job failed, handing to dead-letter policy")
}

// ErrQueueFull is returned when the bounded queue cannot accept a job.
var ErrQueueFull = errors.New("queue: full")

// Queue is a bounded in-process job queue.
type Queue struct {
	jobs    chan Payload
	handler Handler
	dead    DeadLetter
	workers int
	log     zerolog.Logger
}

// New creates a queue with the given worker count and capacity.
func New(workers, size int, h Handler, dl DeadLetter, log zerolog.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	return &Queue{
		jobs:    make(chan Payload, size),
		handler: h,
		dead:    dl,
		workers: workers,
		log:     log,
	}
}

// Enqueue hands a payload to the pool without blocking on a full queue.
func (q *Queue) Enqueue(ctx context.Context, p Payload) error {
	select {
	case q.jobs <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Run processes jobs until ctx is cancelled, then waits for in-flight
// jobs to finish. Import jobs are not cancellable once running; the
// context only stops intake.
func (q *Queue) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case p := <-q.jobs:
					q.log.Info().
						Int("worker", workerID).
						Str("job_id", p.ImportJobID).
						Msg("job started")
					if err := q.handler(context.WithoutCancel(ctx), p); err != nil {
						q.dead.Record(ctx, p, err)
					}
				}
			}
		}(i)
	}
	wg.Wait()
}
