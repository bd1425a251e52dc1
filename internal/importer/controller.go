package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/freeeve/gamevault/internal/queue"
	"github.com/freeeve/gamevault/internal/store"
)

// Enqueuer is the slice of the job queue the controller needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, p queue.Payload) error
}

// Controller owns the job state machine and intake. It is the only
// mutator of ImportJob rows outside the per-game counter snapshots.
type Controller struct {
	store *store.Store
	queue Enqueuer
	log   zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewController(st *store.Store, q Enqueuer, log zerolog.Logger) *Controller {
	return &Controller{
		store:    st,
		queue:    q,
		log:      log,
		inflight: make(map[string]struct{}),
	}
}

// CreateJob creates and enqueues an import job. Creation is idempotent:
// a repeated request with the same per-user idempotency key returns the
// existing job's current state without enqueueing a second run. This is
// independent of, and in addition to, per-game content dedup.
func (c *Controller) CreateJob(ctx context.Context, userID, objectKey string, opts store.JobOptions) (*store.ImportJob, error) {
	job, created, err := c.store.CreateJob(userID, objectKey, opts)
	if err != nil {
		return nil, err
	}
	if !created {
		return job, nil
	}
	if c.claim(job.ID) {
		if err := c.queue.Enqueue(ctx, queue.Payload{ImportJobID: job.ID, UserID: userID}); err != nil {
			// The job stays queued; intake polling picks it up later.
			c.release(job.ID)
			c.log.Warn().Err(err).Str("job_id", job.ID).Msg("enqueue deferred")
		}
	}
	return job, nil
}

// EnqueuePending hands still-queued jobs to the pool: startup recovery
// and the worker's poll intake. Jobs already in flight are skipped so a
// job never runs on more than one worker.
func (c *Controller) EnqueuePending(ctx context.Context, limit int) (int, error) {
	jobs, err := c.store.ListQueuedJobs(limit)
	if err != nil {
		return 0, err
	}
	enqueued := 0
	for _, job := range jobs {
		if !c.claim(job.ID) {
			continue
		}
		if err := c.queue.Enqueue(ctx, queue.Payload{ImportJobID: job.ID, UserID: job.UserID}); err != nil {
			c.release(job.ID)
			if errors.Is(err, queue.ErrQueueFull) {
				break
			}
			return enqueued, err
		}
		enqueued++
	}
	return enqueued, nil
}

// Wrap releases the in-flight claim when the handler finishes.
func (c *Controller) Wrap(h queue.Handler) queue.Handler {
	return func(ctx context.Context, p queue.Payload) error {
		defer c.release(p.ImportJobID)
		return h(ctx, p)
	}
}

func (c *Controller) claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[id]; ok {
		return false
	}
	c.inflight[id] = struct{}{}
	return true
}

func (c *Controller) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
}
